package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/pocketbook/internal/analysis"
	"github.com/stretchr/testify/assert"
)

func sampleReport() *analysis.Report {
	return &analysis.Report{
		GeneratedAt: time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC),
		Period:      "month",
		Summary:     analysis.Summary{Income: 5000, Expenses: 2000, Balance: 3000, Count: 3, SavingsRate: 60},
		Trend: []analysis.MonthTotals{
			{Month: "2024-02"},
			{Month: "2024-03", Income: 5000, Expenses: 2000, Balance: 3000, Count: 3},
		},
		Direction: analysis.Up,
		TopCategories: []analysis.TopCategory{
			{CategoryID: "food", Name: "Food & Groceries", Total: 1200, Count: 1, Percentage: 60},
			{CategoryID: "transport", Name: "Transport/Petrol", Total: 800, Count: 1, Percentage: 40},
		},
		Budget:      analysis.Budget{CurrentSpending: 2000, RecommendedBudget: 4000, Utilization: 50},
		HealthScore: 90,
		Insights: []analysis.Insight{
			{Kind: analysis.InsightInfo, Title: "High Category Spending", Message: "Food & Groceries accounts for 60.0% of your expenses."},
		},
	}
}

func TestReportFormatter_FormatReport(t *testing.T) {
	out := NewReportFormatter().FormatReport(sampleReport())

	for _, want := range []string{
		"Financial Report",
		"Period: month",
		"$5,000.00",
		"60.0%",
		"Financial Health: 90/100",
		"Within budget",
		"Food & Groceries",
		"improving",
		"2024-03",
		"High Category Spending:",
		"Transactions per month",
	} {
		assert.Contains(t, out, want)
	}
}

func TestReportFormatter_NilAndEmpty(t *testing.T) {
	f := NewReportFormatter()
	assert.Contains(t, f.FormatReport(nil), "No report available")

	report := sampleReport()
	report.TopCategories = nil
	report.Insights = nil
	report.Budget.OverBudget = true
	out := f.FormatReport(report)
	assert.NotContains(t, out, "Top Spending Categories")
	assert.NotContains(t, out, "Insights")
	assert.Contains(t, out, "Over budget")
}

func TestReportFormatter_FormatPeriods(t *testing.T) {
	f := NewReportFormatter()
	assert.Contains(t, f.FormatPeriods(nil), "No transactions")

	out := f.FormatPeriods([]analysis.PeriodTotals{
		{Period: "2024-Q1", Income: 5000, Expenses: 2000, Net: 3000},
		{Period: "2024-Q2", Expenses: 100, Net: -100},
	})
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[3], "-$100.00")
}

func TestStyles(t *testing.T) {
	s := NewStyles()
	assert.Equal(t, s.Success, s.ForScore(80))
	assert.Equal(t, s.Warning, s.ForScore(65))
	assert.Equal(t, s.Error, s.ForScore(10))
	assert.Equal(t, s.Warning, s.ForInsight(analysis.InsightWarning))
	assert.Equal(t, s.Info, s.ForInsight(analysis.InsightInfo))

	narrow := s.WithWidth(60)
	assert.Equal(t, 56, narrow.Box.GetWidth())
	assert.Equal(t, 0, s.Box.GetWidth(), "original is untouched")
}

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		progress float64
		width    int
	}{
		{name: "half", progress: 0.5, width: 4, expected: "██░░"},
		{name: "overfull", progress: 1.5, width: 3, expected: "███"},
		{name: "negative", progress: -1, width: 2, expected: "░░"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RenderProgressBar(tt.progress, tt.width))
		})
	}
	assert.Len(t, []rune(RenderProgressBar(0, 0)), 30)
}
