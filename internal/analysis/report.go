package analysis

import (
	"time"

	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/service"
)

// Report bundles every aggregate for one reporting period.
type Report struct {
	GeneratedAt   time.Time     `json:"generatedAt"`
	Period        string        `json:"period"`
	Summary       Summary       `json:"summary"`
	Breakdown     Breakdown     `json:"categoryBreakdown"`
	Trend         []MonthTotals `json:"monthlyTrends"`
	Direction     Direction     `json:"trendDirection"`
	TopCategories []TopCategory `json:"topCategories"`
	Metrics       Metrics       `json:"metrics"`
	Budget        Budget        `json:"budgetAnalysis"`
	HealthScore   int           `json:"healthScore"`
	Insights      []Insight     `json:"insights"`
}

// ReportInput carries what BuildReport needs. PeriodTransactions is the
// subset inside the reporting period; AllTransactions feeds the trailing
// trend, which always ends at Now regardless of the period.
type ReportInput struct {
	Now                time.Time
	Resolver           service.CategoryResolver
	Period             string
	PeriodTransactions []model.Transaction
	AllTransactions    []model.Transaction
	TrendMonths        int
	// SpanMonths is the length of the period in months, used for the
	// transaction frequency metric.
	SpanMonths int
}

// BuildReport computes the full report.
func BuildReport(in ReportInput) *Report {
	months := in.TrendMonths
	if months <= 0 {
		months = DefaultTrendMonths
	}

	summary := Summarize(in.PeriodTransactions)
	breakdown := BreakdownByType(in.PeriodTransactions)
	trend := MonthlyTrend(in.AllTransactions, months, in.Now)
	budget := AnalyzeBudget(summary)
	top := TopCategories(breakdown.Expenses, summary.Expenses, in.Resolver, TopCategoryLimit)

	return &Report{
		GeneratedAt:   in.Now,
		Period:        in.Period,
		Summary:       summary,
		Breakdown:     breakdown,
		Trend:         trend,
		Direction:     TrendDirection(Periods(trend)),
		TopCategories: top,
		Metrics:       ComputeMetrics(in.PeriodTransactions, trend, in.SpanMonths),
		Budget:        budget,
		HealthScore:   HealthScore(summary, breakdown, budget, trend),
		Insights:      Insights(summary, budget, top),
	}
}
