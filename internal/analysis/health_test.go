package analysis

import (
	"testing"
	"time"

	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeTrend(months int) []MonthTotals {
	trend := make([]MonthTotals, months)
	for i := range trend {
		trend[i].Count = 1
	}
	return trend
}

func TestAnalyzeBudget(t *testing.T) {
	tests := []struct {
		name    string
		summary Summary
		want    Budget
	}{
		{
			name:    "within",
			summary: Summary{Income: 1000, Expenses: 600},
			want:    Budget{CurrentSpending: 600, RecommendedBudget: 800, Utilization: 75},
		},
		{
			name:    "over",
			summary: Summary{Income: 1000, Expenses: 900},
			want:    Budget{CurrentSpending: 900, RecommendedBudget: 800, Utilization: 112.5, OverBudget: true},
		},
		{
			name:    "no income",
			summary: Summary{Expenses: 10},
			want:    Budget{CurrentSpending: 10, OverBudget: true},
		},
		{
			name:    "nothing",
			summary: Summary{},
			want:    Budget{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnalyzeBudget(tt.summary))
		})
	}
}

type mapResolver map[string]string

func (r mapResolver) Resolve(id string, _ model.CategoryType) model.CategoryRef {
	if name, ok := r[id]; ok {
		return model.CategoryRef{Name: name, Color: "bg-red-500"}
	}
	return model.UnknownCategory
}

func TestTopCategories(t *testing.T) {
	expenses := map[string]CategoryTotal{
		"food":      {Total: 500, Count: 5},
		"rent":      {Total: 300, Count: 1},
		"fun":       {Total: 100, Count: 2},
		"bills":     {Total: 50, Count: 1},
		"gifts":     {Total: 25, Count: 1},
		"misc":      {Total: 25, Count: 3},
		"transport": {Total: 0, Count: 0},
	}

	got := TopCategories(expenses, 1000, mapResolver{"food": "Food & Groceries"}, TopCategoryLimit)
	require.Len(t, got, 5)
	assert.Equal(t, TopCategory{CategoryID: "food", Name: "Food & Groceries", Color: "bg-red-500", Total: 500, Count: 5, Percentage: 50}, got[0])
	assert.Equal(t, "rent", got[1].CategoryID)
	assert.Equal(t, model.UnknownCategoryName, got[1].Name)
	assert.Equal(t, "gifts", got[4].CategoryID, "ties ordered by id")

	noResolver := TopCategories(expenses, 0, nil, 1)
	require.Len(t, noResolver, 1)
	assert.Equal(t, "food", noResolver[0].Name)
	assert.Zero(t, noResolver[0].Percentage)

	assert.Empty(t, TopCategories(nil, 0, nil, TopCategoryLimit))
}

func TestComputeMetrics(t *testing.T) {
	trend := []MonthTotals{
		{Income: 1200, Expenses: 600},
		{Income: 0, Expenses: 300},
		{Income: 600, Expenses: 0},
	}
	txns := []model.Transaction{
		txn(model.TypeIncome, "salary", "2024-01-01", 1000),
		txn(model.TypeExpense, "food", "2024-01-02", 200),
		txn(model.TypeExpense, "food", "2024-01-03", 300),
	}

	got := ComputeMetrics(txns, trend, 3)
	assert.Equal(t, Metrics{
		AvgMonthlyIncome:     600,
		AvgMonthlyExpenses:   300,
		AvgTransactionAmount: 500,
		AvgExpenseAmount:     250,
		TransactionFrequency: 1,
	}, got)

	assert.Equal(t, Metrics{}, ComputeMetrics(nil, nil, 0))
}

func TestHealthScore(t *testing.T) {
	oneIncome := Breakdown{Income: map[string]CategoryTotal{"salary": {Total: 1000, Count: 1}}}
	twoIncome := Breakdown{Income: map[string]CategoryTotal{
		"salary":    {Total: 1000, Count: 1},
		"freelance": {Total: 200, Count: 1},
	}}

	tests := []struct {
		name      string
		summary   Summary
		breakdown Breakdown
		trend     []MonthTotals
		want      int
	}{
		{
			name:      "healthy saver clamps at 100",
			summary:   Summary{Income: 1000, Expenses: 750, Balance: 250, SavingsRate: 25},
			breakdown: oneIncome,
			trend:     activeTrend(12),
			want:      100,
		},
		{
			name:      "modest savings",
			summary:   Summary{Income: 1000, Expenses: 850, Balance: 150, SavingsRate: 15},
			breakdown: oneIncome,
			trend:     append(activeTrend(11), MonthTotals{}),
			want:      50 + 20 + 10,
		},
		{
			name:      "diverse income with gaps",
			summary:   Summary{Income: 1200, Expenses: 1100, Balance: 100, SavingsRate: 100.0 / 12},
			breakdown: twoIncome,
			trend:     []MonthTotals{{}},
			want:      50 + 20 + 10,
		},
		{
			name:    "overspending",
			summary: Summary{Income: 1000, Expenses: 1500, Balance: -500, SavingsRate: -50},
			trend:   []MonthTotals{{}},
			want:    50,
		},
		{
			name:  "empty input",
			trend: make([]MonthTotals, 12),
			want:  65,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			budget := AnalyzeBudget(tt.summary)
			got := HealthScore(tt.summary, tt.breakdown, budget, tt.trend)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestInsights(t *testing.T) {
	t.Run("all rules fire in order", func(t *testing.T) {
		s := Summary{Income: 1000, Expenses: 950, Balance: 50, Count: 4, SavingsRate: 5}
		top := []TopCategory{{CategoryID: "rent", Name: "Rent/EMI", Percentage: 62.345}}

		got := Insights(s, AnalyzeBudget(s), top)
		require.Len(t, got, 3)
		assert.Equal(t, "Low Savings Rate", got[0].Title)
		assert.Equal(t, InsightWarning, got[0].Kind)
		assert.Equal(t, "Over Budget", got[1].Title)
		assert.Equal(t, Insight{
			Kind:    InsightInfo,
			Title:   "High Category Spending",
			Message: "Rent/EMI accounts for 62.3% of your expenses.",
		}, got[2])
	})

	t.Run("great savings", func(t *testing.T) {
		s := Summarize(scenario())
		got := Insights(s, AnalyzeBudget(s), []TopCategory{{Name: "Food", Percentage: 60}})
		require.Len(t, got, 2)
		assert.Equal(t, InsightInfo, got[0].Kind)
		assert.Equal(t, Insight{
			Kind:    InsightSuccess,
			Title:   "Great Savings!",
			Message: "You're maintaining excellent financial discipline.",
		}, got[1])
	})

	t.Run("empty input yields none", func(t *testing.T) {
		assert.Empty(t, Insights(Summary{}, Budget{}, nil))
	})
}

func TestBuildReport(t *testing.T) {
	now := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	txns := scenario()

	r := BuildReport(ReportInput{
		Now:                now,
		Resolver:           mapResolver{"food": "Food & Groceries", "rent": "Rent/EMI"},
		Period:             "all",
		PeriodTransactions: txns,
		AllTransactions:    txns,
		SpanMonths:         12,
	})

	assert.Equal(t, Summary{Income: 5000, Expenses: 2000, Balance: 3000, Count: 3, SavingsRate: 60}, r.Summary)
	require.Len(t, r.Trend, DefaultTrendMonths)
	assert.Equal(t, "2024-02", r.Trend[11].Month)
	assert.Equal(t, Up, r.Direction, "recent months net positive against an empty quarter")
	require.Len(t, r.TopCategories, 2)
	assert.Equal(t, "Food & Groceries", r.TopCategories[0].Name)
	assert.InDelta(t, 60.0, r.TopCategories[0].Percentage, 0.001)
	assert.False(t, r.Budget.OverBudget)
	// balance, savings > 20 and within budget; one income category and gaps in the trend
	assert.Equal(t, 50+20+15+15, r.HealthScore)
	assert.InDelta(t, 0.25, r.Metrics.TransactionFrequency, 0.0001)

	titles := make([]string, 0, len(r.Insights))
	for _, in := range r.Insights {
		titles = append(titles, in.Title)
	}
	assert.Equal(t, []string{"High Category Spending", "Great Savings!"}, titles)
}
