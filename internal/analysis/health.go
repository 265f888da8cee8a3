package analysis

import (
	"fmt"
	"sort"

	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/service"
)

// RecommendedSpendShare is the share of income expenses should stay within.
const RecommendedSpendShare = 0.8

// Budget compares spending against the recommended share of income.
type Budget struct {
	CurrentSpending   int64   `json:"currentSpending"`
	RecommendedBudget float64 `json:"recommendedBudget"`
	Utilization       float64 `json:"budgetUtilization"`
	OverBudget        bool    `json:"isOverBudget"`
}

// AnalyzeBudget derives the budget position from a summary.
func AnalyzeBudget(s Summary) Budget {
	recommended := float64(s.Income) * RecommendedSpendShare
	b := Budget{
		CurrentSpending:   s.Expenses,
		RecommendedBudget: recommended,
		OverBudget:        float64(s.Expenses) > recommended,
	}
	if recommended > 0 {
		b.Utilization = float64(s.Expenses) / recommended * 100
	}
	return b
}

// TopCategoryLimit is how many expense categories TopCategories returns.
const TopCategoryLimit = 5

// TopCategory is an expense category ranked by total spend.
type TopCategory struct {
	CategoryID string  `json:"categoryId"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Total      int64   `json:"total"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TopCategories ranks expense categories by total, largest first, keeping at
// most limit entries. Ties are ordered by category id. Names are resolved
// through resolver when one is given.
func TopCategories(expenses map[string]CategoryTotal, totalExpenses int64, resolver service.CategoryResolver, limit int) []TopCategory {
	out := make([]TopCategory, 0, len(expenses))
	for id, g := range expenses {
		top := TopCategory{CategoryID: id, Name: id, Total: g.Total, Count: g.Count}
		if totalExpenses > 0 {
			top.Percentage = float64(g.Total) / float64(totalExpenses) * 100
		}
		if resolver != nil {
			ref := resolver.Resolve(id, model.CategoryTypeExpense)
			top.Name, top.Color = ref.Name, ref.Color
		}
		out = append(out, top)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Metrics are per-month and per-transaction averages.
type Metrics struct {
	AvgMonthlyIncome     float64 `json:"avgMonthlyIncome"`
	AvgMonthlyExpenses   float64 `json:"avgMonthlyExpenses"`
	AvgTransactionAmount float64 `json:"avgTransactionAmount"`
	AvgExpenseAmount     float64 `json:"avgExpenseAmount"`
	TransactionFrequency float64 `json:"transactionFrequency"`
}

// ComputeMetrics averages the trend per month and the transactions per
// record. Frequency is transactions per month over spanMonths.
func ComputeMetrics(transactions []model.Transaction, trend []MonthTotals, spanMonths int) Metrics {
	var m Metrics

	if len(trend) > 0 {
		var income, expenses int64
		for _, month := range trend {
			income += month.Income
			expenses += month.Expenses
		}
		m.AvgMonthlyIncome = float64(income) / float64(len(trend))
		m.AvgMonthlyExpenses = float64(expenses) / float64(len(trend))
	}

	var total, expenseTotal int64
	var expenseCount int
	for _, txn := range transactions {
		total += txn.Amount
		if txn.Type == model.TypeExpense {
			expenseTotal += txn.Amount
			expenseCount++
		}
	}
	if len(transactions) > 0 {
		m.AvgTransactionAmount = float64(total) / float64(len(transactions))
	}
	if expenseCount > 0 {
		m.AvgExpenseAmount = float64(expenseTotal) / float64(expenseCount)
	}
	if spanMonths > 0 {
		m.TransactionFrequency = float64(len(transactions)) / float64(spanMonths)
	}
	return m
}

// Health score weights.
const (
	baseScore          = 50
	positiveBalancePts = 20
	highSavingsPts     = 15
	modestSavingsPts   = 10
	diverseIncomePts   = 10
	withinBudgetPts    = 15
	regularActivityPts = 10
)

// HealthScore rates overall financial health from 0 to 100.
func HealthScore(s Summary, breakdown Breakdown, budget Budget, trend []MonthTotals) int {
	score := baseScore

	if s.Balance > 0 {
		score += positiveBalancePts
	}

	switch {
	case s.SavingsRate > 20:
		score += highSavingsPts
	case s.SavingsRate > 10:
		score += modestSavingsPts
	}

	if len(breakdown.Income) > 1 {
		score += diverseIncomePts
	}

	if !budget.OverBudget {
		score += withinBudgetPts
	}

	if everyMonthActive(trend) {
		score += regularActivityPts
	}

	return clamp(score, 0, 100)
}

func everyMonthActive(trend []MonthTotals) bool {
	for _, m := range trend {
		if m.Count == 0 {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// InsightKind classifies an insight for display.
type InsightKind string

// Insight kinds.
const (
	InsightWarning InsightKind = "warning"
	InsightInfo    InsightKind = "info"
	InsightSuccess InsightKind = "success"
)

// Insight is a short observation about the finances.
type Insight struct {
	Kind    InsightKind `json:"type"`
	Title   string      `json:"title"`
	Message string      `json:"message"`
}

// Insight thresholds.
const (
	LowSavingsRate       = 10.0
	DominantCategoryPct  = 40.0
	GreatSavingsFraction = 0.3
)

// Insights evaluates every rule in a fixed order and returns all that match.
// A summary without transactions yields none.
func Insights(s Summary, budget Budget, top []TopCategory) []Insight {
	var out []Insight
	if s.Count == 0 {
		return out
	}

	if s.SavingsRate < LowSavingsRate {
		out = append(out, Insight{
			Kind:    InsightWarning,
			Title:   "Low Savings Rate",
			Message: "Consider reducing expenses or increasing income to improve your savings rate.",
		})
	}

	if budget.OverBudget {
		out = append(out, Insight{
			Kind:    InsightWarning,
			Title:   "Over Budget",
			Message: "You're spending more than recommended. Review your expenses.",
		})
	}

	if len(top) > 0 && top[0].Percentage > DominantCategoryPct {
		out = append(out, Insight{
			Kind:    InsightInfo,
			Title:   "High Category Spending",
			Message: fmt.Sprintf("%s accounts for %.1f%% of your expenses.", top[0].Name, top[0].Percentage),
		})
	}

	if float64(s.Balance) > float64(s.Income)*GreatSavingsFraction {
		out = append(out, Insight{
			Kind:    InsightSuccess,
			Title:   "Great Savings!",
			Message: "You're maintaining excellent financial discipline.",
		})
	}

	return out
}
