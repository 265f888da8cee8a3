package engine

import (
	"github.com/Veraticus/pocketbook/internal/analysis"
	"github.com/Veraticus/pocketbook/internal/category"
	"github.com/Veraticus/pocketbook/internal/filter"
	"github.com/Veraticus/pocketbook/internal/model"
)

// Summary totals the transactions selected by spec.
func (l *Ledger) Summary(spec filter.Spec) analysis.Summary {
	return analysis.Summarize(l.ListTransactions(spec))
}

// CategoryBreakdown totals the selected transactions per category id.
func (l *Ledger) CategoryBreakdown(spec filter.Spec) map[string]analysis.CategoryTotal {
	return analysis.GroupByCategory(l.ListTransactions(spec))
}

// TypeBreakdown totals the selected transactions per category, split by type.
func (l *Ledger) TypeBreakdown(spec filter.Spec) analysis.Breakdown {
	return analysis.BreakdownByType(l.ListTransactions(spec))
}

// Trend buckets the selected transactions by calendar period.
func (l *Ledger) Trend(g analysis.Granularity, spec filter.Spec) []analysis.PeriodTotals {
	return analysis.GroupByPeriod(l.ListTransactions(spec), g)
}

// MonthlyTrend returns the zero-filled trailing monthly totals ending this month.
func (l *Ledger) MonthlyTrend(months int) []analysis.MonthTotals {
	return analysis.MonthlyTrend(l.transactions.All(), months, l.now())
}

// Report builds the analytics report for a reporting period. The trend
// always covers the trailing window regardless of period.
func (l *Ledger) Report(period filter.Period) *analysis.Report {
	now := l.now()
	r := filter.RangeFor(period, now)

	all := l.transactions.All()
	inPeriod := make([]model.Transaction, 0, len(all))
	for _, txn := range all {
		if r.Contains(txn.Date) {
			inPeriod = append(inPeriod, txn)
		}
	}

	span := 1
	if period == filter.PeriodAll {
		span = l.trendMonths
	}

	return analysis.BuildReport(analysis.ReportInput{
		Now:                now,
		Resolver:           l.categories,
		Period:             string(period),
		PeriodTransactions: inPeriod,
		AllTransactions:    all,
		TrendMonths:        l.trendMonths,
		SpanMonths:         span,
	})
}

// CategoryStats returns per-category usage across all transactions.
func (l *Ledger) CategoryStats() []category.Stat {
	return l.categories.Stats(l.transactions.All())
}
