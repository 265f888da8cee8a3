package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/Veraticus/pocketbook/internal/model"
)

// Granularity is the bucket size used by GroupByPeriod.
type Granularity string

// Supported granularities.
const (
	Day     Granularity = "day"
	Week    Granularity = "week"
	Month   Granularity = "month"
	Quarter Granularity = "quarter"
	Year    Granularity = "year"
)

// Granularities lists every supported granularity.
var Granularities = []Granularity{Day, Week, Month, Quarter, Year}

// ParseGranularity validates a granularity name.
func ParseGranularity(s string) (Granularity, error) {
	for _, g := range Granularities {
		if Granularity(s) == g {
			return g, nil
		}
	}
	return "", fmt.Errorf("invalid granularity %q: must be day, week, month, quarter or year", s)
}

// PeriodKey returns the bucket key of d. Keys sort lexicographically in
// chronological order. Weeks start on Sunday. Unknown granularities fall back
// to month.
func PeriodKey(d model.Date, g Granularity) string {
	switch g {
	case Day:
		return d.String()
	case Week:
		return d.AddDays(-int(d.Weekday())).String()
	case Quarter:
		return fmt.Sprintf("%04d-Q%d", d.Year(), (int(d.Month())-1)/3+1)
	case Year:
		return fmt.Sprintf("%04d", d.Year())
	default:
		return d.Format("2006-01")
	}
}

// PeriodTotals is one bucket of a period grouping.
type PeriodTotals struct {
	Period   string `json:"period"`
	Income   int64  `json:"income"`
	Expenses int64  `json:"expenses"`
	Net      int64  `json:"net"`
}

// GroupByPeriod buckets transactions by g, ascending by period key. Only
// periods that contain transactions are returned.
func GroupByPeriod(transactions []model.Transaction, g Granularity) []PeriodTotals {
	buckets := make(map[string]*PeriodTotals)
	for _, txn := range transactions {
		key := PeriodKey(txn.Date, g)
		b, ok := buckets[key]
		if !ok {
			b = &PeriodTotals{Period: key}
			buckets[key] = b
		}
		switch txn.Type {
		case model.TypeIncome:
			b.Income += txn.Amount
		case model.TypeExpense:
			b.Expenses += txn.Amount
		}
		b.Net = b.Income - b.Expenses
	}

	out := make([]PeriodTotals, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Period < out[j].Period
	})
	return out
}

// DefaultTrendMonths is the length of the trailing trend window.
const DefaultTrendMonths = 12

// MonthTotals is one month of a trailing trend.
type MonthTotals struct {
	Month    string `json:"month"`
	Income   int64  `json:"income"`
	Expenses int64  `json:"expenses"`
	Balance  int64  `json:"balance"`
	Count    int    `json:"count"`
}

// MonthlyTrend returns one entry per calendar month for the months trailing
// up to and including the month of now, oldest first. Months without
// transactions are zero-filled. A non-positive months uses the default window.
func MonthlyTrend(transactions []model.Transaction, months int, now time.Time) []MonthTotals {
	if months <= 0 {
		months = DefaultTrendMonths
	}

	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	trend := make([]MonthTotals, months)
	index := make(map[string]int, months)
	for i := range trend {
		key := current.AddDate(0, i-months+1, 0).Format("2006-01")
		trend[i].Month = key
		index[key] = i
	}

	for _, txn := range transactions {
		i, ok := index[PeriodKey(txn.Date, Month)]
		if !ok {
			continue
		}
		m := &trend[i]
		switch txn.Type {
		case model.TypeIncome:
			m.Income += txn.Amount
		case model.TypeExpense:
			m.Expenses += txn.Amount
		}
		m.Balance = m.Income - m.Expenses
		m.Count++
	}
	return trend
}

// Direction summarises recent movement of net totals.
type Direction string

// Trend directions.
const (
	Up      Direction = "up"
	Down    Direction = "down"
	Neutral Direction = "neutral"
)

// TrendDirection compares the mean net of the last three periods with the
// mean of the three before them. Fewer than six periods is neutral.
func TrendDirection(periods []PeriodTotals) Direction {
	if len(periods) < 6 {
		return Neutral
	}

	n := len(periods)
	recent := meanNet(periods[n-3:])
	older := meanNet(periods[n-6 : n-3])

	switch {
	case recent > older*1.1:
		return Up
	case recent < older*0.9:
		return Down
	default:
		return Neutral
	}
}

// Periods adapts a monthly trend for TrendDirection.
func Periods(trend []MonthTotals) []PeriodTotals {
	out := make([]PeriodTotals, len(trend))
	for i, m := range trend {
		out[i] = PeriodTotals{Period: m.Month, Income: m.Income, Expenses: m.Expenses, Net: m.Balance}
	}
	return out
}

func meanNet(periods []PeriodTotals) float64 {
	var sum int64
	for _, p := range periods {
		sum += p.Net
	}
	return float64(sum) / float64(len(periods))
}
