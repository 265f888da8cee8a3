package filter

import (
	"fmt"
	"time"

	"github.com/Veraticus/pocketbook/internal/model"
	"github.com/Veraticus/pocketbook/internal/service"
)

// Period is a named trailing date range ending today.
type Period string

// Period presets.
const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
	PeriodYTD     Period = "ytd"
	PeriodAll     Period = "all"
)

// Periods lists the presets accepted by ParsePeriod.
var Periods = []Period{PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear, PeriodYTD, PeriodAll}

// ParsePeriod validates a preset name.
func ParsePeriod(s string) (Period, error) {
	for _, p := range Periods {
		if Period(s) == p {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid period %q: must be week, month, quarter, year, ytd or all", s)
}

// RangeFor returns the inclusive range covered by period on the day of now.
// PeriodAll is unbounded; an unrecognised period covers the last 30 days.
func RangeFor(period Period, now time.Time) service.DateRange {
	today := model.DateOf(now)

	var start model.Date
	switch period {
	case PeriodAll:
		return service.DateRange{}
	case PeriodWeek:
		start = today.AddDays(-7)
	case PeriodMonth:
		start = model.Date{Time: today.AddDate(0, -1, 0)}
	case PeriodQuarter:
		start = model.Date{Time: today.AddDate(0, -3, 0)}
	case PeriodYear:
		start = model.Date{Time: today.AddDate(-1, 0, 0)}
	case PeriodYTD:
		start = model.NewDate(today.Year(), time.January, 1)
	default:
		start = today.AddDays(-30)
	}
	return service.DateRange{Start: start, End: today}
}

// WithPeriod returns a copy of s bounded to period.
func (s Spec) WithPeriod(period Period, now time.Time) Spec {
	r := RangeFor(period, now)
	s.DateFrom = r.Start
	s.DateTo = r.End
	return s
}
