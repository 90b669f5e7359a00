package shared

import "time"

// Period types accepted by report requests.
const (
	PeriodDaily     = "daily"
	PeriodWeekly    = "weekly"
	PeriodMonthly   = "monthly"
	PeriodQuarterly = "quarterly"
	PeriodYearly    = "yearly"
	PeriodCustom    = "custom"
)

// Period is a resolved half-open reporting window [Start, End].
type Period struct {
	Start time.Time
	End   time.Time
}

// Days returns the period length in whole days, never less than 1.
func (p Period) Days() int {
	days := int(p.End.Sub(p.Start).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// Previous returns the same-length window immediately before this one.
func (p Period) Previous() Period {
	length := p.End.Sub(p.Start)
	return Period{Start: p.Start.Add(-length), End: p.Start}
}

// ResolvePeriod maps a period type onto a concrete window ending at now.
// Custom periods pass their explicit dates through unchanged; validation of
// those dates happens at the request boundary.
func ResolvePeriod(periodType string, start, end, now time.Time) (Period, error) {
	switch periodType {
	case PeriodDaily:
		return Period{Start: now.AddDate(0, 0, -1), End: now}, nil
	case PeriodWeekly:
		return Period{Start: now.AddDate(0, 0, -7), End: now}, nil
	case PeriodMonthly:
		return Period{Start: now.AddDate(0, -1, 0), End: now}, nil
	case PeriodQuarterly:
		return Period{Start: now.AddDate(0, -3, 0), End: now}, nil
	case PeriodYearly:
		return Period{Start: now.AddDate(-1, 0, 0), End: now}, nil
	case PeriodCustom:
		if start.IsZero() || end.IsZero() {
			return Period{}, InvalidConfigf("custom period requires start and end dates")
		}
		if !end.After(start) {
			return Period{}, InvalidConfigf("period end %s is not after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
		}
		return Period{Start: start, End: end}, nil
	default:
		return Period{}, InvalidConfigf("unknown period type %q", periodType)
	}
}
