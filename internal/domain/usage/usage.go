package usage

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod converts a query value into a Period. Empty defaults to day.
func ParsePeriod(s string) (Period, bool) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, true
	case PeriodMonth:
		return PeriodMonth, true
	default:
		return "", false
	}
}

// Report is a generation token usage report for one period.
type Report struct {
	period      Period
	periodStart int64
	periodEnd   int64
	provider    string
	used        int64
	limit       int64
	remaining   int64
}

// NewReport creates a usage report. limit == 0 means unlimited; remaining is -1 in that case.
func NewReport(period Period, start, end int64, provider string, used, limit, remaining int64) Report {
	return Report{
		period:      period,
		periodStart: start,
		periodEnd:   end,
		provider:    provider,
		used:        used,
		limit:       limit,
		remaining:   remaining,
	}
}

// Period returns the aggregation granularity.
func (r *Report) Period() Period { return r.period }

// PeriodStart returns the period start timestamp (unix millis).
func (r *Report) PeriodStart() int64 { return r.periodStart }

// PeriodEnd returns the period end timestamp (unix millis); the budget resets at this moment.
func (r *Report) PeriodEnd() int64 { return r.periodEnd }

// Provider returns the generation provider name.
func (r *Report) Provider() string { return r.provider }

// Used returns tokens consumed in the period.
func (r *Report) Used() int64 { return r.used }

// Limit returns the token cap (0 = unlimited).
func (r *Report) Limit() int64 { return r.limit }

// Remaining returns tokens left (-1 = unlimited).
func (r *Report) Remaining() int64 { return r.remaining }

// Exhausted reports whether a finite budget has run out.
func (r *Report) Exhausted() bool { return r.limit > 0 && r.remaining <= 0 }
