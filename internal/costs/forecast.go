package costs

import (
	"math"
	"time"
)

// EndOfMonth returns the last calendar day of t's month.
// Day 28 exists in every month, so 28 + 4 days always lands in the next
// month; truncating that to its month start minus one day gives the final
// day regardless of month length or leap years.
func EndOfMonth(t time.Time) Date {
	next := time.Date(t.Year(), t.Month(), 28, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 4)
	last := time.Date(next.Year(), next.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return DateOf(last)
}

// LinearEstimate extrapolates month-to-date spend linearly to a full-month
// total, rounded to two decimal places. This is a first-order model: it
// assumes a constant daily burn rate and applies no seasonality or trend
// correction, so consumers should treat the result as a rough projection.
// daysElapsed <= 0 cannot occur for a valid calendar date but is guarded
// against division by zero.
func LinearEstimate(actual float64, daysElapsed, daysInMonth int) float64 {
	if daysElapsed <= 0 {
		return 0
	}
	estimate := actual / float64(daysElapsed) * float64(daysInMonth)
	return math.Round(estimate*100) / 100
}
