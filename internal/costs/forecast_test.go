package costs

import (
	"testing"
	"time"
)

// TestEndOfMonth tests last-day computation across month lengths and leap years
func TestEndOfMonth(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"january", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), "2024-01-31"},
		{"february leap year", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "2024-02-29"},
		{"february non-leap year", time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), "2023-02-28"},
		{"april (30 days)", time.Date(2024, 4, 30, 23, 59, 59, 0, time.UTC), "2024-04-30"},
		{"december (year boundary)", time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC), "2024-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EndOfMonth(tt.in).String(); got != tt.want {
				t.Errorf("EndOfMonth(%s): got %s, want %s", tt.in.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

// TestLinearEstimate tests the linear extrapolation and rounding
func TestLinearEstimate(t *testing.T) {
	tests := []struct {
		name        string
		actual      float64
		daysElapsed int
		daysInMonth int
		want        float64
	}{
		{"mid-month doubling", 150, 15, 30, 300.00},
		{"full month elapsed", 100, 31, 31, 100.00},
		{"first day", 10, 1, 31, 310.00},
		{"rounded to cents", 100, 3, 31, 1033.33},
		{"zero spend", 0, 15, 30, 0},
		{"zero days elapsed guard", 150, 0, 30, 0},
		{"negative days elapsed guard", 150, -1, 30, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LinearEstimate(tt.actual, tt.daysElapsed, tt.daysInMonth)
			if got != tt.want {
				t.Errorf("LinearEstimate(%v, %d, %d): got %v, want %v",
					tt.actual, tt.daysElapsed, tt.daysInMonth, got, tt.want)
			}
		})
	}
}
