package costs

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultCurrency is used when the API omits a currency column
const DefaultCurrency = "USD"

const dateLayout = "2006-01-02"

// Date is a calendar day. It marshals to and from "YYYY-MM-DD" JSON strings.
type Date struct {
	time.Time
}

// NewDate creates a Date for the given calendar day (UTC)
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a "YYYY-MM-DD" string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Before reports whether d falls before other
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// CostByService is the aggregated cost of a single Azure service over the
// requested period
type CostByService struct {
	ServiceName string  `json:"service_name"`
	Cost        float64 `json:"cost"`
	Currency    string  `json:"currency"`
}

// DailyCost is the total cost accrued on one calendar day
type DailyCost struct {
	Date     Date    `json:"date"`
	Cost     float64 `json:"cost"`
	Currency string  `json:"currency"`
}

// CostSummary is the service-level and daily breakdown of spend over a
// period. TotalCost always equals the sum of CostsByService costs; it is not
// reconciled against DailyCosts, which come from a separate query and may
// diverge slightly due to provider-side rounding.
type CostSummary struct {
	SubscriptionID   string          `json:"subscription_id"`
	SubscriptionName string          `json:"subscription_name"`
	PeriodStart      Date            `json:"period_start"`
	PeriodEnd        Date            `json:"period_end"`
	TotalCost        float64         `json:"total_cost"`
	Currency         string          `json:"currency"`
	CostsByService   []CostByService `json:"costs_by_service"`
	DailyCosts       []DailyCost     `json:"daily_costs"`
}

// CostForecast is a linear extrapolation of month-to-date spend to the end
// of the current month. EstimatedTotal is an estimate, not an actual.
type CostForecast struct {
	SubscriptionID    string  `json:"subscription_id"`
	ForecastPeriodEnd Date    `json:"forecast_period_end"`
	EstimatedTotal    float64 `json:"estimated_total"`
	Currency          string  `json:"currency"`
}
