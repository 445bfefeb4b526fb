package costs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// ServiceBreakdown converts service-grouped query rows into per-service cost
// entries sorted by cost descending (stable, so ties keep API order), plus
// the exact total across all rows.
//
// Rows have the positional shape [cost, serviceName, currency?]; a missing
// trailing currency defaults to USD, but any other shape violation is a
// provider schema change and fails fast.
func ServiceBreakdown(rows [][]any) ([]CostByService, float64, error) {
	breakdown := make([]CostByService, 0, len(rows))

	for i, row := range rows {
		if len(row) < 2 {
			return nil, 0, fmt.Errorf("service row %d: want at least 2 fields, got %d", i, len(row))
		}

		cost, err := cellCost(row[0])
		if err != nil {
			return nil, 0, fmt.Errorf("service row %d: %w", i, err)
		}

		name, ok := row[1].(string)
		if !ok {
			return nil, 0, fmt.Errorf("service row %d: service name is %T, want string", i, row[1])
		}

		breakdown = append(breakdown, CostByService{
			ServiceName: name,
			Cost:        cost,
			Currency:    cellCurrency(row, 2),
		})
	}

	total := lo.SumBy(breakdown, func(c CostByService) float64 { return c.Cost })

	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Cost > breakdown[j].Cost
	})

	return breakdown, total, nil
}

// DailyBreakdown converts daily-granularity query rows into per-day cost
// entries sorted by date ascending (stable).
//
// Rows have the positional shape [cost, date, currency?]. The date cell
// arrives either as an 8-digit YYYYMMDD number or as an ISO-8601
// date/datetime string.
func DailyBreakdown(rows [][]any) ([]DailyCost, error) {
	daily := make([]DailyCost, 0, len(rows))

	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("daily row %d: want at least 2 fields, got %d", i, len(row))
		}

		cost, err := cellCost(row[0])
		if err != nil {
			return nil, fmt.Errorf("daily row %d: %w", i, err)
		}

		day, err := cellDate(row[1])
		if err != nil {
			return nil, fmt.Errorf("daily row %d: %w", i, err)
		}

		daily = append(daily, DailyCost{
			Date:     day,
			Cost:     cost,
			Currency: cellCurrency(row, 2),
		})
	}

	sort.SliceStable(daily, func(i, j int) bool {
		return daily[i].Date.Before(daily[j].Date)
	})

	return daily, nil
}

// MonthToDateTotal extracts the single aggregated cost from a month-to-date
// query. An empty dataset (including a degraded empty response) is zero
// spend, not an error.
func MonthToDateTotal(rows [][]any) (float64, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	cost, err := cellCost(rows[0][0])
	if err != nil {
		return 0, fmt.Errorf("month-to-date row: %w", err)
	}
	return cost, nil
}

// cellCost coerces a cost cell to float64. JSON decoding yields float64;
// int variants appear in hand-built fixtures.
func cellCost(v any) (float64, error) {
	switch c := v.(type) {
	case float64:
		return c, nil
	case int:
		return float64(c), nil
	case int64:
		return float64(c), nil
	default:
		return 0, fmt.Errorf("cost is %T, want number", v)
	}
}

// cellCurrency reads the optional trailing currency column, defaulting to USD
func cellCurrency(row []any, idx int) string {
	if len(row) > idx {
		if cur, ok := row[idx].(string); ok && cur != "" {
			return cur
		}
	}
	return DefaultCurrency
}

// cellDate normalizes a date cell. The API encodes dates either as an
// 8-digit YYYYMMDD number or as an ISO-8601 date/datetime string, of which
// only the first 10 characters are significant.
func cellDate(v any) (Date, error) {
	switch d := v.(type) {
	case float64:
		return parseNumericDate(int64(d))
	case int:
		return parseNumericDate(int64(d))
	case int64:
		return parseNumericDate(d)
	case string:
		return parseStringDate(d)
	default:
		return Date{}, fmt.Errorf("date is %T, want number or string", v)
	}
}

func parseNumericDate(n int64) (Date, error) {
	s := strconv.FormatInt(n, 10)
	if len(s) != 8 {
		return Date{}, fmt.Errorf("numeric date %d is not YYYYMMDD", n)
	}
	return ParseDate(s[:4] + "-" + s[4:6] + "-" + s[6:8])
}

func parseStringDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) < len("2006-01-02") {
		return Date{}, fmt.Errorf("date string %q too short", s)
	}
	return ParseDate(s[:len("2006-01-02")])
}
