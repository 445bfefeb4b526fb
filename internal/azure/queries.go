package azure

import (
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
)

// granularityNone requests pre-aggregated totals with no time dimension.
// The SDK only declares the Daily constant.
var granularityNone = armcostmanagement.GranularityType("None")

// ServiceBreakdownQuery builds an actual-cost query over [start, end] grouped
// by service name. Response rows have the shape [cost, serviceName, currency?].
func ServiceBreakdownQuery(start, end time.Time) armcostmanagement.QueryDefinition {
	return armcostmanagement.QueryDefinition{
		Type:      to.Ptr(armcostmanagement.ExportTypeActualCost),
		Timeframe: to.Ptr(armcostmanagement.TimeframeTypeCustom),
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: to.Ptr(dayStart(start)),
			To:   to.Ptr(dayStart(end)),
		},
		Dataset: &armcostmanagement.QueryDataset{
			Granularity: to.Ptr(granularityNone),
			Aggregation: totalCostAggregation(),
			Grouping: []*armcostmanagement.QueryGrouping{
				{
					Type: to.Ptr(armcostmanagement.QueryColumnTypeDimension),
					Name: to.Ptr("ServiceName"),
				},
			},
		},
	}
}

// DailyCostQuery builds an actual-cost query over [start, end] at daily
// granularity. Response rows have the shape [cost, date, currency?].
func DailyCostQuery(start, end time.Time) armcostmanagement.QueryDefinition {
	return armcostmanagement.QueryDefinition{
		Type:      to.Ptr(armcostmanagement.ExportTypeActualCost),
		Timeframe: to.Ptr(armcostmanagement.TimeframeTypeCustom),
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: to.Ptr(dayStart(start)),
			To:   to.Ptr(dayStart(end)),
		},
		Dataset: &armcostmanagement.QueryDataset{
			Granularity: to.Ptr(armcostmanagement.GranularityTypeDaily),
			Aggregation: totalCostAggregation(),
		},
	}
}

// MonthToDateQuery builds an actual-cost query for the current billing
// period. Response rows have the shape [cost].
func MonthToDateQuery() armcostmanagement.QueryDefinition {
	return armcostmanagement.QueryDefinition{
		Type:      to.Ptr(armcostmanagement.ExportTypeActualCost),
		Timeframe: to.Ptr(armcostmanagement.TimeframeTypeMonthToDate),
		Dataset: &armcostmanagement.QueryDataset{
			Granularity: to.Ptr(granularityNone),
			Aggregation: totalCostAggregation(),
		},
	}
}

func totalCostAggregation() map[string]*armcostmanagement.QueryAggregation {
	return map[string]*armcostmanagement.QueryAggregation{
		"totalCost": {
			Name:     to.Ptr("Cost"),
			Function: to.Ptr(armcostmanagement.FunctionTypeSum),
		},
	}
}

// dayStart truncates t to the beginning of its day in UTC
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
