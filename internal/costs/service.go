package costs

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"

	azquery "github.com/convergio/azure-cost-api/internal/azure"
	"github.com/convergio/azure-cost-api/internal/cache"
	"github.com/convergio/azure-cost-api/internal/clock"
	"github.com/convergio/azure-cost-api/internal/config"
	"github.com/convergio/azure-cost-api/internal/logger"
	"github.com/convergio/azure-cost-api/internal/metrics"
)

// Summary lookback bounds
const (
	MinDays = 1
	MaxDays = 365
)

const forecastCacheKey = "forecast"

// QueryExecutor issues cost queries against the billing API
type QueryExecutor interface {
	Query(ctx context.Context, def armcostmanagement.QueryDefinition) (armcostmanagement.QueryResult, error)
}

// Verify that the Azure query client satisfies QueryExecutor
var _ QueryExecutor = (*azquery.QueryClient)(nil)

// Service orchestrates the cost query pipeline: cache check, upstream
// queries, aggregation and forecasting. Results are cached per logical query
// key for the configured TTL; concurrent misses for the same key may each
// run the pipeline (a benign stampede, the end state converges).
type Service struct {
	cfg      *config.Config
	executor QueryExecutor
	clock    clock.Clock // Time provider for testing
	logger   *logger.Logger
	metrics  *metrics.Metrics

	summaries *cache.Cache[CostSummary]
	forecasts *cache.Cache[CostForecast]
}

// NewService creates a cost service backed by executor
func NewService(cfg *config.Config, executor QueryExecutor, log *logger.Logger, m *metrics.Metrics) *Service {
	ttl := time.Duration(cfg.CacheTTL) * time.Second
	return &Service{
		cfg:       cfg,
		executor:  executor,
		clock:     clock.RealClock{}, // Use real system time by default
		logger:    log,
		metrics:   m,
		summaries: cache.New[CostSummary](ttl),
		forecasts: cache.New[CostForecast](ttl),
	}
}

// GetCostSummary returns the service and daily cost breakdown for the last
// days days. days must be within [1, 365].
func (s *Service) GetCostSummary(ctx context.Context, days int) (CostSummary, error) {
	if days < MinDays || days > MaxDays {
		return CostSummary{}, fmt.Errorf("days must be between %d and %d, got %d", MinDays, MaxDays, days)
	}

	key := fmt.Sprintf("costs_%d", days)
	if summary, ok := s.summaries.Get(key); ok {
		s.metrics.CacheHits.WithLabelValues(key).Inc()
		return summary, nil
	}
	s.metrics.CacheMisses.WithLabelValues(key).Inc()

	now := s.clock.Now()
	end := now
	start := now.AddDate(0, 0, -days)

	serviceResult, err := s.executor.Query(ctx, azquery.ServiceBreakdownQuery(start, end))
	if err != nil {
		return CostSummary{}, fmt.Errorf("query service costs: %w", err)
	}

	dailyResult, err := s.executor.Query(ctx, azquery.DailyCostQuery(start, end))
	if err != nil {
		return CostSummary{}, fmt.Errorf("query daily costs: %w", err)
	}

	byService, total, err := ServiceBreakdown(resultRows(serviceResult))
	if err != nil {
		return CostSummary{}, fmt.Errorf("parse service costs: %w", err)
	}

	daily, err := DailyBreakdown(resultRows(dailyResult))
	if err != nil {
		return CostSummary{}, fmt.Errorf("parse daily costs: %w", err)
	}

	summary := CostSummary{
		SubscriptionID:   s.cfg.Subscription.ID,
		SubscriptionName: s.cfg.Subscription.Name,
		PeriodStart:      DateOf(start),
		PeriodEnd:        DateOf(end),
		TotalCost:        total,
		Currency:         summaryCurrency(byService),
		CostsByService:   byService,
		DailyCosts:       daily,
	}

	s.summaries.Set(key, summary)
	s.logger.Info("Cost summary refreshed",
		"days", days,
		"services", len(byService),
		"total_cost", total)

	return summary, nil
}

// GetForecast returns a linear end-of-month spend estimate based on
// month-to-date actuals.
func (s *Service) GetForecast(ctx context.Context) (CostForecast, error) {
	if forecast, ok := s.forecasts.Get(forecastCacheKey); ok {
		s.metrics.CacheHits.WithLabelValues(forecastCacheKey).Inc()
		return forecast, nil
	}
	s.metrics.CacheMisses.WithLabelValues(forecastCacheKey).Inc()

	result, err := s.executor.Query(ctx, azquery.MonthToDateQuery())
	if err != nil {
		return CostForecast{}, fmt.Errorf("query month-to-date costs: %w", err)
	}

	actual, err := MonthToDateTotal(resultRows(result))
	if err != nil {
		return CostForecast{}, fmt.Errorf("parse month-to-date costs: %w", err)
	}

	today := s.clock.Now()
	periodEnd := EndOfMonth(today)

	forecast := CostForecast{
		SubscriptionID:    s.cfg.Subscription.ID,
		ForecastPeriodEnd: periodEnd,
		EstimatedTotal:    LinearEstimate(actual, today.Day(), periodEnd.Day()),
		Currency:          DefaultCurrency,
	}

	s.forecasts.Set(forecastCacheKey, forecast)
	s.logger.Info("Cost forecast refreshed",
		"month_to_date", actual,
		"estimated_total", forecast.EstimatedTotal)

	return forecast, nil
}

// GetCurrentMonthCosts returns the cost summary for the current billing
// period, i.e. from the first of the month through today.
func (s *Service) GetCurrentMonthCosts(ctx context.Context) (CostSummary, error) {
	return s.GetCostSummary(ctx, s.clock.Now().Day())
}

// resultRows unwraps the row set of a query result; a degraded empty result
// has nil properties and yields no rows
func resultRows(result armcostmanagement.QueryResult) [][]any {
	if result.Properties == nil {
		return nil
	}
	return result.Properties.Rows
}

// summaryCurrency picks the summary-level currency from the breakdown.
// Rows within a subscription share one billing currency.
func summaryCurrency(byService []CostByService) string {
	if len(byService) > 0 {
		return byService[0].Currency
	}
	return DefaultCurrency
}
