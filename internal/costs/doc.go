// Package costs implements the cost query pipeline: result models,
// aggregation of raw Cost Management rows, a linear month-end forecast, and
// the orchestrating Service.
//
// The pipeline for each consumer call is: cache check, (on miss) one or two
// upstream queries through a QueryExecutor, aggregation into a structured
// result, cache store. Results are cached per logical query key
// ("costs_{days}", "forecast") with a shared TTL.
//
// Row parsing is positional: the shape of each row depends on the grouping
// and granularity of the query that produced it (service-grouped rows are
// [cost, serviceName, currency?], daily rows are [cost, date, currency?],
// month-to-date rows are [cost]). Unexpected shapes fail fast so provider
// schema changes surface as errors instead of silently wrong numbers; only
// a missing trailing currency is defaulted (to USD).
//
// The forecast is a plain linear extrapolation of month-to-date spend and
// carries no seasonality or trend correction.
package costs
