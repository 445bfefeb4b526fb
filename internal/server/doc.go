// Package server provides the HTTP API for cost summaries and forecasts.
//
// Available endpoints:
//   - /                            : Service and endpoint index
//   - /health                      : Liveness probe with build version
//   - /api/v1/costs?days=N         : Cost summary for the last N days (default 30)
//   - /api/v1/costs/forecast       : Estimated end-of-month spend
//   - /api/v1/costs/current-month  : Cost summary for the current billing period
//   - /metrics                     : Prometheus metrics endpoint
//
// All endpoints are GET-only and respond with JSON. Invalid input yields
// 400, upstream failures 500, both with a {"detail": "..."} body.
//
// The server is configured with sensible timeout defaults and supports
// graceful shutdown:
//
//	srv := server.NewServer(cfg, costService, registry, log)
//
//	serverErrors := make(chan error, 1)
//	go func() {
//		serverErrors <- srv.Start()
//	}()
//
//	// ... on shutdown signal:
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//	if err := srv.Shutdown(ctx); err != nil {
//		log.Error("Error during shutdown", "error", err)
//	}
package server
