// Package azure provides the Cost Management API client used by the cost
// service.
//
// The package has three parts:
//   - TokenSource / CredentialTokenSource: bearer token acquisition via
//     azidentity, with expiry-aware caching and proactive refresh
//   - QueryClient: authenticated POSTs to the Cost Management query endpoint
//     with bounded, Retry-After-driven retry of 429 responses
//   - Query builders: the three query bodies the cost service needs
//     (service breakdown, daily costs, month-to-date total)
//
// Queries are expressed with the armcostmanagement request and response
// models, but the client issues the HTTP call itself rather than going
// through the SDK pipeline: the service's throttling contract (retry only on
// 429, honour the server's Retry-After, degrade to an empty dataset when the
// attempt budget is exhausted) is wire-level behavior the SDK's built-in
// retry policy does not expose.
//
// Example usage:
//
//	cred, err := azure.NewCredential(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client := azure.NewQueryClient(cfg, azure.NewTokenSource(cred), logger, metrics)
//	result, err := client.Query(ctx, azure.ServiceBreakdownQuery(start, end))
package azure
