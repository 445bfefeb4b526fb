package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/cenkalti/backoff/v4"

	"github.com/convergio/azure-cost-api/internal/config"
	"github.com/convergio/azure-cost-api/internal/logger"
	"github.com/convergio/azure-cost-api/internal/metrics"
	"github.com/convergio/azure-cost-api/internal/version"
)

const (
	// DefaultEndpoint is the Azure Resource Manager endpoint for the public cloud
	DefaultEndpoint = "https://management.azure.com"

	// apiVersion is the Cost Management query API version
	apiVersion = "2023-11-01"

	// defaultRetryAfter is the backoff used when a 429 response carries no
	// usable Retry-After header
	defaultRetryAfter = 60 * time.Second
)

// errRateLimited marks a 429 response inside the retry loop
var errRateLimited = errors.New("rate limited by cost management API")

// APIError is a non-retryable error response from the Cost Management API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cost management API returned %d: %s", e.StatusCode, e.Body)
}

// QueryClient issues cost queries against the Cost Management REST endpoint
type QueryClient struct {
	endpoint       string
	subscriptionID string
	tokens         TokenSource
	httpClient     *http.Client
	maxAttempts    int
	logger         *logger.Logger
	metrics        *metrics.Metrics
}

// NewQueryClient creates a query client for the configured subscription
func NewQueryClient(cfg *config.Config, tokens TokenSource, log *logger.Logger, m *metrics.Metrics) *QueryClient {
	return &QueryClient{
		endpoint:       DefaultEndpoint,
		subscriptionID: cfg.Subscription.ID,
		tokens:         tokens,
		httpClient:     &http.Client{Timeout: time.Duration(cfg.APITimeout) * time.Second},
		maxAttempts:    cfg.MaxRetries,
		logger:         log,
		metrics:        m,
	}
}

// Query executes a cost query and decodes the response.
//
// Rate-limited (429) responses are retried after the server-specified
// Retry-After delay, up to the configured attempt budget; the backoff sleep
// blocks only the calling goroutine and observes ctx. When the budget is
// exhausted on 429 the method returns an empty result and no error: callers
// must treat an absent dataset as "no data". Any other non-2xx response
// fails immediately with an *APIError carrying the status and body.
func (c *QueryClient) Query(ctx context.Context, def armcostmanagement.QueryDefinition) (armcostmanagement.QueryResult, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return armcostmanagement.QueryResult{}, fmt.Errorf("acquire token: %w", err)
	}

	body, err := json.Marshal(def)
	if err != nil {
		return armcostmanagement.QueryResult{}, fmt.Errorf("marshal query: %w", err)
	}

	url := fmt.Sprintf("%s/subscriptions/%s/providers/Microsoft.CostManagement/query?api-version=%s",
		c.endpoint, c.subscriptionID, apiVersion)

	var result armcostmanagement.QueryResult
	bo := &retryAfterBackOff{delay: defaultRetryAfter}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build query request: %w", err))
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", version.UserAgent())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("query request: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			bo.delay = retryAfterDelay(resp.Header)
			c.logger.Warn("Cost Management API rate limited",
				"retry_after", bo.delay.String())
			c.metrics.QueryRetries.Inc()
			return errRateLimited
		}

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read query response: %w", err))
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return backoff.Permanent(&APIError{StatusCode: resp.StatusCode, Body: string(respBody)})
		}

		if err := json.Unmarshal(respBody, &result); err != nil {
			return backoff.Permanent(fmt.Errorf("decode query response: %w", err))
		}
		return nil
	}

	err = backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxAttempts-1)), ctx))
	if errors.Is(err, errRateLimited) {
		// Every attempt was throttled. The upstream contract degrades to an
		// empty dataset here rather than an error.
		c.logger.Warn("Cost query rate limited on all attempts, returning empty result",
			"attempts", c.maxAttempts)
		c.metrics.DegradedResponses.Inc()
		return armcostmanagement.QueryResult{}, nil
	}
	if err != nil {
		c.metrics.QueryErrors.Inc()
		return armcostmanagement.QueryResult{}, err
	}

	return result, nil
}

// retryAfterDelay reads the Retry-After header of a 429 response. The Cost
// Management API sends a delay in whole seconds; anything unparseable falls
// back to the 60 second default.
func retryAfterDelay(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return defaultRetryAfter
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return defaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}

// retryAfterBackOff replays the server-specified delay from the most recent
// 429 response instead of a computed schedule.
type retryAfterBackOff struct {
	delay time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration { return b.delay }

func (b *retryAfterBackOff) Reset() {}
