package azure

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/convergio/azure-cost-api/internal/config"
	"github.com/convergio/azure-cost-api/internal/logger"
	"github.com/convergio/azure-cost-api/internal/metrics"
)

// testLogger creates a logger for testing (error level to suppress test output)
func testLogger() *logger.Logger {
	return logger.New("error")
}

// staticTokenSource returns a fixed token without hitting Azure AD
type staticTokenSource struct {
	token string
	err   error
}

func (s *staticTokenSource) Token(ctx context.Context) (string, error) {
	return s.token, s.err
}

func testConfig() *config.Config {
	return &config.Config{
		Subscription: config.Subscription{ID: "test-sub-1", Name: "test-subscription"},
		APITimeout:   30,
		MaxRetries:   3,
		CacheTTL:     300,
	}
}

// newTestClient creates a query client pointed at a test server
func newTestClient(t *testing.T, handler http.HandlerFunc) (*QueryClient, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewQueryClient(testConfig(), &staticTokenSource{token: "test-token"}, testLogger(), metrics.NewTestMetrics())
	client.endpoint = srv.URL
	return client, srv
}

const successBody = `{
	"properties": {
		"columns": [
			{"name": "Cost", "type": "Number"},
			{"name": "ServiceName", "type": "String"}
		],
		"rows": [[120.5, "Compute"], [30.0, "Storage"]]
	}
}`

// TestQuery_Success tests a plain 200 response and request shape
func TestQuery_Success(t *testing.T) {
	var gotPath, gotAuth, gotContentType string
	var gotBody []byte

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(successBody))
	})

	result, err := client.Query(context.Background(), MonthToDateQuery())
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}

	wantPath := "/subscriptions/test-sub-1/providers/Microsoft.CostManagement/query?api-version=2023-11-01"
	if gotPath != wantPath {
		t.Errorf("Path: got %q, want %q", gotPath, wantPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization: got %q, want Bearer test-token", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", gotContentType)
	}

	// The wire body carries the query definition
	var body map[string]any
	if err := json.Unmarshal(gotBody, &body); err != nil {
		t.Fatalf("Request body is not JSON: %v", err)
	}
	if body["type"] != "ActualCost" {
		t.Errorf("Body type: got %v, want ActualCost", body["type"])
	}
	if body["timeframe"] != "MonthToDate" {
		t.Errorf("Body timeframe: got %v, want MonthToDate", body["timeframe"])
	}

	if result.Properties == nil {
		t.Fatal("Expected parsed properties")
	}
	if len(result.Properties.Rows) != 2 {
		t.Fatalf("Rows: got %d, want 2", len(result.Properties.Rows))
	}
	if result.Properties.Rows[0][0] != 120.5 {
		t.Errorf("First row cost: got %v, want 120.5", result.Properties.Rows[0][0])
	}
}

// TestQuery_RetryAfter429 tests that a throttled first attempt succeeds on
// the retry
func TestQuery_RetryAfter429(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()

		if n == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(successBody))
	})

	result, err := client.Query(context.Background(), MonthToDateQuery())
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}

	if attempts != 2 {
		t.Errorf("Attempts: got %d, want 2", attempts)
	}
	if result.Properties == nil || len(result.Properties.Rows) != 2 {
		t.Error("Expected the successful second attempt's rows")
	}
}

// TestQuery_RateLimitExhausted tests the degraded empty result after all
// attempts are throttled
func TestQuery_RateLimitExhausted(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	result, err := client.Query(context.Background(), MonthToDateQuery())
	if err != nil {
		t.Fatalf("Expected degraded empty result, got error: %v", err)
	}

	if attempts != 3 {
		t.Errorf("Attempts: got %d, want 3 (the full budget)", attempts)
	}
	if result.Properties != nil {
		t.Error("Expected an empty result after retry exhaustion")
	}
}

// TestQuery_NonRetryableError tests that other HTTP errors fail immediately
func TestQuery_NonRetryableError(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"bad request", http.StatusBadRequest},
		{"unauthorized", http.StatusUnauthorized},
		{"server error", http.StatusInternalServerError},
		{"bad gateway", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mu sync.Mutex
			attempts := 0

			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				mu.Lock()
				attempts++
				mu.Unlock()
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"code":"TestFailure"}}`))
			})

			_, err := client.Query(context.Background(), MonthToDateQuery())
			if err == nil {
				t.Fatal("Expected error for non-2xx response")
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Expected *APIError, got %T: %v", err, err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode: got %d, want %d", apiErr.StatusCode, tt.status)
			}
			if !strings.Contains(apiErr.Body, "TestFailure") {
				t.Errorf("Body should carry upstream detail, got %q", apiErr.Body)
			}
			if attempts != 1 {
				t.Errorf("Attempts: got %d, want 1 (no retry on non-429)", attempts)
			}
		})
	}
}

// TestQuery_TokenError tests that authentication failures propagate
func TestQuery_TokenError(t *testing.T) {
	authErr := errors.New("authentication failed")

	client := NewQueryClient(testConfig(), &staticTokenSource{err: authErr}, testLogger(), metrics.NewTestMetrics())

	_, err := client.Query(context.Background(), MonthToDateQuery())
	if err == nil {
		t.Fatal("Expected error when token acquisition fails")
	}
	if !errors.Is(err, authErr) {
		t.Errorf("Expected wrapped auth error, got %v", err)
	}
}

// TestQuery_MalformedResponseBody tests decode failures on a 200 response
func TestQuery_MalformedResponseBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	if _, err := client.Query(context.Background(), MonthToDateQuery()); err == nil {
		t.Fatal("Expected error for malformed response body")
	}
}

// TestRetryAfterDelay tests Retry-After header parsing
func TestRetryAfterDelay(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{"seconds value", "5", 5 * time.Second},
		{"zero", "0", 0},
		{"absent", "", 60 * time.Second},
		{"garbage", "soon", 60 * time.Second},
		{"negative", "-3", 60 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Retry-After", tt.header)
			}
			if got := retryAfterDelay(h); got != tt.want {
				t.Errorf("retryAfterDelay(%q): got %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}
