package azure

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/convergio/azure-cost-api/internal/clock"
	"github.com/convergio/azure-cost-api/internal/config"
)

const (
	// Scope is the OAuth scope requested for Cost Management API tokens
	Scope = "https://management.azure.com/.default"

	// refreshSkew is how long before expiry a cached token is refreshed
	refreshSkew = 5 * time.Minute
)

// TokenSource supplies bearer tokens for the Cost Management API
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// NewCredential builds the Azure credential selected by the configuration:
// a service principal when tenant/client/secret are all set, otherwise the
// default chain (environment, managed identity, az CLI login).
func NewCredential(cfg *config.Config) (azcore.TokenCredential, error) {
	if cfg.UseServicePrincipal() {
		cred, err := azidentity.NewClientSecretCredential(
			cfg.Azure.TenantID, cfg.Azure.ClientID, cfg.Azure.ClientSecret, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create service principal credential: %w", err)
		}
		return cred, nil
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}
	return cred, nil
}

// CredentialTokenSource caches tokens issued by an azcore.TokenCredential and
// refreshes them shortly before they expire.
type CredentialTokenSource struct {
	cred  azcore.TokenCredential
	clock clock.Clock

	mu    sync.Mutex
	token azcore.AccessToken
}

// Verify that CredentialTokenSource implements TokenSource
var _ TokenSource = (*CredentialTokenSource)(nil)

// NewTokenSource creates a caching token source backed by cred
func NewTokenSource(cred azcore.TokenCredential) *CredentialTokenSource {
	return &CredentialTokenSource{
		cred:  cred,
		clock: clock.RealClock{}, // Use real system time by default
	}
}

// Token returns a bearer token for the Cost Management scope, reusing the
// cached token until it is within refreshSkew of expiry.
func (s *CredentialTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token.Token != "" && s.clock.Now().Before(s.token.ExpiresOn.Add(-refreshSkew)) {
		return s.token.Token, nil
	}

	token, err := s.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{Scope}})
	if err != nil {
		return "", fmt.Errorf("failed to acquire token: %w", err)
	}

	s.token = token
	return token.Token, nil
}
