package authd_test

import (
	"context"
	"strings"
	"testing"

	"github.com/drawpoint/authd/pkg/oauthsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitTokenEndpoint verifies that the /token endpoint is rate
// limited under the default strict profile (5 req/min per IP and client).
func TestRateLimitTokenEndpoint(t *testing.T) {
	baseURL, cleanup := setupAuthdContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := oauthsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	clientID, _ := bootstrapService(t, client)

	// Burn through the strict budget with bad credentials, then expect 429
	var lastErr error
	for i := range 6 {
		_, err := client.ClientCredentialsGrant(ctx, clientID, "wrong-secret", nil)
		if i < 5 {
			require.Error(t, err, "Invalid credentials should fail")
			require.NotContains(t, err.Error(), "429", "Should not be rate limited yet (request %d)", i+1)
		} else {
			lastErr = err
		}
	}

	require.Error(t, lastErr)
	require.True(t, strings.Contains(lastErr.Error(), "429"),
		"Should be rate limited after exhausting the strict budget, got: %s", lastErr.Error())
}

// TestRateLimitBootstrapEndpoint verifies that the one-time setup endpoint
// cannot be hammered.
func TestRateLimitBootstrapEndpoint(t *testing.T) {
	baseURL, cleanup := setupAuthdContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := oauthsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	req := oauthsdk.BootstrapRequest{
		ClientName:   clientName,
		ClientScopes: clientScopes,
	}

	var sawRateLimit bool
	for range 10 {
		_, err := client.Bootstrap(ctx, "wrong-token", req)
		require.Error(t, err)
		if strings.Contains(err.Error(), "429") {
			sawRateLimit = true
			break
		}
	}

	require.True(t, sawRateLimit, "Bootstrap endpoint should rate limit repeated attempts")
}
