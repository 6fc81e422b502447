package authd_test

import (
	"context"
	"strings"
	"testing"

	"github.com/drawpoint/authd/pkg/oauthsdk"
	"github.com/stretchr/testify/require"
)

// TestClientCredentialsGrant tests the core grant flow end to end:
// bootstrap, obtain a token pair, and verify it through introspection.
func TestClientCredentialsGrant(t *testing.T) {
	baseURL, cleanup := setupAuthdContainer(t)
	defer cleanup()

	client := oauthsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	clientID, clientSecret := bootstrapService(t, client)

	tokenResp, err := client.ClientCredentialsGrant(ctx, clientID, clientSecret, nil)
	require.NoError(t, err)
	assertTokenResponse(t, tokenResp)

	// Empty scope request grants the client's full allowed set
	for _, scope := range clientScopes {
		require.Contains(t, tokenResp.Scope, scope)
	}

	// The issued access token introspects as active
	introspection, err := client.Introspect(ctx, clientID, clientSecret, tokenResp.AccessToken)
	require.NoError(t, err)
	require.True(t, introspection.Active, "Fresh access token should be active")
	require.Equal(t, clientID, introspection.ClientID)
	require.Equal(t, "access", introspection.TokenType)
}

// TestClientCredentialsScopeSubset verifies that a client can request a
// subset of its allowed scopes and gets exactly that subset.
func TestClientCredentialsScopeSubset(t *testing.T) {
	baseURL, cleanup := setupAuthdContainer(t)
	defer cleanup()

	client := oauthsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	clientID, clientSecret := bootstrapService(t, client)

	tokenResp, err := client.ClientCredentialsGrant(ctx, clientID, clientSecret, []string{"read:reports"})
	require.NoError(t, err)
	require.Equal(t, "read:reports", tokenResp.Scope, "Should grant exactly the requested subset")
}

// TestClientCredentialsScopeOutsideAllowed verifies that requesting any
// scope outside the allowed set rejects the whole request and names the
// offending scopes.
func TestClientCredentialsScopeOutsideAllowed(t *testing.T) {
	baseURL, cleanup := setupAuthdContainer(t)
	defer cleanup()

	client := oauthsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	clientID, clientSecret := bootstrapService(t, client)

	_, err := client.ClientCredentialsGrant(ctx, clientID, clientSecret,
		[]string{"read:reports", "admin:everything"})
	assertOAuth2Error(t, err, "invalid_scope", "Scope outside allowed set")
	require.True(t, strings.Contains(err.Error(), "admin:everything"),
		"Error should name the offending scope, got: %s", err.Error())
}

// TestClientCredentialsWrongSecret verifies that incorrect secrets are rejected
// with the same error as an unknown client.
func TestClientCredentialsWrongSecret(t *testing.T) {
	baseURL, cleanup := setupAuthdContainer(t)
	defer cleanup()

	client := oauthsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	clientID, _ := bootstrapService(t, client)

	_, wrongSecretErr := client.ClientCredentialsGrant(ctx, clientID, "wrong-secret-12345", nil)
	assertOAuth2Error(t, wrongSecretErr, "invalid_client", "Wrong secret")

	_, unknownClientErr := client.ClientCredentialsGrant(ctx, "01UNKNOWNCLIENT00000000000", "whatever", nil)
	assertOAuth2Error(t, unknownClientErr, "invalid_client", "Unknown client")

	// Same error text either way, so callers cannot probe for valid client IDs
	require.Equal(t, wrongSecretErr.Error(), unknownClientErr.Error(),
		"Unknown client and wrong secret should be indistinguishable")
}
