package authd_test

import (
	"context"
	"testing"

	"github.com/drawpoint/authd/pkg/oauthsdk"
	"github.com/stretchr/testify/require"
)

// TestRevocation verifies revocation semantics:
// 1. A revoked access token introspects as inactive
// 2. Revocation only hits the named token, not its pair sibling
// 3. Revoking unknown or already-revoked tokens still succeeds
func TestRevocation(t *testing.T) {
	baseURL, cleanup := setupAuthdContainer(t)
	defer cleanup()

	client := oauthsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	clientID, clientSecret := bootstrapService(t, client)

	tokenResp, err := client.ClientCredentialsGrant(ctx, clientID, clientSecret, nil)
	require.NoError(t, err)

	err = client.RevokeToken(ctx, clientID, clientSecret, tokenResp.AccessToken)
	require.NoError(t, err)

	introspection, err := client.Introspect(ctx, clientID, clientSecret, tokenResp.AccessToken)
	require.NoError(t, err)
	require.False(t, introspection.Active, "Revoked token should be inactive")

	// The refresh half of the pair is untouched
	rotated, err := client.RefreshGrant(ctx, clientID, clientSecret, tokenResp.RefreshToken)
	require.NoError(t, err, "Refresh token should survive revocation of its access sibling")
	assertTokenResponse(t, rotated)

	// Idempotent: revoking again or revoking junk both succeed
	require.NoError(t, client.RevokeToken(ctx, clientID, clientSecret, tokenResp.AccessToken))
	require.NoError(t, client.RevokeToken(ctx, clientID, clientSecret, "never-issued-token"))
}

// TestIntrospectionUnknownToken verifies the bare inactive response for
// tokens the service has never seen.
func TestIntrospectionUnknownToken(t *testing.T) {
	baseURL, cleanup := setupAuthdContainer(t)
	defer cleanup()

	client := oauthsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	clientID, clientSecret := bootstrapService(t, client)

	introspection, err := client.Introspect(ctx, clientID, clientSecret, "completely-made-up")
	require.NoError(t, err)
	require.False(t, introspection.Active)
	require.Empty(t, introspection.ClientID, "Inactive responses carry no metadata")
	require.Empty(t, introspection.Scope, "Inactive responses carry no metadata")
	require.Zero(t, introspection.Exp, "Inactive responses carry no metadata")
}

// TestIntrospectionRequiresAuthentication verifies that introspection is not
// an anonymous oracle.
func TestIntrospectionRequiresAuthentication(t *testing.T) {
	baseURL, cleanup := setupAuthdContainer(t)
	defer cleanup()

	client := oauthsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	clientID, clientSecret := bootstrapService(t, client)

	tokenResp, err := client.ClientCredentialsGrant(ctx, clientID, clientSecret, nil)
	require.NoError(t, err)

	_, err = client.Introspect(ctx, clientID, "wrong-secret", tokenResp.AccessToken)
	assertOAuth2Error(t, err, "invalid_client", "Introspection without valid credentials")
}
