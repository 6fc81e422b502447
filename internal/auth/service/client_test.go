package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/drawpoint/authd/internal/auth/domain"
	"github.com/drawpoint/authd/internal/auth/store/drivers/memory"
	"github.com/drawpoint/authd/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestClientService(t *testing.T) {
	ctx := context.Background()

	t.Run("create returns working credentials once", func(t *testing.T) {
		st := memory.NewStore()
		clients := &ClientService{Store: st}
		tokens := &TokenService{Store: st, AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour}

		clientID, secret, err := clients.CreateClient(ctx, "billing-service", []string{"read:invoices"}, 100)
		require.NoError(t, err)
		require.NotEmpty(t, clientID)
		require.NotEmpty(t, secret)

		// The stored hash is argon2, not the plaintext.
		stored, err := st.Clients().GetClientByID(ctx, clientID)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(stored.SecretHash, "$argon2id$"))
		require.NotContains(t, stored.SecretHash, secret)
		require.Equal(t, domain.ClientActive, stored.Status)
		require.Equal(t, 100, stored.RateLimit)

		// And the credentials actually authenticate.
		_, err = tokens.IssueClientCredentials(ctx, clientID, secret, nil)
		require.NoError(t, err)
	})

	t.Run("status transitions", func(t *testing.T) {
		st := memory.NewStore()
		clients := &ClientService{Store: st}

		clientID, _, err := clients.CreateClient(ctx, "svc", []string{"read:a"}, 0)
		require.NoError(t, err)

		updated, err := clients.UpdateClientStatus(ctx, clientID, domain.ClientSuspended)
		require.NoError(t, err)
		require.Equal(t, domain.ClientSuspended, updated.Status)

		updated, err = clients.UpdateClientStatus(ctx, clientID, domain.ClientActive)
		require.NoError(t, err)
		require.Equal(t, domain.ClientActive, updated.Status)

		_, err = clients.UpdateClientStatus(ctx, clientID, domain.ClientStatus("deleted"))
		require.ErrorIs(t, err, ErrInvalidStatus)

		_, err = clients.UpdateClientStatus(ctx, "missing", domain.ClientRevoked)
		require.ErrorIs(t, err, ErrClientNotFound)
	})

	t.Run("revoke-tokens cascade hits only live tokens of that client", func(t *testing.T) {
		st := memory.NewStore()
		clients := &ClientService{Store: st}
		tokens := &TokenService{Store: st, AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour}

		oneID, oneSecret, err := clients.CreateClient(ctx, "one", []string{"read:a"}, 0)
		require.NoError(t, err)
		twoID, twoSecret, err := clients.CreateClient(ctx, "two", []string{"read:a"}, 0)
		require.NoError(t, err)

		onePair, err := tokens.IssueClientCredentials(ctx, oneID, oneSecret, nil)
		require.NoError(t, err)
		twoPair, err := tokens.IssueClientCredentials(ctx, twoID, twoSecret, nil)
		require.NoError(t, err)

		revoked, err := clients.RevokeClientTokens(ctx, oneID)
		require.NoError(t, err)
		require.EqualValues(t, 2, revoked) // access + refresh

		intro, err := tokens.Introspect(ctx, twoID, twoSecret, onePair.AccessToken)
		require.NoError(t, err)
		require.False(t, intro.Active)

		intro, err = tokens.Introspect(ctx, twoID, twoSecret, twoPair.AccessToken)
		require.NoError(t, err)
		require.True(t, intro.Active)

		// A second cascade finds nothing left to revoke.
		revoked, err = clients.RevokeClientTokens(ctx, oneID)
		require.NoError(t, err)
		require.EqualValues(t, 0, revoked)
	})
}

func TestBootstrapService(t *testing.T) {
	ctx := context.Background()

	t.Run("creates first client once", func(t *testing.T) {
		st := memory.NewStore()
		bootstrap := &BootstrapService{Store: st, Token: "pre-shared"}
		tokens := &TokenService{Store: st, AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour}

		done, err := bootstrap.IsBootstrapped(ctx)
		require.NoError(t, err)
		require.False(t, done)

		clientID, secret, err := bootstrap.Bootstrap(ctx, "pre-shared", "seed-client", []string{"read:a"})
		require.NoError(t, err)

		_, err = tokens.IssueClientCredentials(ctx, clientID, secret, nil)
		require.NoError(t, err)

		done, err = bootstrap.IsBootstrapped(ctx)
		require.NoError(t, err)
		require.True(t, done)

		_, _, err = bootstrap.Bootstrap(ctx, "pre-shared", "again", []string{"read:a"})
		require.ErrorIs(t, err, ErrBootstrapAlready)
	})

	t.Run("rejects wrong token", func(t *testing.T) {
		bootstrap := &BootstrapService{Store: memory.NewStore(), Token: "pre-shared"}

		_, _, err := bootstrap.Bootstrap(ctx, "guess", "seed-client", []string{"read:a"})
		require.ErrorIs(t, err, ErrBootstrapUnauthorized)
	})

	t.Run("rejects when no token configured", func(t *testing.T) {
		bootstrap := &BootstrapService{Store: memory.NewStore()}

		_, _, err := bootstrap.Bootstrap(ctx, "", "seed-client", []string{"read:a"})
		require.ErrorIs(t, err, ErrBootstrapUnauthorized)
	})
}

func TestHousekeepingCleanup(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	tokens := &TokenService{Store: st, AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour}

	hash, err := cryptox.HashSecret("secret")
	require.NoError(t, err)
	require.NoError(t, st.Clients().CreateClient(ctx, domain.Client{
		ID:         "client",
		Name:       "client",
		SecretHash: hash,
		Scopes:     []string{"read:a"},
		Status:     domain.ClientActive,
	}))

	// Live pair, revoked-but-unexpired pair, and an expired+revoked pair.
	live, err := tokens.IssueClientCredentials(ctx, "client", "secret", nil)
	require.NoError(t, err)

	revokedOnly, err := tokens.IssueClientCredentials(ctx, "client", "secret", nil)
	require.NoError(t, err)
	require.NoError(t, tokens.Revoke(ctx, "client", "secret", revokedOnly.AccessToken))

	tokens.AccessTTL = -time.Minute
	expiredRevoked, err := tokens.IssueClientCredentials(ctx, "client", "secret", nil)
	require.NoError(t, err)
	require.NoError(t, tokens.Revoke(ctx, "client", "secret", expiredRevoked.AccessToken))

	require.NoError(t, st.Tokens().DeleteExpiredRevokedTokens(ctx))

	// Only the expired AND revoked row is gone.
	_, err = st.Tokens().GetTokenByHash(ctx, cryptox.FingerprintToken(expiredRevoked.AccessToken))
	require.Error(t, err)

	_, err = st.Tokens().GetTokenByHash(ctx, cryptox.FingerprintToken(live.AccessToken))
	require.NoError(t, err)

	_, err = st.Tokens().GetTokenByHash(ctx, cryptox.FingerprintToken(revokedOnly.AccessToken))
	require.NoError(t, err)
}
