package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/drawpoint/authd/internal/auth/domain"
	"github.com/drawpoint/authd/internal/auth/store/drivers/memory"
	"github.com/drawpoint/authd/pkg/cryptox"
	"github.com/drawpoint/authd/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Set up a temporary pepper file for testing
	tmpDir := os.TempDir()
	pepperPath := filepath.Join(tmpDir, "service-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	// Clean up pepper file before and after tests
	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

// newTokenService returns a service over a fresh in-memory store with one
// active client registered. The plaintext secret is returned for use in
// authentication calls.
func newTokenService(t *testing.T, scopes []string) (*TokenService, string, string) {
	t.Helper()

	st := memory.NewStore()
	secret := "s1-local-test-secret"

	hash, err := cryptox.HashSecret(secret)
	require.NoError(t, err)

	clientID := idx.New().String()
	err = st.Clients().CreateClient(context.Background(), domain.Client{
		ID:         clientID,
		Name:       "facilities-reader",
		SecretHash: hash,
		Scopes:     scopes,
		Status:     domain.ClientActive,
	})
	require.NoError(t, err)

	svc := &TokenService{
		Store:      st,
		AccessTTL:  time.Hour,
		RefreshTTL: 30 * 24 * time.Hour,
	}
	return svc, clientID, secret
}

func TestIssueClientCredentials(t *testing.T) {
	ctx := context.Background()

	t.Run("issues pair with requested scope subset", func(t *testing.T) {
		svc, clientID, secret := newTokenService(t, []string{"read:facilities", "read:draws"})

		pair, err := svc.IssueClientCredentials(ctx, clientID, secret, []string{"read:draws"})
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.NotEqual(t, pair.AccessToken, pair.RefreshToken)
		require.Equal(t, "Bearer", pair.TokenType)
		require.Equal(t, time.Hour, pair.ExpiresIn)
		require.Equal(t, "read:draws", pair.Scope)
	})

	t.Run("empty scope request grants full allowed set", func(t *testing.T) {
		svc, clientID, secret := newTokenService(t, []string{"read:facilities", "read:draws"})

		pair, err := svc.IssueClientCredentials(ctx, clientID, secret, nil)
		require.NoError(t, err)
		require.Equal(t, "read:facilities read:draws", pair.Scope)
	})

	t.Run("unknown client and wrong secret are indistinguishable", func(t *testing.T) {
		svc, clientID, _ := newTokenService(t, []string{"read:facilities"})

		_, errUnknown := svc.IssueClientCredentials(ctx, idx.New().String(), "whatever", nil)
		_, errWrongSecret := svc.IssueClientCredentials(ctx, clientID, "not-the-secret", nil)

		require.ErrorIs(t, errUnknown, ErrInvalidClient)
		require.ErrorIs(t, errWrongSecret, ErrInvalidClient)
	})

	t.Run("scope outside allowed set rejects whole request", func(t *testing.T) {
		svc, clientID, secret := newTokenService(t, []string{"read:facilities"})

		_, err := svc.IssueClientCredentials(ctx, clientID, secret, []string{"read:facilities", "write:draws"})

		var scopeErr *InvalidScopeError
		require.ErrorAs(t, err, &scopeErr)
		require.Equal(t, []string{"write:draws"}, scopeErr.Scopes)

		// No token was issued for the partial overlap either.
		intro, err := svc.Introspect(ctx, clientID, secret, "anything")
		require.NoError(t, err)
		require.False(t, intro.Active)
	})

	t.Run("suspended client cannot obtain tokens", func(t *testing.T) {
		svc, clientID, secret := newTokenService(t, []string{"read:facilities"})

		pair, err := svc.IssueClientCredentials(ctx, clientID, secret, nil)
		require.NoError(t, err)

		err = svc.Store.Clients().UpdateClientStatus(ctx, clientID, domain.ClientSuspended)
		require.NoError(t, err)

		_, err = svc.IssueClientCredentials(ctx, clientID, secret, nil)
		require.ErrorIs(t, err, ErrClientInactive)

		// Tokens issued before suspension keep working until their own
		// expiry; suspension does not cascade. Introspection is itself an
		// authenticated call, so reactivate first.
		err = svc.Store.Clients().UpdateClientStatus(ctx, clientID, domain.ClientActive)
		require.NoError(t, err)

		intro, err := svc.Introspect(ctx, clientID, secret, pair.AccessToken)
		require.NoError(t, err)
		require.True(t, intro.Active)
	})
}

func TestIntrospect(t *testing.T) {
	ctx := context.Background()

	t.Run("issued token round-trips through introspection", func(t *testing.T) {
		svc, clientID, secret := newTokenService(t, []string{"read:facilities"})

		pair, err := svc.IssueClientCredentials(ctx, clientID, secret, []string{"read:facilities"})
		require.NoError(t, err)

		intro, err := svc.Introspect(ctx, clientID, secret, pair.AccessToken)
		require.NoError(t, err)
		require.True(t, intro.Active)
		require.Equal(t, clientID, intro.ClientID)
		require.Equal(t, []string{"read:facilities"}, intro.Scopes)
		require.Equal(t, domain.TokenAccess, intro.TokenType)
		require.WithinDuration(t, time.Now().Add(time.Hour), intro.ExpiresAt, 5*time.Second)
	})

	t.Run("unknown token is just inactive", func(t *testing.T) {
		svc, clientID, secret := newTokenService(t, []string{"read:facilities"})

		intro, err := svc.Introspect(ctx, clientID, secret, "never-issued")
		require.NoError(t, err)
		require.Equal(t, &domain.Introspection{Active: false}, intro)
	})

	t.Run("expired token is inactive but stays in store", func(t *testing.T) {
		svc, clientID, secret := newTokenService(t, []string{"read:facilities"})
		svc.AccessTTL = -time.Minute // already expired at issuance

		pair, err := svc.IssueClientCredentials(ctx, clientID, secret, nil)
		require.NoError(t, err)

		intro, err := svc.Introspect(ctx, clientID, secret, pair.AccessToken)
		require.NoError(t, err)
		require.False(t, intro.Active)

		// The row still exists; introspection did not delete it.
		_, err = svc.Store.Tokens().GetTokenByHash(ctx, cryptox.FingerprintToken(pair.AccessToken))
		require.NoError(t, err)
	})
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()

	t.Run("revocation is terminal before expiry", func(t *testing.T) {
		svc, clientID, secret := newTokenService(t, []string{"read:facilities"})

		pair, err := svc.IssueClientCredentials(ctx, clientID, secret, nil)
		require.NoError(t, err)

		err = svc.Revoke(ctx, clientID, secret, pair.AccessToken)
		require.NoError(t, err)

		intro, err := svc.Introspect(ctx, clientID, secret, pair.AccessToken)
		require.NoError(t, err)
		require.False(t, intro.Active)

		// The refresh half of the pair is untouched.
		intro, err = svc.Introspect(ctx, clientID, secret, pair.RefreshToken)
		require.NoError(t, err)
		require.True(t, intro.Active)
	})

	t.Run("revoking unknown token succeeds", func(t *testing.T) {
		svc, clientID, secret := newTokenService(t, []string{"read:facilities"})

		require.NoError(t, svc.Revoke(ctx, clientID, secret, "never-issued"))
	})

	t.Run("revoke is idempotent", func(t *testing.T) {
		svc, clientID, secret := newTokenService(t, []string{"read:facilities"})

		pair, err := svc.IssueClientCredentials(ctx, clientID, secret, nil)
		require.NoError(t, err)

		require.NoError(t, svc.Revoke(ctx, clientID, secret, pair.AccessToken))
		require.NoError(t, svc.Revoke(ctx, clientID, secret, pair.AccessToken))
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("rotation issues new pair with old scopes", func(t *testing.T) {
		svc, clientID, secret := newTokenService(t, []string{"read:facilities", "read:draws"})

		first, err := svc.IssueClientCredentials(ctx, clientID, secret, []string{"read:draws"})
		require.NoError(t, err)

		second, err := svc.Refresh(ctx, clientID, secret, first.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, first.AccessToken, second.AccessToken)
		require.NotEqual(t, first.RefreshToken, second.RefreshToken)
		require.Equal(t, "read:draws", second.Scope)
	})

	t.Run("consumed refresh token cannot be replayed", func(t *testing.T) {
		svc, clientID, secret := newTokenService(t, []string{"read:facilities"})

		first, err := svc.IssueClientCredentials(ctx, clientID, secret, nil)
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, clientID, secret, first.RefreshToken)
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, clientID, secret, first.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidGrant)
	})

	t.Run("access token cannot be used as refresh token", func(t *testing.T) {
		svc, clientID, secret := newTokenService(t, []string{"read:facilities"})

		pair, err := svc.IssueClientCredentials(ctx, clientID, secret, nil)
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, clientID, secret, pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidGrant)
	})

	t.Run("another client's refresh token is rejected", func(t *testing.T) {
		svc, clientID, secret := newTokenService(t, []string{"read:facilities"})

		pair, err := svc.IssueClientCredentials(ctx, clientID, secret, nil)
		require.NoError(t, err)

		otherHash, err := cryptox.HashSecret("other-secret")
		require.NoError(t, err)
		otherID := idx.New().String()
		err = svc.Store.Clients().CreateClient(ctx, domain.Client{
			ID:         otherID,
			Name:       "other",
			SecretHash: otherHash,
			Scopes:     []string{"read:facilities"},
			Status:     domain.ClientActive,
		})
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, otherID, "other-secret", pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidGrant)

		// The failed attempt did not consume the token for its owner.
		_, err = svc.Refresh(ctx, clientID, secret, pair.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("revoked refresh token is rejected", func(t *testing.T) {
		svc, clientID, secret := newTokenService(t, []string{"read:facilities"})

		pair, err := svc.IssueClientCredentials(ctx, clientID, secret, nil)
		require.NoError(t, err)

		require.NoError(t, svc.Revoke(ctx, clientID, secret, pair.RefreshToken))

		_, err = svc.Refresh(ctx, clientID, secret, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidGrant)
	})

	t.Run("concurrent rotations of one token yield exactly one winner", func(t *testing.T) {
		svc, clientID, secret := newTokenService(t, []string{"read:facilities"})

		pair, err := svc.IssueClientCredentials(ctx, clientID, secret, nil)
		require.NoError(t, err)

		const racers = 8
		var wg sync.WaitGroup
		errs := make([]error, racers)

		for i := range racers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = svc.Refresh(ctx, clientID, secret, pair.RefreshToken)
			}()
		}
		wg.Wait()

		var wins, rejections int
		for _, err := range errs {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrInvalidGrant):
				rejections++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		require.Equal(t, 1, wins)
		require.Equal(t, racers-1, rejections)
	})
}

// TestGrantScenario walks the end-to-end scenario: a client allowed
// ["read:facilities","read:draws"] requests only "read:draws", then
// introspects the token it got back.
func TestGrantScenario(t *testing.T) {
	ctx := context.Background()
	svc, clientID, secret := newTokenService(t, []string{"read:facilities", "read:draws"})

	pair, err := svc.IssueClientCredentials(ctx, clientID, secret, []string{"read:draws"})
	require.NoError(t, err)
	require.Equal(t, "read:draws", pair.Scope)
	require.Equal(t, time.Hour, pair.ExpiresIn)

	intro, err := svc.Introspect(ctx, clientID, secret, pair.AccessToken)
	require.NoError(t, err)
	require.True(t, intro.Active)
	require.Equal(t, []string{"read:draws"}, intro.Scopes)
}
