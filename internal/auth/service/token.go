package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/drawpoint/authd/internal/auth/domain"
	"github.com/drawpoint/authd/internal/auth/store"
	"github.com/drawpoint/authd/pkg/cryptox"
	"github.com/drawpoint/authd/pkg/idx"
	"github.com/drawpoint/authd/pkg/slogx"
)

var (
	// ErrInvalidClient covers both "unknown client" and "wrong secret" so the
	// two cases are indistinguishable to callers.
	ErrInvalidClient = errors.New("invalid_client")

	// ErrClientInactive means the client authenticated but its status is not
	// active (suspended or revoked).
	ErrClientInactive = errors.New("client_inactive")

	// ErrInvalidGrant covers every way a presented refresh token can be bad:
	// unknown, wrong type, expired, revoked, or owned by another client.
	ErrInvalidGrant = errors.New("invalid_grant")
)

// InvalidScopeError is returned when a grant requests scopes outside the
// client's allowed set. It names the offending scopes so the error response
// can tell the caller exactly what was rejected.
type InvalidScopeError struct {
	Scopes []string
}

func (e *InvalidScopeError) Error() string {
	return fmt.Sprintf("invalid_scope: %s", strings.Join(e.Scopes, " "))
}

type TokenService struct {
	Store      store.Store
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssueClientCredentials implements the OAuth2 client_credentials grant.
//
// The client authenticates with its own credentials (no user context) and
// receives an opaque access/refresh token pair. An empty scope request grants
// the client's full allowed set; any requested scope outside that set rejects
// the whole request rather than silently narrowing it.
func (s *TokenService) IssueClientCredentials(
	ctx context.Context,
	clientID, clientSecret string,
	requestedScopes []string,
) (*domain.TokenPair, error) {
	now := time.Now()

	client, err := s.authenticateClient(ctx, clientID, clientSecret)
	if err != nil {
		return nil, err
	}

	granted := client.Scopes
	if len(requestedScopes) > 0 {
		if offending := scopesOutside(requestedScopes, client.Scopes); len(offending) > 0 {
			return nil, &InvalidScopeError{Scopes: offending}
		}
		granted = dedupe(requestedScopes)
	}

	var pair *domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		pair, err = s.issuePair(ctx, tx, client.ID, granted, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued with the old token's scopes, all inside one transaction.
//
// The conditional consume is what makes concurrent refreshes of the same
// token safe: whichever request flips revoked first wins, every other one
// fails with ErrInvalidGrant and no new tokens.
func (s *TokenService) Refresh(
	ctx context.Context,
	clientID, clientSecret string,
	refreshOpaque string,
) (*domain.TokenPair, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	client, err := s.authenticateClient(ctx, clientID, clientSecret)
	if err != nil {
		return nil, err
	}

	fp := cryptox.FingerprintToken(refreshOpaque)

	var pair *domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		old, err := tx.Tokens().GetTokenByHash(ctx, fp)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidGrant
			}
			return err
		}

		// Uniform failure: wrong type, wrong owner, expired and revoked all
		// collapse to the same error so nothing leaks about token state.
		if old.Type != domain.TokenRefresh {
			return ErrInvalidGrant
		}
		if old.ClientID != client.ID {
			return ErrInvalidGrant
		}
		if now.After(old.ExpiresAt) {
			return ErrInvalidGrant
		}

		consumed, err := tx.Tokens().ConsumeToken(ctx, fp)
		if err != nil {
			return err
		}
		if !consumed {
			l.Info("refresh token already consumed", "client_id", client.ID)
			return ErrInvalidGrant
		}

		pair, err = s.issuePair(ctx, tx, client.ID, old.Scopes, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// Introspect reports the state of a token per RFC 7662. Unknown, revoked and
// expired tokens all produce the same inactive result with no further detail.
// It never mutates anything; an expired row stays in the store until
// housekeeping removes it.
func (s *TokenService) Introspect(
	ctx context.Context,
	clientID, clientSecret string,
	tokenOpaque string,
) (*domain.Introspection, error) {
	now := time.Now()

	if _, err := s.authenticateClient(ctx, clientID, clientSecret); err != nil {
		return nil, err
	}

	fp := cryptox.FingerprintToken(tokenOpaque)
	token, err := s.Store.Tokens().GetTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &domain.Introspection{Active: false}, nil
		}
		return nil, err
	}

	if !token.Active(now) {
		return &domain.Introspection{Active: false}, nil
	}

	return &domain.Introspection{
		Active:    true,
		ClientID:  token.ClientID,
		Scopes:    token.Scopes,
		TokenType: token.Type,
		ExpiresAt: token.ExpiresAt,
		IssuedAt:  token.IssuedAt,
	}, nil
}

// Revoke marks a token revoked. It is idempotent and unconditional: revoking
// an unknown or already-revoked token succeeds the same as revoking a live
// one. There is no ownership check; any authenticated client can revoke any
// token it holds.
func (s *TokenService) Revoke(
	ctx context.Context,
	clientID, clientSecret string,
	tokenOpaque string,
) error {
	if _, err := s.authenticateClient(ctx, clientID, clientSecret); err != nil {
		return err
	}

	fp := cryptox.FingerprintToken(tokenOpaque)
	return s.Store.Tokens().RevokeToken(ctx, fp)
}

// authenticateClient is the shared credential check used by every operation.
// The status read is never cached: a suspension takes effect on the very next
// request.
func (s *TokenService) authenticateClient(
	ctx context.Context,
	clientID, clientSecret string,
) (domain.Client, error) {
	l := slogx.FromContext(ctx)

	client, err := s.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrInvalidClient
		}
		return domain.Client{}, err
	}

	if err := cryptox.VerifySecret(clientSecret, client.SecretHash); err != nil {
		l.Info("client secret verification failed", "client_id", clientID)
		return domain.Client{}, ErrInvalidClient
	}

	if client.Status != domain.ClientActive {
		l.Info("inactive client rejected", "client_id", clientID, "status", string(client.Status))
		return domain.Client{}, ErrClientInactive
	}

	return client, nil
}

// issuePair creates an access/refresh pair inside the given transaction.
// Only fingerprints reach the store; the plaintext values exist solely in the
// returned TokenPair.
func (s *TokenService) issuePair(
	ctx context.Context,
	tx store.Tx,
	clientID string,
	scopes []string,
	now time.Time,
) (*domain.TokenPair, error) {
	accessOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}
	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	access := domain.Token{
		ID:        idx.New().String(),
		ClientID:  clientID,
		TokenHash: cryptox.FingerprintToken(accessOpaque),
		Type:      domain.TokenAccess,
		Scopes:    scopes,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.AccessTTL),
	}
	refresh := domain.Token{
		ID:        idx.New().String(),
		ClientID:  clientID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		Type:      domain.TokenRefresh,
		Scopes:    scopes,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.RefreshTTL),
	}

	if err := tx.Tokens().CreateToken(ctx, access); err != nil {
		return nil, err
	}
	if err := tx.Tokens().CreateToken(ctx, refresh); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessOpaque,
		RefreshToken: refreshOpaque,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
		Scope:        strings.Join(scopes, " "),
	}, nil
}

// scopesOutside returns the requested scopes that are not in allowed.
func scopesOutside(requested, allowed []string) []string {
	set := map[string]struct{}{}
	for _, s := range allowed {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range dedupe(requested) {
		if _, ok := set[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
