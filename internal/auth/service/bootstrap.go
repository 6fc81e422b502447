package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/drawpoint/authd/internal/auth/domain"
	"github.com/drawpoint/authd/internal/auth/store"
	"github.com/drawpoint/authd/pkg/cryptox"
	"github.com/drawpoint/authd/pkg/idx"
	"github.com/drawpoint/authd/pkg/slogx"
)

var (
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
)

// BootstrapService creates the first machine client on an empty store. It is
// guarded by a pre-shared token and refuses to run once any client exists.
type BootstrapService struct {
	Store store.Store
	Token string // Pre-configured bootstrap token
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Clients().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap creates the initial client and returns its ID and plaintext
// secret. The secret is never recoverable afterwards.
func (s *BootstrapService) Bootstrap(
	ctx context.Context,
	token string,
	clientName string,
	clientScopes []string,
) (string, string, error) {
	l := slogx.FromContext(ctx)

	if bootstrapped, err := s.IsBootstrapped(ctx); err != nil {
		return "", "", err
	} else if bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return "", "", ErrBootstrapAlready
	}

	if s.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return "", "", ErrBootstrapUnauthorized
	}

	clientSecret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		l.Error("failed to generate client secret", slog.Any("error", err))
		return "", "", errors.New("failed to generate client secret")
	}

	clientSecretHash, err := cryptox.HashSecret(clientSecret)
	if err != nil {
		l.Error("failed to hash client secret", slog.Any("error", err))
		return "", "", errors.New("failed to hash client secret")
	}

	clientID := idx.New().String()
	err = s.Store.Clients().CreateClient(ctx, domain.Client{
		ID:         clientID,
		Name:       clientName,
		SecretHash: clientSecretHash,
		Scopes:     clientScopes,
		Status:     domain.ClientActive,
	})
	if err != nil {
		l.Error("failed to create client",
			slog.String("client_id", clientID),
			slog.Any("error", err),
		)
		return "", "", errors.New("failed to create client")
	}

	l.Info("successfully bootstrapped system", slog.String("client_id", clientID))
	return clientID, clientSecret, nil
}
