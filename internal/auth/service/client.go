package service

import (
	"context"
	"errors"

	"github.com/drawpoint/authd/internal/auth/domain"
	"github.com/drawpoint/authd/internal/auth/store"
	"github.com/drawpoint/authd/pkg/cryptox"
	"github.com/drawpoint/authd/pkg/idx"
	"github.com/drawpoint/authd/pkg/slogx"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrInvalidStatus  = errors.New("invalid client status")
)

type ClientService struct {
	Store store.Store
}

// CreateClient registers a new machine client. A secure secret is generated
// and returned in plaintext exactly once; only its argon2 hash is stored.
func (s *ClientService) CreateClient(
	ctx context.Context,
	name string,
	scopes []string,
	rateLimit int,
) (clientID string, plaintextSecret string, err error) {
	l := slogx.FromContext(ctx)

	secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		l.Error("failed to generate client secret", "error", err)
		return "", "", err
	}
	plaintextSecret = secret

	secretHash, err := cryptox.HashSecret(secret)
	if err != nil {
		l.Error("failed to hash client secret", "error", err)
		return "", "", err
	}

	clientID = idx.New().String()

	err = s.Store.Clients().CreateClient(ctx, domain.Client{
		ID:         clientID,
		Name:       name,
		SecretHash: secretHash,
		Scopes:     scopes,
		Status:     domain.ClientActive,
		RateLimit:  rateLimit,
	})
	if err != nil {
		l.Error("failed to create client", "error", err)
		return "", "", err
	}

	l.Info("client created successfully", "client_id", clientID, "name", name)
	return clientID, plaintextSecret, nil
}

// ListClients returns all registered clients.
func (s *ClientService) ListClients(ctx context.Context) ([]domain.Client, error) {
	return s.Store.Clients().ListClients(ctx)
}

// UpdateClientStatus flips a client's lifecycle status. All transitions are
// allowed, including reactivating a suspended or revoked client. Outstanding
// tokens are untouched; cascading is the explicit RevokeClientTokens action.
func (s *ClientService) UpdateClientStatus(
	ctx context.Context,
	clientID string,
	status domain.ClientStatus,
) (domain.Client, error) {
	l := slogx.FromContext(ctx)

	if !status.Valid() {
		return domain.Client{}, ErrInvalidStatus
	}

	if err := s.Store.Clients().UpdateClientStatus(ctx, clientID, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrClientNotFound
		}
		return domain.Client{}, err
	}

	l.Info("client status updated", "client_id", clientID, "status", string(status))
	return s.Store.Clients().GetClientByID(ctx, clientID)
}

// RevokeClientTokens revokes every live token issued to a client and returns
// the number of rows hit. This is the deliberate cascade that a status flip
// alone does not perform.
func (s *ClientService) RevokeClientTokens(ctx context.Context, clientID string) (int64, error) {
	l := slogx.FromContext(ctx)

	if _, err := s.Store.Clients().GetClientByID(ctx, clientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrClientNotFound
		}
		return 0, err
	}

	revoked, err := s.Store.Tokens().RevokeClientTokens(ctx, clientID)
	if err != nil {
		l.Error("failed to revoke client tokens", "error", err, "client_id", clientID)
		return 0, err
	}

	l.Info("client tokens revoked", "client_id", clientID, "revoked", revoked)
	return revoked, nil
}
