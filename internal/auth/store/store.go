package store

import (
	"context"
	"errors"

	"github.com/drawpoint/authd/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres,
// memory) implement this. It exposes sub-repositories to keep concerns tidy
// and testable, and to stop callers from accidentally nesting transactions.
type Store interface {
	Clients() Clients
	Tokens() Tokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., refresh rotation).
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// This is the recommended way to handle transactions as it automatically
	// handles commit/rollback logic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Clients interface {
	// GetClientByID fetches a client. Used on every authenticated call so the
	// status check is always against the current row.
	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// ListClients returns all clients ordered by creation date (newest first).
	ListClients(ctx context.Context) ([]domain.Client, error)

	// CreateClient inserts a new client (id is ULID, secret_hash is argon2 encoded).
	CreateClient(ctx context.Context, c domain.Client) error

	// UpdateClientStatus flips the lifecycle status and bumps updated_at.
	UpdateClientStatus(ctx context.Context, clientID string, status domain.ClientStatus) error

	// IsEmpty returns true if there are no clients.
	IsEmpty(ctx context.Context) (bool, error)
}

type Tokens interface {
	// CreateToken stores a new token record (access or refresh).
	CreateToken(ctx context.Context, t domain.Token) error

	// GetTokenByHash returns the token by its fingerprint.
	GetTokenByHash(ctx context.Context, hash string) (domain.Token, error)

	// RevokeToken flips revoked=1 and sets updated_at. Idempotent; revoking a
	// missing or already-revoked token is not an error.
	RevokeToken(ctx context.Context, hash string) error

	// ConsumeToken atomically revokes a live token and reports whether this
	// call was the one that flipped it. The conditional update is the rotation
	// primitive: of N concurrent consumers exactly one sees true.
	ConsumeToken(ctx context.Context, hash string) (bool, error)

	// RevokeClientTokens bulk-revokes every live token for a client and
	// returns the number of rows hit.
	RevokeClientTokens(ctx context.Context, clientID string) (int64, error)

	// DeleteExpiredRevokedTokens removes rows that are both expired and
	// revoked. Everything else is retained for introspection history.
	DeleteExpiredRevokedTokens(ctx context.Context) error
}
