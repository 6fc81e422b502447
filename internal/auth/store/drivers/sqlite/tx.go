package sqlite

import (
	"context"
	"database/sql"

	"github.com/drawpoint/authd/internal/auth/store"
)

// txStore exposes the repositories over a single open transaction so a
// service method can make several writes land atomically.
type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op. The caller commits or rolls back, and the outer
// database handle stays open.
func (t *txStore) Close() error { return nil }

// Ping always succeeds inside a transaction; the connection was checked
// out when the transaction began.
func (t *txStore) Ping(ctx context.Context) error { return nil }

// Tx rejects nesting. SAVEPOINT emulation is possible but nothing in the
// service layer needs it.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Clients() store.Clients { return &clientsRepo{db: t.tx} }
func (t *txStore) Tokens() store.Tokens   { return &tokensRepo{db: t.tx} }

// ApplyMigrations is a no-op; the schema is migrated before any
// transaction starts.
func (t *txStore) ApplyMigrations() error { return nil }
