// Package memory is a mutex-guarded in-memory store driver. It backs unit and
// service tests that don't want a database file; it is not meant for
// production use.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/drawpoint/authd/internal/auth/domain"
	"github.com/drawpoint/authd/internal/auth/store"
)

type data struct {
	clients map[string]domain.Client // by id
	tokens  map[string]domain.Token  // by token hash
}

func newData() *data {
	return &data{
		clients: make(map[string]domain.Client),
		tokens:  make(map[string]domain.Token),
	}
}

func (d *data) clone() *data {
	next := newData()
	for id, c := range d.clients {
		next.clients[id] = c
	}
	for hash, t := range d.tokens {
		next.tokens[hash] = t
	}
	return next
}

type Store struct {
	mu   sync.Mutex
	data *data
}

func NewStore() *Store {
	return &Store{data: newData()}
}

func (s *Store) Close() error                   { return nil }
func (s *Store) Ping(ctx context.Context) error { return nil }
func (s *Store) ApplyMigrations() error         { return nil }

func (s *Store) Clients() store.Clients { return &clientsRepo{store: s} }
func (s *Store) Tokens() store.Tokens   { return &tokensRepo{store: s} }

// Tx takes the store lock for the transaction's lifetime and works on a
// snapshot, so concurrent transactions serialize exactly like a database
// write transaction would. Commit swaps the snapshot in; Rollback drops it.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	s.mu.Lock()
	return &txStore{
		parent:  s,
		working: s.data.clone(),
	}, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

type txStore struct {
	parent  *Store
	working *data
	done    bool
}

func (t *txStore) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.parent.data = t.working
	t.parent.mu.Unlock()
	return nil
}

func (t *txStore) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.parent.mu.Unlock()
	return nil
}

func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }
func (t *txStore) ApplyMigrations() error         { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, store.ErrNotFound // nested tx not supported
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return store.ErrNotFound // nested tx not supported
}

func (t *txStore) Clients() store.Clients { return &clientsRepo{tx: t} }
func (t *txStore) Tokens() store.Tokens   { return &tokensRepo{tx: t} }

// withData runs fn against the right data set: the transaction snapshot when
// repos come from a tx, otherwise the live data under the store lock.
func withData[T any](s *Store, tx *txStore, fn func(d *data) (T, error)) (T, error) {
	if tx != nil {
		return fn(tx.working)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

type clientsRepo struct {
	store *Store
	tx    *txStore
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	return withData(r.store, r.tx, func(d *data) (domain.Client, error) {
		c, ok := d.clients[id]
		if !ok {
			return domain.Client{}, store.ErrNotFound
		}
		return c, nil
	})
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	return withData(r.store, r.tx, func(d *data) ([]domain.Client, error) {
		clients := make([]domain.Client, 0, len(d.clients))
		for _, c := range d.clients {
			clients = append(clients, c)
		}
		return clients, nil
	})
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := withData(r.store, r.tx, func(d *data) (struct{}, error) {
		if _, ok := d.clients[c.ID]; ok {
			return struct{}{}, store.ErrAlreadyExists
		}
		now := time.Now().UTC()
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = now
		}
		d.clients[c.ID] = c
		return struct{}{}, nil
	})
	return err
}

func (r *clientsRepo) UpdateClientStatus(ctx context.Context, clientID string, status domain.ClientStatus) error {
	_, err := withData(r.store, r.tx, func(d *data) (struct{}, error) {
		c, ok := d.clients[clientID]
		if !ok {
			return struct{}{}, store.ErrNotFound
		}
		c.Status = status
		c.UpdatedAt = time.Now().UTC()
		d.clients[clientID] = c
		return struct{}{}, nil
	})
	return err
}

func (r *clientsRepo) IsEmpty(ctx context.Context) (bool, error) {
	return withData(r.store, r.tx, func(d *data) (bool, error) {
		return len(d.clients) == 0, nil
	})
}

type tokensRepo struct {
	store *Store
	tx    *txStore
}

func (r *tokensRepo) CreateToken(ctx context.Context, t domain.Token) error {
	_, err := withData(r.store, r.tx, func(d *data) (struct{}, error) {
		if _, ok := d.tokens[t.TokenHash]; ok {
			return struct{}{}, store.ErrAlreadyExists
		}
		now := time.Now().UTC()
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		if t.UpdatedAt.IsZero() {
			t.UpdatedAt = now
		}
		d.tokens[t.TokenHash] = t
		return struct{}{}, nil
	})
	return err
}

func (r *tokensRepo) GetTokenByHash(ctx context.Context, hash string) (domain.Token, error) {
	return withData(r.store, r.tx, func(d *data) (domain.Token, error) {
		t, ok := d.tokens[hash]
		if !ok {
			return domain.Token{}, store.ErrNotFound
		}
		return t, nil
	})
}

func (r *tokensRepo) RevokeToken(ctx context.Context, hash string) error {
	_, err := withData(r.store, r.tx, func(d *data) (struct{}, error) {
		t, ok := d.tokens[hash]
		if !ok {
			return struct{}{}, nil // idempotent, missing token is fine
		}
		t.Revoked = true
		t.UpdatedAt = time.Now().UTC()
		d.tokens[hash] = t
		return struct{}{}, nil
	})
	return err
}

func (r *tokensRepo) ConsumeToken(ctx context.Context, hash string) (bool, error) {
	return withData(r.store, r.tx, func(d *data) (bool, error) {
		t, ok := d.tokens[hash]
		if !ok || t.Revoked {
			return false, nil
		}
		t.Revoked = true
		t.UpdatedAt = time.Now().UTC()
		d.tokens[hash] = t
		return true, nil
	})
}

func (r *tokensRepo) RevokeClientTokens(ctx context.Context, clientID string) (int64, error) {
	return withData(r.store, r.tx, func(d *data) (int64, error) {
		var revoked int64
		now := time.Now().UTC()
		for hash, t := range d.tokens {
			if t.ClientID == clientID && !t.Revoked {
				t.Revoked = true
				t.UpdatedAt = now
				d.tokens[hash] = t
				revoked++
			}
		}
		return revoked, nil
	})
}

func (r *tokensRepo) DeleteExpiredRevokedTokens(ctx context.Context) error {
	_, err := withData(r.store, r.tx, func(d *data) (struct{}, error) {
		now := time.Now().UTC()
		for hash, t := range d.tokens {
			if t.Revoked && t.ExpiresAt.Before(now) {
				delete(d.tokens, hash)
			}
		}
		return struct{}{}, nil
	})
	return err
}
