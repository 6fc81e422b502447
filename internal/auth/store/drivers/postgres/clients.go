package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/drawpoint/authd/internal/auth/domain"
)

type clientsRepo struct {
	db dbtx
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, secret_hash, scopes, status, rate_limit, created_at, updated_at
		FROM clients
		WHERE id = $1`, id)

	return scanClient(row)
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, secret_hash, scopes, status, rate_limit, created_at, updated_at
		FROM clients
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, secret_hash, scopes, status, rate_limit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Name, c.SecretHash, joinScopes(c.Scopes), string(c.Status), c.RateLimit,
		c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *clientsRepo) UpdateClientStatus(
	ctx context.Context,
	clientID string,
	status domain.ClientStatus,
) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clients
		SET status = $1, updated_at = $2
		WHERE id = $3`,
		string(status), time.Now().UTC(), clientID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func (r *clientsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClient(row scanner) (domain.Client, error) {
	var (
		c      domain.Client
		scopes string
		status string
	)
	err := row.Scan(&c.ID, &c.Name, &c.SecretHash, &scopes, &status, &c.RateLimit,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}

	c.Scopes = splitScopes(scopes)
	c.Status = domain.ClientStatus(status)
	return c, nil
}
