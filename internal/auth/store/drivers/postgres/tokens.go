package postgres

import (
	"context"
	"time"

	"github.com/drawpoint/authd/internal/auth/domain"
)

type tokensRepo struct {
	db dbtx
}

func (r *tokensRepo) CreateToken(ctx context.Context, t domain.Token) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tokens (id, client_id, token_hash, token_type, scopes, issued_at, expires_at, revoked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.ClientID, t.TokenHash, string(t.Type), joinScopes(t.Scopes),
		t.IssuedAt, t.ExpiresAt, t.Revoked, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *tokensRepo) GetTokenByHash(ctx context.Context, hash string) (domain.Token, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, client_id, token_hash, token_type, scopes, issued_at, expires_at, revoked, created_at, updated_at
		FROM tokens
		WHERE token_hash = $1`, hash)

	return scanToken(row)
}

func (r *tokensRepo) RevokeToken(ctx context.Context, hash string) error {
	// Unconditional and idempotent: zero rows affected is fine.
	_, err := r.db.ExecContext(ctx, `
		UPDATE tokens
		SET revoked = TRUE, updated_at = $1
		WHERE token_hash = $2`,
		time.Now().UTC(), hash)
	return err
}

func (r *tokensRepo) ConsumeToken(ctx context.Context, hash string) (bool, error) {
	// The revoked = FALSE guard plus the affected-rows check makes this the
	// linearization point for refresh rotation: only one caller flips the row.
	res, err := r.db.ExecContext(ctx, `
		UPDATE tokens
		SET revoked = TRUE, updated_at = $1
		WHERE token_hash = $2 AND revoked = FALSE`,
		time.Now().UTC(), hash)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *tokensRepo) RevokeClientTokens(ctx context.Context, clientID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tokens
		SET revoked = TRUE, updated_at = $1
		WHERE client_id = $2 AND revoked = FALSE`,
		time.Now().UTC(), clientID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *tokensRepo) DeleteExpiredRevokedTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM tokens
		WHERE revoked = TRUE AND expires_at < $1`,
		time.Now().UTC())
	return err
}

func scanToken(row scanner) (domain.Token, error) {
	var (
		t         domain.Token
		tokenType string
		scopes    string
	)
	err := row.Scan(&t.ID, &t.ClientID, &t.TokenHash, &tokenType, &scopes,
		&t.IssuedAt, &t.ExpiresAt, &t.Revoked, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Token{}, mapNotFound(err)
	}

	t.Type = domain.TokenType(tokenType)
	t.Scopes = splitScopes(scopes)
	return t, nil
}
