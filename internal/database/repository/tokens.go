package repository

import (
	"context"
	"database/sql"
	"errors"
)

// TokenRepo stores the single signed-in token pair.
type TokenRepo struct {
	db *sql.DB
}

func NewTokenRepo(db *sql.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// Load returns nil when no token is stored.
func (r *TokenRepo) Load(ctx context.Context) (*Token, error) {
	var t Token
	err := r.db.QueryRowContext(ctx, `
	SELECT access_token, refresh_token, subject, expires_at, updated_at
	FROM auth_tokens WHERE id = 1`).Scan(&t.AccessToken, &t.RefreshToken, &t.Subject, &t.ExpiresAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TokenRepo) Save(ctx context.Context, t Token) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO auth_tokens(id, access_token, refresh_token, subject, expires_at, updated_at)
	VALUES (1, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 access_token=excluded.access_token,
	 refresh_token=excluded.refresh_token,
	 subject=excluded.subject,
	 expires_at=excluded.expires_at,
	 updated_at=excluded.updated_at;
	`, t.AccessToken, t.RefreshToken, t.Subject, t.ExpiresAt)
	return err
}

func (r *TokenRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM auth_tokens`)
	return err
}
