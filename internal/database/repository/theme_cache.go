package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ThemeCacheRepo keeps the last primary colour fetched per tenant.
type ThemeCacheRepo struct {
	db *sql.DB
}

func NewThemeCacheRepo(db *sql.DB) *ThemeCacheRepo {
	return &ThemeCacheRepo{db: db}
}

// Get returns nil when nothing is cached for tenantID.
func (r *ThemeCacheRepo) Get(ctx context.Context, tenantID string) (*ThemeColor, error) {
	var c ThemeColor
	err := r.db.QueryRowContext(ctx, `
	SELECT tenant_id, primary_color, fetched_at FROM theme_cache WHERE tenant_id = ?`, tenantID).
		Scan(&c.TenantID, &c.PrimaryColor, &c.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ThemeCacheRepo) Put(ctx context.Context, c ThemeColor) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO theme_cache(tenant_id, primary_color, fetched_at)
	VALUES (?, ?, ?)
	ON CONFLICT(tenant_id) DO UPDATE SET
	 primary_color=excluded.primary_color,
	 fetched_at=excluded.fetched_at;
	`, c.TenantID, c.PrimaryColor, c.FetchedAt)
	return err
}
