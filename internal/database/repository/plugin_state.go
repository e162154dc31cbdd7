package repository

import (
	"context"
	"database/sql"
)

// PluginStateRepo persists per-device plugin enable/disable overrides.
type PluginStateRepo struct {
	db *sql.DB
}

func NewPluginStateRepo(db *sql.DB) *PluginStateRepo {
	return &PluginStateRepo{db: db}
}

// List returns the stored overrides keyed by plugin id.
func (r *PluginStateRepo) List(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT plugin_id, enabled FROM plugin_state ORDER BY plugin_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var (
			id      string
			enabled bool
		)
		if err := rows.Scan(&id, &enabled); err != nil {
			return nil, err
		}
		out[id] = enabled
	}
	return out, rows.Err()
}

func (r *PluginStateRepo) SetEnabled(ctx context.Context, pluginID string, enabled bool) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO plugin_state(plugin_id, enabled, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(plugin_id) DO UPDATE SET
	 enabled=excluded.enabled,
	 updated_at=excluded.updated_at;
	`, pluginID, enabled)
	return err
}
