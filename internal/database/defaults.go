package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/tenantshell/internal/database/repository"
)

// CorePluginID is the plugin that ships with the shell and is on unless
// explicitly disabled.
const CorePluginID = "core-plugin"

// SeedDefaults records the core plugin as enabled for new databases.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	repo := repository.NewPluginStateRepo(db)
	states, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list plugin state: %w", err)
	}
	if _, ok := states[CorePluginID]; ok {
		return nil
	}
	if err := repo.SetEnabled(ctx, CorePluginID, true); err != nil {
		return fmt.Errorf("seed core plugin: %w", err)
	}
	return nil
}
