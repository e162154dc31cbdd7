package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/tenantshell/internal/database"
	"github.com/jask/tenantshell/internal/database/repository"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenAndMigrate(filepath.Join(t.TempDir(), "shell.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPreferenceRepo(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPreferenceRepo(openDB(t))

	_, ok, err := repo.Get(ctx, "onboarding_completed")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.Set(ctx, "onboarding_completed", "false"))
	require.NoError(t, repo.Set(ctx, "onboarding_completed", "true"))
	v, ok, err := repo.Get(ctx, "onboarding_completed")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "true", v)

	require.NoError(t, repo.Delete(ctx, "onboarding_completed"))
	_, ok, err = repo.Get(ctx, "onboarding_completed")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTokenRepo(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTokenRepo(openDB(t))

	tok, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, tok)

	exp := database.Now().Add(time.Hour)
	refresh := "refresh-1"
	require.NoError(t, repo.Save(ctx, repository.Token{AccessToken: "a1", RefreshToken: &refresh, Subject: "demo", ExpiresAt: &exp}))
	require.NoError(t, repo.Save(ctx, repository.Token{AccessToken: "a2", Subject: "demo"}))

	tok, err = repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, tok)
	require.Equal(t, "a2", tok.AccessToken)
	require.Nil(t, tok.RefreshToken)
	require.Nil(t, tok.ExpiresAt)

	require.NoError(t, repo.Clear(ctx))
	tok, err = repo.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, tok)
}

func TestPluginStateRepo(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPluginStateRepo(openDB(t))

	require.NoError(t, repo.SetEnabled(ctx, "wallet", true))
	require.NoError(t, repo.SetEnabled(ctx, "reports", false))
	require.NoError(t, repo.SetEnabled(ctx, "wallet", false))

	states, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"wallet": false, "reports": false}, states)
}

func TestThemeCacheRepo(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewThemeCacheRepo(openDB(t))

	c, err := repo.Get(ctx, "acme")
	require.NoError(t, err)
	require.Nil(t, c)

	at := database.Now()
	require.NoError(t, repo.Put(ctx, repository.ThemeColor{TenantID: "acme", PrimaryColor: "#112233", FetchedAt: at}))
	require.NoError(t, repo.Put(ctx, repository.ThemeColor{TenantID: "acme", PrimaryColor: "#445566", FetchedAt: at}))

	c, err = repo.Get(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, "#445566", c.PrimaryColor)
	require.True(t, at.Equal(c.FetchedAt))
}
