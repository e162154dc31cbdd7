package plugins

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func allManifests(t *testing.T) string {
	return writeManifests(t, map[string]string{
		"core.yaml":    coreManifest,
		"wallet.yaml":  walletManifest,
		"reports.yaml": reportsManifest,
	})
}

func TestCatalogLoadRegistersCoreAndTenantFeatures(t *testing.T) {
	c := NewCatalog(&memState{}, zerolog.Nop())
	require.False(t, c.IsInitialized())

	require.NoError(t, c.Load(context.Background(), allManifests(t), []string{"wallet"}))
	require.True(t, c.IsInitialized())

	ids := []string{}
	for _, p := range c.EnabledPlugins() {
		ids = append(ids, p.ID)
	}
	require.ElementsMatch(t, []string{"core-plugin", "wallet"}, ids)

	_, ok := c.Manifest("reports")
	require.False(t, ok, "plugins outside the tenant's features are not registered")

	require.True(t, c.IsRouteAvailable("WalletSend"))
	require.False(t, c.IsRouteAvailable("Reports"))
	r, ok := c.RouteByName("Notifications")
	require.True(t, ok)
	require.Equal(t, "/notifications", r.Path)
}

func TestCatalogStoredOverrides(t *testing.T) {
	state := &memState{states: map[string]bool{"core-plugin": false, "reports": true}}
	c := NewCatalog(state, zerolog.Nop())
	require.NoError(t, c.Load(context.Background(), allManifests(t), nil))

	require.False(t, c.IsEnabled("core-plugin"))
	require.True(t, c.IsEnabled("reports"))
	require.False(t, c.IsEnabled("wallet"))
}

func TestCatalogSetEnabledPersists(t *testing.T) {
	ctx := context.Background()
	state := &memState{}
	c := NewCatalog(state, zerolog.Nop())
	require.NoError(t, c.Load(ctx, allManifests(t), []string{"wallet"}))

	require.NoError(t, c.SetEnabled(ctx, "wallet", false))
	require.False(t, c.IsEnabled("wallet"))
	require.Equal(t, map[string]bool{"wallet": false}, state.states)

	require.ErrorIs(t, c.SetEnabled(ctx, "reports", true), ErrPluginNotFound)

	require.NoError(t, c.Load(ctx, allManifests(t), []string{"wallet"}))
	require.False(t, c.IsEnabled("wallet"), "override survives a reload")
}

func TestCatalogMissingDirStillInitializes(t *testing.T) {
	c := NewCatalog(nil, zerolog.Nop())
	require.NoError(t, c.Load(context.Background(), t.TempDir()+"/missing", []string{"wallet"}))
	require.True(t, c.IsInitialized())
	require.Empty(t, c.EnabledPlugins())
}

func TestCatalogPluginRecord(t *testing.T) {
	c := NewCatalog(nil, zerolog.Nop())
	m, err := ParseManifest([]byte(walletManifest))
	require.NoError(t, err)
	c.Register(m)

	require.Empty(t, c.EnabledPlugins(), "segment plugins start disabled")
	c.Enable("wallet")
	c.Enable("unknown")

	rec, ok := c.Plugin("wallet")
	require.True(t, ok)
	require.Len(t, rec.Routes, 2)
	require.Equal(t, "WalletHome", rec.Routes[0].Component)
	require.Equal(t, "Wallet", rec.Routes[0].Meta.Title)
	require.Len(t, c.EnabledPlugins(), 1)
}
