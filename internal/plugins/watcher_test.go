package plugins

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsOnManifestChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := writeManifests(t, map[string]string{"core.yaml": coreManifest})
	c := NewCatalog(nil, zerolog.Nop())
	require.NoError(t, c.Load(ctx, dir, []string{"wallet"}))
	require.False(t, c.IsEnabled("wallet"))

	changed := make(chan struct{}, 4)
	w, err := NewWatcher(dir, c, []string{"wallet"}, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}, zerolog.Nop())
	require.NoError(t, err)
	w.debounce = 20 * time.Millisecond
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wallet.yaml"), []byte(walletManifest), 0o644))

	require.Eventually(t, func() bool { return c.IsEnabled("wallet") }, 5*time.Second, 10*time.Millisecond)
	select {
	case <-changed:
	case <-time.After(time.Second):
		t.Fatal("onChange not called after reload")
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), NewCatalog(nil, zerolog.Nop()), nil, nil, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
