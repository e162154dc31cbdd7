package plugins

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const coreManifest = `
id: core-plugin
name: Core
version: 1.0.0
description: Screens every tenant gets
type: core-plugin
dependencies: []
exports:
  components: [Notifications]
permissions: []
routes:
  - name: Notifications
    path: /notifications
    component: Notifications
    permissions: []
    meta:
      title: Notifications
      show_in_menu: true
`

const walletManifest = `
id: wallet
name: Wallet
version: 2.1.0-beta.1
description: Balance and transfers
type: segment-plugin
dependencies: [core-plugin]
exports:
  components: [WalletHome, WalletSend]
permissions: [wallet.read]
routes:
  - name: WalletHome
    path: /wallet
    component: WalletHome
    permissions: [wallet.read]
    meta:
      title: Wallet
  - name: WalletSend
    path: /wallet/send
    component: WalletSend
    permissions: [wallet.write]
`

const reportsManifest = `
id: reports
name: Reports
version: 0.3.0
description: Company reports
type: company-plugin
dependencies: []
exports:
  components: [Reports]
permissions: []
routes:
  - name: Reports
    path: /reports
    component: Reports
    permissions: []
`

func writeManifests(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

type memState struct {
	mu     sync.Mutex
	states map[string]bool
}

func (m *memState) List(context.Context) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]bool, len(m.states))
	for k, v := range m.states {
		out[k] = v
	}
	return out, nil
}

func (m *memState) SetEnabled(_ context.Context, id string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.states == nil {
		m.states = map[string]bool{}
	}
	m.states[id] = enabled
	return nil
}
