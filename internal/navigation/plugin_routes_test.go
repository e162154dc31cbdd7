package navigation

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func walletPlugin() PluginRecord {
	return PluginRecord{
		ID: "wallet",
		Routes: []RouteDeclaration{
			{Name: "WalletHome", Component: "WalletHome", Meta: RouteMeta{Title: "Wallet"}},
			{Name: "WalletSend", Component: "WalletSend"},
			{Name: "WalletHistory", Component: "WalletHistory"},
		},
	}
}

func TestLoadPluginRoutesSkipsRouteWithoutLoader(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	catalog := &fakeCatalog{initialized: true, plugins: []PluginRecord{walletPlugin()}}

	routes, skipped := LoadPluginRoutes(catalog, resolverFor("WalletSend"), log)

	if len(routes) != 2 {
		t.Fatalf("routes = %d, want 2", len(routes))
	}
	if routes[0].Name != "WalletHome" || routes[1].Name != "WalletHistory" {
		t.Fatalf("unexpected routes %s, %s", routes[0].Name, routes[1].Name)
	}
	if routes[0].Title != "Wallet" || routes[0].PluginID != "wallet" {
		t.Fatalf("route metadata not carried: %+v", routes[0])
	}
	if len(skipped) != 1 || skipped[0].Route != "WalletSend" || skipped[0].Reason != SkipNoLoader {
		t.Fatalf("unexpected skipped %+v", skipped)
	}
	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, "plugin route skipped") || !strings.Contains(out, "WalletSend") {
		t.Fatalf("expected a skip warning, got %s", out)
	}
}

func TestLoadPluginRoutesIsolatesResolverFailures(t *testing.T) {
	plugin := PluginRecord{
		ID: "reports",
		Routes: []RouteDeclaration{
			{Name: "Broken", Component: "Broken"},
			{Name: "Panics", Component: "Panics"},
			{Component: "Nameless"},
			{Name: "Summary", Component: "Summary"},
		},
	}
	resolver := LoaderResolverFunc(func(pluginID, ref string) (Loader, error) {
		if ref == "Panics" {
			panic("resolver exploded")
		}
		return resolverFor().ResolveLoader(pluginID, ref)
	})
	catalog := &fakeCatalog{initialized: true, plugins: []PluginRecord{plugin}}

	routes, skipped := LoadPluginRoutes(catalog, resolver, zerolog.Nop())

	if len(routes) != 1 || routes[0].Name != "Summary" {
		t.Fatalf("unexpected routes %+v", routes)
	}
	reasons := map[string]SkipReason{}
	for _, s := range skipped {
		reasons[s.Route] = s.Reason
	}
	if reasons["Broken"] != SkipResolveError || reasons["Panics"] != SkipResolveError || reasons["Nameless"] != SkipInvalidRoute {
		t.Fatalf("unexpected skip reasons %v", reasons)
	}
}

func TestLoadPluginRoutesUninitializedCatalog(t *testing.T) {
	catalog := &fakeCatalog{plugins: []PluginRecord{walletPlugin()}}
	routes, skipped := LoadPluginRoutes(catalog, resolverFor(), zerolog.Nop())
	if routes != nil || skipped != nil {
		t.Fatalf("expected nothing from an uninitialized catalog")
	}
	if catalog.loads.Load() != 0 {
		t.Fatalf("enabled plugins read from uninitialized catalog")
	}
}

func TestLoadPluginRoutesDefersComponentLoad(t *testing.T) {
	loaded := 0
	resolver := LoaderResolverFunc(func(pluginID, ref string) (Loader, error) {
		return func(context.Context) (Component, error) {
			loaded++
			return textComponent(ref), nil
		}, nil
	})
	catalog := &fakeCatalog{initialized: true, plugins: []PluginRecord{walletPlugin()}}

	routes, _ := LoadPluginRoutes(catalog, resolver, zerolog.Nop())
	if loaded != 0 {
		t.Fatalf("components loaded eagerly")
	}
	comp, err := routes[1].Component.Load(context.Background())
	if err != nil || comp.View(0, 0) != "WalletSend" || loaded != 1 {
		t.Fatalf("lazy load failed: %v %v %d", comp, err, loaded)
	}
}

// summaryCatalog lists enabled plugins without routes; Plugin has the full record.
type summaryCatalog struct {
	enabled []PluginRecord
	full    map[string]PluginRecord
}

func (c summaryCatalog) IsInitialized() bool            { return true }
func (c summaryCatalog) EnabledPlugins() []PluginRecord { return c.enabled }
func (c summaryCatalog) Plugin(id string) (PluginRecord, bool) {
	p, ok := c.full[id]
	return p, ok
}

func TestLoadPluginRoutesPrefersFullPluginRecord(t *testing.T) {
	catalog := summaryCatalog{
		enabled: []PluginRecord{
			{ID: "wallet"},
			{ID: "reports", Routes: []RouteDeclaration{{Name: "Summary", Component: "Summary"}}},
		},
		full: map[string]PluginRecord{"wallet": walletPlugin()},
	}

	routes, skipped := LoadPluginRoutes(catalog, resolverFor(), zerolog.Nop())

	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped %+v", skipped)
	}
	var names []string
	for _, r := range routes {
		names = append(names, r.PluginID+"/"+r.Name)
	}
	want := "wallet/WalletHome,wallet/WalletSend,wallet/WalletHistory,reports/Summary"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("routes = %s, want %s", got, want)
	}
}
