package plugins

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jask/tenantshell/internal/navigation"
)

var (
	ErrPluginNotFound       = errors.New("plugin not found")
	ErrPluginNotEnabled     = errors.New("plugin not enabled")
	ErrComponentNotExported = errors.New("component not exported")
)

// StateStore persists per-device enable/disable overrides.
type StateStore interface {
	List(ctx context.Context) (map[string]bool, error)
	SetEnabled(ctx context.Context, pluginID string, enabled bool) error
}

// Catalog is the set of registered plugins and which of them are enabled.
// It is safe for concurrent use.
type Catalog struct {
	state StateStore
	log   zerolog.Logger

	mu          sync.RWMutex
	order       []string
	plugins     map[string]Manifest
	enabled     map[string]bool
	invalid     []LoadError
	initialized bool
}

func NewCatalog(state StateStore, log zerolog.Logger) *Catalog {
	return &Catalog{
		state:   state,
		log:     log.With().Str("component", "plugins").Logger(),
		plugins: make(map[string]Manifest),
		enabled: make(map[string]bool),
	}
}

// Register adds or replaces a manifest. Core plugins start enabled.
func (c *Catalog) Register(m Manifest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.register(m)
}

func (c *Catalog) register(m Manifest) {
	if _, ok := c.plugins[m.ID]; !ok {
		c.order = append(c.order, m.ID)
	}
	c.plugins[m.ID] = m
	if m.Type == TypeCore {
		c.enabled[m.ID] = true
	}
}

// Enable turns on a registered plugin. Unknown ids are ignored.
func (c *Catalog) Enable(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.plugins[id]; ok {
		c.enabled[id] = true
	}
}

func (c *Catalog) Disable(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.enabled, id)
}

// SetEnabled toggles a plugin and remembers the choice across launches.
func (c *Catalog) SetEnabled(ctx context.Context, id string, enabled bool) error {
	c.mu.RLock()
	_, ok := c.plugins[id]
	c.mu.RUnlock()
	if !ok {
		return fmt.Errorf("set plugin %q: %w", id, ErrPluginNotFound)
	}
	if c.state != nil {
		if err := c.state.SetEnabled(ctx, id, enabled); err != nil {
			return fmt.Errorf("save plugin state: %w", err)
		}
	}
	if enabled {
		c.Enable(id)
	} else {
		c.Disable(id)
	}
	return nil
}

func (c *Catalog) IsEnabled(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled[id]
}

func (c *Catalog) IsInitialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

func (c *Catalog) MarkInitialized() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialized = true
}

func (c *Catalog) Manifest(id string) (Manifest, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.plugins[id]
	return m, ok
}

// Manifests returns every registered manifest in registration order.
func (c *Catalog) Manifests() []Manifest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Manifest, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.plugins[id])
	}
	return out
}

// Invalid returns the manifests rejected by the last Load.
func (c *Catalog) Invalid() []LoadError {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]LoadError(nil), c.invalid...)
}

func (c *Catalog) Plugin(id string) (navigation.PluginRecord, bool) {
	m, ok := c.Manifest(id)
	if !ok {
		return navigation.PluginRecord{}, false
	}
	return toRecord(m), true
}

func (c *Catalog) EnabledPlugins() []navigation.PluginRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []navigation.PluginRecord
	for _, id := range c.order {
		if c.enabled[id] {
			out = append(out, toRecord(c.plugins[id]))
		}
	}
	return out
}

// EnabledRoutes lists the routes of every enabled plugin.
func (c *Catalog) EnabledRoutes() []Route {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Route
	for _, id := range c.order {
		if c.enabled[id] {
			out = append(out, c.plugins[id].Routes...)
		}
	}
	return out
}

func (c *Catalog) RouteByName(name string) (Route, bool) {
	for _, r := range c.EnabledRoutes() {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

func (c *Catalog) IsRouteAvailable(name string) bool {
	_, ok := c.RouteByName(name)
	return ok
}

// Load replaces the catalog contents with the manifests in dir. Core plugins,
// the tenant's enabled features and plugins with a stored "on" override are
// registered; stored overrides then decide the final state. The catalog is
// marked initialized even when loading fails, so the shell runs without
// plugins instead of waiting for them.
func (c *Catalog) Load(ctx context.Context, dir string, enabledFeatures []string) error {
	defer c.MarkInitialized()

	manifests, invalid, err := LoadDir(dir)
	if err != nil {
		c.log.Error().Err(err).Str("dir", dir).Msg("plugin manifests not loaded")
		return err
	}
	for _, e := range invalid {
		c.log.Warn().Err(e.Err).Str("path", e.Path).Msg("plugin manifest rejected")
	}

	overrides := map[string]bool{}
	if c.state != nil {
		if overrides, err = c.state.List(ctx); err != nil {
			c.log.Warn().Err(err).Msg("plugin state unavailable, using tenant defaults")
			overrides = map[string]bool{}
		}
	}

	wanted := make(map[string]bool, len(enabledFeatures))
	for _, id := range enabledFeatures {
		wanted[id] = true
	}
	for id, on := range overrides {
		if on {
			wanted[id] = true
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	c.plugins = make(map[string]Manifest)
	c.enabled = make(map[string]bool)
	c.invalid = invalid
	for _, m := range manifests {
		if m.Type == TypeCore || wanted[m.ID] {
			c.register(m)
		}
	}
	for id := range wanted {
		if _, ok := c.plugins[id]; ok {
			c.enabled[id] = true
		}
	}
	for id, on := range overrides {
		if !on {
			delete(c.enabled, id)
		}
	}
	c.log.Info().Int("registered", len(c.order)).Int("enabled", len(c.enabled)).Int("rejected", len(invalid)).Msg("plugin catalog loaded")
	return nil
}

func toRecord(m Manifest) navigation.PluginRecord {
	rec := navigation.PluginRecord{ID: m.ID}
	for _, r := range m.Routes {
		rec.Routes = append(rec.Routes, navigation.RouteDeclaration{
			Name:      r.Name,
			Component: r.Component,
			Meta: navigation.RouteMeta{
				Title:      r.Meta.Title,
				Icon:       r.Meta.Icon,
				ShowInMenu: r.Meta.ShowInMenu,
			},
		})
	}
	return rec
}
