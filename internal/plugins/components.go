package plugins

import (
	"context"
	"fmt"
	"sync"

	"github.com/jask/tenantshell/internal/navigation"
)

// Components maps plugin component references to the Go code rendering
// them. It implements navigation.LoaderResolver.
type Components struct {
	catalog *Catalog

	mu      sync.RWMutex
	loaders map[string]map[string]navigation.Loader
}

func NewComponents(catalog *Catalog) *Components {
	return &Components{catalog: catalog, loaders: make(map[string]map[string]navigation.Loader)}
}

// Register binds pluginID's component name to load.
func (c *Components) Register(pluginID, name string, load navigation.Loader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaders[pluginID] == nil {
		c.loaders[pluginID] = make(map[string]navigation.Loader)
	}
	c.loaders[pluginID][name] = load
}

func (c *Components) lookup(pluginID, name string) navigation.Loader {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaders[pluginID][name]
}

// ResolveLoader returns nil with no error when nothing is registered for the
// component. The returned loader checks again at load time that the plugin is
// still enabled.
func (c *Components) ResolveLoader(pluginID, name string) (navigation.Loader, error) {
	if err := c.check(pluginID, name); err != nil {
		return nil, err
	}
	load := c.lookup(pluginID, name)
	if load == nil {
		return nil, nil
	}
	return func(ctx context.Context) (navigation.Component, error) {
		if err := c.check(pluginID, name); err != nil {
			return nil, err
		}
		return load(ctx)
	}, nil
}

func (c *Components) check(pluginID, name string) error {
	if !c.catalog.IsEnabled(pluginID) {
		return fmt.Errorf("plugin %s: %w", pluginID, ErrPluginNotEnabled)
	}
	m, ok := c.catalog.Manifest(pluginID)
	if !ok {
		return fmt.Errorf("plugin %s: %w", pluginID, ErrPluginNotFound)
	}
	if !m.Exported(name) {
		return fmt.Errorf("component %s of plugin %s: %w", name, pluginID, ErrComponentNotExported)
	}
	return nil
}
