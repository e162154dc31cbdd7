package navigation

import (
	"fmt"

	"github.com/rs/zerolog"
)

type SkipReason string

const (
	SkipNoLoader     SkipReason = "no-loader"
	SkipResolveError SkipReason = "resolve-error"
	SkipInvalidRoute SkipReason = "invalid-route"
)

type SkippedRoute struct {
	PluginID string
	Route    string
	Reason   SkipReason
	Err      error
}

// LoadPluginRoutes turns the enabled plugin set into lazily loaded screens.
// Loading is best-effort per route: a route that cannot be resolved is
// reported in skipped and never stops its siblings. An uninitialized catalog
// yields no routes.
func LoadPluginRoutes(catalog PluginCatalog, resolver LoaderResolver, log zerolog.Logger) (routes []Screen, skipped []SkippedRoute) {
	if catalog == nil || !catalog.IsInitialized() {
		log.Warn().Msg("plugin catalog not initialized, no plugin routes")
		return nil, nil
	}
	for _, plugin := range catalog.EnabledPlugins() {
		if full, ok := catalog.Plugin(plugin.ID); ok {
			plugin = full
		}
		for _, route := range plugin.Routes {
			screen, skip := resolveRoute(resolver, plugin.ID, route)
			if skip != nil {
				logSkip(log, *skip)
				skipped = append(skipped, *skip)
				continue
			}
			routes = append(routes, screen)
		}
	}
	return routes, skipped
}

func resolveRoute(resolver LoaderResolver, pluginID string, route RouteDeclaration) (screen Screen, skip *SkippedRoute) {
	if route.Name == "" {
		return Screen{}, &SkippedRoute{PluginID: pluginID, Route: route.Component, Reason: SkipInvalidRoute}
	}
	defer func() {
		if r := recover(); r != nil {
			skip = &SkippedRoute{
				PluginID: pluginID,
				Route:    route.Name,
				Reason:   SkipResolveError,
				Err:      fmt.Errorf("resolve loader: panic: %v", r),
			}
		}
	}()
	if resolver == nil {
		return Screen{}, &SkippedRoute{PluginID: pluginID, Route: route.Name, Reason: SkipNoLoader}
	}
	load, err := resolver.ResolveLoader(pluginID, route.Component)
	if err != nil {
		return Screen{}, &SkippedRoute{PluginID: pluginID, Route: route.Name, Reason: SkipResolveError, Err: err}
	}
	if load == nil {
		return Screen{}, &SkippedRoute{PluginID: pluginID, Route: route.Name, Reason: SkipNoLoader}
	}
	return Screen{
		Key:       route.Name,
		Name:      route.Name,
		Title:     route.Meta.Title,
		Source:    SourcePlugin,
		PluginID:  pluginID,
		Component: NewLazy(load),
	}, nil
}

func logSkip(log zerolog.Logger, s SkippedRoute) {
	ev := log.Warn()
	if s.Reason == SkipResolveError {
		ev = log.Error().Err(s.Err)
	}
	ev.Str("plugin", s.PluginID).
		Str("route", s.Route).
		Str("reason", string(s.Reason)).
		Msg("plugin route skipped")
}
