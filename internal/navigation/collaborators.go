package navigation

import "context"

// Component is a renderable screen body. It is only resolved at the
// presentation boundary; the composer handles Loaders, never Components.
type Component interface {
	View(width, height int) string
}

// Loader resolves a Component on demand.
type Loader func(ctx context.Context) (Component, error)

type AuthSession interface {
	IsAuthenticated() bool
	IsLoading() bool
	IsLoggingIn() bool
	// InitializeAuth probes stored credentials. Callers must serialize it.
	InitializeAuth(ctx context.Context) error
}

type OnboardingTracker interface {
	IsOnboardingCompleted(ctx context.Context) (bool, error)
	CompleteOnboarding(ctx context.Context) error
}

type RouteMeta struct {
	Title      string
	Icon       string
	ShowInMenu bool
}

type RouteDeclaration struct {
	Name      string
	Component string
	Meta      RouteMeta
}

type PluginRecord struct {
	ID     string
	Routes []RouteDeclaration
}

type PluginCatalog interface {
	IsInitialized() bool
	EnabledPlugins() []PluginRecord
	Plugin(id string) (PluginRecord, bool)
}

// LoaderResolver maps a plugin component reference to a Loader. A nil Loader
// with a nil error means the component has no loader.
type LoaderResolver interface {
	ResolveLoader(pluginID, componentRef string) (Loader, error)
}

type LoaderResolverFunc func(pluginID, componentRef string) (Loader, error)

func (f LoaderResolverFunc) ResolveLoader(pluginID, componentRef string) (Loader, error) {
	return f(pluginID, componentRef)
}

type LifecycleState string

const (
	LifecycleActive     LifecycleState = "active"
	LifecycleInactive   LifecycleState = "inactive"
	LifecycleBackground LifecycleState = "background"
)

type AppLifecycleSignal interface {
	Subscribe(fn func(LifecycleState)) (unsubscribe func())
}
