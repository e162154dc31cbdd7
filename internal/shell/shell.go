// Package shell assembles the tenant shell from configuration: storage,
// session, plugin catalog, theme and the navigation composer.
package shell

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/jask/tenantshell/internal/config"
	"github.com/jask/tenantshell/internal/database"
	"github.com/jask/tenantshell/internal/database/repository"
	"github.com/jask/tenantshell/internal/lifecycle"
	"github.com/jask/tenantshell/internal/navigation"
	"github.com/jask/tenantshell/internal/onboarding"
	"github.com/jask/tenantshell/internal/plugins"
	"github.com/jask/tenantshell/internal/secrets"
	"github.com/jask/tenantshell/internal/session"
	"github.com/jask/tenantshell/internal/theme"
	"github.com/jask/tenantshell/internal/tui"
)

// Shell owns every long-lived service of one tenant shell process.
type Shell struct {
	Config     config.Config
	DB         *sql.DB
	Prefs      *repository.PreferenceRepo
	Secrets    *secrets.Store
	Onboarding *onboarding.Tracker
	Session    *session.Session
	Catalog    *plugins.Catalog
	Components *plugins.Components
	Theme      *theme.Sync
	Lifecycle  *lifecycle.Broadcaster
	Metrics    *navigation.Metrics
	Composer   *navigation.Composer

	hostScreens navigation.ScreenGroup
	coreScreens []navigation.ScreenDescriptor
	log         zerolog.Logger
}

// Build opens storage and wires the services. reg may be nil when metrics
// are not exported.
func Build(ctx context.Context, cfg config.Config, log zerolog.Logger, reg prometheus.Registerer) (*Shell, error) {
	db, err := database.OpenAndMigrate(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := database.SeedDefaults(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}

	s := &Shell{Config: cfg, DB: db, log: log}
	s.Prefs = repository.NewPreferenceRepo(db)
	s.Onboarding = onboarding.NewTracker(s.Prefs)

	s.Secrets, err = secrets.NewStore(filepath.Dir(cfg.Database.Path))
	if err != nil {
		db.Close()
		return nil, err
	}
	secret, err := tokenSecret(s.Secrets, cfg.Auth.TokenSecret)
	if err != nil {
		db.Close()
		return nil, err
	}
	auth, err := session.NewLocalAuthenticator(session.LocalConfig{
		Secret:   secret,
		TTL:      cfg.Auth.TokenTTL,
		Username: cfg.Auth.DemoUser,
		Password: cfg.Auth.DemoPassword,
		Tenant:   cfg.Tenant.ID,
		Role:     cfg.Tenant.Role,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("build authenticator: %w", err)
	}
	s.Session = session.New(repository.NewTokenRepo(db), auth, log)

	s.Catalog = plugins.NewCatalog(repository.NewPluginStateRepo(db), log)
	// a failed load leaves an initialized, empty catalog
	_ = s.Catalog.Load(ctx, cfg.Plugins.ManifestDir, cfg.Tenant.EnabledFeatures)
	s.Components = plugins.NewComponents(s.Catalog)
	tui.RegisterBuiltinComponents(s.Components)

	s.Theme = theme.New(repository.NewThemeCacheRepo(db), theme.Options{
		TenantID:     cfg.Tenant.ID,
		DefaultColor: cfg.Tenant.PrimaryColor,
		BackendURL:   cfg.Theme.BackendURL,
		Interval:     cfg.Theme.PollInterval,
		Logger:       log,
	})
	if err := s.Theme.LoadCached(ctx); err != nil {
		log.Warn().Err(err).Msg("cached theme colour unavailable")
	}

	s.Lifecycle = lifecycle.NewBroadcaster()
	if reg != nil {
		s.Metrics = navigation.NewMetrics(reg)
	}

	s.hostScreens = tui.HostScreens(cfg.Tenant.Name)
	s.coreScreens = tui.CoreScreens(tui.ScreenSources{
		TenantName: cfg.Tenant.Name,
		Session:    s.Session,
		Theme:      s.Theme,
		Catalog:    s.Catalog,
	})
	s.Composer = navigation.New(ctx, navigation.Deps{
		Auth:       s.Session,
		Onboarding: s.Onboarding,
		Catalog:    s.Catalog,
		Resolver:   s.Components,
	}, navigation.Options{
		AppScreens:       s.hostScreens,
		CoreScreens:      s.coreScreens,
		AuthScreens:      tui.AuthScreens(),
		Onboarding:       tui.OnboardingScreen(cfg.Tenant.Name),
		InitialRoute:     cfg.Tenant.HomeRoute,
		Lifecycle:        s.Lifecycle,
		InitialLifecycle: s.Lifecycle.State(),
		Logger:           log,
		Metrics:          s.Metrics,
	})
	return s, nil
}

// App returns the bubbletea model for this shell.
func (s *Shell) App(ctx context.Context) *tui.App {
	return tui.New(ctx, tui.Deps{
		Composer:     s.Composer,
		Auth:         s.Session,
		Theme:        s.Theme,
		Lifecycle:    s.Lifecycle,
		TenantName:   s.Config.Tenant.Name,
		DemoUser:     s.Config.Auth.DemoUser,
		DemoPassword: s.Config.Auth.DemoPassword,
		DefaultColor: s.Config.Tenant.PrimaryColor,
		Logger:       s.log,
	})
}

// RouteTable composes the authenticated route table outside the event loop.
func (s *Shell) RouteTable() (navigation.RouteTable, []navigation.SkippedRoute) {
	routes, skipped := navigation.LoadPluginRoutes(s.Catalog, s.Components, s.log)
	return navigation.ComposeDescriptors(routes, s.hostScreens, s.coreScreens), skipped
}

// Close stops background work and closes the database.
func (s *Shell) Close() error {
	s.Composer.Close()
	var errs []error
	if err := s.Theme.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop theme sync: %w", err))
	}
	if err := s.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close db: %w", err))
	}
	return errors.Join(errs...)
}

const tokenSecretKey = "token_secret"

// tokenSecret returns the configured signing secret, or a per-install one
// kept in the secrets store.
func tokenSecret(store *secrets.Store, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	secret, err := store.GetOrCreate(tokenSecretKey, func() string {
		return uuid.NewString() + uuid.NewString()
	})
	if err != nil {
		return "", fmt.Errorf("token secret: %w", err)
	}
	return secret, nil
}
