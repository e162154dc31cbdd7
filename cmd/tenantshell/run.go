package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jask/tenantshell/internal/navigation"
	"github.com/jask/tenantshell/internal/plugins"
	"github.com/jask/tenantshell/internal/shell"
)

type RunCmd struct {
	NoWatch bool `name:"no-watch" help:"Do not reload plugin manifests on change"`
}

func (r *RunCmd) Run(g *Globals) error {
	cfg := g.Config
	logger, closeLog, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(g.Ctx)
	defer cancel()

	var reg *prometheus.Registry
	if cfg.Metrics.Addr != "" {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	var registerer prometheus.Registerer
	if reg != nil {
		registerer = reg
	}
	s, err := shell.Build(ctx, cfg, logger, registerer)
	if err != nil {
		return err
	}
	defer logFailure(logger, "close shell", s.Close)

	if reg != nil {
		srv := serveMetrics(cfg.Metrics.Addr, reg, logger)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if cfg.Plugins.Watch && !r.NoWatch {
		w, err := plugins.NewWatcher(cfg.Plugins.ManifestDir, s.Catalog, cfg.Tenant.EnabledFeatures, func() {
			s.Composer.Post(navigation.CatalogChangedMsg{})
		}, logger)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			logger.Warn().Err(err).Msg("plugin manifests will not hot reload")
		}
		defer logFailure(logger, "stop plugin watcher", w.Stop)
	}

	if err := s.Theme.Start(ctx); err != nil {
		logger.Warn().Err(err).Msg("theme sync not started")
	}

	app := s.App(ctx)
	defer app.Close()
	logger.Info().Str("tenant", cfg.Tenant.ID).Msg("shell starting")
	_, err = tea.NewProgram(app, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// logFailure runs fn and logs its error; used for deferred shutdown steps.
func logFailure(logger zerolog.Logger, step string, fn func() error) {
	if err := fn(); err != nil {
		logger.Error().Err(err).Str("step", step).Msg("shutdown")
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	logger.Info().Str("addr", addr).Msg("serving metrics")
	return srv
}
