package navigation

import (
	"context"
	"fmt"
	"slices"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultInitialRoute         = "Home"
	DefaultUnauthenticatedRoute = "Login"
	DefaultOnboardingRoute      = "Onboarding"

	eventQueueSize = 64
)

type Deps struct {
	Auth       AuthSession
	Onboarding OnboardingTracker
	Catalog    PluginCatalog
	Resolver   LoaderResolver
}

type Options struct {
	// AppScreens accepts a ScreenDescriptor, a slice of descriptors or a
	// ScreenGroup. Invalid entries are ignored.
	AppScreens  any
	CoreScreens []ScreenDescriptor
	AuthScreens []ScreenDescriptor
	Onboarding  ScreenDescriptor

	InitialRoute         string
	UnauthenticatedRoute string

	Lifecycle        AppLifecycleSignal
	InitialLifecycle LifecycleState

	Logger  zerolog.Logger
	Metrics *Metrics
}

// Presentation is what the render layer draws: one mode, its screens in
// order and the screen to show first.
type Presentation struct {
	Phase     Phase
	Mode      Mode
	Screens   []Screen
	Initial   string
	Overrides []Override
}

// Composer is the navigation state machine. Update, Presentation and Init
// must be called from a single event loop; Post may be called from anywhere.
type Composer struct {
	ctx       context.Context
	deps      Deps
	opts      Options
	log       zerolog.Logger
	metrics   *Metrics
	sequencer *Sequencer

	appScreens  []Screen
	coreScreens []Screen
	authScreens []Screen
	onboarding  []Screen

	mounted             bool
	authPending         bool
	checkingOnboarding  bool
	onboardingCompleted bool
	completing          bool

	lastAuth       bool
	cycle          string
	routesResolved bool
	pluginRoutes   []Screen
	skipped        []SkippedRoute
	table          RouteTable
	initial        string

	appState LifecycleState

	events      chan tea.Msg
	done        chan struct{}
	closeOnce   sync.Once
	closed      bool
	unsubscribe func()
}

func New(ctx context.Context, deps Deps, opts Options) *Composer {
	if opts.InitialRoute == "" {
		opts.InitialRoute = DefaultInitialRoute
	}
	if opts.UnauthenticatedRoute == "" {
		opts.UnauthenticatedRoute = DefaultUnauthenticatedRoute
	}
	if opts.Onboarding.Name == "" {
		opts.Onboarding.Name = DefaultOnboardingRoute
	}
	if opts.InitialLifecycle == "" {
		opts.InitialLifecycle = LifecycleActive
	}
	log := opts.Logger.With().Str("component", "navigation").Logger()
	c := &Composer{
		ctx:                ctx,
		deps:               deps,
		opts:               opts,
		log:                log,
		metrics:            opts.Metrics,
		sequencer:          NewSequencer(deps.Auth, log, opts.Metrics),
		appScreens:         screensFromDescriptors(SourceApp, NormalizeHostScreens(opts.AppScreens)),
		coreScreens:        screensFromDescriptors(SourceCore, opts.CoreScreens),
		authScreens:        keyedScreens("auth", SourceCore, opts.AuthScreens),
		onboarding:         keyedScreens("onboarding", SourceCore, []ScreenDescriptor{opts.Onboarding}),
		checkingOnboarding: true,
		appState:           opts.InitialLifecycle,
		events:             make(chan tea.Msg, eventQueueSize),
		done:               make(chan struct{}),
	}
	c.rebuild()
	return c
}

// Init starts the independent bootstrap checks. It runs once per Composer.
func (c *Composer) Init() tea.Cmd {
	if c.mounted || c.closed {
		return nil
	}
	c.mounted = true
	c.lastAuth = c.deps.Auth.IsAuthenticated()
	if c.opts.Lifecycle != nil {
		c.unsubscribe = c.opts.Lifecycle.Subscribe(func(s LifecycleState) {
			c.Post(LifecycleMsg{State: s})
		})
	}
	// the session only reports loading once its command runs
	mountAuth := c.sequencer.Cmd(c.ctx, TriggerMount)
	c.authPending = mountAuth != nil
	return tea.Batch(
		mountAuth,
		c.checkOnboarding(),
		c.loadRoutes(),
		c.waitForEvent(),
	)
}

func (c *Composer) Update(msg tea.Msg) tea.Cmd {
	if c.closed {
		return nil
	}
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case eventMsg:
		return tea.Batch(c.Update(msg.inner), c.waitForEvent())
	case AuthInitializedMsg:
		if msg.Trigger == TriggerMount {
			c.authPending = false
		}
		c.log.Debug().Str("trigger", string(msg.Trigger)).Bool("ok", msg.Err == nil).Msg("auth init finished")
	case AuthChangedMsg:
	case onboardingCheckedMsg:
		c.checkingOnboarding = false
		if msg.err != nil {
			c.log.Error().Err(msg.err).Msg("onboarding check failed, treating onboarding as incomplete")
			c.onboardingCompleted = false
			break
		}
		c.onboardingCompleted = msg.completed
	case CompleteOnboardingMsg:
		cmds = append(cmds, c.completeOnboarding())
	case onboardingCompletedMsg:
		c.completing = false
		if msg.err != nil {
			c.log.Error().Err(msg.err).Msg("completing onboarding failed")
			break
		}
		c.onboardingCompleted = true
	case pluginRoutesLoadedMsg:
		if msg.cycle != c.cycle {
			c.log.Debug().Str("cycle", msg.cycle).Msg("discarding stale route load")
			break
		}
		c.applyRoutes(msg.routes, msg.skipped)
	case LifecycleMsg:
		cmds = append(cmds, c.handleLifecycle(msg.State))
	case CatalogChangedMsg:
		cmds = append(cmds, c.loadRoutes())
	}
	cmds = append(cmds, c.checkAuthChange())
	return tea.Batch(cmds...)
}

// Post hands a message to the composer from outside the event loop. It never
// blocks; when the queue is full the message is dropped and logged.
func (c *Composer) Post(msg tea.Msg) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.events <- msg:
	default:
		c.log.Warn().Str("msg", fmt.Sprintf("%T", msg)).Msg("composer event queue full, event dropped")
	}
}

// RetryAuth re-probes the session on request. It does nothing while
// authenticated or while another initialization is in flight.
func (c *Composer) RetryAuth() tea.Cmd {
	if c.closed || c.deps.Auth.IsAuthenticated() {
		return nil
	}
	return c.sequencer.Cmd(c.ctx, TriggerManual)
}

// Close detaches the composer. Results arriving afterwards are ignored.
func (c *Composer) Close() {
	c.closeOnce.Do(func() {
		c.closed = true
		close(c.done)
		if c.unsubscribe != nil {
			c.unsubscribe()
		}
	})
}

func (c *Composer) Snapshot() Snapshot {
	return Snapshot{
		AuthLoading:         c.authPending || c.deps.Auth.IsLoading(),
		LoggingIn:           c.deps.Auth.IsLoggingIn(),
		CheckingOnboarding:  c.checkingOnboarding,
		OnboardingCompleted: c.onboardingCompleted,
		Authenticated:       c.deps.Auth.IsAuthenticated(),
		PluginRoutesPending: !c.routesResolved,
	}
}

func (c *Composer) Phase() Phase { return ResolvePhase(c.Snapshot()) }

// Table is the authenticated route table as of the latest route load.
func (c *Composer) Table() RouteTable { return c.table }

func (c *Composer) Skipped() []SkippedRoute { return slices.Clone(c.skipped) }

func (c *Composer) Presentation() Presentation {
	phase := c.Phase()
	p := Presentation{Phase: phase, Mode: phase.Mode()}
	switch p.Mode {
	case ModeOnboarding:
		p.Screens = slices.Clone(c.onboarding)
		p.Initial = c.opts.Onboarding.Name
	case ModeUnauthenticated:
		p.Screens = slices.Clone(c.authScreens)
		p.Initial = initialOf(p.Screens, c.opts.UnauthenticatedRoute)
	case ModeAuthenticated:
		p.Screens = c.table.Screens()
		p.Initial = c.initial
		p.Overrides = c.table.Overrides()
	}
	return p
}

func (c *Composer) checkOnboarding() tea.Cmd {
	tracker := c.deps.Onboarding
	ctx := c.ctx
	return func() tea.Msg {
		completed, err := safeCheck(ctx, tracker)
		return onboardingCheckedMsg{completed: completed, err: err}
	}
}

func safeCheck(ctx context.Context, tracker OnboardingTracker) (completed bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			completed, err = false, fmt.Errorf("check onboarding: panic: %v", r)
		}
	}()
	if tracker == nil {
		return false, fmt.Errorf("check onboarding: no tracker")
	}
	return tracker.IsOnboardingCompleted(ctx)
}

func (c *Composer) completeOnboarding() tea.Cmd {
	if c.completing || c.onboardingCompleted {
		return nil
	}
	c.completing = true
	tracker := c.deps.Onboarding
	ctx := c.ctx
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = onboardingCompletedMsg{err: fmt.Errorf("complete onboarding: panic: %v", r)}
			}
		}()
		if tracker == nil {
			return onboardingCompletedMsg{err: fmt.Errorf("complete onboarding: no tracker")}
		}
		return onboardingCompletedMsg{err: tracker.CompleteOnboarding(ctx)}
	}
}

// loadRoutes starts a new route load cycle. Only the newest cycle may
// replace the plugin routes.
func (c *Composer) loadRoutes() tea.Cmd {
	cycle := uuid.NewString()
	c.cycle = cycle
	catalog, resolver := c.deps.Catalog, c.deps.Resolver
	log := c.log.With().Str("cycle", cycle).Logger()
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("plugin route load aborted")
				msg = pluginRoutesLoadedMsg{cycle: cycle}
			}
		}()
		routes, skipped := LoadPluginRoutes(catalog, resolver, log)
		return pluginRoutesLoadedMsg{cycle: cycle, routes: routes, skipped: skipped}
	}
}

func (c *Composer) applyRoutes(routes []Screen, skipped []SkippedRoute) {
	c.pluginRoutes = routes
	c.skipped = skipped
	c.routesResolved = true
	c.rebuild()
	c.metrics.routeCycle(c.table.countSource(SourcePlugin), skipped)
	c.log.Info().
		Int("plugin_routes", len(routes)).
		Int("skipped", len(skipped)).
		Int("table", c.table.Len()).
		Msg("route table rebuilt")
}

func (c *Composer) rebuild() {
	c.table = Compose(c.pluginRoutes, c.appScreens, c.coreScreens)
	for _, o := range c.table.Overrides() {
		c.log.Debug().
			Str("route", o.Name).
			Str("winner", string(o.Winner)).
			Str("loser", string(o.Loser)).
			Msg("route name collision resolved")
	}
	c.initial = c.opts.InitialRoute
	if _, ok := c.table.Lookup(c.initial); ok || c.table.Len() == 0 {
		return
	}
	ev := c.log.Warn().Str("route", c.opts.InitialRoute)
	if hint, ok := c.table.Suggest(c.opts.InitialRoute); ok {
		ev = ev.Str("did_you_mean", hint)
	}
	c.initial = c.table.screens[0].Name
	ev.Str("fallback", c.initial).Msg("initial route not in route table")
}

func (c *Composer) handleLifecycle(next LifecycleState) tea.Cmd {
	prev := c.appState
	c.appState = next
	if next != LifecycleActive || (prev != LifecycleInactive && prev != LifecycleBackground) {
		return nil
	}
	if c.deps.Auth.IsAuthenticated() {
		c.log.Debug().Msg("foreground: already authenticated, skipping auth re-check")
		return nil
	}
	c.log.Info().Msg("foreground: re-checking auth")
	return c.sequencer.Cmd(c.ctx, TriggerForeground)
}

// checkAuthChange reloads plugin routes when the session flips between
// authenticated and not.
func (c *Composer) checkAuthChange() tea.Cmd {
	if !c.mounted {
		return nil
	}
	now := c.deps.Auth.IsAuthenticated()
	if now == c.lastAuth {
		return nil
	}
	c.lastAuth = now
	c.log.Info().Bool("authenticated", now).Msg("auth state changed, reloading plugin routes")
	return c.loadRoutes()
}

func (c *Composer) waitForEvent() tea.Cmd {
	events, done := c.events, c.done
	return func() tea.Msg {
		select {
		case msg := <-events:
			return eventMsg{inner: msg}
		case <-done:
			return nil
		}
	}
}

func initialOf(screens []Screen, preferred string) string {
	for _, s := range screens {
		if s.Name == preferred {
			return preferred
		}
	}
	if len(screens) > 0 {
		return screens[0].Name
	}
	return ""
}
