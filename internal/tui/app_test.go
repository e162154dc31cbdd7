package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jask/tenantshell/internal/navigation"
)

type stubSession struct {
	mu            sync.Mutex
	authenticated bool
	subs          []func()
}

func (s *stubSession) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}
func (s *stubSession) IsLoading() bool                      { return false }
func (s *stubSession) IsLoggingIn() bool                    { return false }
func (s *stubSession) InitializeAuth(context.Context) error { return nil }

func (s *stubSession) set(v bool) {
	s.mu.Lock()
	s.authenticated = v
	subs := append([]func(){}, s.subs...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

func (s *stubSession) Login(context.Context, string, string) error {
	s.set(true)
	return nil
}

func (s *stubSession) Logout(context.Context) error {
	s.set(false)
	return nil
}

func (s *stubSession) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	return func() {}
}

type stubTracker struct{ completed bool }

func (t *stubTracker) IsOnboardingCompleted(context.Context) (bool, error) { return t.completed, nil }
func (t *stubTracker) CompleteOnboarding(context.Context) error {
	t.completed = true
	return nil
}

func newTestApp(t *testing.T, sess *stubSession, tracker *stubTracker) *App {
	t.Helper()
	composer := navigation.New(context.Background(), navigation.Deps{Auth: sess, Onboarding: tracker}, navigation.Options{
		AppScreens:  HostScreens("Acme"),
		CoreScreens: CoreScreens(ScreenSources{TenantName: "Acme"}),
		AuthScreens: AuthScreens(),
		Onboarding:  OnboardingScreen("Acme"),
		Logger:      zerolog.Nop(),
	})
	app := New(context.Background(), Deps{
		Composer:     composer,
		Auth:         sess,
		TenantName:   "Acme",
		DemoUser:     "demo",
		DemoPassword: "demo",
		DefaultColor: "#7D56F4",
		Logger:       zerolog.Nop(),
	})
	t.Cleanup(app.Close)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app
}

// pump runs cmd and feeds results back into the app until it settles.
// Blocking listeners are abandoned after a short wait.
func pump(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0 && steps < 200; steps++ {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		ch := make(chan tea.Msg, 1)
		go func() { ch <- next() }()
		var msg tea.Msg
		select {
		case msg = <-ch:
		case <-time.After(50 * time.Millisecond):
			continue
		}
		if msg == nil {
			continue
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if _, ok := msg.(tea.QuitMsg); ok {
			continue
		}
		_, out := app.Update(msg)
		queue = append(queue, out)
	}
}

func drainComposerEvents(t *testing.T, app *App) {
	t.Helper()
	// auth notifications reach the composer through its event queue
	pump(t, app, func() tea.Msg { return navigation.AuthChangedMsg{} })
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAppOnboardingToLogin(t *testing.T) {
	app := newTestApp(t, &stubSession{}, &stubTracker{})

	if app.mode != navigation.ModeLoading {
		t.Fatalf("initial mode = %s", app.mode)
	}
	pump(t, app, app.Init())
	if app.mode != navigation.ModeOnboarding {
		t.Fatalf("mode = %s, want onboarding", app.mode)
	}
	if !strings.Contains(app.View(), "Welcome to Acme") {
		t.Fatalf("onboarding view missing welcome")
	}

	_, cmd := app.Update(keyMsg("enter"))
	pump(t, app, cmd)
	if app.mode != navigation.ModeUnauthenticated {
		t.Fatalf("mode = %s, want unauthenticated", app.mode)
	}
	top := app.screens.Top()
	if top == nil || top.screen.Name != "Login" || top.comp == nil {
		t.Fatalf("login screen not opened: %+v", top)
	}
}

func TestAppDemoLoginOpensHome(t *testing.T) {
	sess := &stubSession{}
	app := newTestApp(t, sess, &stubTracker{completed: true})
	pump(t, app, app.Init())
	if app.mode != navigation.ModeUnauthenticated {
		t.Fatalf("mode = %s", app.mode)
	}

	_, cmd := app.Update(keyMsg("l"))
	pump(t, app, cmd)
	drainComposerEvents(t, app)

	if app.mode != navigation.ModeAuthenticated {
		t.Fatalf("mode = %s, want authenticated", app.mode)
	}
	top := app.screens.Top()
	if top == nil || top.screen.Name != "Home" {
		t.Fatalf("initial route not opened: %+v", top)
	}
	if !strings.Contains(app.View(), "Acme home.") {
		t.Fatalf("home body not rendered")
	}
}

func TestAppOpenAndBack(t *testing.T) {
	sess := &stubSession{authenticated: true}
	app := newTestApp(t, sess, &stubTracker{completed: true})
	pump(t, app, app.Init())
	if app.mode != navigation.ModeAuthenticated {
		t.Fatalf("mode = %s", app.mode)
	}

	app.Update(keyMsg("down"))
	_, cmd := app.Update(keyMsg("enter"))
	pump(t, app, cmd)
	if app.screens.Len() != 2 || app.screens.Top().screen.Name != "Activity" {
		t.Fatalf("expected Activity on top, stack len %d", app.screens.Len())
	}

	app.Update(keyMsg("esc"))
	if app.screens.Len() != 1 || app.screens.Top().screen.Name != "Home" {
		t.Fatalf("esc should return to Home")
	}
	app.Update(keyMsg("esc"))
	if app.screens.Len() != 1 {
		t.Fatalf("the last screen stays open")
	}
}

func TestAppLogoutReturnsToLogin(t *testing.T) {
	sess := &stubSession{authenticated: true}
	app := newTestApp(t, sess, &stubTracker{completed: true})
	pump(t, app, app.Init())

	_, cmd := app.Update(keyMsg("o"))
	pump(t, app, cmd)
	drainComposerEvents(t, app)

	if app.mode != navigation.ModeUnauthenticated {
		t.Fatalf("mode = %s, want unauthenticated", app.mode)
	}
	if app.status != "signed out" {
		t.Fatalf("status = %q", app.status)
	}
}

func TestAppStatusReportsOverridesAndSkippedRoutes(t *testing.T) {
	sess := &stubSession{authenticated: true}
	catalog := stubCatalog{plugins: []navigation.PluginRecord{{
		ID: "wallet",
		Routes: []navigation.RouteDeclaration{
			{Name: "Profile", Component: "WalletProfile"},
			{Name: "WalletSend", Component: "Missing"},
		},
	}}}
	resolver := navigation.LoaderResolverFunc(func(_, ref string) (navigation.Loader, error) {
		if ref == "Missing" {
			return nil, nil
		}
		return func(context.Context) (navigation.Component, error) { return textView{body: ref}, nil }, nil
	})
	composer := navigation.New(context.Background(), navigation.Deps{
		Auth:       sess,
		Onboarding: &stubTracker{completed: true},
		Catalog:    catalog,
		Resolver:   resolver,
	}, navigation.Options{
		AppScreens:  HostScreens("Acme"),
		CoreScreens: CoreScreens(ScreenSources{TenantName: "Acme"}),
		Logger:      zerolog.Nop(),
	})
	app := New(context.Background(), Deps{Composer: composer, TenantName: "Acme", Logger: zerolog.Nop()})
	t.Cleanup(app.Close)
	app.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	pump(t, app, app.Init())

	if app.mode != navigation.ModeAuthenticated {
		t.Fatalf("mode = %s", app.mode)
	}
	status := app.renderStatusBar()
	if !strings.Contains(status, "Profile: core route replaces plugin") {
		t.Fatalf("override missing from status: %q", status)
	}
	if !strings.Contains(status, "1 plugin route(s) unavailable") {
		t.Fatalf("skipped count missing from status: %q", status)
	}
}

type stubCatalog struct {
	plugins []navigation.PluginRecord
}

func (c stubCatalog) IsInitialized() bool                       { return true }
func (c stubCatalog) EnabledPlugins() []navigation.PluginRecord { return c.plugins }
func (c stubCatalog) Plugin(id string) (navigation.PluginRecord, bool) {
	for _, p := range c.plugins {
		if p.ID == id {
			return p, true
		}
	}
	return navigation.PluginRecord{}, false
}
