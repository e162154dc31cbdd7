package navigation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeAuth struct {
	mu            sync.Mutex
	authenticated bool
	loading       bool
	loggingIn     bool
	calls         atomic.Int32
	err           error
	panicWith     any
	started       chan struct{}
	release       chan struct{}
	onInit        func(a *fakeAuth)
}

func (a *fakeAuth) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.authenticated
}

func (a *fakeAuth) IsLoading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

func (a *fakeAuth) IsLoggingIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loggingIn
}

func (a *fakeAuth) setAuthenticated(v bool) {
	a.mu.Lock()
	a.authenticated = v
	a.mu.Unlock()
}

func (a *fakeAuth) InitializeAuth(ctx context.Context) error {
	a.calls.Add(1)
	if a.started != nil {
		a.started <- struct{}{}
	}
	if a.release != nil {
		<-a.release
	}
	if a.panicWith != nil {
		panic(a.panicWith)
	}
	if a.onInit != nil {
		a.onInit(a)
	}
	return a.err
}

type fakeTracker struct {
	completed     bool
	checkErr      error
	completeErr   error
	completeCalls atomic.Int32
}

func (t *fakeTracker) IsOnboardingCompleted(context.Context) (bool, error) {
	return t.completed, t.checkErr
}

func (t *fakeTracker) CompleteOnboarding(context.Context) error {
	t.completeCalls.Add(1)
	if t.completeErr != nil {
		return t.completeErr
	}
	t.completed = true
	return nil
}

type fakeCatalog struct {
	initialized bool
	plugins     []PluginRecord
	loads       atomic.Int32
}

func (c *fakeCatalog) IsInitialized() bool { return c.initialized }

func (c *fakeCatalog) EnabledPlugins() []PluginRecord {
	c.loads.Add(1)
	return c.plugins
}

func (c *fakeCatalog) Plugin(id string) (PluginRecord, bool) {
	for _, p := range c.plugins {
		if p.ID == id {
			return p, true
		}
	}
	return PluginRecord{}, false
}

type fakeSignal struct {
	mu           sync.Mutex
	subs         []func(LifecycleState)
	unsubscribed int
}

func (s *fakeSignal) Subscribe(fn func(LifecycleState)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.unsubscribed++
	}
}

func (s *fakeSignal) emit(state LifecycleState) {
	s.mu.Lock()
	subs := append([]func(LifecycleState){}, s.subs...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(state)
	}
}

type textComponent string

func (c textComponent) View(int, int) string { return string(c) }

func staticLoader(body string) Loader {
	return func(context.Context) (Component, error) { return textComponent(body), nil }
}

func descriptor(name, body string) ScreenDescriptor {
	return ScreenDescriptor{Name: name, Title: name, Loader: staticLoader(body)}
}

// resolverFor serves a loader for every component except those listed as
// missing.
func resolverFor(missing ...string) LoaderResolver {
	return LoaderResolverFunc(func(pluginID, ref string) (Loader, error) {
		for _, m := range missing {
			if m == ref {
				return nil, nil
			}
		}
		if ref == "Broken" {
			return nil, errors.New("no such module")
		}
		return staticLoader(pluginID + "." + ref), nil
	})
}

// drain runs cmd and feeds every produced message back into the composer
// until nothing is left. Commands that block (the event listener) are
// abandoned after a short wait.
func drain(t *testing.T, c *Composer, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg, ok := runCmd(next)
		if !ok || msg == nil {
			continue
		}
		if batch, isBatch := msg.(tea.BatchMsg); isBatch {
			queue = append(queue, batch...)
			continue
		}
		queue = append(queue, c.Update(msg))
	}
}

func runCmd(cmd tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(100 * time.Millisecond):
		return nil, false
	}
}

func newTestComposer(t *testing.T, deps Deps, opts Options) *Composer {
	t.Helper()
	c := New(context.Background(), deps, opts)
	t.Cleanup(c.Close)
	return c
}
