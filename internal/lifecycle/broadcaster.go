package lifecycle

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/tenantshell/internal/navigation"
)

// Broadcaster fans app state changes out to subscribers. Repeated states are
// not re-sent.
type Broadcaster struct {
	mu     sync.Mutex
	state  navigation.LifecycleState
	subs   map[int]func(navigation.LifecycleState)
	nextID int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{state: navigation.LifecycleActive, subs: make(map[int]func(navigation.LifecycleState))}
}

func (b *Broadcaster) State() navigation.LifecycleState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Broadcaster) Subscribe(fn func(navigation.LifecycleState)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
		})
	}
}

// Set records the new state and notifies subscribers outside the lock.
func (b *Broadcaster) Set(state navigation.LifecycleState) {
	b.mu.Lock()
	if state == b.state {
		b.mu.Unlock()
		return
	}
	b.state = state
	fns := make([]func(navigation.LifecycleState), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(state)
	}
}

// Observe maps terminal events to app states: focus means active, blur means
// the user switched away, suspend and resume map to background and active.
// It reports whether msg was a lifecycle event.
func (b *Broadcaster) Observe(msg tea.Msg) bool {
	switch msg.(type) {
	case tea.FocusMsg, tea.ResumeMsg:
		b.Set(navigation.LifecycleActive)
	case tea.BlurMsg:
		b.Set(navigation.LifecycleBackground)
	default:
		return false
	}
	return true
}

// Suspend marks the app as backgrounded before tea.Suspend runs.
func (b *Broadcaster) Suspend() {
	b.Set(navigation.LifecycleBackground)
}
