package navigation

import (
	"context"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

type Trigger string

const (
	TriggerMount      Trigger = "mount"
	TriggerForeground Trigger = "foreground"
	TriggerManual     Trigger = "manual"
)

// InitLatch is a single-slot guard. A second acquire while held fails; it is
// not queued.
type InitLatch struct {
	held atomic.Bool
}

func (l *InitLatch) TryAcquire() bool { return l.held.CompareAndSwap(false, true) }
func (l *InitLatch) Release()         { l.held.Store(false) }
func (l *InitLatch) Held() bool       { return l.held.Load() }

// Sequencer keeps at most one AuthSession.InitializeAuth call in flight.
// Requests made while a call is outstanding are dropped.
type Sequencer struct {
	session AuthSession
	latch   InitLatch
	log     zerolog.Logger
	metrics *Metrics
}

func NewSequencer(session AuthSession, log zerolog.Logger, metrics *Metrics) *Sequencer {
	return &Sequencer{session: session, log: log, metrics: metrics}
}

func (s *Sequencer) InFlight() bool { return s.latch.Held() }

// Run initializes auth synchronously. ran is false when the request was
// dropped because another call was in flight. The returned error is already
// logged; callers only use it for reporting.
func (s *Sequencer) Run(ctx context.Context, trigger Trigger) (ran bool, err error) {
	if !s.acquire(trigger) {
		return false, nil
	}
	return true, s.execute(ctx, trigger)
}

// Cmd is the event-loop form of Run. It returns nil when the request is
// dropped; otherwise the command reports an AuthInitializedMsg.
func (s *Sequencer) Cmd(ctx context.Context, trigger Trigger) tea.Cmd {
	if !s.acquire(trigger) {
		return nil
	}
	return func() tea.Msg {
		err := s.execute(ctx, trigger)
		return AuthInitializedMsg{Trigger: trigger, Err: err}
	}
}

func (s *Sequencer) acquire(trigger Trigger) bool {
	if s.latch.TryAcquire() {
		return true
	}
	s.metrics.authInitResult(trigger, resultDropped)
	s.log.Debug().Str("trigger", string(trigger)).Msg("auth init already in flight, request dropped")
	return false
}

// execute expects the latch to be held and always releases it.
func (s *Sequencer) execute(ctx context.Context, trigger Trigger) (err error) {
	defer s.latch.Release()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("initialize auth: panic: %v", r)
		}
		if err != nil {
			s.metrics.authInitResult(trigger, resultError)
			s.log.Error().Err(err).Str("trigger", string(trigger)).Msg("auth init failed")
			return
		}
		s.metrics.authInitResult(trigger, resultOK)
	}()
	s.log.Debug().Str("trigger", string(trigger)).Msg("initializing auth")
	if err := s.session.InitializeAuth(ctx); err != nil {
		return fmt.Errorf("initialize auth: %w", err)
	}
	return nil
}
