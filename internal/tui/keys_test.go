package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestKeyRegistryScopeMatch(t *testing.T) {
	reg := NewKeyRegistry(DefaultKeyBindings())
	enter := tea.KeyMsg{Type: tea.KeyEnter}
	if got := reg.Action(enter, scopeOnboarding); got != "complete-onboarding" {
		t.Fatalf("enter in onboarding = %q", got)
	}
	if got := reg.Action(enter, scopeAuthenticated); got != "open" {
		t.Fatalf("enter in authenticated = %q", got)
	}
	if reg.IsAction(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}, "quit", scopeLoading) {
		t.Fatalf("q must not quit from the placeholder")
	}
	if !reg.IsAction(tea.KeyMsg{Type: tea.KeyCtrlC}, "quit", scopeLoading) {
		t.Fatalf("expected ctrl+c to match wildcard scope")
	}
	if reg.IsAction(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}}, "login", scopeAuthenticated) {
		t.Fatalf("login is only offered when signed out")
	}
}

func TestScreenStack(t *testing.T) {
	var s ScreenStack
	s.Push(nil)
	if s.Len() != 0 || s.Top() != nil || s.Pop() != nil {
		t.Fatalf("empty stack misbehaves")
	}
	a := &openScreen{}
	a.screen.Key = "a"
	b := &openScreen{}
	b.screen.Key = "b"
	s.Push(a)
	s.Push(b)
	if s.Find("a") != a || s.Top() != b {
		t.Fatalf("unexpected stack state")
	}
	if s.Pop() != b || s.Len() != 1 {
		t.Fatalf("pop failed")
	}
	s.Reset()
	if s.Len() != 0 {
		t.Fatalf("reset failed")
	}
}
