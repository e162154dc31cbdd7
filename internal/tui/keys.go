package tui

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	scopeLoading         = "mode:loading"
	scopeOnboarding      = "mode:onboarding"
	scopeUnauthenticated = "mode:unauthenticated"
	scopeAuthenticated   = "mode:authenticated"
)

type KeyBinding struct {
	Keys        []string
	Action      string
	Description string
	Scopes      []string
}

type KeyRegistry struct {
	bindings []KeyBinding
}

func NewKeyRegistry(bindings []KeyBinding) *KeyRegistry {
	return &KeyRegistry{bindings: slices.Clone(bindings)}
}

func (r *KeyRegistry) Register(binding KeyBinding) {
	r.bindings = append(r.bindings, binding)
}

func (r *KeyRegistry) BindingsForScope(scope string) []KeyBinding {
	out := make([]KeyBinding, 0, len(r.bindings))
	for _, b := range r.bindings {
		if scopeMatch(scope, b.Scopes) {
			out = append(out, b)
		}
	}
	return out
}

// Action returns the action bound to msg in scope, or "".
func (r *KeyRegistry) Action(msg tea.KeyMsg, scope string) string {
	pressed := normalizeKey(msg.String())
	for _, b := range r.bindings {
		if !scopeMatch(scope, b.Scopes) {
			continue
		}
		for _, k := range b.Keys {
			if normalizeKey(k) == pressed {
				return b.Action
			}
		}
	}
	return ""
}

func (r *KeyRegistry) IsAction(msg tea.KeyMsg, action, scope string) bool {
	return r.Action(msg, scope) == action
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

func scopeMatch(scope string, scopes []string) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, s := range scopes {
		if s == "*" || s == scope {
			return true
		}
	}
	return false
}

func DefaultKeyBindings() []KeyBinding {
	listScopes := []string{scopeUnauthenticated, scopeAuthenticated}
	return []KeyBinding{
		{Keys: []string{"ctrl+c"}, Action: "quit", Description: "quit", Scopes: []string{"*"}},
		{Keys: []string{"q"}, Action: "quit", Description: "quit", Scopes: []string{scopeOnboarding, scopeUnauthenticated, scopeAuthenticated}},
		{Keys: []string{"ctrl+z"}, Action: "suspend", Description: "suspend", Scopes: []string{"*"}},
		{Keys: []string{"enter"}, Action: "complete-onboarding", Description: "get started", Scopes: []string{scopeOnboarding}},
		{Keys: []string{"k", "up"}, Action: "cursor-up", Description: "up", Scopes: listScopes},
		{Keys: []string{"j", "down"}, Action: "cursor-down", Description: "down", Scopes: listScopes},
		{Keys: []string{"enter"}, Action: "open", Description: "open", Scopes: listScopes},
		{Keys: []string{"esc"}, Action: "back", Description: "back", Scopes: listScopes},
		{Keys: []string{"l"}, Action: "login", Description: "demo login", Scopes: []string{scopeUnauthenticated}},
		{Keys: []string{"r"}, Action: "retry-auth", Description: "retry session", Scopes: []string{scopeUnauthenticated}},
		{Keys: []string{"o"}, Action: "logout", Description: "sign out", Scopes: []string{scopeAuthenticated}},
		{Keys: []string{"ctrl+r"}, Action: "reload-plugins", Description: "reload plugins", Scopes: []string{scopeAuthenticated}},
	}
}
