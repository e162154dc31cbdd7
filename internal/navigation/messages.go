package navigation

import tea "github.com/charmbracelet/bubbletea"

// AuthInitializedMsg reports a finished InitializeAuth call. Err has already
// been logged.
type AuthInitializedMsg struct {
	Trigger Trigger
	Err     error
}

// AuthChangedMsg asks the composer to re-read the auth session.
type AuthChangedMsg struct{}

// CatalogChangedMsg asks the composer to reload plugin routes.
type CatalogChangedMsg struct{}

type LifecycleMsg struct {
	State LifecycleState
}

// CompleteOnboardingMsg is sent by the onboarding flow when the user finishes it.
type CompleteOnboardingMsg struct{}

type onboardingCheckedMsg struct {
	completed bool
	err       error
}

type onboardingCompletedMsg struct {
	err error
}

type pluginRoutesLoadedMsg struct {
	cycle   string
	routes  []Screen
	skipped []SkippedRoute
}

// eventMsg carries a message posted from outside the event loop.
type eventMsg struct {
	inner tea.Msg
}
