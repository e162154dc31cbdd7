package navigation

type Phase int

const (
	PhaseCheckingAuth Phase = iota
	PhaseCheckingOnboarding
	PhaseOnboarding
	PhaseUnauthenticated
	PhaseLoadingPluginRoutes
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseCheckingAuth:
		return "checking-auth"
	case PhaseCheckingOnboarding:
		return "checking-onboarding"
	case PhaseOnboarding:
		return "onboarding"
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseLoadingPluginRoutes:
		return "loading-plugin-routes"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Mode is the presentation the shell renders for a Phase.
type Mode int

const (
	ModeLoading Mode = iota
	ModeOnboarding
	ModeUnauthenticated
	ModeAuthenticated
)

func (m Mode) String() string {
	switch m {
	case ModeLoading:
		return "loading"
	case ModeOnboarding:
		return "onboarding"
	case ModeUnauthenticated:
		return "unauthenticated"
	case ModeAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

func (p Phase) Mode() Mode {
	switch p {
	case PhaseOnboarding:
		return ModeOnboarding
	case PhaseUnauthenticated:
		return ModeUnauthenticated
	case PhaseAuthenticated:
		return ModeAuthenticated
	default:
		return ModeLoading
	}
}

// Snapshot is the set of flags a Phase is derived from. Every field is a
// read-only view of collaborator or composer state at evaluation time.
type Snapshot struct {
	AuthLoading         bool
	LoggingIn           bool
	CheckingOnboarding  bool
	OnboardingCompleted bool
	Authenticated       bool
	PluginRoutesPending bool
}

// ResolvePhase is pure. Each gate can only hold content back; none of them
// can reveal content another gate is still withholding.
func ResolvePhase(s Snapshot) Phase {
	// A user submitting credentials keeps the current form on screen.
	if s.AuthLoading && !s.LoggingIn {
		return PhaseCheckingAuth
	}
	if s.CheckingOnboarding {
		return PhaseCheckingOnboarding
	}
	if !s.OnboardingCompleted {
		return PhaseOnboarding
	}
	if !s.Authenticated {
		return PhaseUnauthenticated
	}
	if s.PluginRoutesPending {
		return PhaseLoadingPluginRoutes
	}
	return PhaseAuthenticated
}
