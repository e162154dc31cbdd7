package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/jask/tenantshell/internal/navigation"
)

const eventQueueSize = 16

// Auth is the part of the session the UI drives directly.
type Auth interface {
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	Subscribe(fn func()) (unsubscribe func())
}

type ColorSource interface {
	PrimaryColor() string
	Subscribe(fn func(string)) (unsubscribe func())
}

type Lifecycle interface {
	Observe(msg tea.Msg) bool
	Suspend()
}

type Deps struct {
	Composer     *navigation.Composer
	Auth         Auth
	Theme        ColorSource
	Lifecycle    Lifecycle
	TenantName   string
	DemoUser     string
	DemoPassword string
	DefaultColor string
	Logger       zerolog.Logger
}

// App renders whatever the composer presents and turns keys into
// navigation, onboarding and session actions.
type App struct {
	ctx    context.Context
	deps   Deps
	log    zerolog.Logger
	keys   *KeyRegistry
	styles styles

	synced  bool
	mode    navigation.Mode
	entries []navigation.Screen
	notes   []string
	cursor  int
	screens ScreenStack

	width     int
	height    int
	status    string
	statusErr bool

	events chan tea.Msg
	unsubs []func()
}

func New(ctx context.Context, deps Deps) *App {
	color := deps.DefaultColor
	if deps.Theme != nil {
		color = deps.Theme.PrimaryColor()
	}
	return &App{
		ctx:    ctx,
		deps:   deps,
		log:    deps.Logger.With().Str("component", "tui").Logger(),
		keys:   NewKeyRegistry(DefaultKeyBindings()),
		styles: newStyles(color),
		events: make(chan tea.Msg, eventQueueSize),
	}
}

func (a *App) Init() tea.Cmd {
	if a.deps.Auth != nil {
		a.unsubs = append(a.unsubs, a.deps.Auth.Subscribe(func() {
			a.deps.Composer.Post(navigation.AuthChangedMsg{})
		}))
	}
	if a.deps.Theme != nil {
		a.unsubs = append(a.unsubs, a.deps.Theme.Subscribe(func(color string) {
			a.post(themeChangedMsg(color))
		}))
	}
	return tea.Batch(a.deps.Composer.Init(), a.waitForEvent(), a.syncPresentation())
}

// Close detaches the app from its collaborators.
func (a *App) Close() {
	for _, unsub := range a.unsubs {
		unsub()
	}
	a.unsubs = nil
	a.deps.Composer.Close()
}

func (a *App) post(msg tea.Msg) {
	select {
	case a.events <- msg:
	default:
		a.log.Warn().Str("msg", fmt.Sprintf("%T", msg)).Msg("ui event queue full, event dropped")
	}
}

func (a *App) waitForEvent() tea.Cmd {
	events := a.events
	return func() tea.Msg { return <-events }
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, nil
	case tea.KeyMsg:
		cmd = a.handleKey(m)
	case themeChangedMsg:
		a.styles = newStyles(string(m))
		return a, a.waitForEvent()
	case componentLoadedMsg:
		if open := a.screens.Find(m.key); open != nil {
			open.loading = false
			open.comp, open.err = m.comp, m.err
		}
		if m.err != nil {
			a.setStatus("could not open screen: "+m.err.Error(), true)
		}
		return a, nil
	case loginResultMsg:
		if m.err != nil {
			a.setStatus(m.err.Error(), true)
		} else {
			a.setStatus("signed in", false)
		}
	case logoutResultMsg:
		if m.err != nil {
			a.setStatus(m.err.Error(), true)
		} else {
			a.setStatus("signed out", false)
		}
	case statusMsg:
		a.setStatus(m.text, m.isErr)
		return a, nil
	default:
		if a.deps.Lifecycle != nil && a.deps.Lifecycle.Observe(msg) {
			return a, nil
		}
		cmd = a.deps.Composer.Update(msg)
	}
	return a, tea.Batch(cmd, a.syncPresentation())
}

func (a *App) setStatus(text string, isErr bool) {
	a.status, a.statusErr = text, isErr
}

func (a *App) scope() string {
	return "mode:" + a.mode.String()
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch a.keys.Action(msg, a.scope()) {
	case "quit":
		return tea.Quit
	case "suspend":
		if a.deps.Lifecycle != nil {
			a.deps.Lifecycle.Suspend()
		}
		return tea.Suspend
	case "complete-onboarding":
		return a.deps.Composer.Update(navigation.CompleteOnboardingMsg{})
	case "cursor-up":
		if a.cursor > 0 {
			a.cursor--
		}
	case "cursor-down":
		if a.cursor < len(a.entries)-1 {
			a.cursor++
		}
	case "open":
		if a.cursor < len(a.entries) {
			return a.open(a.entries[a.cursor])
		}
	case "back":
		if a.screens.Len() > 1 {
			a.screens.Pop()
		}
	case "login":
		return a.login()
	case "retry-auth":
		if cmd := a.deps.Composer.RetryAuth(); cmd != nil {
			a.setStatus("checking session...", false)
			return cmd
		}
		a.setStatus("session check already running", false)
	case "logout":
		return a.logout()
	case "reload-plugins":
		a.setStatus("reloading plugins...", false)
		return a.deps.Composer.Update(navigation.CatalogChangedMsg{})
	}
	return nil
}

func (a *App) login() tea.Cmd {
	if a.deps.Auth == nil {
		return nil
	}
	a.setStatus("signing in...", false)
	auth, ctx := a.deps.Auth, a.ctx
	user, password := a.deps.DemoUser, a.deps.DemoPassword
	return func() tea.Msg {
		return loginResultMsg{err: auth.Login(ctx, user, password)}
	}
}

func (a *App) logout() tea.Cmd {
	if a.deps.Auth == nil {
		return nil
	}
	auth, ctx := a.deps.Auth, a.ctx
	return func() tea.Msg {
		return logoutResultMsg{err: auth.Logout(ctx)}
	}
}

// open pushes s and loads its component.
func (a *App) open(s navigation.Screen) tea.Cmd {
	if top := a.screens.Top(); top != nil && top.screen.Key == s.Key {
		return nil
	}
	a.screens.Push(&openScreen{screen: s, loading: true})
	ctx := a.ctx
	return func() tea.Msg {
		comp, err := s.Component.Load(ctx)
		return componentLoadedMsg{key: s.Key, comp: comp, err: err}
	}
}

// syncPresentation follows the composer: a mode change resets navigation to
// the mode's initial route; a route table change drops screens that are gone.
func (a *App) syncPresentation() tea.Cmd {
	p := a.deps.Composer.Presentation()
	a.entries = p.Screens
	a.notes = a.notes[:0]
	if p.Mode == navigation.ModeAuthenticated {
		for _, o := range p.Overrides {
			a.notes = append(a.notes, fmt.Sprintf("%s: %s route replaces %s", o.Name, o.Winner, o.Loser))
		}
		if n := len(a.deps.Composer.Skipped()); n > 0 {
			a.notes = append(a.notes, fmt.Sprintf("%d plugin route(s) unavailable", n))
		}
	}
	if a.synced && p.Mode == a.mode {
		a.pruneStack()
		if a.cursor >= len(a.entries) {
			a.cursor = max(0, len(a.entries)-1)
		}
		return nil
	}
	a.synced = true
	a.mode = p.Mode
	a.screens.Reset()
	a.cursor = 0
	for i, s := range a.entries {
		if s.Name == p.Initial {
			a.cursor = i
			if p.Mode == navigation.ModeUnauthenticated || p.Mode == navigation.ModeAuthenticated {
				return a.open(s)
			}
		}
	}
	return nil
}

func (a *App) pruneStack() {
	keep := make(map[string]bool, len(a.entries))
	for _, s := range a.entries {
		keep[s.Key] = true
	}
	var kept ScreenStack
	for _, open := range a.screens.items {
		if keep[open.screen.Key] {
			kept.Push(open)
		}
	}
	a.screens = kept
}

func (a *App) View() string {
	width := max(40, a.width)
	height := max(10, a.height)
	header := renderBar(a.styles.header, width, " "+a.deps.TenantName+"  ·  "+a.mode.String(), colorMantle)
	bodyHeight := height - 3

	var body string
	switch a.mode {
	case navigation.ModeLoading:
		body = a.styles.muted.Render("Loading...")
	case navigation.ModeOnboarding:
		body = a.renderOnboarding(width)
	default:
		body = a.renderStack(width, bodyHeight)
	}
	body = clipHeight(body, bodyHeight)
	if pad := bodyHeight - lipgloss.Height(body); pad > 0 {
		body += strings.Repeat("\n", pad)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, a.renderStatusBar(), a.renderFooter())
}

func (a *App) renderOnboarding(width int) string {
	for _, s := range a.entries {
		if comp, err := s.Component.Load(a.ctx); err == nil {
			return a.styles.pane.Width(width - 4).Render(comp.View(width-8, 0))
		}
	}
	return a.styles.title.Render("Welcome") + "\n\n" + a.styles.muted.Render("Press enter to get started.")
}

func (a *App) renderStack(width, height int) string {
	listWidth := 24
	var list strings.Builder
	for i, s := range a.entries {
		label := s.Title
		if label == "" {
			label = s.Name
		}
		if s.Source == navigation.SourcePlugin {
			label += " " + a.styles.muted.Render("["+s.PluginID+"]")
		}
		if i == a.cursor {
			list.WriteString(a.styles.selected.Render("> " + label))
		} else {
			list.WriteString(a.styles.item.Render("  " + label))
		}
		list.WriteString("\n")
	}

	paneWidth := max(10, width-listWidth-4)
	content := a.styles.muted.Render("Nothing open.")
	if top := a.screens.Top(); top != nil {
		title := a.styles.title.Render(firstNonEmpty(top.screen.Title, top.screen.Name))
		switch {
		case top.loading:
			content = title + "\n\n" + a.styles.muted.Render("Loading...")
		case top.err != nil:
			content = title + "\n\n" + lipgloss.NewStyle().Foreground(colorError).Render(top.err.Error())
		default:
			content = title + "\n\n" + top.comp.View(paneWidth-4, height-4)
		}
	}
	left := lipgloss.NewStyle().Width(listWidth).Render(list.String())
	right := a.styles.pane.Width(paneWidth).Render(content)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}
