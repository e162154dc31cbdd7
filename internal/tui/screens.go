package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/tenantshell/internal/navigation"
	"github.com/jask/tenantshell/internal/plugins"
	"github.com/jask/tenantshell/internal/session"
	"github.com/jask/tenantshell/internal/theme"
)

// textView is the component behind every built-in screen.
type textView struct {
	body string
}

func (t textView) View(width, _ int) string {
	if width <= 0 {
		return t.body
	}
	return lipgloss.NewStyle().Width(width).Render(t.body)
}

func staticScreen(name, title, body string) navigation.ScreenDescriptor {
	return navigation.ScreenDescriptor{
		Name:  name,
		Title: title,
		Loader: func(context.Context) (navigation.Component, error) {
			return textView{body: body}, nil
		},
	}
}

func dynamicScreen(name, title string, render func() string) navigation.ScreenDescriptor {
	return navigation.ScreenDescriptor{
		Name:  name,
		Title: title,
		Loader: func(context.Context) (navigation.Component, error) {
			return textView{body: render()}, nil
		},
	}
}

// ScreenSources are the services the built-in screens read from.
type ScreenSources struct {
	TenantName string
	Session    *session.Session
	Theme      *theme.Sync
	Catalog    *plugins.Catalog
}

// CoreScreens are owned by the shell and win every name collision.
func CoreScreens(src ScreenSources) []navigation.ScreenDescriptor {
	return []navigation.ScreenDescriptor{
		dynamicScreen("Profile", "Profile", func() string {
			if src.Session == nil {
				return "Not signed in."
			}
			u := src.Session.User()
			if u == nil {
				return "Not signed in."
			}
			lines := []string{"User:   " + u.ID, "Tenant: " + u.Tenant, "Role:   " + u.Role}
			if u.ExpiresAt != nil {
				lines = append(lines, "Token expires "+u.ExpiresAt.Local().Format("15:04 02 Jan"))
			}
			return strings.Join(lines, "\n")
		}),
		staticScreen("EditProfile", "Edit profile", "Profile editing is handled by your tenant administrator."),
		staticScreen("LanguageSelection", "Language", "English (default)"),
		dynamicScreen("QuickMenuSettings", "Quick menu", func() string {
			if src.Catalog == nil {
				return "No plugins loaded."
			}
			var lines []string
			for _, r := range src.Catalog.EnabledRoutes() {
				if r.Meta.ShowInMenu {
					lines = append(lines, "• "+firstNonEmpty(r.Meta.Title, r.Name))
				}
			}
			if len(lines) == 0 {
				return "No plugin routes are shown in the quick menu."
			}
			return strings.Join(lines, "\n")
		}),
		dynamicScreen("ThemeSettings", "Theme", func() string {
			if src.Theme == nil {
				return "Default theme."
			}
			color := src.Theme.PrimaryColor()
			swatch := lipgloss.NewStyle().Background(lipgloss.Color(color)).Render("    ")
			return fmt.Sprintf("Primary colour %s %s", color, swatch)
		}),
	}
}

func AuthScreens() []navigation.ScreenDescriptor {
	return []navigation.ScreenDescriptor{
		staticScreen("Login", "Sign in", "Press l to sign in with the demo account."),
		staticScreen("SignUp", "Create account", "Accounts are created by your tenant administrator."),
		staticScreen("ForgotPassword", "Forgot password", "Contact your tenant administrator to reset your password."),
	}
}

func OnboardingScreen(tenantName string) navigation.ScreenDescriptor {
	return staticScreen(navigation.DefaultOnboardingRoute, "Welcome",
		fmt.Sprintf("Welcome to %s.\n\nPress enter to get started.", tenantName))
}

// HostScreens are the tenant app's own screens.
func HostScreens(tenantName string) navigation.ScreenGroup {
	return navigation.ScreenGroup{Screens: []any{
		staticScreen("Home", "Home", fmt.Sprintf("%s home.\n\nPick a screen from the list.", tenantName)),
		staticScreen("Activity", "Activity", "No recent activity."),
	}}
}

// RegisterBuiltinComponents binds the components the bundled plugin
// manifests export.
func RegisterBuiltinComponents(c *plugins.Components) {
	register := func(pluginID, name, body string) {
		c.Register(pluginID, name, func(context.Context) (navigation.Component, error) {
			return textView{body: body}, nil
		})
	}
	register("core-plugin", "Notifications", "You have no notifications.")
	register("wallet", "WalletHome", "Balance: 1,250.00")
	register("wallet", "WalletSend", "Send money to a saved contact.")
	register("reports", "Reports", "Monthly report is being prepared.")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
