package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorText     lipgloss.Color = "#cdd6f4"
	colorMuted    lipgloss.Color = "#a6adc8"
	colorBorder   lipgloss.Color = "#585b70"
	colorMantle   lipgloss.Color = "#181825"
	colorSurface0 lipgloss.Color = "#313244"
	colorSuccess  lipgloss.Color = "#a6e3a1"
	colorError    lipgloss.Color = "#f38ba8"
)

// styles depend on the tenant primary colour and are rebuilt when it changes.
type styles struct {
	accent    lipgloss.Color
	header    lipgloss.Style
	title     lipgloss.Style
	muted     lipgloss.Style
	selected  lipgloss.Style
	item      lipgloss.Style
	pane      lipgloss.Style
	statusOK  lipgloss.Style
	statusErr lipgloss.Style
	footer    lipgloss.Style
	footerKey lipgloss.Style
	footerDsc lipgloss.Style
}

func newStyles(primary string) styles {
	accent := lipgloss.Color(primary)
	return styles{
		accent: accent,
		header: lipgloss.NewStyle().
			Background(colorMantle).
			Foreground(accent).
			Bold(true),
		title:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		muted:    lipgloss.NewStyle().Foreground(colorMuted),
		selected: lipgloss.NewStyle().Foreground(accent).Bold(true),
		item:     lipgloss.NewStyle().Foreground(colorText),
		pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),
		statusOK: lipgloss.NewStyle().
			Foreground(colorSuccess).
			Background(colorSurface0),
		statusErr: lipgloss.NewStyle().
			Foreground(colorError).
			Background(colorSurface0),
		footer:    lipgloss.NewStyle().Background(colorMantle),
		footerKey: lipgloss.NewStyle().Foreground(accent).Bold(true).Background(colorMantle),
		footerDsc: lipgloss.NewStyle().Foreground(colorMuted).Background(colorMantle),
	}
}
