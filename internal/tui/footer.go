package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func (a *App) renderFooter() string {
	bindings := a.keys.BindingsForScope(a.scope())
	space := lipgloss.NewStyle().Background(colorMantle).Render(" ")
	sep := lipgloss.NewStyle().Background(colorMantle).Render("  ")

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if len(b.Keys) == 0 {
			continue
		}
		kb := key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(b.Keys[0], b.Description))
		h := kb.Help()
		if h.Key == "" && h.Desc == "" {
			continue
		}
		parts = append(parts, a.styles.footerKey.Render(h.Key)+space+a.styles.footerDsc.Render(h.Desc))
	}
	line := strings.Join(parts, sep)
	if line == "" {
		line = a.styles.footerDsc.Render("No shortcuts")
	}
	return renderBar(a.styles.footer, max(1, a.width), line, colorMantle)
}

func (a *App) renderStatusBar() string {
	msg := strings.TrimSpace(a.status)
	if msg == "" {
		msg = "Ready"
		if len(a.notes) > 0 {
			msg += "  ·  " + strings.Join(a.notes, "  ·  ")
		}
	}
	if a.statusErr {
		return renderBar(a.styles.statusErr, max(1, a.width), msg, colorSurface0)
	}
	return renderBar(a.styles.statusOK, max(1, a.width), msg, colorSurface0)
}

func renderBar(style lipgloss.Style, width int, text string, bg lipgloss.TerminalColor) string {
	line := strings.ReplaceAll(text, "\n", " ")
	line = ansi.Truncate(line, width, "")
	lineW := ansi.StringWidth(line)
	if lineW < width {
		line += strings.Repeat(" ", width-lineW)
	}
	return style.
		Background(bg).
		Width(width).
		MaxWidth(width).
		Render(line)
}

func clipHeight(s string, height int) string {
	if height <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}
