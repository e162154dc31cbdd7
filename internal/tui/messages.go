package tui

import "github.com/jask/tenantshell/internal/navigation"

type statusMsg struct {
	text  string
	isErr bool
}

type themeChangedMsg string

type componentLoadedMsg struct {
	key  string
	comp navigation.Component
	err  error
}

type loginResultMsg struct{ err error }

type logoutResultMsg struct{ err error }
