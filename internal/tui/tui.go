package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/studybot/internal/notify"
)

// RunConsole opens the full-screen console for a group. events may be
// nil when the notification stream is unavailable.
func RunConsole(backend Backend, id Identity, events <-chan notify.Event) error {
	p := tea.NewProgram(NewConsoleModel(backend, id, events), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
