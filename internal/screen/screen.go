// Package screen defines the contract between the router and TUI screens.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/natewolfe/dreamcensus-sub001/internal/ui/layout"
)

// Screen is one page of the census TUI.
type Screen interface {
	// Init returns an initial command when the screen is first shown.
	Init() tea.Cmd

	// Update handles messages and returns the updated screen.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content, excluding header and footer.
	View(width, height int) string

	// Title names the screen in the header.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// ProgressMsg reports overall census completion for the header.
type ProgressMsg struct {
	Percent int
}
