package components

import (
	"github.com/natewolfe/dreamcensus-sub001/internal/flow"
	"github.com/natewolfe/dreamcensus-sub001/internal/ui/theme"
)

// Button renders the flow's forward button.
type Button struct {
	State flow.ButtonState
}

// NewButton creates a button for state.
func NewButton(state flow.ButtonState) Button {
	return Button{State: state}
}

// View renders the button styled by variant.
func (b Button) View() string {
	label := "▸ " + b.State.Label
	if b.State.Disabled {
		return theme.ButtonDisabled.Render(label)
	}
	switch b.State.Variant {
	case flow.VariantSpecial:
		return theme.ButtonSpecial.Render("✦ " + b.State.Label)
	case flow.VariantSecondary:
		return theme.ButtonSecondary.Render(label)
	default:
		return theme.ButtonPrimary.Render(label)
	}
}
