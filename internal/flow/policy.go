package flow

import "github.com/natewolfe/dreamcensus-sub001/internal/catalog"

// Variant is the visual emphasis of the forward button.
type Variant string

const (
	VariantPrimary   Variant = "primary"
	VariantSecondary Variant = "secondary"
	VariantSpecial   Variant = "special"
)

// ButtonState describes the forward button for the current step.
type ButtonState struct {
	Label    string  `json:"label"`
	Variant  Variant `json:"variant"`
	Disabled bool    `json:"disabled"`
}

// buttonState derives the forward button from step facts.
func buttonState(policy catalog.SkipPolicy, valid, last, returningUnmodified bool) ButtonState {
	if last {
		return ButtonState{
			Label:    "Complete",
			Variant:  VariantSpecial,
			Disabled: policy == catalog.SkipRequired && !valid,
		}
	}
	if !valid {
		if policy == catalog.SkipRequired {
			return ButtonState{Label: "Next", Variant: VariantPrimary, Disabled: true}
		}
		return ButtonState{Label: "Skip", Variant: VariantSecondary}
	}
	if returningUnmodified {
		return ButtonState{Label: "Next", Variant: VariantSecondary}
	}
	return ButtonState{Label: "Next", Variant: VariantPrimary}
}
