package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/natewolfe/dreamcensus-sub001/internal/ui/theme"
)

const moonArt = `    .-""-.
  .'  .-'
 /   /
|   |
 \   '.__.;
  '._    .'
     '--'`

const bannerArt = "D R E A M   C E N S U S"

// RenderBanner returns the title banner in the primary colour.
func RenderBanner() string {
	return lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render(bannerArt)
}
