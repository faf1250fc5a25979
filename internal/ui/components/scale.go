package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
	"github.com/natewolfe/dreamcensus-sub001/internal/ui/theme"
)

// Scale picks a point from 1 to Steps. Stars renders it as a rating.
type Scale struct {
	Steps      int
	LeftLabel  string
	RightLabel string
	Stars      bool
	value      int
}

// NewScale creates a scale with no point picked.
func NewScale(steps int, left, right string, stars bool) Scale {
	return Scale{Steps: steps, LeftLabel: left, RightLabel: right, Stars: stars}
}

// SetValue picks the point in v when it is on the scale.
func (s *Scale) SetValue(v answer.Value) {
	s.value = 0
	if n, ok := v.AsNumber(); ok && n >= 1 && int(n) <= s.Steps && n == float64(int(n)) {
		s.value = int(n)
	}
}

// Value returns the picked point or null.
func (s Scale) Value() answer.Value {
	if s.value == 0 {
		return answer.Null()
	}
	return answer.Number(float64(s.value))
}

// Update moves the point with the arrow keys or jumps to a typed digit.
func (s Scale) Update(msg tea.Msg) (Scale, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}
	switch key := kmsg.String(); key {
	case "left", "h":
		if s.value > 1 {
			s.value--
		}
	case "right", "l":
		if s.value < s.Steps {
			s.value++
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if n := int(key[0] - '0'); n <= s.Steps {
				s.value = n
			}
		}
	}
	return s, nil
}

// View renders the scale.
func (s Scale) View() string {
	points := make([]string, 0, s.Steps)
	for i := 1; i <= s.Steps; i++ {
		switch {
		case s.Stars && i <= s.value:
			points = append(points, lipgloss.NewStyle().Foreground(theme.Accent).Render("★"))
		case s.Stars:
			points = append(points, theme.Locked.Render("☆"))
		case i == s.value:
			points = append(points, theme.Selected.Render(fmt.Sprintf("[%d]", i)))
		default:
			points = append(points, theme.Unselected.Render(fmt.Sprintf(" %d ", i)))
		}
	}

	row := strings.Join(points, " ")
	if s.LeftLabel != "" || s.RightLabel != "" {
		row = theme.Hint.Render(s.LeftLabel) + "  " + row + "  " + theme.Hint.Render(s.RightLabel)
	}
	return row
}
