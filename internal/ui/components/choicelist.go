package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
	"github.com/natewolfe/dreamcensus-sub001/internal/ui/theme"
)

// ChoiceList picks one or many options. Answers carry choice IDs.
type ChoiceList struct {
	Choices []catalog.Choice
	Multi   bool
	Cursor  int
	checked []bool
}

// NewChoiceList creates a list with nothing picked.
func NewChoiceList(choices []catalog.Choice, multi bool) ChoiceList {
	return ChoiceList{
		Choices: choices,
		Multi:   multi,
		checked: make([]bool, len(choices)),
	}
}

// SetValue marks the options named by v. Unknown IDs are ignored.
func (c *ChoiceList) SetValue(v answer.Value) {
	clear(c.checked)
	var ids []string
	if s, ok := v.AsString(); ok {
		ids = []string{s}
	} else if ss, ok := v.AsStrings(); ok {
		ids = ss
	}
	for i, ch := range c.Choices {
		for _, id := range ids {
			if ch.ID == id {
				c.checked[i] = true
				if !c.Multi {
					c.Cursor = i
				}
			}
		}
	}
}

// Value returns the picked IDs: a string for single lists, a list for
// multi lists, null when nothing is picked.
func (c ChoiceList) Value() answer.Value {
	var ids []string
	for i, on := range c.checked {
		if on {
			ids = append(ids, c.Choices[i].ID)
		}
	}
	switch {
	case len(ids) == 0:
		return answer.Null()
	case c.Multi:
		return answer.Strings(ids)
	default:
		return answer.String(ids[0])
	}
}

// Update moves the cursor and toggles options on space.
func (c ChoiceList) Update(msg tea.Msg) (ChoiceList, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || len(c.Choices) == 0 {
		return c, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < len(c.Choices)-1 {
			c.Cursor++
		}
	case "space", " ", "x":
		c.checked = append([]bool(nil), c.checked...)
		if c.Multi {
			c.checked[c.Cursor] = !c.checked[c.Cursor]
			break
		}
		was := c.checked[c.Cursor]
		clear(c.checked)
		c.checked[c.Cursor] = !was
	}
	return c, nil
}

// View renders the options with their marks.
func (c ChoiceList) View() string {
	var b strings.Builder
	for i, ch := range c.Choices {
		mark := "( )"
		if c.Multi {
			mark = "[ ]"
		}
		if c.checked[i] {
			mark = "(•)"
			if c.Multi {
				mark = "[x]"
			}
		}

		prefix := "  "
		if i == c.Cursor {
			prefix = "▸ "
		}
		line := prefix + mark + " " + ch.Label

		switch {
		case i == c.Cursor:
			b.WriteString(theme.Selected.Render(line))
		case c.checked[i]:
			b.WriteString(theme.Done.Render(line))
		default:
			b.WriteString(theme.Unselected.Render(line))
		}
		b.WriteString("\n")
	}
	if c.Multi {
		b.WriteString(theme.Hint.Render("Select all that apply") + "\n")
	}
	return b.String()
}
