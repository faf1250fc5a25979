package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"

	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
	"github.com/natewolfe/dreamcensus-sub001/internal/flow"
)

func key(s string) tea.KeyPressMsg {
	switch s {
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

var colours = []catalog.Choice{
	{ID: "red", Label: "Red"},
	{ID: "blue", Label: "Blue"},
	{ID: "green", Label: "Green"},
}

func TestChoiceList_Single(t *testing.T) {
	c := NewChoiceList(colours, false)
	assert.True(t, c.Value().IsNull())

	c, _ = c.Update(key("down"))
	c, _ = c.Update(key("x"))
	assert.True(t, answer.String("blue").Equal(c.Value()))

	c, _ = c.Update(key("down"))
	c, _ = c.Update(key("x"))
	assert.True(t, answer.String("green").Equal(c.Value()))

	c, _ = c.Update(key("x"))
	assert.True(t, c.Value().IsNull(), "picking the chosen option again clears it")
}

func TestChoiceList_Multi(t *testing.T) {
	c := NewChoiceList(colours, true)
	c, _ = c.Update(key("x"))
	c, _ = c.Update(key("down"))
	c, _ = c.Update(key("down"))
	c, _ = c.Update(key("x"))
	assert.True(t, answer.Strings([]string{"red", "green"}).Equal(c.Value()))
	assert.Contains(t, c.View(), "[x] Red")
}

func TestChoiceList_SetValue(t *testing.T) {
	c := NewChoiceList(colours, true)
	c.SetValue(answer.Strings([]string{"blue", "nope"}))
	assert.True(t, answer.Strings([]string{"blue"}).Equal(c.Value()))

	s := NewChoiceList(colours, false)
	s.SetValue(answer.String("green"))
	assert.Equal(t, 2, s.Cursor)
}

func TestScale(t *testing.T) {
	s := NewScale(5, "Never", "Always", false)
	assert.True(t, s.Value().IsNull())

	s, _ = s.Update(key("right"))
	s, _ = s.Update(key("right"))
	assert.True(t, answer.Number(2).Equal(s.Value()))

	s, _ = s.Update(key("9"))
	assert.True(t, answer.Number(2).Equal(s.Value()), "off-scale digit ignored")

	s, _ = s.Update(key("5"))
	s, _ = s.Update(key("right"))
	assert.True(t, answer.Number(5).Equal(s.Value()))

	s.SetValue(answer.Number(3.5))
	assert.True(t, s.Value().IsNull())
}

func TestTextInput_NumericValue(t *testing.T) {
	ti := NewTextInput("", true, 0)
	_, ok, err := ti.NumericValue()
	assert.False(t, ok)
	assert.NoError(t, err)

	ti.SetValue("7.5")
	f, ok, err := ti.NumericValue()
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, 7.5, f)

	ti.SetValue("-")
	_, _, err = ti.NumericValue()
	assert.Error(t, err)
}

func TestProgressBar_Clamps(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = NewProgressBar("x", 150, true, 20).View()
		_ = NewProgressBar("", -5, false, 2).View()
	})
	assert.Contains(t, NewProgressBar("", 40, true, 30).View(), "40%")
}

func TestButton_Variants(t *testing.T) {
	assert.Contains(t, NewButton(flow.ButtonState{Label: "Complete", Variant: flow.VariantSpecial}).View(), "Complete")
	assert.Contains(t, NewButton(flow.ButtonState{Label: "Next", Disabled: true}).View(), "Next")
}
