package survey

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
	"github.com/natewolfe/dreamcensus-sub001/internal/flow"
	"github.com/natewolfe/dreamcensus-sub001/internal/ui/components"
	"github.com/natewolfe/dreamcensus-sub001/internal/ui/theme"
)

func (s *SurveyScreen) View(width, height int) string {
	center := func(str string) string { return lipgloss.PlaceHorizontal(width, lipgloss.Center, str) }
	cw := min(width-8, 72)

	q, ok := s.ctl.Current()
	if !ok {
		return center(theme.Hint.Render("\n\nNothing to answer here right now."))
	}

	var b strings.Builder
	b.WriteString("\n")

	step := fmt.Sprintf("%d of %d", s.ctl.Index()+1, s.ctl.Len())
	bar := components.NewProgressBar(step, (s.ctl.Index()+1)*100/s.ctl.Len(), false, cw)
	b.WriteString(center(bar.View()) + "\n\n")

	var card strings.Builder
	text := q.Text
	if q.EffectiveSkipPolicy() == catalog.SkipRequired && q.Kind != catalog.KindStatement {
		text += theme.Invalid.Render(" *")
	}
	card.WriteString(theme.Body.Bold(true).Width(cw - 6).Render(text))
	if q.Help != "" {
		card.WriteString("\n" + theme.Hint.Width(cw-6).Render(q.Help))
	}
	if w := s.widgetView(q); w != "" {
		card.WriteString("\n\n" + strings.TrimRight(w, "\n"))
	}
	b.WriteString(center(theme.Card.Width(cw).Render(card.String())) + "\n\n")

	switch {
	case s.inputErr != "":
		b.WriteString(center(theme.Invalid.Render(s.inputErr)) + "\n")
	case s.errMsg != "":
		b.WriteString(center(theme.Invalid.Render(s.errMsg)) + "\n")
	case s.ctl.Value().IsPresent() && !s.ctl.Validation().Valid:
		b.WriteString(center(theme.Invalid.Render(s.ctl.Validation().Error)) + "\n")
	default:
		b.WriteString("\n")
	}

	b.WriteString("\n" + center(s.buttonsView()))
	return b.String()
}

func (s *SurveyScreen) widgetView(q catalog.Question) string {
	switch s.widget {
	case widgetText:
		return s.input.View()
	case widgetNumber:
		v := s.input.View()
		if p, ok := q.Props.(catalog.NumberProps); ok && p.Unit != "" {
			v += "  " + theme.Hint.Render(p.Unit)
		}
		return v
	case widgetChoice, widgetYesNo:
		return s.choices.View()
	case widgetScale:
		return s.scale.View()
	}
	return ""
}

func (s *SurveyScreen) buttonsView() string {
	var parts []string
	if s.ctl.Index() > 0 {
		parts = append(parts, theme.ButtonSecondary.Render("◂ Back"))
	}
	if s.ctl.CanSkip() && s.ctl.ButtonState().Label != "Skip" {
		parts = append(parts, theme.ButtonSecondary.Render("Skip"))
	}
	state := s.ctl.ButtonState()
	if s.inputErr != "" {
		state = flow.ButtonState{Label: state.Label, Variant: state.Variant, Disabled: true}
	}
	parts = append(parts, components.NewButton(state).View())

	row := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			row = append(row, "  ")
		}
		row = append(row, p)
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, row...)
}
