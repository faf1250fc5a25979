// Package survey walks the subject through a grouping one question at a
// time.
package survey

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
	"github.com/natewolfe/dreamcensus-sub001/internal/census"
	"github.com/natewolfe/dreamcensus-sub001/internal/flow"
	"github.com/natewolfe/dreamcensus-sub001/internal/router"
	"github.com/natewolfe/dreamcensus-sub001/internal/screen"
	"github.com/natewolfe/dreamcensus-sub001/internal/screens/summary"
	"github.com/natewolfe/dreamcensus-sub001/internal/ui/components"
	"github.com/natewolfe/dreamcensus-sub001/internal/ui/layout"
)

// widget is the input shown for the current question's kind.
type widget int

const (
	widgetNone widget = iota
	widgetText
	widgetNumber
	widgetChoice
	widgetYesNo
	widgetScale
)

var yesNo = []catalog.Choice{{ID: "yes", Label: "Yes"}, {ID: "no", Label: "No"}}

// SurveyScreen drives a flow.Controller.
type SurveyScreen struct {
	svc      *census.Service
	grouping census.GroupingView
	ctl      *flow.Controller

	widget  widget
	input   components.TextInput
	choices components.ChoiceList
	scale   components.Scale

	// shownID is the question the widget was built for.
	shownID  string
	inputErr string
	errMsg   string
}

var _ screen.Screen = (*SurveyScreen)(nil)
var _ screen.KeyHintProvider = (*SurveyScreen)(nil)

// New creates a SurveyScreen over ctl. grouping supplies the title and
// the summary shown on completion.
func New(svc *census.Service, grouping census.GroupingView, ctl *flow.Controller) *SurveyScreen {
	s := &SurveyScreen{svc: svc, grouping: grouping, ctl: ctl}
	s.syncWidget()
	return s
}

func (s *SurveyScreen) Init() tea.Cmd {
	if s.widget == widgetText || s.widget == widgetNumber {
		return s.input.Init()
	}
	return nil
}

func (s *SurveyScreen) Title() string {
	return s.grouping.Name
}

func (s *SurveyScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: s.ctl.ButtonState().Label}}
	if s.ctl.CanSkip() {
		hints = append(hints, layout.KeyHint{Key: "Tab", Description: "Skip"})
	}
	if s.ctl.Index() > 0 {
		hints = append(hints, layout.KeyHint{Key: "Shift+Tab", Description: "Back"})
	}
	switch s.widget {
	case widgetChoice, widgetYesNo:
		hints = append(hints, layout.KeyHint{Key: "Space", Description: "Pick"})
	case widgetScale:
		hints = append(hints, layout.KeyHint{Key: "←→", Description: "Adjust"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Chapters"})
}

func (s *SurveyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s.updateWidget(msg)
	}

	switch kmsg.String() {
	case "enter":
		if s.inputErr != "" {
			return s, nil
		}
		out, err := s.ctl.Forward(context.Background())
		return s.afterMove(out, err)
	case "tab":
		out, err := s.ctl.Skip(context.Background())
		return s.afterMove(out, err)
	case "shift+tab":
		s.errMsg = ""
		s.ctl.Back()
		return s, s.syncWidget()
	}
	return s.updateWidget(msg)
}

// updateWidget forwards msg to the active input and stages its value.
func (s *SurveyScreen) updateWidget(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	var v answer.Value
	switch s.widget {
	case widgetText:
		s.input, cmd = s.input.Update(msg)
		v = answer.Null()
		if str := s.input.Value(); str != "" {
			v = answer.String(str)
		}
	case widgetNumber:
		s.input, cmd = s.input.Update(msg)
		f, ok, err := s.input.NumericValue()
		s.inputErr = ""
		switch {
		case err != nil:
			s.inputErr = "Enter a number"
			v = answer.Null()
		case ok:
			v = answer.Number(f)
		default:
			v = answer.Null()
		}
	case widgetChoice:
		s.choices, cmd = s.choices.Update(msg)
		v = s.choices.Value()
	case widgetYesNo:
		s.choices, cmd = s.choices.Update(msg)
		v = yesNoValue(s.choices.Value())
	case widgetScale:
		s.scale, cmd = s.scale.Update(msg)
		v = s.scale.Value()
	default:
		return s, nil
	}

	if _, isKey := msg.(tea.KeyPressMsg); isKey && !v.Equal(s.ctl.Value()) {
		s.ctl.Stage(v)
	}
	return s, cmd
}

// afterMove applies the result of a navigation call.
func (s *SurveyScreen) afterMove(out flow.Outcome, err error) (screen.Screen, tea.Cmd) {
	if err != nil {
		var verr *census.ValidationError
		if errors.As(err, &verr) {
			s.errMsg = verr.Result.Error
		} else {
			s.errMsg = fmt.Sprintf("Could not save: %v", err)
		}
		return s, nil
	}
	s.errMsg = ""

	switch out {
	case flow.Completed:
		return s, tea.Batch(s.refreshProgress(), func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: summary.New(s.svc, s.grouping, s.continueWith)}
		})
	case flow.Moved:
		return s, tea.Batch(s.syncWidget(), s.refreshProgress())
	}
	if res := s.ctl.Validation(); !res.Valid {
		s.errMsg = res.Error
	}
	return s, nil
}

// continueWith opens the next grouping from the summary screen.
func (s *SurveyScreen) continueWith(g census.GroupingView) tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		ctl, err := svc.NewFlow(context.Background(), g.Slug)
		if err != nil {
			return router.PopScreenMsg{}
		}
		return router.ReplaceScreenMsg{Screen: New(svc, g, ctl)}
	}
}

func (s *SurveyScreen) refreshProgress() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		ov, err := svc.Overview(context.Background())
		if err != nil {
			return nil
		}
		return screen.ProgressMsg{Percent: ov.Percent}
	}
}

// syncWidget rebuilds the input for the current question, seeded with its
// displayed value. It is a no-op while the question is unchanged.
func (s *SurveyScreen) syncWidget() tea.Cmd {
	q, ok := s.ctl.Current()
	if !ok {
		s.widget, s.shownID = widgetNone, ""
		return nil
	}
	if q.ID == s.shownID {
		return nil
	}
	s.shownID = q.ID
	s.inputErr = ""
	v := s.ctl.Value()

	switch q.Kind {
	case catalog.KindShortText, catalog.KindLongText, catalog.KindEmail, catalog.KindDate:
		placeholder, limit := "Type your answer...", 0
		if p, ok := q.Props.(catalog.TextProps); ok {
			limit = p.MaxLength
			if p.Placeholder != "" {
				placeholder = p.Placeholder
			}
		}
		switch q.Kind {
		case catalog.KindEmail:
			placeholder = "you@example.com"
		case catalog.KindDate:
			placeholder = "YYYY-MM-DD"
		}
		s.widget = widgetText
		s.input = components.NewTextInput(placeholder, false, limit)
		if str, ok := v.AsString(); ok {
			s.input.SetValue(str)
		}
		return s.input.Init()

	case catalog.KindNumber:
		s.widget = widgetNumber
		s.input = components.NewTextInput("0", true, 16)
		if n, ok := v.AsNumber(); ok {
			s.input.SetValue(answer.Number(n).String())
		}
		return s.input.Init()

	case catalog.KindSingleChoice, catalog.KindDropdown, catalog.KindMultiChoice:
		var choices []catalog.Choice
		if p, ok := q.Props.(catalog.ChoiceProps); ok {
			choices = p.Choices
		}
		s.widget = widgetChoice
		s.choices = components.NewChoiceList(choices, q.Kind == catalog.KindMultiChoice)
		s.choices.SetValue(v)

	case catalog.KindYesNo:
		s.widget = widgetYesNo
		s.choices = components.NewChoiceList(yesNo, false)
		if b, ok := v.AsBool(); ok {
			s.choices.SetValue(answer.String(map[bool]string{true: "yes", false: "no"}[b]))
		}

	case catalog.KindOpinionScale, catalog.KindRating:
		p, _ := q.Props.(catalog.ScaleProps)
		steps := p.Steps
		if steps == 0 {
			steps = 5
		}
		s.widget = widgetScale
		s.scale = components.NewScale(steps, p.LeftLabel, p.RightLabel, q.Kind == catalog.KindRating)
		s.scale.SetValue(v)

	default:
		s.widget = widgetNone
	}
	return nil
}

func yesNoValue(v answer.Value) answer.Value {
	id, ok := v.AsString()
	if !ok {
		return answer.Null()
	}
	return answer.Bool(id == "yes")
}
