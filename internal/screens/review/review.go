// Package review lists the subject's saved answers by grouping.
package review

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
	"github.com/natewolfe/dreamcensus-sub001/internal/census"
	"github.com/natewolfe/dreamcensus-sub001/internal/screen"
	"github.com/natewolfe/dreamcensus-sub001/internal/ui/layout"
	"github.com/natewolfe/dreamcensus-sub001/internal/ui/theme"
)

// Row is one answered question.
type Row struct {
	Question string
	Answer   string
}

// Section is a grouping and its answered questions.
type Section struct {
	Grouping census.GroupingView
	Rows     []Row
}

type reviewLoadedMsg struct {
	Sections []Section
	Err      error
}

// ReviewScreen shows saved answers grouped by chapter.
type ReviewScreen struct {
	svc      *census.Service
	sections []Section
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*ReviewScreen)(nil)
var _ screen.KeyHintProvider = (*ReviewScreen)(nil)

// New creates a ReviewScreen.
func New(svc *census.Service) *ReviewScreen {
	return &ReviewScreen{svc: svc, expanded: make(map[int]bool)}
}

func (s *ReviewScreen) Init() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		sections, err := Load(context.Background(), svc)
		return reviewLoadedMsg{Sections: sections, Err: err}
	}
}

// Load reads the subject's answers and arranges them by grouping in
// display order.
func Load(ctx context.Context, svc *census.Service) ([]Section, error) {
	views, err := svc.GetGroupingsWithProgress(ctx)
	if err != nil {
		return nil, err
	}
	sa, err := svc.Resume(ctx)
	if err != nil {
		return nil, err
	}
	var answers answer.Answers
	if sa != nil {
		answers = sa.Answers
	}

	out := make([]Section, 0, len(views))
	for _, g := range views {
		qs, err := svc.GroupingQuestions(ctx, g.Slug)
		if err != nil {
			return nil, err
		}
		sec := Section{Grouping: g}
		for _, q := range qs {
			v, ok := answers.Get(q.ID)
			if !ok || !v.IsPresent() {
				continue
			}
			sec.Rows = append(sec.Rows, Row{Question: q.Text, Answer: Format(q, v)})
		}
		out = append(out, sec)
	}
	return out, nil
}

// Format renders v for display, mapping choice IDs to labels.
func Format(q catalog.Question, v answer.Value) string {
	if b, ok := v.AsBool(); ok {
		if b {
			return "Yes"
		}
		return "No"
	}
	p, ok := q.Props.(catalog.ChoiceProps)
	if !ok {
		if s, ok := q.Props.(catalog.ScaleProps); ok {
			if n, ok := v.AsNumber(); ok {
				return fmt.Sprintf("%s / %d", answer.Number(n), s.Steps)
			}
		}
		return v.String()
	}

	label := func(id string) string {
		for _, c := range p.Choices {
			if c.ID == id {
				return c.Label
			}
		}
		return id
	}
	if id, ok := v.AsString(); ok {
		return label(id)
	}
	if ids, ok := v.AsStrings(); ok {
		labels := make([]string, 0, len(ids))
		for _, id := range ids {
			labels = append(labels, label(id))
		}
		return strings.Join(labels, ", ")
	}
	return v.String()
}

func (s *ReviewScreen) Title() string {
	return "Your Answers"
}

func (s *ReviewScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Expand"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ReviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case reviewLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sections = msg.Sections
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.sections)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *ReviewScreen) View(width, height int) string {
	center := func(str string) string { return lipgloss.PlaceHorizontal(width, lipgloss.Center, str) }
	if s.errMsg != "" {
		return center(theme.Invalid.Render("\n\nError: " + s.errMsg))
	}
	if !s.loaded {
		return center(theme.Hint.Render("\n\nLoading answers..."))
	}

	cw := min(width-8, 72)
	var b strings.Builder
	b.WriteString("\n")
	for i, sec := range s.sections {
		prefix := "  "
		style := theme.Unselected
		if i == s.selected {
			prefix = "▸ "
			style = theme.Selected
		}
		if sec.Grouping.IsLocked {
			style = theme.Locked
		}
		line := fmt.Sprintf("%s%-24s %d/%d answered", prefix, sec.Grouping.Name, sec.Grouping.AnsweredCount, sec.Grouping.StepCount)
		b.WriteString(center(lipgloss.NewStyle().Width(cw).Render(style.Render(line))) + "\n")

		if !s.expanded[i] {
			continue
		}
		if len(sec.Rows) == 0 {
			b.WriteString(center(lipgloss.NewStyle().Width(cw).Render(theme.Hint.Render("    Nothing answered yet"))) + "\n")
			continue
		}
		for _, r := range sec.Rows {
			row := theme.Subtitle.Render("    "+r.Question) + "\n" + theme.Body.Render("      "+r.Answer)
			b.WriteString(center(lipgloss.NewStyle().Width(cw).Render(row)) + "\n")
		}
	}
	return b.String()
}
