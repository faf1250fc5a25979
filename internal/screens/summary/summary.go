// Package summary shows what finishing a grouping achieved.
package summary

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/natewolfe/dreamcensus-sub001/internal/census"
	"github.com/natewolfe/dreamcensus-sub001/internal/router"
	"github.com/natewolfe/dreamcensus-sub001/internal/screen"
	"github.com/natewolfe/dreamcensus-sub001/internal/ui/components"
	"github.com/natewolfe/dreamcensus-sub001/internal/ui/layout"
	"github.com/natewolfe/dreamcensus-sub001/internal/ui/theme"
)

// ContinueFunc opens the next grouping.
type ContinueFunc func(census.GroupingView) tea.Cmd

type overviewLoadedMsg struct {
	Overview *census.Overview
	Err      error
}

// SummaryScreen is shown after the last step of a flow.
type SummaryScreen struct {
	svc      *census.Service
	grouping census.GroupingView
	next     ContinueFunc

	overview *census.Overview
	current  *census.GroupingView
	suggest  *census.GroupingView
	errMsg   string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen for the finished grouping. next may be nil.
func New(svc *census.Service, grouping census.GroupingView, next ContinueFunc) *SummaryScreen {
	return &SummaryScreen{svc: svc, grouping: grouping, next: next}
}

func (s *SummaryScreen) Init() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		ov, err := svc.Overview(context.Background())
		return overviewLoadedMsg{Overview: ov, Err: err}
	}
}

func (s *SummaryScreen) Title() string {
	return "Chapter Complete"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	if s.suggest != nil && s.next != nil {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Continue to " + s.suggest.Name},
			{Key: "Esc", Description: "Chapters"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Chapters"},
		{Key: "Esc", Description: "Chapters"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.overview = msg.Overview
		s.current, s.suggest = nil, nil
		for i := range msg.Overview.Groupings {
			g := &msg.Overview.Groupings[i]
			if g.ID == s.grouping.ID && g.ID != "" {
				s.current = g
			}
			if s.suggest == nil && !g.IsLocked && !g.IsComplete {
				s.suggest = g
			}
		}
		return s, nil

	case tea.KeyPressMsg:
		if msg.String() == "enter" {
			if s.suggest != nil && s.next != nil {
				return s, s.next(*s.suggest)
			}
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	center := func(str string) string { return lipgloss.PlaceHorizontal(width, lipgloss.Center, str) }
	if s.errMsg != "" {
		return center(theme.Invalid.Render("\n\nError: " + s.errMsg))
	}
	if s.overview == nil {
		return center(theme.Hint.Render("\n\nTallying..."))
	}

	cw := min(width-8, 60)
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center(theme.Title.Render(fmt.Sprintf("✦ %s complete ✦", s.grouping.Name))) + "\n\n")

	if s.current != nil {
		b.WriteString(center(theme.Body.Render(fmt.Sprintf(
			"Answered %d of %d questions", s.current.AnsweredCount, s.current.StepCount))) + "\n\n")
	}

	divider := theme.Locked.Render(strings.Repeat("─", cw))
	b.WriteString(center(theme.Subtitle.Render("Chapters")) + "\n")
	b.WriteString(center(divider) + "\n\n")
	for _, g := range s.overview.Groupings {
		label := fmt.Sprintf("%-18s", g.Name)
		if g.IsLocked {
			b.WriteString(center(theme.Locked.Render(fmt.Sprintf("%s  locked", label))) + "\n")
			continue
		}
		b.WriteString(center(components.NewProgressBar(label, g.Percent, true, cw).View()) + "\n")
	}
	b.WriteString("\n")

	switch {
	case s.overview.AllComplete:
		b.WriteString(center(theme.Done.Render("Every chapter is complete. Thank you for contributing your dreams.")) + "\n")
	case s.suggest != nil:
		b.WriteString(center(theme.Hint.Render("Up next: "+s.suggest.Name)) + "\n")
	}
	return b.String()
}
