// Package home lists the census chapters with the subject's progress.
package home

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/natewolfe/dreamcensus-sub001/internal/census"
	"github.com/natewolfe/dreamcensus-sub001/internal/router"
	"github.com/natewolfe/dreamcensus-sub001/internal/screen"
	"github.com/natewolfe/dreamcensus-sub001/internal/screens/review"
	"github.com/natewolfe/dreamcensus-sub001/internal/screens/survey"
	"github.com/natewolfe/dreamcensus-sub001/internal/ui/components"
	"github.com/natewolfe/dreamcensus-sub001/internal/ui/layout"
	"github.com/natewolfe/dreamcensus-sub001/internal/ui/theme"
)

type overviewLoadedMsg struct {
	Overview *census.Overview
	Err      error
}

type errMsg struct{ Err error }

// HomeScreen shows every grouping with progress and lock state.
type HomeScreen struct {
	svc      *census.Service
	overview *census.Overview
	menu     components.Menu
	errMsg   string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a HomeScreen. Init loads the overview.
func New(svc *census.Service) *HomeScreen {
	return &HomeScreen{svc: svc}
}

func (h *HomeScreen) Init() tea.Cmd {
	svc := h.svc
	return func() tea.Msg {
		ov, err := svc.Overview(context.Background())
		return overviewLoadedMsg{Overview: ov, Err: err}
	}
}

func (h *HomeScreen) Title() string {
	return "Chapters"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewLoadedMsg:
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.overview = msg.Overview
		h.menu = h.buildMenu(h.menu.Selected)
		percent := msg.Overview.Percent
		return h, func() tea.Msg { return screen.ProgressMsg{Percent: percent} }

	case errMsg:
		h.errMsg = msg.Err.Error()
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// buildMenu lists groupings followed by the fixed actions. selected is kept
// when it still points at an enabled row.
func (h *HomeScreen) buildMenu(selected int) components.Menu {
	var items []components.MenuItem
	for _, g := range h.overview.Groupings {
		items = append(items, components.MenuItem{
			Label:    groupingLabel(g),
			Detail:   groupingDetail(g),
			Disabled: g.IsLocked,
			Action:   h.openGrouping(g),
		})
	}
	items = append(items,
		components.MenuItem{Label: "✧ Quick questions", Detail: "a mixed batch from open chapters", Action: h.openMixed},
		components.MenuItem{Label: "☰ Review answers", Action: func() tea.Cmd {
			svc := h.svc
			return func() tea.Msg { return router.PushScreenMsg{Screen: review.New(svc)} }
		}},
		components.MenuItem{Label: "Exit", Action: func() tea.Cmd { return tea.Quit }},
	)

	m := components.NewMenu(items)
	if selected > 0 && selected < len(items) && !items[selected].Disabled {
		m.Selected = selected
	}
	return m
}

func groupingLabel(g census.GroupingView) string {
	icon := g.Icon
	switch {
	case g.IsLocked:
		icon = "🔒"
	case g.IsComplete:
		icon = "✓"
	case icon == "":
		icon = "•"
	}
	return icon + " " + g.Name
}

func groupingDetail(g census.GroupingView) string {
	if g.IsLocked {
		return "locked"
	}
	d := fmt.Sprintf("%d/%d", g.AnsweredCount, g.StepCount)
	if g.EstimatedMinutes > 0 && !g.IsComplete {
		d += fmt.Sprintf(" · ~%d min", g.EstimatedMinutes)
	}
	return d
}

func (h *HomeScreen) openGrouping(g census.GroupingView) func() tea.Cmd {
	svc := h.svc
	return func() tea.Cmd {
		return func() tea.Msg {
			ctl, err := svc.NewFlow(context.Background(), g.Slug)
			if err != nil {
				if errors.Is(err, census.ErrGroupingLocked) {
					return errMsg{Err: fmt.Errorf("%s is locked until its prerequisites are complete", g.Name)}
				}
				return errMsg{Err: err}
			}
			return router.PushScreenMsg{Screen: survey.New(svc, g, ctl)}
		}
	}
}

func (h *HomeScreen) openMixed() tea.Cmd {
	svc := h.svc
	return func() tea.Msg {
		ctl, res, err := svc.NewSelectionFlow(context.Background(), census.SelectOptions{})
		if err != nil {
			return errMsg{Err: err}
		}
		if len(res.Questions) == 0 {
			return errMsg{Err: errors.New("no open questions left to answer")}
		}
		g := census.GroupingView{Name: "Quick questions", StepCount: len(res.Questions)}
		return router.PushScreenMsg{Screen: survey.New(svc, g, ctl)}
	}
}

func (h *HomeScreen) View(width, height int) string {
	center := func(s string) string { return lipgloss.PlaceHorizontal(width, lipgloss.Center, s) }

	if h.overview == nil {
		if h.errMsg != "" {
			return center(theme.Invalid.Render("\n\nError: " + h.errMsg))
		}
		return center(theme.Hint.Render("\n\nLoading chapters..."))
	}

	cw := min(width-8, 72)
	var b strings.Builder
	b.WriteString("\n")
	if !layout.IsCompactHeight(height + 6) {
		b.WriteString(center(theme.Title.Render("☾  The Dream Census  ☽")) + "\n")
		b.WriteString(center(theme.Subtitle.Render("A collective portrait of how we sleep and dream")) + "\n\n")
	}

	overall := components.NewProgressBar("Overall", h.overview.Percent, true, cw)
	b.WriteString(center(overall.View()) + "\n\n")

	card := theme.Card.Width(cw).Render(strings.TrimRight(h.menu.View(), "\n"))
	b.WriteString(center(card) + "\n")

	if sel := h.selectedGrouping(); sel != nil {
		b.WriteString("\n")
		if sel.Description != "" {
			b.WriteString(center(theme.Hint.Render(sel.Description)) + "\n")
		}
		bar := components.NewProgressBar(sel.Name, sel.Percent, true, cw)
		b.WriteString(center(bar.View()) + "\n")
	}

	if h.overview.AllComplete {
		b.WriteString("\n" + center(theme.Done.Render("✦ Census complete. Thank you for dreaming with us.")) + "\n")
	}
	if h.errMsg != "" {
		b.WriteString("\n" + center(theme.Invalid.Render(h.errMsg)) + "\n")
	}
	return b.String()
}

func (h *HomeScreen) selectedGrouping() *census.GroupingView {
	if h.overview == nil || h.menu.Selected >= len(h.overview.Groupings) {
		return nil
	}
	return &h.overview.Groupings[h.menu.Selected]
}
