// Package app hosts the census TUI.
package app

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/natewolfe/dreamcensus-sub001/internal/census"
	"github.com/natewolfe/dreamcensus-sub001/internal/router"
	"github.com/natewolfe/dreamcensus-sub001/internal/screen"
	"github.com/natewolfe/dreamcensus-sub001/internal/screens/home"
	"github.com/natewolfe/dreamcensus-sub001/internal/screens/welcome"
	"github.com/natewolfe/dreamcensus-sub001/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	width   int
	height  int
	percent int
}

func newAppModel(svc *census.Service, firstRun bool) AppModel {
	var root screen.Screen = home.New(svc)
	if firstRun {
		root = welcome.New(func() screen.Screen { return home.New(svc) })
	}
	return AppModel{
		router:  router.New(root),
		percent: -1,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.ProgressMsg:
		m.percent = msg.Percent
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.frame())
	return v
}

// frame renders the full terminal contents.
func (m AppModel) frame() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	header := layout.RenderHeader(active.Title(), m.percent, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return p.KeyHints()
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the TUI and blocks until it exits. Subjects without a saved
// session see the intro first.
func Run(ctx context.Context, svc *census.Service) error {
	sa, err := svc.Resume(ctx)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(newAppModel(svc, sa == nil), tea.WithContext(ctx)).Run()
	return err
}
