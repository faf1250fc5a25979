// Package welcome introduces the census on first run.
package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/natewolfe/dreamcensus-sub001/internal/router"
	"github.com/natewolfe/dreamcensus-sub001/internal/screen"
	"github.com/natewolfe/dreamcensus-sub001/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	starsAt      = 300 * time.Millisecond
	bannerAt     = 800 * time.Millisecond
	totalDur     = 1500 * time.Millisecond
)

var twinkle = []string{"·", "✦", "✧", "⋆"}

type tickMsg time.Time

// WelcomeScreen shows a short intro, then replaces itself with the screen
// built by next.
type WelcomeScreen struct {
	next         func() screen.Screen
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen.
func New(next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{next: next}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.transitioned {
			return w, nil
		}
		if w.elapsed < totalDur {
			w.elapsed += tickInterval
		}
		w.tickCount++
		return w, tick()

	case tea.KeyPressMsg:
		// A key before the banner shows skips the animation first.
		if w.elapsed < bannerAt {
			w.elapsed = totalDur
			return w, nil
		}
		return w, w.transition()
	}
	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	next := w.next()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	moon := lipgloss.NewStyle().Foreground(theme.Accent).Render(moonArt)

	if w.elapsed >= starsAt {
		star := lipgloss.NewStyle().Foreground(theme.Secondary)
		lines := strings.Split(moon, "\n")
		for i := range lines {
			if i%2 == 0 {
				lines[i] = star.Render(twinkle[(w.tickCount+i)%len(twinkle)]) + "   " + lines[i]
			} else {
				lines[i] = "    " + lines[i]
			}
		}
		moon = strings.Join(lines, "\n")
	}

	sections := []string{moon}
	if w.elapsed >= bannerAt {
		sections = append(sections,
			"",
			RenderBanner(),
			"",
			theme.Body.Bold(true).Render("Tell us how you sleep and what you dream."),
			theme.Subtitle.Render("Answers save as you go. Come back any time."),
			"",
			theme.Hint.Render("press any key to begin"),
		)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, sections...))
}
