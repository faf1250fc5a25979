package summary

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"

	"github.com/natewolfe/dreamcensus-sub001/internal/census"
	"github.com/natewolfe/dreamcensus-sub001/internal/router"
)

func testOverview() *census.Overview {
	return &census.Overview{
		Groupings: []census.GroupingView{
			{ID: "ga", Slug: "first", Name: "First", StepCount: 2, AnsweredCount: 2, Percent: 100, IsComplete: true},
			{ID: "gb", Slug: "second", Name: "Second", StepCount: 3},
			{ID: "gc", Slug: "third", Name: "Third", StepCount: 1, IsLocked: true},
		},
		Percent: 33,
	}
}

func loaded(next ContinueFunc) *SummaryScreen {
	s := New(nil, census.GroupingView{ID: "ga", Name: "First"}, next)
	s.Update(overviewLoadedMsg{Overview: testOverview()})
	return s
}

func TestSummaryScreen_Title(t *testing.T) {
	assert.Equal(t, "Chapter Complete", New(nil, census.GroupingView{}, nil).Title())
}

func TestSummaryScreen_Loading(t *testing.T) {
	s := New(nil, census.GroupingView{Name: "First"}, nil)
	assert.Contains(t, s.View(80, 24), "Tallying")
}

func TestSummaryScreen_Display(t *testing.T) {
	s := loaded(nil)
	view := s.View(100, 30)
	assert.Contains(t, view, "First complete")
	assert.Contains(t, view, "Answered 2 of 2")
	assert.Contains(t, view, "Up next: Second")
	assert.Contains(t, view, "locked")
}

func TestSummaryScreen_EnterContinues(t *testing.T) {
	var opened string
	s := loaded(func(g census.GroupingView) tea.Cmd {
		opened = g.Slug
		return func() tea.Msg { return nil }
	})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.NotNil(t, cmd)
	assert.Equal(t, "second", opened)
	assert.Len(t, s.KeyHints(), 2)
	assert.Contains(t, s.KeyHints()[0].Description, "Second")
}

func TestSummaryScreen_EnterPopsWithoutContinue(t *testing.T) {
	s := loaded(nil)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if assert.NotNil(t, cmd) {
		assert.Equal(t, router.PopScreenMsg{}, cmd())
	}
}

func TestSummaryScreen_AllComplete(t *testing.T) {
	s := New(nil, census.GroupingView{ID: "ga", Name: "First"}, nil)
	s.Update(overviewLoadedMsg{Overview: &census.Overview{
		Groupings:   []census.GroupingView{{ID: "ga", Name: "First", Percent: 100, IsComplete: true}},
		Percent:     100,
		AllComplete: true,
	}})
	assert.Contains(t, s.View(100, 30), "Every chapter is complete")
}
