// Package selection picks which census questions to present next.
package selection

import (
	"context"
	"errors"

	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
)

// Mode is the selection strategy.
type Mode string

const (
	// ModeMixed samples across tiers by quota and balances themes.
	ModeMixed Mode = "mixed"
	// ModeThemeFocus walks one theme in order.
	ModeThemeFocus Mode = "theme-focus"
)

// DefaultLimit is the batch size used when Options.Limit is not positive.
const DefaultLimit = 10

// Tier weights in percent. Tier 3 takes whatever rounding leaves.
const (
	tier1Percent = 70
	tier2Percent = 20
)

// ErrThemeNotFound is returned when a theme-focus slug does not resolve.
var ErrThemeNotFound = errors.New("theme not found")

// Options controls a single selection.
type Options struct {
	Mode        Mode
	ThemeSlug   string
	Limit       int
	AnsweredIDs map[string]bool
	// Eligible, when set, drops candidates after they are fetched (e.g.
	// questions in locked groupings or hidden by their show-when condition).
	Eligible func(catalog.Question) bool
}

// ThemeProgress reports how far a subject is through one theme.
type ThemeProgress struct {
	ThemeID  string `json:"themeId"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Answered int    `json:"answered"`
	Total    int    `json:"total"`
}

// Result is the output of Select.
type Result struct {
	Mode          Mode                 `json:"mode"`
	Questions     []catalog.Question   `json:"-"`
	Quotas        map[catalog.Tier]int `json:"quotas,omitempty"`
	ThemeProgress *ThemeProgress       `json:"themeProgress,omitempty"`
}

// CandidateSource serves unanswered questions to the selector.
type CandidateSource interface {
	// Candidates returns up to max questions of the tier that are not in
	// exclude, ordered by ascending exposure, then OrderInTheme, then ID.
	Candidates(ctx context.Context, tier catalog.Tier, exclude map[string]bool, max int) ([]catalog.Question, error)
	// ThemeQuestions returns a theme and its questions ordered by
	// OrderInTheme, or ErrThemeNotFound.
	ThemeQuestions(ctx context.Context, slug string) (catalog.Theme, []catalog.Question, error)
}

// Quotas splits limit across tiers with integer arithmetic.
func Quotas(limit int) map[catalog.Tier]int {
	t1 := limit * tier1Percent / 100
	t2 := limit * tier2Percent / 100
	// Floor rounding leaves a batch of one with no core question.
	if limit > 0 && t1 == 0 {
		t1 = 1
	}
	return map[catalog.Tier]int{
		catalog.TierCore:        t1,
		catalog.TierExtended:    t2,
		catalog.TierExploratory: limit - t1 - t2,
	}
}
