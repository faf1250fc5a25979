package selection

import (
	"context"
	"fmt"
	"sort"

	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
)

// ExposureCounter reports how often each question has been shown.
type ExposureCounter interface {
	ShownCounts(ctx context.Context) (map[string]int, error)
}

// CatalogSource serves candidates from an in-memory catalog snapshot merged
// with live exposure counts.
type CatalogSource struct {
	snap     *catalog.Snapshot
	exposure ExposureCounter
}

// NewCatalogSource creates a CatalogSource. exposure may be nil, in which
// case only the catalog's base counters are used.
func NewCatalogSource(snap *catalog.Snapshot, exposure ExposureCounter) *CatalogSource {
	return &CatalogSource{snap: snap, exposure: exposure}
}

// Candidates implements CandidateSource.
func (c *CatalogSource) Candidates(ctx context.Context, tier catalog.Tier, exclude map[string]bool, max int) ([]catalog.Question, error) {
	var live map[string]int
	if c.exposure != nil {
		var err error
		live, err = c.exposure.ShownCounts(ctx)
		if err != nil {
			return nil, fmt.Errorf("exposure counts: %w", err)
		}
	}

	var out []catalog.Question
	for _, q := range c.snap.Questions() {
		if q.Tier != tier || !q.Kind.Answerable() || exclude[q.ID] {
			continue
		}
		q.TimesShown += live[q.ID]
		out = append(out, q)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TimesShown != out[j].TimesShown {
			return out[i].TimesShown < out[j].TimesShown
		}
		if out[i].OrderInTheme != out[j].OrderInTheme {
			return out[i].OrderInTheme < out[j].OrderInTheme
		}
		return out[i].ID < out[j].ID
	})

	if max >= 0 && len(out) > max {
		out = out[:max]
	}
	return out, nil
}

// ThemeQuestions implements CandidateSource.
func (c *CatalogSource) ThemeQuestions(_ context.Context, slug string) (catalog.Theme, []catalog.Question, error) {
	theme, ok := c.snap.ThemeBySlug(slug)
	if !ok {
		return catalog.Theme{}, nil, ErrThemeNotFound
	}
	return theme, c.snap.ThemeQuestions(theme.ID), nil
}
