package selection

import (
	"context"
	"fmt"

	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
)

// Selector builds question batches from a CandidateSource.
type Selector struct {
	source CandidateSource
}

// NewSelector creates a Selector.
func NewSelector(source CandidateSource) *Selector {
	return &Selector{source: source}
}

// Select returns the next batch of questions.
func (s *Selector) Select(ctx context.Context, opts Options) (*Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.AnsweredIDs == nil {
		opts.AnsweredIDs = map[string]bool{}
	}

	switch opts.Mode {
	case ModeThemeFocus:
		if opts.ThemeSlug == "" {
			return nil, fmt.Errorf("theme-focus selection requires a theme slug: %w", ErrThemeNotFound)
		}
		return s.selectTheme(ctx, opts)
	case ModeMixed, "":
		return s.selectMixed(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown selection mode %q", opts.Mode)
	}
}

func (s *Selector) selectTheme(ctx context.Context, opts Options) (*Result, error) {
	theme, questions, err := s.source.ThemeQuestions(ctx, opts.ThemeSlug)
	if err != nil {
		return nil, fmt.Errorf("theme %q: %w", opts.ThemeSlug, err)
	}

	progress := &ThemeProgress{ThemeID: theme.ID, Slug: theme.Slug, Name: theme.Name}
	var remaining []catalog.Question
	for _, q := range questions {
		if !q.Kind.Answerable() {
			continue
		}
		progress.Total++
		if opts.AnsweredIDs[q.ID] {
			progress.Answered++
			continue
		}
		if opts.Eligible != nil && !opts.Eligible(q) {
			continue
		}
		remaining = append(remaining, q)
	}
	if len(remaining) > opts.Limit {
		remaining = remaining[:opts.Limit]
	}

	return &Result{
		Mode:          ModeThemeFocus,
		Questions:     remaining,
		ThemeProgress: progress,
	}, nil
}

func (s *Selector) selectMixed(ctx context.Context, opts Options) (*Result, error) {
	quotas := Quotas(opts.Limit)

	var picked []catalog.Question
	for _, tier := range catalog.AllTiers() {
		quota := quotas[tier]
		if quota == 0 {
			continue
		}
		// Over-fetch so the post-filter can drop ineligible questions and
		// still fill the quota.
		candidates, err := s.source.Candidates(ctx, tier, opts.AnsweredIDs, quota*2)
		if err != nil {
			return nil, fmt.Errorf("tier %d candidates: %w", tier, err)
		}
		n := 0
		for _, q := range candidates {
			if n == quota {
				break
			}
			if opts.Eligible != nil && !opts.Eligible(q) {
				continue
			}
			picked = append(picked, q)
			n++
		}
	}

	return &Result{
		Mode:      ModeMixed,
		Questions: BalanceByTheme(picked),
		Quotas:    quotas,
	}, nil
}
