package census

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
	"github.com/natewolfe/dreamcensus-sub001/internal/cache"
	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
	"github.com/natewolfe/dreamcensus-sub001/internal/flow"
	"github.com/natewolfe/dreamcensus-sub001/internal/progress"
	"github.com/natewolfe/dreamcensus-sub001/internal/selection"
	"github.com/natewolfe/dreamcensus-sub001/internal/visibility"
)

// GroupingView is a grouping with the subject's progress through it.
type GroupingView struct {
	ID               string   `json:"id"`
	Slug             string   `json:"slug"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Icon             string   `json:"icon,omitempty"`
	OrderIndex       int      `json:"orderIndex"`
	EstimatedMinutes int      `json:"estimatedMinutes,omitempty"`
	Prerequisites    []string `json:"prerequisites,omitempty"`
	StepCount        int      `json:"stepCount"`
	AnsweredCount    int      `json:"answeredCount"`
	Percent          int      `json:"percent"`
	IsComplete       bool     `json:"isComplete"`
	IsLocked         bool     `json:"isLocked"`
}

// Overview is every grouping plus overall progress.
type Overview struct {
	Groupings   []GroupingView    `json:"groupings"`
	Overall     progress.Progress `json:"overall"`
	Percent     int               `json:"percent"`
	AllComplete bool              `json:"allComplete"`
}

// SelectOptions controls SelectQuestions. The zero value selects a mixed
// batch of the default size from unanswered questions.
type SelectOptions struct {
	Mode            selection.Mode
	ThemeSlug       string
	Limit           int
	IncludeAnswered bool
}

// SelectQuestions picks the next batch of questions for the subject.
// Questions in locked groupings or hidden by their condition are skipped.
func (s *Service) SelectQuestions(ctx context.Context, opts SelectOptions) (*selection.Result, error) {
	mode := opts.Mode
	if mode == "" {
		mode = selection.ModeMixed
	}
	start := time.Now()
	defer func() {
		selectionDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	}()

	answers, err := s.committed(ctx)
	if err != nil {
		return nil, err
	}
	state := s.computeState(answers)

	limit := opts.Limit
	if limit <= 0 {
		limit = s.selectLimit
	}
	sel := selection.Options{
		Mode:      mode,
		ThemeSlug: opts.ThemeSlug,
		Limit:     limit,
		Eligible: func(q catalog.Question) bool {
			if q.GroupingID != "" && state.Locked[q.GroupingID] {
				return false
			}
			return visibility.IsVisible(q.ShowWhen, answers)
		},
	}
	if !opts.IncludeAnswered {
		sel.AnsweredIDs = answers.PresentIDs()
	}

	res, err := s.selector.Select(ctx, sel)
	if err != nil {
		if errors.Is(err, selection.ErrThemeNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, err
	}
	if res.ThemeProgress != nil && opts.IncludeAnswered {
		th, _ := s.snap.Theme(res.ThemeProgress.ThemeID)
		res.ThemeProgress.Answered = progress.ThemeProgress(s.snap.ThemeQuestions(th.ID), answers).Answered
	}

	selections.WithLabelValues(string(mode)).Inc()
	s.logger.DebugContext(ctx, "questions selected", "mode", mode, "count", len(res.Questions))
	return res, nil
}

func (s *Service) computeState(answers answer.Answers) *cache.Entry {
	groupings := progress.ByGrouping(s.snap, answers)
	return &cache.Entry{
		Groupings: groupings,
		Locked:    progress.ComputeUnlockState(s.snap.Groupings(), groupings),
	}
}

// state returns grouping progress and lock state, from the cache when it
// holds a fresh entry.
func (s *Service) state(ctx context.Context) (*cache.Entry, error) {
	subj, ok := s.subject(ctx)
	if !ok {
		return s.computeState(answer.Answers{}), nil
	}

	// gen ties the entry computed below to the answers it was read from.
	var (
		gen       uint64
		cacheable bool
	)
	if s.cache != nil {
		e, g, err := s.cache.Get(ctx, subj, s.snap.Version())
		gen = g
		switch {
		case err != nil:
			progressCache.WithLabelValues("error").Inc()
			s.logger.WarnContext(ctx, "progress cache read failed", "subject", subj, "error", err)
		case e != nil:
			progressCache.WithLabelValues("hit").Inc()
			return e, nil
		default:
			progressCache.WithLabelValues("miss").Inc()
			cacheable = true
		}
	}

	answers, err := s.committed(ctx)
	if err != nil {
		return nil, err
	}
	e := s.computeState(answers)
	if cacheable {
		if err := s.cache.Set(ctx, subj, s.snap.Version(), gen, e); err != nil {
			s.logger.WarnContext(ctx, "progress cache write failed", "subject", subj, "error", err)
		}
	}
	return e, nil
}

func (s *Service) view(g catalog.Grouping, e *cache.Entry) GroupingView {
	p := e.Groupings[g.ID]
	return GroupingView{
		ID:               g.ID,
		Slug:             g.Slug,
		Name:             g.Name,
		Description:      g.Description,
		Icon:             g.Icon,
		OrderIndex:       g.OrderIndex,
		EstimatedMinutes: g.EstimatedMinutes,
		Prerequisites:    s.snap.Prerequisites(g.ID),
		StepCount:        p.Total,
		AnsweredCount:    p.Answered,
		Percent:          p.Percent(),
		IsComplete:       p.IsComplete,
		IsLocked:         e.Locked[g.ID],
	}
}

// GetGroupingsWithProgress lists groupings in order with the subject's
// progress and lock state.
func (s *Service) GetGroupingsWithProgress(ctx context.Context) ([]GroupingView, error) {
	e, err := s.state(ctx)
	if err != nil {
		return nil, err
	}
	groupings := s.snap.Groupings()
	out := make([]GroupingView, 0, len(groupings))
	for _, g := range groupings {
		out = append(out, s.view(g, e))
	}
	return out, nil
}

// Overview returns every grouping plus overall progress weighted by
// question count.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	views, err := s.GetGroupingsWithProgress(ctx)
	if err != nil {
		return nil, err
	}
	ps := make([]progress.Progress, 0, len(views))
	byID := make(map[string]progress.Progress, len(views))
	for _, v := range views {
		p := progress.Progress{Answered: v.AnsweredCount, Total: v.StepCount, IsComplete: v.IsComplete}
		ps = append(ps, p)
		byID[v.ID] = p
	}
	overall := progress.Overall(ps)
	return &Overview{
		Groupings:   views,
		Overall:     overall,
		Percent:     overall.Percent(),
		AllComplete: progress.AllComplete(byID),
	}, nil
}

// Grouping returns the subject's view of one grouping by slug.
func (s *Service) Grouping(ctx context.Context, slug string) (GroupingView, error) {
	g, ok := s.snap.GroupingBySlug(slug)
	if !ok {
		return GroupingView{}, fmt.Errorf("grouping %q: %w", slug, ErrNotFound)
	}
	e, err := s.state(ctx)
	if err != nil {
		return GroupingView{}, err
	}
	return s.view(g, e), nil
}

// GroupingQuestions returns a grouping's questions in display order,
// including group containers.
func (s *Service) GroupingQuestions(_ context.Context, slug string) ([]catalog.Question, error) {
	g, ok := s.snap.GroupingBySlug(slug)
	if !ok {
		return nil, fmt.Errorf("grouping %q: %w", slug, ErrNotFound)
	}
	return s.snap.GroupingQuestions(g.ID), nil
}

// Previews returns the first n questions of every grouping, keyed by slug.
func (s *Service) Previews(n int) map[string][]catalog.Question {
	out := make(map[string][]catalog.Question)
	for _, g := range s.snap.Groupings() {
		out[g.Slug] = s.snap.Preview(g.ID, n)
	}
	return out
}

// CensusProgress counts core and extended questions only. Exploratory
// questions never hold back overall completion.
func (s *Service) CensusProgress(ctx context.Context) (progress.Progress, error) {
	answers, err := s.committed(ctx)
	if err != nil {
		return progress.Progress{}, err
	}
	return progress.ForTiers(s.snap.Questions(), answers, catalog.TierCore, catalog.TierExtended), nil
}

// Writer adapts the service to flow.AnswerWriter. Rejected answers surface
// as *ValidationError.
func (s *Service) Writer() flow.AnswerWriter {
	return flow.AnswerWriterFunc(func(ctx context.Context, questionID string, v answer.Value) error {
		q, ok := s.snap.Question(questionID)
		if !ok {
			return fmt.Errorf("question %q: %w", questionID, ErrNotFound)
		}
		res, err := s.save(ctx, q, v)
		if err != nil {
			return err
		}
		if !res.Valid {
			return &ValidationError{QuestionID: q.ID, Result: res}
		}
		return nil
	})
}

// NewFlow builds a flow controller for one grouping seeded with the
// subject's saved answers. Finishing the flow runs CheckAndComplete.
func (s *Service) NewFlow(ctx context.Context, slug string) (*flow.Controller, error) {
	g, ok := s.snap.GroupingBySlug(slug)
	if !ok {
		return nil, fmt.Errorf("grouping %q: %w", slug, ErrNotFound)
	}
	answers, err := s.committed(ctx)
	if err != nil {
		return nil, err
	}
	if s.computeState(answers).Locked[g.ID] {
		return nil, fmt.Errorf("grouping %q: %w", slug, ErrGroupingLocked)
	}

	return flow.New(flow.Config{
		Questions: s.snap.Answerable(g.ID),
		Committed: answers,
		Writer:    s.Writer(),
		OnComplete: func(ctx context.Context, _ answer.Answers) error {
			_, err := s.CheckAndComplete(ctx)
			return err
		},
	}), nil
}

// NewSelectionFlow builds a flow controller over a selected batch of
// questions instead of a grouping.
func (s *Service) NewSelectionFlow(ctx context.Context, opts SelectOptions) (*flow.Controller, *selection.Result, error) {
	res, err := s.SelectQuestions(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	answers, err := s.committed(ctx)
	if err != nil {
		return nil, nil, err
	}
	return flow.New(flow.Config{
		Questions: res.Questions,
		Committed: answers,
		Writer:    s.Writer(),
		OnComplete: func(ctx context.Context, _ answer.Answers) error {
			_, err := s.CheckAndComplete(ctx)
			return err
		},
	}), res, nil
}
