// Package census is the engine API: it ties the catalog, selection,
// progress and persistence together for one subject at a time.
package census

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
	"github.com/natewolfe/dreamcensus-sub001/internal/cache"
	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
	"github.com/natewolfe/dreamcensus-sub001/internal/selection"
	"github.com/natewolfe/dreamcensus-sub001/internal/store"
)

// AnswerStore persists sessions and answers. store.AnswerRepo implements it.
type AnswerStore interface {
	EnsureSession(ctx context.Context, subjectID, version string, at time.Time) (*store.Session, error)
	Upsert(ctx context.Context, sessionID uuid.UUID, questionID string, v answer.Value, at time.Time) (answer.Value, error)
	ReadSession(ctx context.Context, subjectID, version string) (*store.SessionAnswers, error)
	Submit(ctx context.Context, subjectID, version string, answers answer.Answers, at time.Time) (*store.Session, error)
	MarkCompleted(ctx context.Context, sessionID uuid.UUID, at time.Time) error
	DeleteSubject(ctx context.Context, subjectID string) (int64, error)
}

// ExposureStore tracks how often questions are shown. store.ExposureRepo
// implements it.
type ExposureStore interface {
	selection.ExposureCounter
	IncrementShown(ctx context.Context, questionIDs ...string) error
}

// Service exposes census operations for the subject found in each call's
// context.
type Service struct {
	snap        *catalog.Snapshot
	answers     AnswerStore
	exposure    ExposureStore
	identity    IdentityProvider
	cache       cache.ProgressCache
	selector    *selection.Selector
	logger      *slog.Logger
	now         func() time.Time
	retry       RetryConfig
	selectLimit int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithCache enables a progress cache.
func WithCache(c cache.ProgressCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRetry overrides the store write retry policy.
func WithRetry(cfg RetryConfig) Option {
	return func(s *Service) { s.retry = cfg }
}

// WithSelectLimit sets the batch size used when a selection has no limit.
func WithSelectLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.selectLimit = n
		}
	}
}

// New creates a Service. exposure may be nil.
func New(snap *catalog.Snapshot, answers AnswerStore, exposure ExposureStore, identity IdentityProvider, opts ...Option) *Service {
	s := &Service{
		snap:        snap,
		answers:     answers,
		exposure:    exposure,
		identity:    identity,
		logger:      slog.Default(),
		now:         time.Now,
		retry:       DefaultRetryConfig(),
		selectLimit: selection.DefaultLimit,
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("source", "census")

	var counter selection.ExposureCounter
	if exposure != nil {
		counter = exposure
	}
	s.selector = selection.NewSelector(selection.NewCatalogSource(snap, counter))
	return s
}

// Catalog returns the snapshot the service was built with.
func (s *Service) Catalog() *catalog.Snapshot { return s.snap }

func (s *Service) subject(ctx context.Context) (string, bool) {
	if s.identity == nil {
		return "", false
	}
	return s.identity.SubjectID(ctx)
}

// session reads the subject's session and answers. Anonymous callers and
// subjects without a session get nil.
func (s *Service) session(ctx context.Context) (*store.SessionAnswers, error) {
	subj, ok := s.subject(ctx)
	if !ok {
		return nil, nil
	}
	sa, err := s.answers.ReadSession(ctx, subj, s.snap.Version())
	if err != nil {
		return nil, &RetryableError{Op: "read answers", Err: err}
	}
	return sa, nil
}

// committed returns the subject's persisted answers, never nil.
func (s *Service) committed(ctx context.Context) (answer.Answers, error) {
	sa, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	if sa == nil {
		return answer.Answers{}, nil
	}
	return sa.Answers, nil
}

// Resume returns the subject's saved session and answers, or nil if the
// subject has never answered.
func (s *Service) Resume(ctx context.Context) (*store.SessionAnswers, error) {
	return s.session(ctx)
}

// Reset deletes every session and answer of the current subject.
func (s *Service) Reset(ctx context.Context) (int64, error) {
	subj, ok := s.subject(ctx)
	if !ok {
		return 0, ErrNoSubject
	}
	n, err := s.answers.DeleteSubject(ctx, subj)
	if err != nil {
		return 0, &RetryableError{Op: "delete subject", Err: err}
	}
	s.invalidate(ctx, subj)
	s.logger.InfoContext(ctx, "subject reset", "subject", subj, "sessions", n)
	return n, nil
}

func (s *Service) invalidate(ctx context.Context, subj string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, subj, s.snap.Version()); err != nil {
		s.logger.WarnContext(ctx, "progress cache invalidate failed", "subject", subj, "error", err)
	}
}
