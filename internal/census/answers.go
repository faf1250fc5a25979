package census

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
	"github.com/natewolfe/dreamcensus-sub001/internal/progress"
	"github.com/natewolfe/dreamcensus-sub001/internal/store"
)

// SaveAnswer validates and persists one answer. questionID may be a
// question id or an analytics key. raw is JSON; malformed input is saved as
// null. An invalid answer is reported through the result and not persisted.
func (s *Service) SaveAnswer(ctx context.Context, questionID string, raw json.RawMessage) (answer.ValidationResult, error) {
	q, ok := s.snap.Resolve(questionID)
	if !ok {
		answersSaved.WithLabelValues("not_found").Inc()
		return answer.ValidationResult{}, fmt.Errorf("question %q: %w", questionID, ErrNotFound)
	}
	return s.save(ctx, q, answer.Parse(raw))
}

func (s *Service) save(ctx context.Context, q catalog.Question, v answer.Value) (answer.ValidationResult, error) {
	if !q.Kind.Answerable() {
		answersSaved.WithLabelValues("invalid").Inc()
		return answer.ValidationResult{Valid: false, Error: "This question does not take an answer"}, nil
	}

	// Required is enforced by navigation, so a save may clear an answer.
	res := catalog.IsAnswerComplete(v, q.Kind, q.Props, false)
	if !res.Valid {
		answersSaved.WithLabelValues("invalid").Inc()
		return res, nil
	}

	subj, ok := s.subject(ctx)
	if !ok {
		return answer.ValidationResult{}, ErrNoSubject
	}

	at := s.now()
	prev := answer.Null()
	err := retry(ctx, s.retry, func(ctx context.Context) error {
		sess, err := s.answers.EnsureSession(ctx, subj, s.snap.Version(), at)
		if err != nil {
			return err
		}
		p, err := s.answers.Upsert(ctx, sess.ID, q.ID, v, at)
		if err != nil {
			return err
		}
		prev = p
		return nil
	})
	if err != nil {
		answersSaved.WithLabelValues("error").Inc()
		s.logger.ErrorContext(ctx, "save answer failed", "subject", subj, "question", q.ID, "error", err)
		return answer.ValidationResult{}, &RetryableError{Op: "save answer", Err: err}
	}
	answersSaved.WithLabelValues("ok").Inc()
	s.invalidate(ctx, subj)

	// Exposure counts the first answer only: re-saves, retries and clears
	// leave it alone.
	if s.exposure != nil && !prev.IsPresent() && v.IsPresent() {
		if err := s.exposure.IncrementShown(ctx, q.ID); err != nil {
			s.logger.WarnContext(ctx, "exposure increment failed", "question", q.ID, "error", err)
		}
	}

	s.logger.DebugContext(ctx, "answer saved", "subject", subj, "question", q.ID, "type", v.Type())
	return res, nil
}

// SubmitResult reports what a submission stored.
type SubmitResult struct {
	Session *store.Session
	Stored  int
	Dropped []string
}

// Submit atomically replaces the subject's answers with raw and marks the
// session completed. Keys may be question ids or analytics keys; keys that
// match no answerable question are dropped.
func (s *Service) Submit(ctx context.Context, raw map[string]json.RawMessage) (*SubmitResult, error) {
	subj, ok := s.subject(ctx)
	if !ok {
		return nil, ErrNoSubject
	}

	answers := make(answer.Answers, len(raw))
	var dropped []string
	for key, val := range raw {
		q, ok := s.snap.Resolve(key)
		if !ok || !q.Kind.Answerable() {
			dropped = append(dropped, key)
			continue
		}
		answers[q.ID] = answer.Parse(val)
	}
	if len(dropped) > 0 {
		slices.Sort(dropped)
		submittedDropped.Add(float64(len(dropped)))
		s.logger.InfoContext(ctx, "submission dropped unknown keys", "subject", subj, "keys", dropped)
	}

	var sess *store.Session
	err := retry(ctx, s.retry, func(ctx context.Context) error {
		var err error
		sess, err = s.answers.Submit(ctx, subj, s.snap.Version(), answers, s.now())
		return err
	})
	if err != nil {
		submissions.WithLabelValues("error").Inc()
		s.logger.ErrorContext(ctx, "submit census failed", "subject", subj, "error", err)
		return nil, &RetryableError{Op: "submit census", Err: err}
	}
	submissions.WithLabelValues("ok").Inc()
	s.invalidate(ctx, subj)

	s.logger.InfoContext(ctx, "census submitted", "subject", subj, "session", sess.ID, "answers", len(answers))
	return &SubmitResult{Session: sess, Stored: len(answers), Dropped: dropped}, nil
}

// AreAllGroupingsComplete reports whether every grouping with answerable
// questions is complete for the subject.
func (s *Service) AreAllGroupingsComplete(ctx context.Context) (bool, error) {
	answers, err := s.committed(ctx)
	if err != nil {
		return false, err
	}
	return progress.AllComplete(progress.ByGrouping(s.snap, answers)), nil
}

// CheckAndComplete marks the subject's session completed when every
// grouping is complete, and reports whether that was the case.
func (s *Service) CheckAndComplete(ctx context.Context) (bool, error) {
	sa, err := s.session(ctx)
	if err != nil || sa == nil {
		return false, err
	}
	if !progress.AllComplete(progress.ByGrouping(s.snap, sa.Answers)) {
		return false, nil
	}
	if sa.Status == store.StatusCompleted {
		return true, nil
	}

	err = retry(ctx, s.retry, func(ctx context.Context) error {
		return s.answers.MarkCompleted(ctx, sa.ID, s.now())
	})
	if err != nil {
		return false, &RetryableError{Op: "complete census", Err: err}
	}
	submissions.WithLabelValues("completed").Inc()
	s.invalidate(ctx, sa.SubjectID)
	s.logger.InfoContext(ctx, "census completed", "subject", sa.SubjectID, "session", sa.ID)
	return true, nil
}

// ExportAnswers returns the subject's answers keyed by analytics key where
// one exists and by question id otherwise. Stored answers for questions no
// longer in the catalog keep their id.
func (s *Service) ExportAnswers(ctx context.Context) (map[string]answer.Value, error) {
	answers, err := s.committed(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]answer.Value, len(answers))
	for id, v := range answers {
		if q, ok := s.snap.Question(id); ok {
			out[q.ExportKey()] = v
			continue
		}
		out[id] = v
	}
	return out, nil
}

// IsRetryable reports whether err is a transient persistence failure.
func IsRetryable(err error) bool { return errors.Is(err, ErrRetryable) }
