package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
)

// ErrSessionNotFound is returned when writing to a session that does not exist.
var ErrSessionNotFound = errors.New("session not found")

// SessionStatus is the lifecycle state of a response session.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
)

// Session aggregates a subject's answers for one catalog version.
type Session struct {
	ID          uuid.UUID
	SubjectID   string
	Version     string
	Status      SessionStatus
	StartedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// SessionAnswers is a session together with its persisted answers.
type SessionAnswers struct {
	Session
	Answers answer.Answers
}

// AnswerRepo persists sparse answers keyed by (session, question).
type AnswerRepo interface {
	// EnsureSession returns the subject's session for version, creating an
	// in-progress one if none exists.
	EnsureSession(ctx context.Context, subjectID, version string, at time.Time) (*Session, error)

	// FindSession returns the subject's session for version, or nil.
	FindSession(ctx context.Context, subjectID, version string) (*Session, error)

	// Upsert writes one answer and returns the value it replaced, null when
	// the question had none. Writing the same key twice overwrites. A
	// completed session is moved back to in progress.
	Upsert(ctx context.Context, sessionID uuid.UUID, questionID string, v answer.Value, at time.Time) (answer.Value, error)

	// ReadSession returns the session and its answers, or nil if none.
	// Stored values that fail to parse read as null.
	ReadSession(ctx context.Context, subjectID, version string) (*SessionAnswers, error)

	// Submit atomically replaces the session's answers with answers and
	// marks it completed, creating the session if needed.
	Submit(ctx context.Context, subjectID, version string, answers answer.Answers, at time.Time) (*Session, error)

	// MarkCompleted flips a session to completed.
	MarkCompleted(ctx context.Context, sessionID uuid.UUID, at time.Time) error

	// DeleteSubject removes every session and answer of a subject.
	DeleteSubject(ctx context.Context, subjectID string) (int64, error)
}

type answerRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var sessionSelectColumns = []string{"id", "subject_id", "version", "status", "started_at", "updated_at", "completed_at"}

func findSession(ctx context.Context, q queryer, subjectID, version string) (*Session, error) {
	query, args := builder().Select(sessionSelectColumns...).
		From(entsql.Table(tableSessions)).
		Where(entsql.And(
			entsql.EQ("subject_id", subjectID),
			entsql.EQ("version", version),
		)).
		Limit(1).
		Query()

	var (
		s         Session
		id        string
		status    string
		completed sql.NullTime
	)
	err := q.QueryRowContext(ctx, query, args...).Scan(&id, &s.SubjectID, &s.Version, &status, &s.StartedAt, &s.UpdatedAt, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	s.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse session id %q: %w", id, err)
	}
	s.Status = SessionStatus(status)
	if completed.Valid {
		t := completed.Time
		s.CompletedAt = &t
	}
	return &s, nil
}

func createSession(ctx context.Context, q queryer, subjectID, version string, at time.Time) (*Session, error) {
	s := &Session{
		ID:        uuid.New(),
		SubjectID: subjectID,
		Version:   version,
		Status:    StatusInProgress,
		StartedAt: at,
		UpdatedAt: at,
	}
	query, args := builder().Insert(tableSessions).
		Columns("id", "subject_id", "version", "status", "started_at", "updated_at").
		Values(s.ID.String(), s.SubjectID, s.Version, string(s.Status), s.StartedAt, s.UpdatedAt).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return s, nil
}

func (r *answerRepo) FindSession(ctx context.Context, subjectID, version string) (*Session, error) {
	return findSession(ctx, r.db, subjectID, version)
}

func (r *answerRepo) EnsureSession(ctx context.Context, subjectID, version string, at time.Time) (*Session, error) {
	var out *Session
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		s, err := findSession(ctx, tx, subjectID, version)
		if err != nil {
			return err
		}
		if s == nil {
			s, err = createSession(ctx, tx, subjectID, version, at)
			if err != nil {
				return err
			}
		}
		out = s
		return nil
	})
	return out, err
}

func (r *answerRepo) Upsert(ctx context.Context, sessionID uuid.UUID, questionID string, v answer.Value, at time.Time) (answer.Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return answer.Null(), fmt.Errorf("marshal answer %s: %w", questionID, err)
	}

	prev := answer.Null()
	err = r.inTx(ctx, func(tx *sql.Tx) error {
		// Completion is re-derived, so any save reopens the session.
		query, args := builder().Update(tableSessions).
			Set("status", string(StatusInProgress)).
			SetNull("completed_at").
			Set("updated_at", at).
			Where(entsql.EQ("id", sessionID.String())).
			Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("reopen session: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("upsert %s: %w", questionID, ErrSessionNotFound)
		}

		query, args = builder().Select("value").
			From(entsql.Table(tableAnswers)).
			Where(entsql.And(
				entsql.EQ("session_id", sessionID.String()),
				entsql.EQ("question_id", questionID),
			)).
			Query()
		var old string
		switch err := tx.QueryRowContext(ctx, query, args...).Scan(&old); {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("read answer %s: %w", questionID, err)
		default:
			prev = answer.Parse([]byte(old))
		}

		query, args = builder().Insert(tableAnswers).
			Columns("session_id", "question_id", "value", "updated_at").
			Values(sessionID.String(), questionID, string(raw), at).
			OnConflict(
				entsql.ConflictColumns("session_id", "question_id"),
				entsql.ResolveWith(func(u *entsql.UpdateSet) {
					u.SetExcluded("value")
					u.SetExcluded("updated_at")
				}),
			).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert answer %s: %w", questionID, err)
		}
		return nil
	})
	if err != nil {
		return answer.Null(), err
	}
	return prev, nil
}

func (r *answerRepo) ReadSession(ctx context.Context, subjectID, version string) (*SessionAnswers, error) {
	s, err := findSession(ctx, r.db, subjectID, version)
	if err != nil || s == nil {
		return nil, err
	}

	query, args := builder().Select("question_id", "value").
		From(entsql.Table(tableAnswers)).
		Where(entsql.EQ("session_id", s.ID.String())).
		OrderBy(entsql.Asc("id")).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	out := &SessionAnswers{Session: *s, Answers: answer.Answers{}}
	for rows.Next() {
		var qid, raw string
		if err := rows.Scan(&qid, &raw); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		v := answer.Parse([]byte(raw))
		if v.IsNull() && raw != "null" {
			r.logger.Warn("stored answer could not be parsed; treating as null",
				"session_id", s.ID, "question_id", qid)
		}
		out.Answers[qid] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answers: %w", err)
	}
	return out, nil
}

func (r *answerRepo) Submit(ctx context.Context, subjectID, version string, answers answer.Answers, at time.Time) (*Session, error) {
	var out *Session
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		s, err := findSession(ctx, tx, subjectID, version)
		if err != nil {
			return err
		}
		if s == nil {
			if s, err = createSession(ctx, tx, subjectID, version, at); err != nil {
				return err
			}
		}

		query, args := builder().Delete(tableAnswers).
			Where(entsql.EQ("session_id", s.ID.String())).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("clear answers: %w", err)
		}

		if len(answers) > 0 {
			ins := builder().Insert(tableAnswers).
				Columns("session_id", "question_id", "value", "updated_at")
			for _, qid := range sortedKeys(answers) {
				raw, err := json.Marshal(answers[qid])
				if err != nil {
					return fmt.Errorf("marshal answer %s: %w", qid, err)
				}
				ins.Values(s.ID.String(), qid, string(raw), at)
			}
			query, args = ins.Query()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert answers: %w", err)
			}
		}

		if err := markCompleted(ctx, tx, s.ID, at); err != nil {
			return err
		}
		s.Status = StatusCompleted
		s.UpdatedAt = at
		s.CompletedAt = &at
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *answerRepo) MarkCompleted(ctx context.Context, sessionID uuid.UUID, at time.Time) error {
	return markCompleted(ctx, r.db, sessionID, at)
}

func markCompleted(ctx context.Context, q queryer, sessionID uuid.UUID, at time.Time) error {
	query, args := builder().Update(tableSessions).
		Set("status", string(StatusCompleted)).
		Set("completed_at", at).
		Set("updated_at", at).
		Where(entsql.EQ("id", sessionID.String())).
		Query()
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *answerRepo) DeleteSubject(ctx context.Context, subjectID string) (int64, error) {
	var n int64
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		// Answers go explicitly so the delete does not depend on the
		// connection's foreign_keys setting.
		sub := builder().Select("id").From(entsql.Table(tableSessions)).Where(entsql.EQ("subject_id", subjectID))
		query, args := builder().Delete(tableAnswers).
			Where(entsql.In("session_id", sub)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete answers: %w", err)
		}
		query, args = builder().Delete(tableSessions).
			Where(entsql.EQ("subject_id", subjectID)).
			Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("delete sessions: %w", err)
		}
		n, _ = res.RowsAffected()
		return nil
	})
	return n, err
}

// inTx runs fn in a transaction, rolling back on any error.
func (r *answerRepo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
