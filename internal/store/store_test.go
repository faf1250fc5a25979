package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}
	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestWithTxLock(t *testing.T) {
	assert.Equal(t, "a.db?_txlock=immediate", withTxLock("a.db"))
	assert.Equal(t, "file:x?mode=memory&_txlock=immediate", withTxLock("file:x?mode=memory"))
	assert.Equal(t, "a.db?_txlock=deferred", withTxLock("a.db?_txlock=deferred"))
}

func TestEnsureSession_Idempotent(t *testing.T) {
	repo := openTestStore(t).AnswerRepo()
	ctx := context.Background()

	s1, err := repo.EnsureSession(ctx, "subj", "v1", t0)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, s1.Status)

	s2, err := repo.EnsureSession(ctx, "subj", "v1", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, s1.ID, s2.ID)
	assert.True(t, s2.StartedAt.Equal(t0))

	s3, err := repo.EnsureSession(ctx, "subj", "v2", t0)
	require.NoError(t, err)
	assert.NotEqual(t, s1.ID, s3.ID)
}

func TestReadSession_NoneIsNil(t *testing.T) {
	repo := openTestStore(t).AnswerRepo()
	got, err := repo.ReadSession(context.Background(), "ghost", "v1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func mustUpsert(t *testing.T, repo AnswerRepo, sessionID uuid.UUID, questionID string, v answer.Value, at time.Time) {
	t.Helper()
	_, err := repo.Upsert(context.Background(), sessionID, questionID, v, at)
	require.NoError(t, err)
}

func TestUpsert_ReturnsReplacedValue(t *testing.T) {
	repo := openTestStore(t).AnswerRepo()
	ctx := context.Background()
	sess, err := repo.EnsureSession(ctx, "subj", "v1", t0)
	require.NoError(t, err)

	prev, err := repo.Upsert(ctx, sess.ID, "q1", answer.String("a"), t0)
	require.NoError(t, err)
	assert.True(t, prev.IsNull())

	prev, err = repo.Upsert(ctx, sess.ID, "q1", answer.String("b"), t0)
	require.NoError(t, err)
	assert.True(t, prev.Equal(answer.String("a")))
}

func TestUpsert_IdempotentLatestWins(t *testing.T) {
	s := openTestStore(t)
	repo := s.AnswerRepo()
	ctx := context.Background()

	sess, err := repo.EnsureSession(ctx, "subj", "v1", t0)
	require.NoError(t, err)

	mustUpsert(t, repo, sess.ID, "q1", answer.String("a"), t0)
	mustUpsert(t, repo, sess.ID, "q1", answer.String("a"), t0)
	mustUpsert(t, repo, sess.ID, "q1", answer.String("b"), t0.Add(time.Minute))

	var rows int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM answers WHERE question_id = 'q1'`).Scan(&rows))
	assert.Equal(t, 1, rows)

	got, err := repo.ReadSession(ctx, "subj", "v1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Answers["q1"].Equal(answer.String("b")))
}

func TestUpsert_AllValueShapesRoundTrip(t *testing.T) {
	repo := openTestStore(t).AnswerRepo()
	ctx := context.Background()
	sess, err := repo.EnsureSession(ctx, "subj", "v1", t0)
	require.NoError(t, err)

	want := answer.Answers{
		"s":  answer.String("hello"),
		"a":  answer.Strings([]string{"x", "y"}),
		"n":  answer.Number(0),
		"b":  answer.Bool(false),
		"nl": answer.Null(),
	}
	for id, v := range want {
		mustUpsert(t, repo, sess.ID, id, v, t0)
	}
	got, err := repo.ReadSession(ctx, "subj", "v1")
	require.NoError(t, err)
	for id, v := range want {
		assert.True(t, got.Answers[id].Equal(v), "answer %s: got %v want %v", id, got.Answers[id], v)
	}
}

func TestUpsert_ReopensCompletedSession(t *testing.T) {
	repo := openTestStore(t).AnswerRepo()
	ctx := context.Background()

	sess, err := repo.Submit(ctx, "subj", "v1", answer.Answers{"q1": answer.String("x")}, t0)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, sess.Status)

	mustUpsert(t, repo, sess.ID, "q2", answer.Number(3), t0.Add(time.Hour))
	got, err := repo.FindSession(ctx, "subj", "v1")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, got.Status)
	assert.Nil(t, got.CompletedAt)
}

func TestUpsert_UnknownSession(t *testing.T) {
	repo := openTestStore(t).AnswerRepo()
	_, err := repo.Upsert(context.Background(), uuid.New(), "q1", answer.String("x"), t0)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestReadSession_CorruptValueIsNull(t *testing.T) {
	s := openTestStore(t)
	repo := s.AnswerRepo()
	ctx := context.Background()
	sess, err := repo.EnsureSession(ctx, "subj", "v1", t0)
	require.NoError(t, err)
	mustUpsert(t, repo, sess.ID, "good", answer.String("ok"), t0)
	mustUpsert(t, repo, sess.ID, "bad", answer.String("x"), t0)

	_, err = s.DB().Exec(`UPDATE answers SET value = '{not json' WHERE question_id = 'bad'`)
	require.NoError(t, err)

	got, err := repo.ReadSession(ctx, "subj", "v1")
	require.NoError(t, err)
	assert.True(t, got.Answers["bad"].IsNull())
	assert.True(t, got.Answers["good"].Equal(answer.String("ok")))
}

func TestSubmit_ReplacesAnswersAndCompletes(t *testing.T) {
	repo := openTestStore(t).AnswerRepo()
	ctx := context.Background()

	sess, err := repo.EnsureSession(ctx, "subj", "v1", t0)
	require.NoError(t, err)
	mustUpsert(t, repo, sess.ID, "old", answer.String("gone"), t0)

	done, err := repo.Submit(ctx, "subj", "v1", answer.Answers{
		"q1": answer.String("x"),
		"q2": answer.Bool(true),
	}, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, sess.ID, done.ID)
	require.NotNil(t, done.CompletedAt)

	got, err := repo.ReadSession(ctx, "subj", "v1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Len(t, got.Answers, 2)
	_, ok := got.Answers["old"]
	assert.False(t, ok)
}

func TestSubmit_CreatesSession(t *testing.T) {
	repo := openTestStore(t).AnswerRepo()
	ctx := context.Background()
	sess, err := repo.Submit(ctx, "new", "v1", answer.Answers{}, t0)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, sess.Status)

	got, err := repo.ReadSession(ctx, "new", "v1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Answers)
}

func TestSubmit_RollsBackOnFailure(t *testing.T) {
	s := openTestStore(t)
	repo := s.AnswerRepo()
	ctx := context.Background()

	sess, err := repo.EnsureSession(ctx, "subj", "v1", t0)
	require.NoError(t, err)
	mustUpsert(t, repo, sess.ID, "keep", answer.String("me"), t0)

	// Force the final status update to fail after answers were rewritten.
	_, err = s.DB().Exec(`CREATE TRIGGER no_complete BEFORE UPDATE OF status ON response_sessions
		WHEN NEW.status = 'completed' BEGIN SELECT RAISE(ABORT, 'blocked'); END`)
	require.NoError(t, err)

	_, err = repo.Submit(ctx, "subj", "v1", answer.Answers{"other": answer.String("x")}, t0.Add(time.Hour))
	require.Error(t, err)

	got, err := repo.ReadSession(ctx, "subj", "v1")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, got.Status)
	assert.Len(t, got.Answers, 1)
	assert.True(t, got.Answers["keep"].Equal(answer.String("me")))
}

func TestDeleteSubject(t *testing.T) {
	repo := openTestStore(t).AnswerRepo()
	ctx := context.Background()
	_, err := repo.Submit(ctx, "gone", "v1", answer.Answers{"q": answer.String("x")}, t0)
	require.NoError(t, err)
	_, err = repo.Submit(ctx, "gone", "v2", answer.Answers{"q": answer.String("y")}, t0)
	require.NoError(t, err)
	_, err = repo.Submit(ctx, "stays", "v1", answer.Answers{"q": answer.String("z")}, t0)
	require.NoError(t, err)

	n, err := repo.DeleteSubject(ctx, "gone")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := repo.ReadSession(ctx, "gone", "v1")
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = repo.ReadSession(ctx, "stays", "v1")
	require.NoError(t, err)
	assert.Len(t, got.Answers, 1)
}

func TestExposure(t *testing.T) {
	repo := openTestStore(t).ExposureRepo()
	ctx := context.Background()

	counts, err := repo.ShownCounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)

	require.NoError(t, repo.IncrementShown(ctx, "a", "b", "a"))
	require.NoError(t, repo.IncrementShown(ctx, "a"))
	require.NoError(t, repo.IncrementShown(ctx))

	counts, err = repo.ShownCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, counts)
}
