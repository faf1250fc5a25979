package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
)

// ExposureRepo tracks how many times each question has been shown.
type ExposureRepo interface {
	// IncrementShown bumps the counter of every given question by one.
	IncrementShown(ctx context.Context, questionIDs ...string) error

	// ShownCounts returns the counter of every question seen so far.
	ShownCounts(ctx context.Context) (map[string]int, error)
}

type exposureRepo struct {
	db *sql.DB
}

func (r *exposureRepo) IncrementShown(ctx context.Context, questionIDs ...string) error {
	if len(questionIDs) == 0 {
		return nil
	}
	ins := builder().Insert(tableExposure).Columns("question_id", "times_shown")
	seen := make(map[string]bool, len(questionIDs))
	for _, id := range questionIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		ins.Values(id, 1)
	}
	query, args := ins.OnConflict(
		entsql.ConflictColumns("question_id"),
		entsql.ResolveWith(func(u *entsql.UpdateSet) {
			u.Add("times_shown", 1)
		}),
	).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("increment exposure: %w", err)
	}
	return nil
}

func (r *exposureRepo) ShownCounts(ctx context.Context) (map[string]int, error) {
	query, args := builder().Select("question_id", "times_shown").
		From(entsql.Table(tableExposure)).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query exposure: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan exposure: %w", err)
		}
		out[id] = n
	}
	return out, rows.Err()
}

func sortedKeys(a answer.Answers) []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
