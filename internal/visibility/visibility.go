// Package visibility decides which questions are shown for a given answer
// snapshot.
package visibility

import (
	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
)

// IsVisible evaluates a single show-when condition against answers.
//
// A nil condition is always visible. A condition whose target has no present
// answer is hidden. Unknown operators are treated as visible.
func IsVisible(cond *catalog.Condition, answers answer.Answers) bool {
	if cond == nil {
		return true
	}
	got, ok := answers.Get(cond.TargetQuestionID)
	if !ok || !got.IsPresent() {
		return false
	}

	switch cond.Operator {
	case catalog.OpEq:
		return got.Equal(cond.Value)
	case catalog.OpNe:
		return !got.Equal(cond.Value)
	case catalog.OpContains:
		return got.Contains(cond.Value)
	case catalog.OpGt:
		a, okA := got.AsNumber()
		b, okB := cond.Value.AsNumber()
		return okA && okB && a > b
	case catalog.OpLt:
		a, okA := got.AsNumber()
		b, okB := cond.Value.AsNumber()
		return okA && okB && a < b
	default:
		return true
	}
}

// Filter returns the visible subset of questions, preserving order.
func Filter(questions []catalog.Question, answers answer.Answers) []catalog.Question {
	out := make([]catalog.Question, 0, len(questions))
	for _, q := range questions {
		if IsVisible(q.ShowWhen, answers) {
			out = append(out, q)
		}
	}
	return out
}

// Predicate returns a question filter bound to an answer snapshot.
func Predicate(answers answer.Answers) func(catalog.Question) bool {
	return func(q catalog.Question) bool {
		return IsVisible(q.ShowWhen, answers)
	}
}
