package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
)

func cond(target string, op catalog.Operator, v answer.Value) *catalog.Condition {
	return &catalog.Condition{TargetQuestionID: target, Operator: op, Value: v}
}

func TestIsVisible(t *testing.T) {
	answers := answer.Answers{
		"s":     answer.String("yes"),
		"n":     answer.Number(5),
		"ns":    answer.String("5"),
		"arr":   answer.Strings([]string{"Water", "Flying"}),
		"zero":  answer.Number(0),
		"f":     answer.Bool(false),
		"empty": answer.String(""),
		"none":  answer.Strings(nil),
	}

	tests := []struct {
		name string
		c    *catalog.Condition
		want bool
	}{
		{"nil condition", nil, true},
		{"missing target", cond("absent", catalog.OpEq, answer.String("yes")), false},
		{"missing target ne", cond("absent", catalog.OpNe, answer.String("yes")), false},
		{"empty string target", cond("empty", catalog.OpNe, answer.String("x")), false},
		{"empty array target", cond("none", catalog.OpContains, answer.String("x")), false},
		{"eq match", cond("s", catalog.OpEq, answer.String("yes")), true},
		{"eq mismatch", cond("s", catalog.OpEq, answer.String("no")), false},
		{"eq strict types", cond("ns", catalog.OpEq, answer.Number(5)), false},
		{"ne", cond("s", catalog.OpNe, answer.String("no")), true},
		{"ne strict types", cond("n", catalog.OpNe, answer.String("5")), true},
		{"contains", cond("arr", catalog.OpContains, answer.String("Water")), true},
		{"contains absent", cond("arr", catalog.OpContains, answer.String("Teeth")), false},
		{"contains on scalar", cond("s", catalog.OpContains, answer.String("yes")), false},
		{"gt", cond("n", catalog.OpGt, answer.Number(3)), true},
		{"gt equal", cond("n", catalog.OpGt, answer.Number(5)), false},
		{"gt string operand", cond("ns", catalog.OpGt, answer.Number(3)), false},
		{"lt", cond("n", catalog.OpLt, answer.Number(9)), true},
		{"lt non numeric value", cond("n", catalog.OpLt, answer.String("9")), false},
		{"zero is present", cond("zero", catalog.OpLt, answer.Number(1)), true},
		{"false is present", cond("f", catalog.OpEq, answer.Bool(false)), true},
		{"unknown operator", cond("s", catalog.Operator("regex"), answer.String("x")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsVisible(tt.c, answers))
		})
	}
}

func TestFilter_PreservesOrderAndFailsClosed(t *testing.T) {
	qs := []catalog.Question{
		{ID: "a"},
		{ID: "b", ShowWhen: cond("a", catalog.OpEq, answer.Bool(true))},
		{ID: "c"},
	}

	got := Filter(qs, answer.Answers{})
	assert.Equal(t, []string{"a", "c"}, ids(got))

	got = Filter(qs, answer.Answers{"a": answer.Bool(true)})
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))
}

func TestPredicate(t *testing.T) {
	p := Predicate(answer.Answers{"a": answer.Number(2)})
	assert.True(t, p(catalog.Question{ShowWhen: cond("a", catalog.OpGt, answer.Number(1))}))
	assert.False(t, p(catalog.Question{ShowWhen: cond("b", catalog.OpGt, answer.Number(1))}))
}

func ids(qs []catalog.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}
