package selection

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
)

func q(id, theme string) catalog.Question {
	return catalog.Question{ID: id, ThemeID: theme}
}

func idsOf(qs []catalog.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestBalanceByTheme(t *testing.T) {
	tests := []struct {
		name string
		in   []catalog.Question
		want []string
	}{
		{"empty", nil, nil},
		{"single", []catalog.Question{q("1", "a")}, []string{"1"}},
		{
			"single theme is fifo",
			[]catalog.Question{q("1", "a"), q("2", "a"), q("3", "a")},
			[]string{"1", "2", "3"},
		},
		{
			"even mix alternates",
			[]catalog.Question{q("a1", "a"), q("a2", "a"), q("b1", "b"), q("b2", "b")},
			[]string{"a1", "b1", "a2", "b2"},
		},
		{
			"exhausted queue removed without skipping the next",
			[]catalog.Question{q("a1", "a"), q("b1", "b"), q("b2", "b"), q("c1", "c"), q("c2", "c"), q("c3", "c")},
			[]string{"a1", "b1", "c1", "b2", "c2", "c3"},
		},
		{
			"theme-less questions form a queue",
			[]catalog.Question{q("n1", ""), q("n2", ""), q("a1", "a")},
			[]string{"n1", "a1", "n2"},
		},
		{
			"first appearance sets rotation",
			[]catalog.Question{q("b1", "b"), q("a1", "a"), q("b2", "b"), q("a2", "a")},
			[]string{"b1", "a1", "b2", "a2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BalanceByTheme(tt.in)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, idsOf(got))
		})
	}
}

func TestBalanceByTheme_NoAdjacentWhenBalanced(t *testing.T) {
	var in []catalog.Question
	for _, th := range []string{"a", "b", "c"} {
		for i := 0; i < 4; i++ {
			in = append(in, q(th+string(rune('0'+i)), th))
		}
	}
	out := BalanceByTheme(in)
	assert.Len(t, out, 12)
	for i := 1; i < len(out); i++ {
		assert.NotEqual(t, out[i-1].ThemeID, out[i].ThemeID)
	}
}

func TestBalanceByTheme_AdjacencyOnlyAfterOthersExhausted(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	themes := []string{"", "a", "b", "c", "d"}
	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(30)
		in := make([]catalog.Question, n)
		for i := range in {
			in[i] = q(fmt.Sprintf("%d-%d", trial, i), themes[rng.Intn(len(themes))])
		}
		out := BalanceByTheme(in)
		if len(out) != n {
			t.Fatalf("trial %d: got %d questions, want %d", trial, len(out), n)
		}

		remaining := map[string]int{}
		for _, x := range in {
			remaining[x.ThemeID]++
		}
		for i, x := range out {
			remaining[x.ThemeID]--
			if i == 0 || out[i-1].ThemeID != x.ThemeID {
				continue
			}
			for th, left := range remaining {
				if th != x.ThemeID && left > 0 {
					t.Fatalf("trial %d: %s adjacent to same theme while %q has %d left", trial, x.ID, th, left)
				}
			}
		}
	}
}
