package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
)

func questions(prefix string, n int) []catalog.Question {
	out := make([]catalog.Question, n)
	for i := range out {
		out[i] = catalog.Question{ID: prefix + string(rune('0'+i)), Kind: catalog.KindShortText}
	}
	return out
}

func TestCompute_ExcludesGroups(t *testing.T) {
	qs := []catalog.Question{
		{ID: "g", Kind: catalog.KindGroup},
		{ID: "a", Kind: catalog.KindYesNo},
		{ID: "b", Kind: catalog.KindNumber},
	}
	p := Compute(qs, answer.Answers{"g": answer.String("x"), "a": answer.Bool(false)})
	assert.Equal(t, Progress{Answered: 1, Total: 2}, p)
	assert.Equal(t, 50, p.Percent())

	p = Compute(qs, answer.Answers{"a": answer.Bool(true), "b": answer.Number(0)})
	assert.True(t, p.IsComplete)
}

func TestCompute_EmptyIsNeverComplete(t *testing.T) {
	p := Compute([]catalog.Question{{ID: "g", Kind: catalog.KindGroup}}, nil)
	assert.False(t, p.IsComplete)
	assert.Equal(t, 0, p.Percent())
}

func TestCompute_IgnoresBlankAnswers(t *testing.T) {
	qs := questions("q", 2)
	p := Compute(qs, answer.Answers{"q0": answer.String(""), "q1": answer.Strings(nil)})
	assert.Equal(t, 0, p.Answered)
}

func TestOverall_WeightsByQuestionCount(t *testing.T) {
	// 2 of 2 in one grouping and 0 of 8 in another is 20%, not 50%.
	small := questions("s", 2)
	large := questions("l", 8)
	ans := answer.Answers{"s0": answer.String("x"), "s1": answer.String("y")}

	o := Overall([]Progress{Compute(small, ans), Compute(large, ans)})
	assert.Equal(t, 2, o.Answered)
	assert.Equal(t, 10, o.Total)
	assert.Equal(t, 20, o.Percent())

	// Two more answers in the large grouping gives 4 of 10, i.e. 40%.
	ans["l0"] = answer.String("a")
	ans["l1"] = answer.String("b")
	o = Overall([]Progress{Compute(small, ans), Compute(large, ans)})
	assert.Equal(t, 40, o.Percent())
}

func TestForTiers(t *testing.T) {
	qs := []catalog.Question{
		{ID: "a", Tier: catalog.TierCore, Kind: catalog.KindYesNo},
		{ID: "b", Tier: catalog.TierExtended, Kind: catalog.KindYesNo},
		{ID: "c", Tier: catalog.TierExploratory, Kind: catalog.KindYesNo},
	}
	p := ForTiers(qs, answer.Answers{"a": answer.Bool(true), "c": answer.Bool(true)}, catalog.TierCore, catalog.TierExtended)
	assert.Equal(t, 1, p.Answered)
	assert.Equal(t, 2, p.Total)
}

func TestComputeUnlockState_DefaultRule(t *testing.T) {
	groupings := []catalog.Grouping{
		{ID: "A", OrderIndex: 0},
		{ID: "B", OrderIndex: 1},
	}

	locked := ComputeUnlockState(groupings, map[string]Progress{
		"A": {Answered: 1, Total: 3},
	})
	assert.False(t, locked["A"])
	assert.True(t, locked["B"])

	locked = ComputeUnlockState(groupings, map[string]Progress{
		"A": {Answered: 3, Total: 3, IsComplete: true},
	})
	assert.False(t, locked["A"])
	assert.False(t, locked["B"])
}

func TestComputeUnlockState_ExplicitPrerequisites(t *testing.T) {
	groupings := []catalog.Grouping{
		{ID: "A", OrderIndex: 0},
		{ID: "B", OrderIndex: 1},
		{ID: "C", OrderIndex: 2, Prerequisites: []string{"A", "B"}},
		{ID: "D", OrderIndex: 3, Unlocked: true},
	}
	prog := map[string]Progress{
		"A": {Answered: 1, Total: 1, IsComplete: true},
		"B": {Answered: 0, Total: 1},
	}
	locked := ComputeUnlockState(groupings, prog)
	assert.False(t, locked["B"])
	assert.True(t, locked["C"])
	assert.False(t, locked["D"])
	assert.Len(t, locked, 4)
}

func TestByGroupingAndAllComplete(t *testing.T) {
	snap := catalog.Default()
	ans := answer.Answers{}
	for _, g := range snap.Groupings() {
		for _, q := range snap.Answerable(g.ID) {
			ans[q.ID] = answer.String("x")
		}
	}
	prog := ByGrouping(snap, ans)
	assert.Len(t, prog, 4)
	assert.True(t, AllComplete(prog))

	delete(ans, "q-lucid-interest")
	prog = ByGrouping(snap, ans)
	assert.False(t, AllComplete(prog))
	assert.False(t, prog["ch-lucidity"].IsComplete)

	assert.False(t, AllComplete(nil))
}

func TestScenario_CompletedFirstGroupingUnlocksSecond(t *testing.T) {
	a := questions("a", 3)
	b := questions("b", 5)
	for i := range a {
		a[i].GroupingID = "A"
	}
	for i := range b {
		b[i].GroupingID = "B"
	}
	ans := answer.Answers{"a0": answer.String("1"), "a1": answer.String("2"), "a2": answer.String("3")}
	prog := map[string]Progress{
		"A": ComputeGroupingProgress(a, ans),
		"B": ComputeGroupingProgress(b, ans),
	}
	locked := ComputeUnlockState([]catalog.Grouping{{ID: "A", OrderIndex: 1}, {ID: "B", OrderIndex: 2}}, prog)

	assert.True(t, prog["A"].IsComplete)
	assert.False(t, locked["A"])
	assert.False(t, locked["B"])
	assert.False(t, prog["B"].IsComplete)
}

func TestOverall_TwoAndEight(t *testing.T) {
	o := Overall([]Progress{{Answered: 2, Total: 2, IsComplete: true}, {Answered: 2, Total: 8}})
	assert.Equal(t, 40, o.Percent())
}
