package selection

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
)

// fakeSource serves a fixed question set, honouring exclusion and caps.
type fakeSource struct {
	questions []catalog.Question
	themes    map[string]catalog.Theme
	err       error
	calls     map[catalog.Tier]int
}

func (f *fakeSource) Candidates(_ context.Context, tier catalog.Tier, exclude map[string]bool, max int) ([]catalog.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.calls == nil {
		f.calls = map[catalog.Tier]int{}
	}
	f.calls[tier] = max
	var out []catalog.Question
	for _, q := range f.questions {
		if q.Tier == tier && !exclude[q.ID] && len(out) < max {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeSource) ThemeQuestions(_ context.Context, slug string) (catalog.Theme, []catalog.Question, error) {
	th, ok := f.themes[slug]
	if !ok {
		return catalog.Theme{}, nil, ErrThemeNotFound
	}
	var out []catalog.Question
	for _, q := range f.questions {
		if q.ThemeID == th.ID {
			out = append(out, q)
		}
	}
	return th, out, nil
}

func genQuestions(perTier int) []catalog.Question {
	var qs []catalog.Question
	themes := []string{"a", "b", "c"}
	for _, tier := range catalog.AllTiers() {
		for i := 0; i < perTier; i++ {
			qs = append(qs, catalog.Question{
				ID:      fmt.Sprintf("t%d-%02d", tier, i),
				Tier:    tier,
				Kind:    catalog.KindShortText,
				ThemeID: themes[i%len(themes)],
			})
		}
	}
	return qs
}

func countTiers(qs []catalog.Question) map[catalog.Tier]int {
	out := map[catalog.Tier]int{}
	for _, q := range qs {
		out[q.Tier]++
	}
	return out
}

func TestQuotas(t *testing.T) {
	tests := []struct {
		limit      int
		t1, t2, t3 int
	}{
		{10, 7, 2, 1},
		{5, 3, 1, 1},
		{1, 1, 0, 0},
		{2, 1, 0, 1},
		{3, 2, 0, 1},
		{20, 14, 4, 2},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("limit=%d", tt.limit), func(t *testing.T) {
			q := Quotas(tt.limit)
			assert.Equal(t, tt.t1, q[catalog.TierCore])
			assert.Equal(t, tt.t2, q[catalog.TierExtended])
			assert.Equal(t, tt.t3, q[catalog.TierExploratory])
			assert.Equal(t, tt.limit, q[catalog.TierCore]+q[catalog.TierExtended]+q[catalog.TierExploratory])
		})
	}
}

func TestSelectMixed_TierRatio(t *testing.T) {
	src := &fakeSource{questions: genQuestions(20)}
	res, err := NewSelector(src).Select(context.Background(), Options{Mode: ModeMixed, Limit: 10})
	require.NoError(t, err)

	require.Len(t, res.Questions, 10)
	counts := countTiers(res.Questions)
	assert.LessOrEqual(t, counts[catalog.TierCore], 7)
	assert.LessOrEqual(t, counts[catalog.TierExtended], 2)
	assert.Equal(t, 7, counts[catalog.TierCore])
	assert.Equal(t, 2, counts[catalog.TierExtended])
	assert.Equal(t, 1, counts[catalog.TierExploratory])

	assert.Equal(t, 14, src.calls[catalog.TierCore], "over-fetch twice the quota")
}

func TestSelectMixed_SingleQuestionIsCore(t *testing.T) {
	src := &fakeSource{questions: genQuestions(5)}
	res, err := NewSelector(src).Select(context.Background(), Options{Mode: ModeMixed, Limit: 1})
	require.NoError(t, err)

	require.Len(t, res.Questions, 1)
	assert.Equal(t, catalog.TierCore, res.Questions[0].Tier)
	assert.Zero(t, src.calls[catalog.TierExploratory], "tier 3 is not queried")
}

func TestSelectMixed_ExcludesAnswered(t *testing.T) {
	qs := genQuestions(20)
	answered := map[string]bool{}
	for _, q := range qs[:15] {
		answered[q.ID] = true
	}
	res, err := NewSelector(&fakeSource{questions: qs}).Select(context.Background(), Options{Limit: 10, AnsweredIDs: answered})
	require.NoError(t, err)
	for _, q := range res.Questions {
		assert.False(t, answered[q.ID], "answered question %s selected", q.ID)
	}
}

func TestSelectMixed_NoBackfill(t *testing.T) {
	// Only tier 1 has content; quotas are upper bounds.
	var qs []catalog.Question
	for i := 0; i < 20; i++ {
		qs = append(qs, catalog.Question{ID: fmt.Sprintf("q%02d", i), Tier: catalog.TierCore, Kind: catalog.KindYesNo})
	}
	res, err := NewSelector(&fakeSource{questions: qs}).Select(context.Background(), Options{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, res.Questions, 7)
}

func TestSelectMixed_EligibleFilter(t *testing.T) {
	qs := genQuestions(20)
	res, err := NewSelector(&fakeSource{questions: qs}).Select(context.Background(), Options{
		Limit:    10,
		Eligible: func(q catalog.Question) bool { return q.ThemeID != "a" },
	})
	require.NoError(t, err)
	for _, q := range res.Questions {
		assert.NotEqual(t, "a", q.ThemeID)
	}
	assert.Equal(t, 7, countTiers(res.Questions)[catalog.TierCore])
}

func TestSelectMixed_DefaultLimit(t *testing.T) {
	res, err := NewSelector(&fakeSource{questions: genQuestions(20)}).Select(context.Background(), Options{})
	require.NoError(t, err)
	assert.Len(t, res.Questions, DefaultLimit)
	assert.Equal(t, ModeMixed, res.Mode)
}

func TestSelectMixed_SourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewSelector(&fakeSource{err: boom}).Select(context.Background(), Options{Limit: 10})
	require.ErrorIs(t, err, boom)
}

func TestSelectMixed_OutputIsThemeBalanced(t *testing.T) {
	res, err := NewSelector(&fakeSource{questions: genQuestions(20)}).Select(context.Background(), Options{Limit: 10})
	require.NoError(t, err)
	var themes []string
	for _, q := range res.Questions {
		themes = append(themes, q.ThemeID)
	}
	// Tier slices contribute a=5, b=3, c=2; rotation follows first appearance.
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c", "a", "b", "a", "a"}, themes)
}

func TestSelectThemeFocus(t *testing.T) {
	qs := []catalog.Question{
		{ID: "l1", ThemeID: "th-l", Kind: catalog.KindYesNo, OrderInTheme: 1},
		{ID: "l2", ThemeID: "th-l", Kind: catalog.KindYesNo, OrderInTheme: 2},
		{ID: "lg", ThemeID: "th-l", Kind: catalog.KindGroup, OrderInTheme: 3},
		{ID: "l3", ThemeID: "th-l", Kind: catalog.KindYesNo, OrderInTheme: 4},
		{ID: "x1", ThemeID: "th-x", Kind: catalog.KindYesNo},
	}
	src := &fakeSource{
		questions: qs,
		themes:    map[string]catalog.Theme{"lucid": {ID: "th-l", Slug: "lucid", Name: "Lucid"}},
	}

	res, err := NewSelector(src).Select(context.Background(), Options{
		Mode:        ModeThemeFocus,
		ThemeSlug:   "lucid",
		Limit:       1,
		AnsweredIDs: map[string]bool{"l1": true},
	})
	require.NoError(t, err)
	require.Len(t, res.Questions, 1)
	assert.Equal(t, "l2", res.Questions[0].ID)
	require.NotNil(t, res.ThemeProgress)
	assert.Equal(t, ThemeProgress{ThemeID: "th-l", Slug: "lucid", Name: "Lucid", Answered: 1, Total: 3}, *res.ThemeProgress)
}

func TestSelectThemeFocus_UnknownSlug(t *testing.T) {
	_, err := NewSelector(&fakeSource{}).Select(context.Background(), Options{Mode: ModeThemeFocus, ThemeSlug: "nope"})
	require.ErrorIs(t, err, ErrThemeNotFound)

	_, err = NewSelector(&fakeSource{}).Select(context.Background(), Options{Mode: ModeThemeFocus})
	require.ErrorIs(t, err, ErrThemeNotFound)
}

func TestSelect_UnknownMode(t *testing.T) {
	_, err := NewSelector(&fakeSource{}).Select(context.Background(), Options{Mode: "random"})
	require.Error(t, err)
}
