// Package progress computes completion and unlock state from committed
// answers.
package progress

import (
	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
)

// Progress counts answered questions within a set.
type Progress struct {
	Answered   int  `json:"answered"`
	Total      int  `json:"total"`
	IsComplete bool `json:"isComplete"`
}

// Percent returns the rounded-down completion percentage, 0 for empty sets.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return p.Answered * 100 / p.Total
}

// Compute counts present answers among the answerable questions. Group
// container nodes never count.
func Compute(questions []catalog.Question, answers answer.Answers) Progress {
	var p Progress
	for _, q := range questions {
		if !q.Kind.Answerable() {
			continue
		}
		p.Total++
		if answers.Present(q.ID) {
			p.Answered++
		}
	}
	p.IsComplete = p.Total > 0 && p.Answered == p.Total
	return p
}

// ComputeGroupingProgress is Compute applied to one grouping's questions.
func ComputeGroupingProgress(questions []catalog.Question, answers answer.Answers) Progress {
	return Compute(questions, answers)
}

// ThemeProgress is Compute applied to one theme's questions.
func ThemeProgress(questions []catalog.Question, answers answer.Answers) Progress {
	return Compute(questions, answers)
}

// Overall sums counts across groupings so larger groupings weigh more.
func Overall(ps []Progress) Progress {
	var out Progress
	for _, p := range ps {
		out.Answered += p.Answered
		out.Total += p.Total
	}
	out.IsComplete = out.Total > 0 && out.Answered == out.Total
	return out
}

// ForTiers counts only questions in the given tiers.
func ForTiers(questions []catalog.Question, answers answer.Answers, tiers ...catalog.Tier) Progress {
	keep := make(map[catalog.Tier]bool, len(tiers))
	for _, t := range tiers {
		keep[t] = true
	}
	filtered := make([]catalog.Question, 0, len(questions))
	for _, q := range questions {
		if keep[q.Tier] {
			filtered = append(filtered, q)
		}
	}
	return Compute(filtered, answers)
}
