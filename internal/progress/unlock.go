package progress

import (
	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
)

// Source is the catalog view needed for unlock computation.
type Source interface {
	Groupings() []catalog.Grouping
	Answerable(groupingID string) []catalog.Question
}

// ByGrouping computes progress for every grouping.
func ByGrouping(src Source, answers answer.Answers) map[string]Progress {
	groupings := src.Groupings()
	out := make(map[string]Progress, len(groupings))
	for _, g := range groupings {
		out[g.ID] = ComputeGroupingProgress(src.Answerable(g.ID), answers)
	}
	return out
}

// ComputeUnlockState reports, per grouping ID, whether it is locked. A
// grouping is locked while any of its resolved prerequisites is incomplete.
func ComputeUnlockState(groupings []catalog.Grouping, progress map[string]Progress) map[string]bool {
	prereqs := catalog.ResolvePrerequisites(groupings)
	locked := make(map[string]bool, len(groupings))
	for _, g := range groupings {
		for _, pid := range prereqs[g.ID] {
			if !progress[pid].IsComplete {
				locked[g.ID] = true
				break
			}
		}
		if !locked[g.ID] {
			locked[g.ID] = false
		}
	}
	return locked
}

// AllComplete reports whether every grouping with answerable questions is
// complete. An empty catalog is never complete.
func AllComplete(progress map[string]Progress) bool {
	seen := false
	for _, p := range progress {
		if p.Total == 0 {
			continue
		}
		seen = true
		if !p.IsComplete {
			return false
		}
	}
	return seen
}
