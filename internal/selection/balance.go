package selection

import "github.com/natewolfe/dreamcensus-sub001/internal/catalog"

// BalanceByTheme interleaves questions so consecutive entries come from
// different themes wherever the mix allows. Each theme keeps its internal
// order, and themes rotate in order of first appearance. Theme-less
// questions form their own queue.
func BalanceByTheme(questions []catalog.Question) []catalog.Question {
	if len(questions) < 2 {
		return questions
	}

	var queues [][]catalog.Question
	index := make(map[string]int)
	for _, q := range questions {
		i, ok := index[q.ThemeID]
		if !ok {
			i = len(queues)
			index[q.ThemeID] = i
			queues = append(queues, nil)
		}
		queues[i] = append(queues[i], q)
	}

	out := make([]catalog.Question, 0, len(questions))
	for len(queues) > 0 {
		for i := 0; i < len(queues); {
			out = append(out, queues[i][0])
			queues[i] = queues[i][1:]
			if len(queues[i]) == 0 {
				// Removing in place; the next queue now sits at i.
				queues = append(queues[:i], queues[i+1:]...)
				continue
			}
			i++
		}
	}
	return out
}
