package answer

import "maps"

// Answers maps question IDs to values. A missing key means "never answered".
type Answers map[string]Value

// Present reports whether the answer for questionID exists and is present.
func (a Answers) Present(questionID string) bool {
	v, ok := a[questionID]
	return ok && v.IsPresent()
}

// Get returns the value stored for questionID.
func (a Answers) Get(questionID string) (Value, bool) {
	v, ok := a[questionID]
	return v, ok
}

// Clone returns a shallow copy safe to mutate independently.
func (a Answers) Clone() Answers {
	if a == nil {
		return Answers{}
	}
	return maps.Clone(a)
}

// Merge returns a new map holding base overlaid by top.
func Merge(base, top Answers) Answers {
	out := make(Answers, len(base)+len(top))
	maps.Copy(out, base)
	maps.Copy(out, top)
	return out
}

// PresentIDs returns the set of question IDs with a present answer.
func (a Answers) PresentIDs() map[string]bool {
	ids := make(map[string]bool, len(a))
	for id, v := range a {
		if v.IsPresent() {
			ids[id] = true
		}
	}
	return ids
}
