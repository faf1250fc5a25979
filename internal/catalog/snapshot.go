package catalog

import (
	"fmt"
	"slices"
	"sort"
)

// Snapshot is a read-only, versioned view of the question catalog with
// precomputed indices. It is safe for concurrent use.
type Snapshot struct {
	version   string
	questions []Question
	groupings []Grouping
	themes    []Theme

	byID           map[string]int
	byAnalyticsKey map[string]int
	groupingByID   map[string]int
	groupingBySlug map[string]int
	themeByID      map[string]int
	themeBySlug    map[string]int

	byGrouping map[string][]int // question indices ordered by OrderHint
	byTheme    map[string][]int // question indices ordered by OrderInTheme
	children   map[string][]int // group node -> child question indices
	prereqs    map[string][]string
}

// NewSnapshot validates the given definitions and builds a snapshot.
func NewSnapshot(version string, questions []Question, groupings []Grouping, themes []Theme) (*Snapshot, error) {
	qs := slices.Clone(questions)
	// Children of a group node inherit its grouping and theme when unset.
	parentIdx := make(map[string]int, len(qs))
	for i := range qs {
		parentIdx[qs[i].ID] = i
	}
	for i := range qs {
		if qs[i].ParentID == "" {
			continue
		}
		if p, ok := parentIdx[qs[i].ParentID]; ok {
			if qs[i].GroupingID == "" {
				qs[i].GroupingID = qs[p].GroupingID
			}
			if qs[i].ThemeID == "" {
				qs[i].ThemeID = qs[p].ThemeID
			}
		}
	}

	if err := validateCatalog(qs, groupings, themes); err != nil {
		return nil, err
	}
	return buildSnapshot(version, qs, slices.Clone(groupings), slices.Clone(themes)), nil
}

func buildSnapshot(version string, qs []Question, gs []Grouping, ts []Theme) *Snapshot {
	sort.SliceStable(gs, func(i, j int) bool { return gs[i].OrderIndex < gs[j].OrderIndex })

	s := &Snapshot{
		version:        version,
		questions:      qs,
		groupings:      gs,
		themes:         ts,
		byID:           make(map[string]int, len(qs)),
		byAnalyticsKey: make(map[string]int),
		groupingByID:   make(map[string]int, len(gs)),
		groupingBySlug: make(map[string]int, len(gs)),
		themeByID:      make(map[string]int, len(ts)),
		themeBySlug:    make(map[string]int, len(ts)),
		byGrouping:     make(map[string][]int),
		byTheme:        make(map[string][]int),
		children:       make(map[string][]int),
	}

	for i := range qs {
		s.byID[qs[i].ID] = i
		if qs[i].AnalyticsKey != "" {
			s.byAnalyticsKey[qs[i].AnalyticsKey] = i
		}
		if qs[i].GroupingID != "" {
			s.byGrouping[qs[i].GroupingID] = append(s.byGrouping[qs[i].GroupingID], i)
		}
		if qs[i].ThemeID != "" {
			s.byTheme[qs[i].ThemeID] = append(s.byTheme[qs[i].ThemeID], i)
		}
		if qs[i].ParentID != "" {
			s.children[qs[i].ParentID] = append(s.children[qs[i].ParentID], i)
		}
	}
	for i := range gs {
		s.groupingByID[gs[i].ID] = i
		s.groupingBySlug[gs[i].Slug] = i
	}
	for i := range ts {
		s.themeByID[ts[i].ID] = i
		s.themeBySlug[ts[i].Slug] = i
	}

	for _, idx := range s.byGrouping {
		sort.SliceStable(idx, func(a, b int) bool {
			qa, qb := qs[idx[a]], qs[idx[b]]
			if qa.OrderHint != qb.OrderHint {
				return qa.OrderHint < qb.OrderHint
			}
			return qa.ID < qb.ID
		})
	}
	for _, idx := range s.byTheme {
		sort.SliceStable(idx, func(a, b int) bool {
			qa, qb := qs[idx[a]], qs[idx[b]]
			if qa.OrderInTheme != qb.OrderInTheme {
				return qa.OrderInTheme < qb.OrderInTheme
			}
			return qa.ID < qb.ID
		})
	}

	s.prereqs = ResolvePrerequisites(gs)
	return s
}

// Version identifies the catalog revision answers are recorded against.
func (s *Snapshot) Version() string { return s.version }

// Questions returns every question in catalog order.
func (s *Snapshot) Questions() []Question { return slices.Clone(s.questions) }

// Groupings returns every grouping ordered by OrderIndex.
func (s *Snapshot) Groupings() []Grouping { return slices.Clone(s.groupings) }

// Themes returns every theme in catalog order.
func (s *Snapshot) Themes() []Theme { return slices.Clone(s.themes) }

// Question returns a question by ID.
func (s *Snapshot) Question(id string) (Question, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Question{}, false
	}
	return s.questions[i], true
}

// Resolve finds a question by stable ID, falling back to its analytics key.
func (s *Snapshot) Resolve(key string) (Question, bool) {
	if q, ok := s.Question(key); ok {
		return q, true
	}
	i, ok := s.byAnalyticsKey[key]
	if !ok {
		return Question{}, false
	}
	return s.questions[i], true
}

// Grouping returns a grouping by ID.
func (s *Snapshot) Grouping(id string) (Grouping, bool) {
	i, ok := s.groupingByID[id]
	if !ok {
		return Grouping{}, false
	}
	return s.groupings[i], true
}

// GroupingBySlug returns a grouping by slug.
func (s *Snapshot) GroupingBySlug(slug string) (Grouping, bool) {
	i, ok := s.groupingBySlug[slug]
	if !ok {
		return Grouping{}, false
	}
	return s.groupings[i], true
}

// Theme returns a theme by ID.
func (s *Snapshot) Theme(id string) (Theme, bool) {
	i, ok := s.themeByID[id]
	if !ok {
		return Theme{}, false
	}
	return s.themes[i], true
}

// ThemeBySlug returns a theme by slug.
func (s *Snapshot) ThemeBySlug(slug string) (Theme, bool) {
	i, ok := s.themeBySlug[slug]
	if !ok {
		return Theme{}, false
	}
	return s.themes[i], true
}

// GroupingQuestions returns all questions of a grouping, group nodes
// included, ordered by OrderHint.
func (s *Snapshot) GroupingQuestions(groupingID string) []Question {
	return s.collect(s.byGrouping[groupingID])
}

// Answerable returns the grouping's questions with group container nodes
// removed, ordered by OrderHint.
func (s *Snapshot) Answerable(groupingID string) []Question {
	var out []Question
	for _, i := range s.byGrouping[groupingID] {
		if s.questions[i].Kind.Answerable() {
			out = append(out, s.questions[i])
		}
	}
	return out
}

// ThemeQuestions returns a theme's questions ordered by OrderInTheme.
func (s *Snapshot) ThemeQuestions(themeID string) []Question {
	return s.collect(s.byTheme[themeID])
}

// Children returns the direct children of a group node.
func (s *Snapshot) Children(groupID string) []Question {
	return s.collect(s.children[groupID])
}

// Prerequisites returns the resolved prerequisite grouping IDs.
func (s *Snapshot) Prerequisites(groupingID string) []string {
	return slices.Clone(s.prereqs[groupingID])
}

// Preview returns the first n answerable questions of a grouping.
func (s *Snapshot) Preview(groupingID string, n int) []Question {
	qs := s.Answerable(groupingID)
	if n >= 0 && len(qs) > n {
		qs = qs[:n]
	}
	return qs
}

func (s *Snapshot) collect(idx []int) []Question {
	out := make([]Question, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.questions[i])
	}
	return out
}

// ResolvePrerequisites applies the default gating rule to groupings that
// declare no prerequisites. The grouping with the lowest OrderIndex has none;
// every other grouping requires it unless it sets Unlocked.
func ResolvePrerequisites(groupings []Grouping) map[string][]string {
	out := make(map[string][]string, len(groupings))
	if len(groupings) == 0 {
		return out
	}
	first := groupings[0]
	for _, g := range groupings[1:] {
		if g.OrderIndex < first.OrderIndex {
			first = g
		}
	}
	for _, g := range groupings {
		switch {
		case g.Prerequisites != nil:
			out[g.ID] = slices.Clone(g.Prerequisites)
		case g.Unlocked, g.ID == first.ID:
			out[g.ID] = nil
		default:
			out[g.ID] = []string{first.ID}
		}
	}
	return out
}

// mustSnapshot is used by the embedded default catalog.
func mustSnapshot(s *Snapshot, err error) *Snapshot {
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return s
}
