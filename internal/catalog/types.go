package catalog

import "github.com/natewolfe/dreamcensus-sub001/internal/answer"

// Tier is the ordinal importance bucket of a question.
type Tier int

const (
	TierCore        Tier = 1 // census-core
	TierExtended    Tier = 2 // census-extended
	TierExploratory Tier = 3 // exploration
)

// AllTiers returns the tiers in priority order.
func AllTiers() []Tier {
	return []Tier{TierCore, TierExtended, TierExploratory}
}

// String returns a human-readable tier name.
func (t Tier) String() string {
	switch t {
	case TierCore:
		return "core"
	case TierExtended:
		return "extended"
	case TierExploratory:
		return "exploratory"
	default:
		return "unknown"
	}
}

// Kind is the input type of a question.
type Kind string

const (
	KindStatement    Kind = "statement"
	KindShortText    Kind = "short_text"
	KindLongText     Kind = "long_text"
	KindEmail        Kind = "email"
	KindDate         Kind = "date"
	KindNumber       Kind = "number"
	KindSingleChoice Kind = "single_choice"
	KindMultiChoice  Kind = "multi_choice"
	KindDropdown     Kind = "dropdown"
	KindOpinionScale Kind = "opinion_scale"
	KindRating       Kind = "rating"
	KindYesNo        Kind = "yes_no"
	KindGroup        Kind = "group"
)

// AllKinds returns every supported kind.
func AllKinds() []Kind {
	return []Kind{
		KindStatement, KindShortText, KindLongText, KindEmail, KindDate,
		KindNumber, KindSingleChoice, KindMultiChoice, KindDropdown,
		KindOpinionScale, KindRating, KindYesNo, KindGroup,
	}
}

// Answerable reports whether questions of this kind count toward progress.
// Group nodes are containers only.
func (k Kind) Answerable() bool {
	return k != KindGroup
}

// SkipPolicy governs forward navigation when a question has no answer.
type SkipPolicy string

const (
	SkipRequired  SkipPolicy = "required"  // cannot advance without an answer
	SkipOptional  SkipPolicy = "optional"  // advance freely; button reads Skip until filled
	SkipSkippable SkipPolicy = "skippable" // explicit skip action always offered
)

// Operator is the comparison used by a visibility condition.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNe       Operator = "ne"
	OpContains Operator = "contains"
	OpGt       Operator = "gt"
	OpLt       Operator = "lt"
)

// Condition is a single visibility predicate over another question's answer.
type Condition struct {
	TargetQuestionID string
	Operator         Operator
	Value            answer.Value
}

// Question is an immutable question definition.
type Question struct {
	ID           string `validate:"required"`
	AnalyticsKey string
	Text         string `validate:"required"`
	Help         string
	Tier         Tier   `validate:"min=1,max=3"`
	ThemeID      string
	GroupingID   string
	ParentID     string // owning group node, if any
	Kind         Kind   `validate:"required"`
	Props        Props
	Required     bool
	SkipPolicy   SkipPolicy `validate:"omitempty,oneof=required optional skippable"`
	OrderHint    int
	OrderInTheme int
	ShowWhen     *Condition
	TimesShown   int `validate:"min=0"`
}

// EffectiveSkipPolicy resolves the explicit policy, falling back to the
// required flag.
func (q Question) EffectiveSkipPolicy() SkipPolicy {
	if q.SkipPolicy != "" {
		return q.SkipPolicy
	}
	if q.Required {
		return SkipRequired
	}
	return SkipOptional
}

// ExportKey returns the analytics alias when set, else the stable ID.
func (q Question) ExportKey() string {
	if q.AnalyticsKey != "" {
		return q.AnalyticsKey
	}
	return q.ID
}

// Grouping is a completable unit of questions (a chapter or section).
type Grouping struct {
	ID               string `validate:"required"`
	Slug             string `validate:"required,slug"`
	Name             string `validate:"required"`
	Description      string
	OrderIndex       int `validate:"min=0"`
	EstimatedMinutes int `validate:"min=0"`
	Icon             string
	// Prerequisites lists grouping IDs that must be complete before this one
	// unlocks. Nil means "use the default rule"; see ResolvePrerequisites.
	Prerequisites []string
	// Unlocked opts the grouping out of the default prerequisite rule.
	Unlocked bool
}

// Theme is a topical bucket used for anti-repetition balancing.
type Theme struct {
	ID   string `validate:"required"`
	Slug string `validate:"required,slug"`
	Name string `validate:"required"`
}
