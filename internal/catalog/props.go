package catalog

import (
	"fmt"

	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
)

// Props holds the kind-specific configuration of a question. Exactly one
// concrete type exists per kind family.
type Props interface {
	// constraints returns the answer checks implied by these props.
	constraints() answer.Constraints
}

// TextProps configures short_text, long_text and email questions.
type TextProps struct {
	MaxLength   int    `json:"maxLength,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

// NumberProps configures number questions.
type NumberProps struct {
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Unit string   `json:"unit,omitempty"`
}

// Choice is one selectable option.
type Choice struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
}

// ChoiceProps configures single_choice, multi_choice and dropdown questions.
type ChoiceProps struct {
	Choices    []Choice `json:"choices"`
	AllowOther bool     `json:"allowOther,omitempty"`
}

// ScaleProps configures opinion_scale and rating questions.
type ScaleProps struct {
	Steps      int    `json:"steps"`
	LeftLabel  string `json:"leftLabel,omitempty"`
	RightLabel string `json:"rightLabel,omitempty"`
}

// DateProps configures date questions.
type DateProps struct{}

// BooleanProps configures yes_no questions.
type BooleanProps struct{}

// GroupProps configures group container nodes and statements.
type GroupProps struct{}

func (p TextProps) constraints() answer.Constraints {
	return answer.Constraints{MaxLength: p.MaxLength}
}

func (p NumberProps) constraints() answer.Constraints {
	return answer.Constraints{Min: p.Min, Max: p.Max}
}

func (ChoiceProps) constraints() answer.Constraints  { return answer.Constraints{} }
func (ScaleProps) constraints() answer.Constraints   { return answer.Constraints{} }
func (DateProps) constraints() answer.Constraints    { return answer.Constraints{} }
func (BooleanProps) constraints() answer.Constraints { return answer.Constraints{} }
func (GroupProps) constraints() answer.Constraints   { return answer.Constraints{} }

// IsAnswerComplete validates v for a question of the given kind and props.
// A nil props value is treated as unconstrained.
func IsAnswerComplete(v answer.Value, kind Kind, props Props, required bool) answer.ValidationResult {
	var c answer.Constraints
	if props != nil {
		c = props.constraints()
	}
	c.Required = required && kind.Answerable() && kind != KindStatement
	return answer.Check(v, c)
}

// Validate checks v against q's own kind, props and required flag.
func (q Question) Validate(v answer.Value) answer.ValidationResult {
	return IsAnswerComplete(v, q.Kind, q.Props, q.Required)
}

// DecodeProps builds the props variant for kind from a raw catalog map.
// Unknown keys are ignored; keys of the wrong type are errors.
func DecodeProps(kind Kind, raw map[string]any) (Props, error) {
	r := rawProps(raw)
	switch kind {
	case KindShortText, KindLongText, KindEmail:
		maxLen, err := r.int("maxLength")
		if err != nil {
			return nil, err
		}
		ph, err := r.string("placeholder")
		if err != nil {
			return nil, err
		}
		if maxLen < 0 {
			return nil, fmt.Errorf("maxLength must not be negative")
		}
		return TextProps{MaxLength: maxLen, Placeholder: ph}, nil

	case KindNumber:
		minV, err := r.float("min")
		if err != nil {
			return nil, err
		}
		maxV, err := r.float("max")
		if err != nil {
			return nil, err
		}
		if minV != nil && maxV != nil && *minV > *maxV {
			return nil, fmt.Errorf("min %v exceeds max %v", *minV, *maxV)
		}
		unit, err := r.string("unit")
		if err != nil {
			return nil, err
		}
		return NumberProps{Min: minV, Max: maxV, Unit: unit}, nil

	case KindSingleChoice, KindMultiChoice, KindDropdown:
		choices, err := r.choices("choices")
		if err != nil {
			return nil, err
		}
		if len(choices) == 0 {
			return nil, fmt.Errorf("%s requires at least one choice", kind)
		}
		other, err := r.bool("allowOther")
		if err != nil {
			return nil, err
		}
		return ChoiceProps{Choices: choices, AllowOther: other}, nil

	case KindOpinionScale, KindRating:
		steps, err := r.int("steps")
		if err != nil {
			return nil, err
		}
		if steps == 0 {
			steps = 5
		}
		if steps < 2 {
			return nil, fmt.Errorf("steps must be at least 2, got %d", steps)
		}
		left, err := r.string("leftLabel")
		if err != nil {
			return nil, err
		}
		right, err := r.string("rightLabel")
		if err != nil {
			return nil, err
		}
		return ScaleProps{Steps: steps, LeftLabel: left, RightLabel: right}, nil

	case KindDate:
		return DateProps{}, nil
	case KindYesNo:
		return BooleanProps{}, nil
	case KindGroup, KindStatement:
		return GroupProps{}, nil
	}
	return nil, fmt.Errorf("unknown kind %q", kind)
}

type rawProps map[string]any

func (r rawProps) string(key string) (string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string, got %T", key, v)
	}
	return s, nil
}

func (r rawProps) bool(key string) (bool, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s: expected bool, got %T", key, v)
	}
	return b, nil
}

func (r rawProps) float(key string) (*float64, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, nil
	}
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float64:
		f = n
	default:
		return nil, fmt.Errorf("%s: expected number, got %T", key, v)
	}
	return &f, nil
}

func (r rawProps) int(key string) (int, error) {
	f, err := r.float(key)
	if err != nil || f == nil {
		return 0, err
	}
	if *f != float64(int(*f)) {
		return 0, fmt.Errorf("%s: expected integer, got %v", key, *f)
	}
	return int(*f), nil
}

func (r rawProps) choices(key string) ([]Choice, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected list, got %T", key, v)
	}
	out := make([]Choice, 0, len(items))
	for i, item := range items {
		switch c := item.(type) {
		case string:
			out = append(out, Choice{ID: c, Label: c})
		case map[string]any:
			sub := rawProps(c)
			id, err := sub.string("id")
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
			}
			label, err := sub.string("label")
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
			}
			if id == "" {
				return nil, fmt.Errorf("%s[%d]: missing id", key, i)
			}
			if label == "" {
				label = id
			}
			out = append(out, Choice{ID: id, Label: label})
		default:
			return nil, fmt.Errorf("%s[%d]: expected string or map, got %T", key, i, item)
		}
	}
	return out, nil
}
