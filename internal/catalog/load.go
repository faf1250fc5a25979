package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/natewolfe/dreamcensus-sub001/internal/answer"
)

//go:embed seed/census.yaml
var seedFS embed.FS

type document struct {
	Version   string        `yaml:"version"`
	Themes    []themeDoc    `yaml:"themes"`
	Groupings []groupingDoc `yaml:"groupings"`
	Questions []questionDoc `yaml:"questions"`
}

type themeDoc struct {
	ID   string `yaml:"id"`
	Slug string `yaml:"slug"`
	Name string `yaml:"name"`
}

type groupingDoc struct {
	ID               string   `yaml:"id"`
	Slug             string   `yaml:"slug"`
	Name             string   `yaml:"name"`
	Description      string   `yaml:"description"`
	OrderIndex       int      `yaml:"orderIndex"`
	EstimatedMinutes int      `yaml:"estimatedMinutes"`
	Icon             string   `yaml:"icon"`
	Prerequisites    []string `yaml:"prerequisites"`
	Unlocked         bool     `yaml:"unlocked"`
}

type questionDoc struct {
	ID           string         `yaml:"id"`
	AnalyticsKey string         `yaml:"analyticsKey"`
	Text         string         `yaml:"text"`
	Help         string         `yaml:"help"`
	Tier         int            `yaml:"tier"`
	Theme        string         `yaml:"theme"`
	Grouping     string         `yaml:"grouping"`
	Parent       string         `yaml:"parent"`
	Kind         string         `yaml:"kind"`
	Props        map[string]any `yaml:"props"`
	Required     bool           `yaml:"required"`
	SkipPolicy   string         `yaml:"skipPolicy"`
	OrderHint    int            `yaml:"orderHint"`
	OrderInTheme int            `yaml:"orderInTheme"`
	TimesShown   int            `yaml:"timesShown"`
	ShowWhen     *conditionDoc  `yaml:"showWhen"`
}

type conditionDoc struct {
	Question string `yaml:"question"`
	Op       string `yaml:"op"`
	Value    any    `yaml:"value"`
}

// LoadFile reads and validates a YAML catalog from disk.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

var (
	defaultOnce sync.Once
	defaultSnap *Snapshot
)

// Default returns the embedded census catalog. It panics if the embedded
// file is invalid, which the package tests guard against.
func Default() *Snapshot {
	defaultOnce.Do(func() {
		data, err := seedFS.ReadFile("seed/census.yaml")
		if err != nil {
			panic(fmt.Sprintf("catalog: read embedded seed: %v", err))
		}
		defaultSnap = mustSnapshot(Parse(data))
	})
	return defaultSnap
}

// Parse decodes a YAML catalog document, checks it against the document
// schema, and builds a validated snapshot.
func Parse(data []byte) (*Snapshot, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	if err := checkDocument(generic); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return doc.snapshot()
}

func (d document) snapshot() (*Snapshot, error) {
	themes := make([]Theme, 0, len(d.Themes))
	for _, t := range d.Themes {
		themes = append(themes, Theme{ID: t.ID, Slug: t.Slug, Name: t.Name})
	}

	groupings := make([]Grouping, 0, len(d.Groupings))
	for _, g := range d.Groupings {
		groupings = append(groupings, Grouping{
			ID:               g.ID,
			Slug:             g.Slug,
			Name:             g.Name,
			Description:      g.Description,
			OrderIndex:       g.OrderIndex,
			EstimatedMinutes: g.EstimatedMinutes,
			Icon:             g.Icon,
			Prerequisites:    g.Prerequisites,
			Unlocked:         g.Unlocked,
		})
	}

	questions := make([]Question, 0, len(d.Questions))
	for _, qd := range d.Questions {
		kind := Kind(qd.Kind)
		props, err := DecodeProps(kind, qd.Props)
		if err != nil {
			return nil, fmt.Errorf("question %q props: %w", qd.ID, err)
		}
		tier := Tier(qd.Tier)
		if tier == 0 {
			tier = TierCore
		}
		q := Question{
			ID:           qd.ID,
			AnalyticsKey: qd.AnalyticsKey,
			Text:         qd.Text,
			Help:         qd.Help,
			Tier:         tier,
			ThemeID:      qd.Theme,
			GroupingID:   qd.Grouping,
			ParentID:     qd.Parent,
			Kind:         kind,
			Props:        props,
			Required:     qd.Required,
			SkipPolicy:   SkipPolicy(qd.SkipPolicy),
			OrderHint:    qd.OrderHint,
			OrderInTheme: qd.OrderInTheme,
			TimesShown:   qd.TimesShown,
		}
		if qd.ShowWhen != nil {
			q.ShowWhen = &Condition{
				TargetQuestionID: qd.ShowWhen.Question,
				Operator:         Operator(qd.ShowWhen.Op),
				Value:            answer.FromAny(qd.ShowWhen.Value),
			}
		}
		questions = append(questions, q)
	}

	return NewSnapshot(d.Version, questions, groupings, themes)
}

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func checkDocument(generic any) error {
	compiledOnce.Do(func() {
		compiledSchema, compileErr = compileSchema()
	})
	if compileErr != nil {
		return compileErr
	}

	// The schema validator expects JSON-shaped values; round-trip the
	// decoded YAML to normalise map and number types.
	raw, err := json.Marshal(generic)
	if err != nil {
		return fmt.Errorf("catalog is not representable as JSON: %w", err)
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("normalise catalog: %w", err)
	}
	if err := compiledSchema.Validate(parsed); err != nil {
		return fmt.Errorf("catalog schema validation failed: %w", err)
	}
	return nil
}

func compileSchema() (*jsonschema.Schema, error) {
	defBytes, err := json.Marshal(documentSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	const schemaURL = "schema://census-catalog.json"
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return compiled, nil
}
