package catalog

func kindEnum() []any {
	kinds := AllKinds()
	out := make([]any, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

// documentSchema is the JSON schema a catalog file must satisfy before it is
// decoded into typed definitions.
var documentSchema = map[string]any{
	"type":     "object",
	"required": []any{"version", "groupings", "questions"},
	"properties": map[string]any{
		"version": map[string]any{
			"type":        "string",
			"minLength":   1,
			"description": "Catalog revision recorded on every response session",
		},
		"themes": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "slug", "name"},
				"properties": map[string]any{
					"id":   map[string]any{"type": "string", "minLength": 1},
					"slug": map[string]any{"type": "string", "minLength": 1},
					"name": map[string]any{"type": "string"},
				},
				"additionalProperties": false,
			},
		},
		"groupings": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "slug", "name"},
				"properties": map[string]any{
					"id":               map[string]any{"type": "string", "minLength": 1},
					"slug":             map[string]any{"type": "string", "minLength": 1},
					"name":             map[string]any{"type": "string"},
					"description":      map[string]any{"type": "string"},
					"orderIndex":       map[string]any{"type": "integer", "minimum": 0},
					"estimatedMinutes": map[string]any{"type": "integer", "minimum": 0},
					"icon":             map[string]any{"type": "string"},
					"prerequisites": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"unlocked": map[string]any{"type": "boolean"},
				},
				"additionalProperties": false,
			},
		},
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "text", "kind"},
				"properties": map[string]any{
					"id":           map[string]any{"type": "string", "minLength": 1},
					"analyticsKey": map[string]any{"type": "string"},
					"text":         map[string]any{"type": "string", "minLength": 1},
					"help":         map[string]any{"type": "string"},
					"tier":         map[string]any{"type": "integer", "minimum": 1, "maximum": 3},
					"theme":        map[string]any{"type": "string"},
					"grouping":     map[string]any{"type": "string"},
					"parent":       map[string]any{"type": "string"},
					"kind":         map[string]any{"type": "string", "enum": kindEnum()},
					"props":        map[string]any{"type": "object"},
					"required":     map[string]any{"type": "boolean"},
					"skipPolicy": map[string]any{
						"type": "string",
						"enum": []any{string(SkipRequired), string(SkipOptional), string(SkipSkippable)},
					},
					"orderHint":    map[string]any{"type": "integer"},
					"orderInTheme": map[string]any{"type": "integer"},
					"timesShown":   map[string]any{"type": "integer", "minimum": 0},
					"showWhen": map[string]any{
						"type":     "object",
						"required": []any{"question", "op"},
						"properties": map[string]any{
							"question": map[string]any{"type": "string", "minLength": 1},
							"op": map[string]any{
								"type": "string",
								"enum": []any{string(OpEq), string(OpNe), string(OpContains), string(OpGt), string(OpLt)},
							},
							"value": map[string]any{},
						},
						"additionalProperties": false,
					},
				},
				"additionalProperties": false,
			},
		},
	},
	"additionalProperties": false,
}
