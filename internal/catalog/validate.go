package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	catalogValidate *validator.Validate
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

func init() {
	catalogValidate = validator.New()
	_ = catalogValidate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
}

// validateCatalog performs all structural checks on a catalog. Returns a
// combined error describing every problem found, or nil if valid.
func validateCatalog(questions []Question, groupings []Grouping, themes []Theme) error {
	var errs []string

	fieldErrs := func(kind, id string, err error) {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Sprintf("%s %q: field %s failed %q", kind, id, fe.Field(), fe.Tag()))
			}
			return
		}
		errs = append(errs, fmt.Sprintf("%s %q: %v", kind, id, err))
	}

	themeIDs := make(map[string]bool, len(themes))
	themeSlugs := make(map[string]bool, len(themes))
	for _, t := range themes {
		if err := catalogValidate.Struct(t); err != nil {
			fieldErrs("theme", t.ID, err)
		}
		if themeIDs[t.ID] {
			errs = append(errs, fmt.Sprintf("duplicate theme ID: %q", t.ID))
		}
		if themeSlugs[t.Slug] {
			errs = append(errs, fmt.Sprintf("duplicate theme slug: %q", t.Slug))
		}
		themeIDs[t.ID] = true
		themeSlugs[t.Slug] = true
	}

	groupingIDs := make(map[string]bool, len(groupings))
	groupingSlugs := make(map[string]bool, len(groupings))
	for _, g := range groupings {
		if err := catalogValidate.Struct(g); err != nil {
			fieldErrs("grouping", g.ID, err)
		}
		if groupingIDs[g.ID] {
			errs = append(errs, fmt.Sprintf("duplicate grouping ID: %q", g.ID))
		}
		if groupingSlugs[g.Slug] {
			errs = append(errs, fmt.Sprintf("duplicate grouping slug: %q", g.Slug))
		}
		groupingIDs[g.ID] = true
		groupingSlugs[g.Slug] = true
	}

	questionIDs := make(map[string]Question, len(questions))
	analyticsKeys := make(map[string]string)
	for _, q := range questions {
		if err := catalogValidate.Struct(q); err != nil {
			fieldErrs("question", q.ID, err)
		}
		if _, dup := questionIDs[q.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate question ID: %q", q.ID))
		}
		questionIDs[q.ID] = q
		if q.AnalyticsKey != "" {
			if other, dup := analyticsKeys[q.AnalyticsKey]; dup {
				errs = append(errs, fmt.Sprintf("analytics key %q used by both %q and %q", q.AnalyticsKey, other, q.ID))
			}
			analyticsKeys[q.AnalyticsKey] = q.ID
		}
	}
	// An analytics key must not shadow another question's stable ID.
	for key, owner := range analyticsKeys {
		if _, clash := questionIDs[key]; clash && key != owner {
			errs = append(errs, fmt.Sprintf("analytics key %q of %q collides with a question ID", key, owner))
		}
	}

	for _, q := range questions {
		if q.ThemeID != "" && !themeIDs[q.ThemeID] {
			errs = append(errs, fmt.Sprintf("question %q references nonexistent theme %q", q.ID, q.ThemeID))
		}
		if q.GroupingID != "" && !groupingIDs[q.GroupingID] {
			errs = append(errs, fmt.Sprintf("question %q references nonexistent grouping %q", q.ID, q.GroupingID))
		}
		if q.ParentID != "" {
			p, ok := questionIDs[q.ParentID]
			switch {
			case !ok:
				errs = append(errs, fmt.Sprintf("question %q references nonexistent parent %q", q.ID, q.ParentID))
			case p.Kind != KindGroup:
				errs = append(errs, fmt.Sprintf("question %q has parent %q which is not a group", q.ID, q.ParentID))
			}
		}
		if q.Props == nil {
			errs = append(errs, fmt.Sprintf("question %q has no props", q.ID))
		} else if !propsMatchKind(q.Kind, q.Props) {
			errs = append(errs, fmt.Sprintf("question %q: props %T do not fit kind %q", q.ID, q.Props, q.Kind))
		}
		if q.ShowWhen != nil {
			target, ok := questionIDs[q.ShowWhen.TargetQuestionID]
			switch {
			case !ok:
				errs = append(errs, fmt.Sprintf("question %q showWhen references nonexistent question %q", q.ID, q.ShowWhen.TargetQuestionID))
			case target.ID == q.ID:
				errs = append(errs, fmt.Sprintf("question %q showWhen references itself", q.ID))
			}
		}
	}

	for _, g := range groupings {
		for _, pid := range g.Prerequisites {
			if !groupingIDs[pid] {
				errs = append(errs, fmt.Sprintf("grouping %q references nonexistent prerequisite %q", g.ID, pid))
			}
		}
	}
	if cycle := prerequisiteCycle(groupings); len(cycle) > 0 {
		errs = append(errs, fmt.Sprintf("cycle detected involving groupings: %s", strings.Join(cycle, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// prerequisiteCycle runs Kahn's algorithm over the resolved prerequisite
// graph and returns the groupings left with unmet in-degree. Dangling
// references are reported separately and ignored here.
func prerequisiteCycle(groupings []Grouping) []string {
	resolved := ResolvePrerequisites(groupings)
	known := make(map[string]bool, len(groupings))
	for _, g := range groupings {
		known[g.ID] = true
	}
	inDegree := make(map[string]int, len(groupings))
	adj := make(map[string][]string)
	for _, g := range groupings {
		for _, pid := range resolved[g.ID] {
			if !known[pid] {
				continue
			}
			inDegree[g.ID]++
			adj[pid] = append(adj[pid], g.ID)
		}
	}

	var queue []string
	for _, g := range groupings {
		if inDegree[g.ID] == 0 {
			queue = append(queue, g.ID)
		}
	}
	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, dep := range adj[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	if visited == len(groupings) {
		return nil
	}
	var cycle []string
	for _, g := range groupings {
		if inDegree[g.ID] > 0 {
			cycle = append(cycle, g.ID)
		}
	}
	return cycle
}

func propsMatchKind(kind Kind, p Props) bool {
	switch p.(type) {
	case TextProps:
		return kind == KindShortText || kind == KindLongText || kind == KindEmail
	case NumberProps:
		return kind == KindNumber
	case ChoiceProps:
		return kind == KindSingleChoice || kind == KindMultiChoice || kind == KindDropdown
	case ScaleProps:
		return kind == KindOpinionScale || kind == KindRating
	case DateProps:
		return kind == KindDate
	case BooleanProps:
		return kind == KindYesNo
	case GroupProps:
		return kind == KindGroup || kind == KindStatement
	}
	return false
}
