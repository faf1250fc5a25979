package answer

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Constraints are the checks applied before an answer is accepted as final.
type Constraints struct {
	Required  bool
	Min       *float64 // numeric lower bound, inclusive
	Max       *float64 // numeric upper bound, inclusive
	MaxLength int      // 0 = unlimited; counted in characters
}

// ValidationResult reports whether an answer may be accepted. Validation
// failures are results, not errors.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// Check validates v against c.
func Check(v Value, c Constraints) ValidationResult {
	if !v.IsPresent() {
		if c.Required {
			return ValidationResult{Valid: false, Error: "This field is required"}
		}
		return ValidationResult{Valid: true}
	}

	if n, ok := v.AsNumber(); ok {
		if c.Min != nil && n < *c.Min {
			return ValidationResult{Valid: false, Error: "Minimum value is " + formatNumber(*c.Min)}
		}
		if c.Max != nil && n > *c.Max {
			return ValidationResult{Valid: false, Error: "Maximum value is " + formatNumber(*c.Max)}
		}
	}

	if s, ok := v.AsString(); ok && c.MaxLength > 0 {
		if utf8.RuneCountInString(s) > c.MaxLength {
			return ValidationResult{Valid: false, Error: fmt.Sprintf("Maximum length is %d characters", c.MaxLength)}
		}
	}

	return ValidationResult{Valid: true}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
