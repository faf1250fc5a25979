package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/natewolfe/dreamcensus-sub001/internal/catalog"
)

func TestButtonStatePolicy(t *testing.T) {
	tests := []struct {
		name      string
		policy    catalog.SkipPolicy
		valid     bool
		last      bool
		returning bool
		want      ButtonState
	}{
		{"last required invalid", catalog.SkipRequired, false, true, false, ButtonState{"Complete", VariantSpecial, true}},
		{"last required valid", catalog.SkipRequired, true, true, false, ButtonState{"Complete", VariantSpecial, false}},
		{"last optional empty", catalog.SkipOptional, false, true, false, ButtonState{"Complete", VariantSpecial, false}},
		{"optional empty", catalog.SkipOptional, false, false, false, ButtonState{"Skip", VariantSecondary, false}},
		{"skippable empty", catalog.SkipSkippable, false, false, false, ButtonState{"Skip", VariantSecondary, false}},
		{"required empty", catalog.SkipRequired, false, false, false, ButtonState{"Next", VariantPrimary, true}},
		{"filled", catalog.SkipOptional, true, false, false, ButtonState{"Next", VariantPrimary, false}},
		{"returning unmodified", catalog.SkipRequired, true, false, true, ButtonState{"Next", VariantSecondary, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buttonState(tt.policy, tt.valid, tt.last, tt.returning))
		})
	}
}
