package quad_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gkquad/internal/quad"
)

func TestValidate(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)

	tests := []struct {
		name                   string
		a, b                   float64
		epsabs, epsrel, maxStp float64
		wantCode               quad.InputErrorCode
		wantField              string
	}{
		{"ok", 0, 1, 0, 1e-10, 1e300, "", ""},
		{"unbounded step ok", -1, 1, 1e-9, 0, inf, "", ""},
		{"nan a", nan, 1, 0, 0, 1, quad.ErrCodeInvalidBounds, "a"},
		{"infinite b", 0, inf, 0, 0, 1, quad.ErrCodeInvalidBounds, "b"},
		{"equal bounds", 1, 1, 0, 0, 1, quad.ErrCodeInvalidBounds, "b"},
		{"reversed bounds", 2, 1, 0, 0, 1, quad.ErrCodeInvalidBounds, "b"},
		{"width overflows", -math.MaxFloat64, math.MaxFloat64, 0, 0, 1, quad.ErrCodeInvalidBounds, "b"},
		{"negative epsabs", 0, 1, -1, 0, 1, quad.ErrCodeInvalidTolerance, "epsabs"},
		{"nan epsrel", 0, 1, 0, nan, 1, quad.ErrCodeInvalidTolerance, "epsrel"},
		{"zero step", 0, 1, 0, 0, 0, quad.ErrCodeInvalidStep, "max_step"},
		{"nan step", 0, 1, 0, 0, nan, quad.ErrCodeInvalidStep, "max_step"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := quad.Validate(tt.a, tt.b, tt.epsabs, tt.epsrel, tt.maxStp)
			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ie *quad.InputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.wantCode, ie.Code)
			assert.Equal(t, tt.wantField, ie.Field)
		})
	}
}

func TestIsInputError(t *testing.T) {
	err := quad.Validate(1, 0, 0, 0, 1)
	assert.True(t, quad.IsInputError(err))
	assert.True(t, quad.IsInputError(fmt.Errorf("job x: %w", err)))
	assert.False(t, quad.IsInputError(assert.AnError))
	assert.Contains(t, err.Error(), "INVALID_BOUNDS: b: must be greater than a")
}
