package quad

import (
	"errors"
	"fmt"
	"math"
)

// InputErrorCode categorizes rejected integration inputs.
type InputErrorCode string

const (
	// ErrCodeInvalidBounds indicates non-finite bounds or a >= b.
	ErrCodeInvalidBounds InputErrorCode = "INVALID_BOUNDS"

	// ErrCodeInvalidTolerance indicates a negative or NaN tolerance.
	ErrCodeInvalidTolerance InputErrorCode = "INVALID_TOLERANCE"

	// ErrCodeInvalidStep indicates maxStep is not strictly positive.
	ErrCodeInvalidStep InputErrorCode = "INVALID_STEP"
)

// InputError reports an input Integrate would accept but cannot handle
// meaningfully.
type InputError struct {
	Code    InputErrorCode
	Field   string
	Message string
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
}

// IsInputError reports whether err is or wraps an *InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// Validate checks the arguments of Integrate. Integrate itself never calls
// it; it exists for callers that want to reject bad input up front instead
// of receiving NaN or a single degenerate region.
func Validate(a, b, epsabs, epsrel, maxStep float64) error {
	switch {
	case math.IsNaN(a) || math.IsInf(a, 0):
		return &InputError{Code: ErrCodeInvalidBounds, Field: "a", Message: fmt.Sprintf("must be finite, got %v", a)}
	case math.IsNaN(b) || math.IsInf(b, 0):
		return &InputError{Code: ErrCodeInvalidBounds, Field: "b", Message: fmt.Sprintf("must be finite, got %v", b)}
	case !(a < b):
		return &InputError{Code: ErrCodeInvalidBounds, Field: "b", Message: fmt.Sprintf("must be greater than a (%v >= %v)", a, b)}
	case math.IsInf(b-a, 0):
		return &InputError{Code: ErrCodeInvalidBounds, Field: "b", Message: "interval width overflows float64"}
	}

	if math.IsNaN(epsabs) || epsabs < 0 {
		return &InputError{Code: ErrCodeInvalidTolerance, Field: "epsabs", Message: fmt.Sprintf("must be >= 0, got %v", epsabs)}
	}
	if math.IsNaN(epsrel) || epsrel < 0 {
		return &InputError{Code: ErrCodeInvalidTolerance, Field: "epsrel", Message: fmt.Sprintf("must be >= 0, got %v", epsrel)}
	}

	if math.IsNaN(maxStep) || !(maxStep > 0) {
		return &InputError{Code: ErrCodeInvalidStep, Field: "max_step", Message: fmt.Sprintf("must be > 0, got %v", maxStep)}
	}

	return nil
}
