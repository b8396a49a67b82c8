package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while executing a job.
//
// Runtime errors include:
//   - Unknown integrand: job names an integrand not in the catalogue
//   - Invalid params: job passes a parameter the integrand does not accept
//   - Invalid input: bounds, tolerances or max step are unusable
//   - Record failed: the run was computed but could not be stored
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Job is the name of the affected job.
	Job string

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownIntegrand indicates the integrand is not registered.
	ErrCodeUnknownIntegrand RuntimeErrorCode = "UNKNOWN_INTEGRAND"

	// ErrCodeInvalidParams indicates a parameter was rejected.
	ErrCodeInvalidParams RuntimeErrorCode = "INVALID_PARAMS"

	// ErrCodeInvalidInput indicates bounds, tolerances or step failed validation.
	ErrCodeInvalidInput RuntimeErrorCode = "INVALID_INPUT"

	// ErrCodeRecordFailed indicates the run could not be written to the store.
	ErrCodeRecordFailed RuntimeErrorCode = "RECORD_FAILED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Job != "" {
		return fmt.Sprintf("%s: %s (job=%s)", e.Code, e.Message, e.Job)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func newRuntimeError(code RuntimeErrorCode, job string, err error) *RuntimeError {
	return &RuntimeError{Code: code, Message: err.Error(), Job: job, Err: err}
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsUnknownIntegrand returns true if the job named an unregistered integrand.
// Uses errors.As to handle wrapped errors.
func IsUnknownIntegrand(err error) bool {
	return hasCode(err, ErrCodeUnknownIntegrand)
}

// IsInvalidParams returns true if a job parameter was rejected.
func IsInvalidParams(err error) bool {
	return hasCode(err, ErrCodeInvalidParams)
}

// IsInvalidInput returns true if the job's bounds, tolerances or step were
// rejected.
func IsInvalidInput(err error) bool {
	return hasCode(err, ErrCodeInvalidInput)
}

// IsRecordFailed returns true if the run could not be stored.
func IsRecordFailed(err error) bool {
	return hasCode(err, ErrCodeRecordFailed)
}
