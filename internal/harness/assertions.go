package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/gkquad/internal/ir"
)

// Check names used in AssertionError.Check.
const (
	CheckIntegral   = "integral"
	CheckMaxError   = "max_error"
	CheckMinRegions = "min_regions"
	CheckMaxRegions = "max_regions"
	CheckDegenerate = "degenerate"
)

// AssertionError is returned when an expectation fails.
// It includes the run's headline numbers to help debug the failure.
type AssertionError struct {
	Check    string // which expectation failed
	Expected string // human-readable expected outcome
	Actual   string // human-readable actual outcome
	Run      ir.Run
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Check)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "  Run: integral=%.17g error=%.3g regions=%d iterations=%d degenerate=%t",
		e.Run.Integral, e.Run.Error, e.Run.Regions, e.Run.Iterations, e.Run.Degenerate)

	return buf.String()
}

// EvaluateExpect checks every configured expectation against run.
// Returns all failures (does not fail-fast).
func EvaluateExpect(expect Expect, job ir.Job, run ir.Run) []*AssertionError {
	var failures []*AssertionError
	fail := func(check, expected, actual string) {
		failures = append(failures, &AssertionError{Check: check, Expected: expected, Actual: actual, Run: run})
	}

	if expect.Integral != nil {
		want := *expect.Integral
		tol := integralTolerance(expect, job)
		diff := math.Abs(run.Integral - want)
		// NaN fails this comparison.
		if !(diff <= tol) {
			fail(CheckIntegral,
				fmt.Sprintf("%.17g ± %.3g", want, tol),
				fmt.Sprintf("%.17g (off by %.3g)", run.Integral, diff))
		}
	}

	if expect.MaxError != nil && !(run.Error <= *expect.MaxError) {
		fail(CheckMaxError,
			fmt.Sprintf("error <= %.3g", *expect.MaxError),
			fmt.Sprintf("error = %.3g", run.Error))
	}

	if expect.MinRegions > 0 && run.Regions < expect.MinRegions {
		fail(CheckMinRegions,
			fmt.Sprintf("at least %d regions", expect.MinRegions),
			fmt.Sprintf("%d regions", run.Regions))
	}

	if expect.MaxRegions > 0 && run.Regions > expect.MaxRegions {
		fail(CheckMaxRegions,
			fmt.Sprintf("at most %d regions", expect.MaxRegions),
			fmt.Sprintf("%d regions", run.Regions))
	}

	if expect.Degenerate != nil && run.Degenerate != *expect.Degenerate {
		fail(CheckDegenerate,
			fmt.Sprintf("degenerate=%t", *expect.Degenerate),
			fmt.Sprintf("degenerate=%t", run.Degenerate))
	}

	return failures
}

// integralTolerance returns the explicit tolerance, or the job's own
// accuracy target relative to the expected integral.
func integralTolerance(expect Expect, job ir.Job) float64 {
	if expect.Tolerance > 0 {
		return expect.Tolerance
	}
	return math.Max(job.EpsAbs, job.EpsRel*math.Abs(*expect.Integral))
}
