package harness

import (
	"context"
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/gkquad/internal/ir"
)

// RunSnapshot captures the reproducible part of a scenario run.
// Error estimates and timings are excluded; the integral is rounded to ten
// significant digits so last-bit differences do not churn golden files.
type RunSnapshot struct {
	Scenario    string
	Integrand   string
	A, B        float64
	Integral    float64
	Regions     int
	Initial     int
	Iterations  int
	Evaluations int
	Degenerate  bool
	Pass        bool
}

// NewRunSnapshot builds a snapshot from a scenario result.
func NewRunSnapshot(res *Result) RunSnapshot {
	return RunSnapshot{
		Scenario:    res.Scenario,
		Integrand:   res.Run.Job.Integrand,
		A:           res.Run.Job.A,
		B:           res.Run.Job.B,
		Integral:    res.Run.Integral,
		Regions:     res.Run.Regions,
		Initial:     res.Run.Initial,
		Iterations:  res.Run.Iterations,
		Evaluations: res.Run.Evaluations,
		Degenerate:  res.Run.Degenerate,
		Pass:        res.Pass,
	}
}

// toCanonicalMap converts a RunSnapshot to a map[string]any for canonical
// JSON serialization.
func (s RunSnapshot) toCanonicalMap() map[string]any {
	return map[string]any{
		"scenario":    s.Scenario,
		"integrand":   s.Integrand,
		"a":           s.A,
		"b":           s.B,
		"integral":    strconv.FormatFloat(s.Integral, 'g', 10, 64),
		"regions":     s.Regions,
		"initial":     s.Initial,
		"iterations":  s.Iterations,
		"evaluations": s.Evaluations,
		"degenerate":  s.Degenerate,
		"pass":        s.Pass,
	}
}

// MarshalSnapshot returns the canonical JSON form of s.
func MarshalSnapshot(s RunSnapshot) ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario, opts...)
	if err != nil {
		return nil, err
	}

	data, err := MarshalSnapshot(NewRunSnapshot(result))
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}
