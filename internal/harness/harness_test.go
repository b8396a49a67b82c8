package harness

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gkquad/internal/engine"
	"github.com/roach88/gkquad/internal/integrand"
	"github.com/roach88/gkquad/internal/ir"
	"github.com/roach88/gkquad/internal/quad"
)

func ptr[T any](v T) *T { return &v }

func TestScenarios_AllPass(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			res, err := Run(context.Background(), s)
			require.NoError(t, err)
			assert.True(t, res.Pass, "failures:\n%s", strings.Join(res.Errors, "\n"))
			assert.Equal(t, s.Job, res.Run.Job)
		})
	}
}

func TestScenarios_Golden(t *testing.T) {
	for _, name := range []string{"constant-area", "unit-square", "offset-cubic", "step-midpoint"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(filepath.Join("testdata/scenarios", name+".yaml"))
			require.NoError(t, err)

			res, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, res.Pass)
		})
	}
}

func TestRun_RecordsDeterministicRun(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/unit-square.yaml")
	require.NoError(t, err)

	res, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, "unit-square-0001", res.Run.ID)
	assert.Equal(t, int64(1), res.Run.Seq)
	assert.Equal(t, epoch, res.Run.CreatedAt)
	assert.Zero(t, res.Run.Elapsed)
	assert.Equal(t, quad.NodeCount, res.Run.Evaluations)
	assert.Empty(t, res.Errors)
	assert.NotNil(t, res.Errors)
}

func TestRun_ReportsAllFailures(t *testing.T) {
	s := &Scenario{
		Job: ir.Job{
			Name:      "wrong",
			Integrand: "constant",
			A:         0,
			B:         1,
			EpsRel:    1e-10,
			MaxStep:   DefaultMaxStep,
		},
		Description: "every expectation is wrong",
		Expect: Expect{
			Integral:   ptr(2.0),
			MaxError:   ptr(-1.0),
			MinRegions: 5,
			Degenerate: ptr(true),
		},
	}

	res, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, res.Pass)
	require.Len(t, res.Errors, 4)
	assert.Contains(t, res.Errors[0], CheckIntegral)
	assert.Contains(t, res.Errors[1], CheckMaxError)
	assert.Contains(t, res.Errors[2], CheckMinRegions)
	assert.Contains(t, res.Errors[3], CheckDegenerate)
}

func TestRun_UnknownIntegrandIsError(t *testing.T) {
	s := &Scenario{
		Job:         ir.Job{Name: "x", Integrand: "missing", A: 0, B: 1, EpsRel: 1e-6, MaxStep: 1},
		Description: "d",
		Expect:      Expect{Integral: ptr(1.0)},
	}
	_, err := Run(context.Background(), s)
	require.Error(t, err)
	assert.True(t, engine.IsUnknownIntegrand(err))
}

func TestRun_CustomRegistry(t *testing.T) {
	reg := integrand.NewRegistry(integrand.Definition{
		Name:   "line",
		Domain: [2]float64{0, 1},
		Build: func(map[string]float64) quad.Func {
			return func(x float64) float64 { return 2 * x }
		},
	})
	s := &Scenario{
		Job:         ir.Job{Name: "line", Integrand: "line", A: 0, B: 3, EpsRel: 1e-12, MaxStep: DefaultMaxStep},
		Description: "d",
		Expect:      Expect{Integral: ptr(9.0)},
	}

	res, err := Run(context.Background(), s, WithRegistry(reg))
	require.NoError(t, err)
	assert.True(t, res.Pass, strings.Join(res.Errors, "\n"))
}

func TestRunAll_Summary(t *testing.T) {
	good, err := LoadScenario("testdata/scenarios/constant-area.yaml")
	require.NoError(t, err)
	bad := &Scenario{
		Job:         ir.Job{Name: "bad", Integrand: "missing", A: 0, B: 1, MaxStep: 1},
		Description: "d",
		Expect:      Expect{MinRegions: 1},
	}

	sum := RunAll(context.Background(), []*Scenario{good, bad})
	assert.Equal(t, 1, sum.Passed)
	assert.Equal(t, 1, sum.Failed)
	require.Len(t, sum.Results, 2)
	assert.Equal(t, "bad", sum.Results[1].Scenario)
	assert.Contains(t, sum.Results[1].Errors[0], "UNKNOWN_INTEGRAND")
}

func TestMarshalSnapshot(t *testing.T) {
	data, err := MarshalSnapshot(RunSnapshot{
		Scenario:    "s",
		Integrand:   "sin",
		A:           0,
		B:           3.141592653589793,
		Integral:    1.9999999999999998,
		Regions:     3,
		Initial:     1,
		Iterations:  2,
		Evaluations: 75,
		Pass:        true,
	})
	require.NoError(t, err)
	assert.Equal(t,
		`{"a":0,"b":3.141592653589793,"degenerate":false,"evaluations":75,"initial":1,"integral":"2","integrand":"sin","iterations":2,"pass":true,"regions":3,"scenario":"s"}`,
		string(data))
}

func TestLoadScenario_Defaults(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/step-midpoint.yaml")
	require.NoError(t, err)
	assert.Equal(t, "step-midpoint", s.Name)
	assert.Equal(t, "step", s.Integrand)
	assert.Equal(t, DefaultMaxStep, s.MaxStep)
	assert.Nil(t, s.Params)
	require.NotNil(t, s.Expect.Integral)
	assert.Equal(t, 0.5, *s.Expect.Integral)
	require.NotNil(t, s.Expect.Degenerate)
	assert.False(t, *s.Expect.Degenerate)
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"unknown-field.yaml", "integrall"},
		{"no-expect.yaml", "at least one check"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := LoadScenario(filepath.Join("testdata/invalid", tt.file))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name", "description: d\nintegrand: sin\na: 0\nb: 1\nexpect: {min_regions: 1}\n", "name is required"},
		{"name with space", "name: a b\ndescription: d\nintegrand: sin\na: 0\nb: 1\nexpect: {min_regions: 1}\n", "must not contain"},
		{"missing description", "name: n\nintegrand: sin\na: 0\nb: 1\nexpect: {min_regions: 1}\n", "description is required"},
		{"missing integrand", "name: n\ndescription: d\na: 0\nb: 1\nexpect: {min_regions: 1}\n", "integrand is required"},
		{"zero tolerance target", "name: n\ndescription: d\nintegrand: sin\na: 0\nb: 1\nexpect: {integral: 2}\n", "tolerance is required"},
		{"inverted region bounds", "name: n\ndescription: d\nintegrand: sin\na: 0\nb: 1\nexpect: {min_regions: 3, max_regions: 2}\n", "exceeds"},
		{"negative tolerance", "name: n\ndescription: d\nintegrand: sin\na: 0\nb: 1\nepsrel: 1e-6\nexpect: {integral: 2, tolerance: -1}\n", "non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarios_Duplicate(t *testing.T) {
	dir := t.TempDir()
	body := "name: same\ndescription: d\nintegrand: constant\na: 0\nb: 1\nexpect: {min_regions: 1}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(body), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte(body), 0o644))

	_, err := LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate scenario name")
}

func TestLoadScenarios_SingleFile(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios/gaussian.yaml")
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "gaussian", scenarios[0].Name)
}

func TestFilter(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	steps, err := Filter(scenarios, "step-*")
	require.NoError(t, err)
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"step-degenerate", "step-midpoint"}, names)

	all, err := Filter(scenarios, "")
	require.NoError(t, err)
	assert.Len(t, all, len(scenarios))

	_, err = Filter(scenarios, "[")
	assert.Error(t, err)
}

func TestEvaluateExpect_DefaultTolerance(t *testing.T) {
	job := ir.Job{EpsRel: 1e-6}
	run := ir.Run{Integral: 100.00005}

	assert.Empty(t, EvaluateExpect(Expect{Integral: ptr(100.0)}, job, run), "within 1e-6 relative")

	run.Integral = 100.001
	failures := EvaluateExpect(Expect{Integral: ptr(100.0)}, job, run)
	require.Len(t, failures, 1)
	assert.Equal(t, CheckIntegral, failures[0].Check)
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Check:    CheckMaxRegions,
		Expected: "at most 1 regions",
		Actual:   "3 regions",
		Run:      ir.Run{Integral: 1, Regions: 3},
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: max_regions")
	assert.Contains(t, msg, "Expected: at most 1 regions")
	assert.Contains(t, msg, "regions=3")
}
