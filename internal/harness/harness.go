package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/gkquad/internal/engine"
	"github.com/roach88/gkquad/internal/integrand"
	"github.com/roach88/gkquad/internal/ir"
	"github.com/roach88/gkquad/internal/store"
	"github.com/roach88/gkquad/internal/testutil"
)

// epoch is the fixed clock reading for scenario runs.
var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Result is the outcome of a scenario execution.
type Result struct {
	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Run is the run as read back from the store.
	Run ir.Run `json:"run"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors"`
}

// Option configures Run.
type Option func(*config)

type config struct {
	registry *integrand.Registry
	logger   *slog.Logger
}

// WithRegistry runs scenarios against a custom integrand catalogue.
func WithRegistry(r *integrand.Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithLogger routes integrator diagnostics to l. Logs are discarded by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
// 1. Create fresh in-memory database
// 2. Execute the job through the engine, recording the run
// 3. Read the run back from the store
// 4. Evaluate expectations against the stored run
//
// An error is returned when the job cannot run at all (unknown integrand,
// invalid input); failed expectations are reported in the Result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := config{
		registry: integrand.Default(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	eng := engine.New(cfg.registry,
		engine.WithRecorder(st),
		engine.WithLogger(cfg.logger),
		engine.WithIDGenerator(testutil.NewSequentialIDGenerator(scenario.Name)),
		engine.WithClock(func() time.Time { return epoch }),
	)

	run, err := eng.Run(ctx, scenario.Job)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	stored, err := st.ReadRun(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := &Result{
		Scenario: scenario.Name,
		Pass:     true,
		Run:      stored,
		Errors:   []string{},
	}
	for _, f := range EvaluateExpect(scenario.Expect, scenario.Job, stored) {
		result.Errors = append(result.Errors, f.Error())
		result.Pass = false
	}

	return result, nil
}

// Summary aggregates results of a scenario batch.
type Summary struct {
	Results []*Result `json:"results"`
	Passed  int       `json:"passed"`
	Failed  int       `json:"failed"`
}

// RunAll runs scenarios sequentially. A scenario that cannot run counts as
// failed with the error as its message.
func RunAll(ctx context.Context, scenarios []*Scenario, opts ...Option) *Summary {
	sum := &Summary{Results: make([]*Result, 0, len(scenarios))}
	for _, s := range scenarios {
		res, err := Run(ctx, s, opts...)
		if err != nil {
			res = &Result{Scenario: s.Name, Errors: []string{err.Error()}}
		}
		if res.Pass {
			sum.Passed++
		} else {
			sum.Failed++
		}
		sum.Results = append(sum.Results, res)
	}
	return sum
}
