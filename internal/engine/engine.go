package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/gkquad/internal/integrand"
	"github.com/roach88/gkquad/internal/ir"
	"github.com/roach88/gkquad/internal/quad"
)

// DefaultWorkers is the default number of jobs RunAll executes at once.
const DefaultWorkers = 4

// Recorder persists runs. Implemented by *store.Store.
type Recorder interface {
	WriteRun(ctx context.Context, run ir.Run) (int64, error)
}

// Engine executes jobs against an integrand catalogue.
//
// Thread-safety: Run and RunAll are safe for concurrent use provided the
// recorder and ID generator are.
type Engine struct {
	registry *integrand.Registry
	recorder Recorder
	logger   *slog.Logger
	ids      IDGenerator
	now      func() time.Time
	workers  int
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithRecorder records every successful run.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithLogger sets the logger for the engine and the integrations it runs.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithIDGenerator replaces the UUIDv7 run ID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithClock replaces time.Now for timestamps and elapsed time.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithWorkers sets how many jobs RunAll executes at once.
// Values below 1 select DefaultWorkers.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// New creates an Engine for the given catalogue.
func New(registry *integrand.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		logger:   slog.Default(),
		ids:      UUIDv7Generator{},
		now:      time.Now,
		workers:  DefaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = DefaultWorkers
	}
	return e
}

// Run executes one job.
//
// The returned run is complete even when recording fails; in that case the
// error is a RECORD_FAILED RuntimeError and Seq is zero.
func (e *Engine) Run(ctx context.Context, job ir.Job) (ir.Run, error) {
	if err := ctx.Err(); err != nil {
		return ir.Run{}, err
	}

	if err := quad.Validate(job.A, job.B, job.EpsAbs, job.EpsRel, job.MaxStep); err != nil {
		return ir.Run{}, newRuntimeError(ErrCodeInvalidInput, job.Name, err)
	}

	f, err := e.registry.Build(job.Integrand, job.Params)
	if err != nil {
		if errors.Is(err, integrand.ErrUnknown) {
			return ir.Run{}, newRuntimeError(ErrCodeUnknownIntegrand, job.Name, err)
		}
		return ir.Run{}, newRuntimeError(ErrCodeInvalidParams, job.Name, err)
	}

	hash, err := ir.JobHash(job)
	if err != nil {
		// Bounds and tolerances passed validation, so only params can be
		// non-finite here.
		return ir.Run{}, newRuntimeError(ErrCodeInvalidParams, job.Name, err)
	}

	logger := e.logger.With("job", job.Name, "integrand", job.Integrand)
	in := quad.Integrator{Logger: logger}

	start := e.now()
	res := in.Integrate(f, job.A, job.B, job.EpsAbs, job.EpsRel, job.MaxStep)
	elapsed := e.now().Sub(start)

	run := ir.Run{
		ID:            e.ids.Generate(),
		JobHash:       hash,
		Job:           job,
		Integral:      res.Integral,
		Error:         res.Error,
		Regions:       res.Regions,
		Initial:       res.Initial,
		Iterations:    res.Iterations,
		Evaluations:   res.Evaluations,
		Degenerate:    res.Degenerate,
		Elapsed:       elapsed,
		CreatedAt:     start.UTC(),
		EngineVersion: ir.EngineVersion,
	}

	logger.Debug("job complete",
		"run", run.ID,
		"integral", run.Integral,
		"error", run.Error,
		"regions", run.Regions,
		"elapsed", run.Elapsed)

	if e.recorder != nil {
		seq, err := e.recorder.WriteRun(ctx, run)
		if err != nil {
			return run, newRuntimeError(ErrCodeRecordFailed, job.Name, fmt.Errorf("write run %s: %w", run.ID, err))
		}
		run.Seq = seq
	}

	return run, nil
}

// Outcome pairs a job with its run or error.
type Outcome struct {
	Job ir.Job
	Run ir.Run
	Err error
}

// RunAll executes jobs concurrently and returns one outcome per job, in
// input order. A failing job does not affect the others.
//
// If ctx is canceled, jobs that have not started are skipped (their
// outcome carries the context error) and RunAll returns ctx.Err() after
// running jobs finish.
func (e *Engine) RunAll(ctx context.Context, jobs []ir.Job) ([]Outcome, error) {
	outcomes := make([]Outcome, len(jobs))
	for i, job := range jobs {
		outcomes[i].Job = job
	}

	var g errgroup.Group
	g.SetLimit(e.workers)

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			outcomes[i].Err = err
			continue
		}
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i].Err = err
				return nil
			}
			run, err := e.Run(ctx, job)
			outcomes[i].Run = run
			outcomes[i].Err = err
			return nil
		})
	}

	// Workers never return errors; failures live in the outcomes.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return outcomes, err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	e.logger.Info("jobs complete", "total", len(jobs), "failed", failed)

	return outcomes, nil
}
