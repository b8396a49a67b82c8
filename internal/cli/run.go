package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/gkquad/internal/engine"
	"github.com/roach88/gkquad/internal/ir"
	"github.com/roach88/gkquad/internal/jobspec"
	"github.com/roach88/gkquad/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Workers  int
}

// JobResult is one job's line in the run report.
type JobResult struct {
	Name       string   `json:"name"`
	Integrand  string   `json:"integrand"`
	OK         bool     `json:"ok"`
	RunID      string   `json:"run_id,omitempty"`
	Integral   ir.Float `json:"integral"`
	Error      ir.Float `json:"error"`
	Regions    int      `json:"regions"`
	Degenerate bool     `json:"degenerate"`
	Failure    string   `json:"failure,omitempty"`
}

// RunReport is the JSON payload of the run command.
type RunReport struct {
	Jobs   []JobResult `json:"jobs"`
	Passed int         `json:"passed"`
	Failed int         `json:"failed"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <jobs-path>",
		Short: "Run CUE job files",
		Long: `Load integration jobs from a CUE file or a directory of *.cue files and
run them concurrently.

Each file declares jobs under a top-level "jobs" struct:

  jobs: wide_sin: {
      integrand: "sin"
      params: {freq: 3}
      a: 0
      b: 10
      epsrel: 1e-12
  }

Exit codes:
  0 - All jobs succeeded
  1 - One or more jobs failed
  2 - Command error (unreadable jobs, database errors)

Examples:
  gkquad run ./jobs
  gkquad run ./jobs/sweep.cue --db runs.db --workers 8`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobs(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record runs to this SQLite database")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "jobs to run concurrently (default: config engine.workers)")

	return cmd
}

func runJobs(opts *RunOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)
	logger := opts.logger(cmd)

	logger.Debug("loading jobs", "path", path)
	jobs, err := jobspec.LoadPath(path)
	if err != nil {
		return out.fail(CodeLoad, WrapExitError(ExitCommandError, "failed to load jobs", err))
	}
	logger.Debug("jobs loaded", "count", len(jobs))

	workers := opts.config().Engine.Workers
	if cmd.Flags().Changed("workers") {
		workers = opts.Workers
	}
	engOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithWorkers(workers),
	}
	if opts.IDGenerator != nil {
		engOpts = append(engOpts, engine.WithIDGenerator(opts.IDGenerator))
	}

	if dbPath := opts.storePath(opts.Database); dbPath != "" {
		logger.Debug("opening database", "path", dbPath)
		st, err := store.Open(dbPath)
		if err != nil {
			return out.fail(CodeStore, WrapExitError(ExitCommandError, "failed to open database", err))
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		engOpts = append(engOpts, engine.WithRecorder(st))
	}

	// Ctrl-C stops scheduling; running integrations finish.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcomes, err := engine.New(opts.registry(), engOpts...).RunAll(ctx, jobs)
	if err != nil && !errors.Is(err, context.Canceled) {
		return out.fail(CodeRun, WrapExitError(ExitCommandError, "run aborted", err))
	}

	report := RunReport{Jobs: make([]JobResult, 0, len(outcomes))}
	for _, o := range outcomes {
		jr := JobResult{Name: o.Job.Name, Integrand: o.Job.Integrand}
		if o.Err != nil {
			jr.Failure = o.Err.Error()
			report.Failed++
		} else {
			jr.OK = true
			jr.RunID = o.Run.ID
			jr.Integral = ir.Float(o.Run.Integral)
			jr.Error = ir.Float(o.Run.Error)
			jr.Regions = o.Run.Regions
			jr.Degenerate = o.Run.Degenerate
			report.Passed++
		}
		report.Jobs = append(report.Jobs, jr)
	}

	if out.JSON() {
		if err := out.Success(report); err != nil {
			return err
		}
	} else {
		outputRunText(cmd, report)
	}

	if report.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d jobs failed", report.Failed, len(report.Jobs)))
	}
	return nil
}

func outputRunText(cmd *cobra.Command, report RunReport) {
	w := cmd.OutOrStdout()
	for _, j := range report.Jobs {
		if !j.OK {
			fmt.Fprintf(w, "✗ %s\n", j.Name)
			fmt.Fprintf(w, "  %s\n", j.Failure)
			continue
		}
		mark := "✓"
		if j.Degenerate {
			mark = "!"
		}
		fmt.Fprintf(w, "%s %s  integral=%.15g error=%.3g regions=%d\n", mark, j.Name, j.Integral, j.Error, j.Regions)
	}
	fmt.Fprintf(w, "\n%d succeeded, %d failed\n", report.Passed, report.Failed)
}
