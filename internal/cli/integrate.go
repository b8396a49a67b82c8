package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gkquad/internal/engine"
	"github.com/roach88/gkquad/internal/ir"
	"github.com/roach88/gkquad/internal/store"
)

// IntegrateOptions holds flags for the integrate command.
type IntegrateOptions struct {
	*RootOptions
	From, To       float64
	EpsAbs, EpsRel float64
	MaxStep        float64
	Params         []string // k=v
	Database       string
}

// IntegrateResult is the JSON payload of the integrate command.
type IntegrateResult struct {
	Run      ir.Run `json:"run"`
	Recorded bool   `json:"recorded"`
}

// NewIntegrateCommand creates the integrate command.
func NewIntegrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IntegrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "integrate <integrand>",
		Short: "Integrate one catalogue integrand",
		Long: `Integrate a named integrand from the catalogue (see "gkquad list").

Bounds default to the integrand's demo domain. Tolerances and max step
default to the configured values. With --db (or store.path in the config)
the run is recorded to the history database.

Examples:
  gkquad integrate x-sin-x --epsrel 1e-12
  gkquad integrate sin --param freq=3 --from 0 --to 10
  gkquad integrate gaussian --param sigma=0.1 --db runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntegrate(opts, args[0], cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.From, "from", 0, "lower bound (default: integrand domain)")
	cmd.Flags().Float64Var(&opts.To, "to", 0, "upper bound (default: integrand domain)")
	cmd.Flags().Float64Var(&opts.EpsAbs, "epsabs", 0, "absolute tolerance (default: config)")
	cmd.Flags().Float64Var(&opts.EpsRel, "epsrel", 0, "relative tolerance (default: config)")
	cmd.Flags().Float64Var(&opts.MaxStep, "max-step", 0, "max initial region width / 15 (default: config)")
	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "integrand parameter k=v (repeatable)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run to this SQLite database")

	return cmd
}

func runIntegrate(opts *IntegrateOptions, name string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)
	cfg := opts.config()
	reg := opts.registry()

	def, ok := reg.Lookup(name)
	if !ok {
		return out.fail(CodeUsage, NewExitError(ExitCommandError, fmt.Sprintf("unknown integrand %q (known: %s)", name, strings.Join(reg.Names(), ", "))))
	}

	params, err := parseParams(opts.Params)
	if err != nil {
		return out.fail(CodeUsage, WrapExitError(ExitCommandError, "invalid --param", err))
	}

	job := ir.Job{
		Name:      name,
		Integrand: name,
		Params:    params,
		A:         def.Domain[0],
		B:         def.Domain[1],
		EpsAbs:    cfg.Defaults.EpsAbs,
		EpsRel:    cfg.Defaults.EpsRel,
		MaxStep:   cfg.Defaults.MaxStep,
	}
	flags := cmd.Flags()
	if flags.Changed("from") {
		job.A = opts.From
	}
	if flags.Changed("to") {
		job.B = opts.To
	}
	if flags.Changed("epsabs") {
		job.EpsAbs = opts.EpsAbs
	}
	if flags.Changed("epsrel") {
		job.EpsRel = opts.EpsRel
	}
	if flags.Changed("max-step") {
		job.MaxStep = opts.MaxStep
	}

	engOpts := []engine.Option{engine.WithLogger(opts.logger(cmd))}
	if opts.IDGenerator != nil {
		engOpts = append(engOpts, engine.WithIDGenerator(opts.IDGenerator))
	}

	dbPath := opts.storePath(opts.Database)
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			return out.fail(CodeStore, WrapExitError(ExitCommandError, "failed to open database", err))
		}
		defer st.Close()
		engOpts = append(engOpts, engine.WithRecorder(st))
	}

	run, err := engine.New(reg, engOpts...).Run(cmd.Context(), job)
	if err != nil {
		if engine.IsRecordFailed(err) {
			return out.fail(CodeStore, WrapExitError(ExitCommandError, "failed to record run", err))
		}
		return out.fail(CodeRun, WrapExitError(ExitCommandError, "integration rejected", err))
	}

	if out.JSON() {
		return out.Success(IntegrateResult{Run: run, Recorded: dbPath != ""})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "integral    %.15g\n", run.Integral)
	fmt.Fprintf(w, "error       %.3g\n", run.Error)
	fmt.Fprintf(w, "interval    [%g, %g]\n", run.Job.A, run.Job.B)
	fmt.Fprintf(w, "regions     %d (initial %d, bisections %d)\n", run.Regions, run.Initial, run.Iterations)
	fmt.Fprintf(w, "evaluations %d\n", run.Evaluations)
	if run.Degenerate {
		fmt.Fprintln(w, "note        tolerance not reached: refinement hit the float64 resolution limit")
	}
	if dbPath != "" {
		fmt.Fprintf(w, "recorded    %s (seq %d)\n", run.ID, run.Seq)
	}
	return nil
}

// parseParams parses k=v pairs into a parameter map.
func parseParams(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%q: want name=value", p)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		if _, dup := params[k]; dup {
			return nil, fmt.Errorf("%q: parameter %s given twice", p, k)
		}
		params[k] = f
	}
	return params, nil
}
