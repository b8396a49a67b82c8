package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gkquad/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario-path>",
		Short: "Run YAML test scenarios",
		Long: `Run conformance scenarios from a YAML file or a directory of *.yaml files.

Each scenario describes one integration job and the expected outcome
(integral within a tolerance, error bound, region counts, degeneracy).
Every scenario runs against a fresh in-memory database with deterministic
run IDs.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (unreadable or invalid scenario files)

Examples:
  gkquad test ./testdata/scenarios
  gkquad test ./testdata/scenarios --filter 'step-*'
  gkquad test ./testdata/scenarios/gaussian.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenarios whose name matches this glob")

	return cmd
}

func runTests(opts *TestOptions, path string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)
	logger := opts.logger(cmd)

	scenarios, err := harness.LoadScenarios(path)
	if err != nil {
		return out.fail(CodeLoad, WrapExitError(ExitCommandError, "failed to load scenarios", err))
	}
	if opts.Filter != "" {
		scenarios, err = harness.Filter(scenarios, opts.Filter)
		if err != nil {
			return out.fail(CodeUsage, WrapExitError(ExitCommandError, "invalid --filter", err))
		}
	}
	out.VerboseLog("Running %d scenarios from %s", len(scenarios), path)

	summary := harness.RunAll(cmd.Context(), scenarios,
		harness.WithRegistry(opts.registry()),
		harness.WithLogger(logger),
	)

	if out.JSON() {
		if err := out.Success(summary); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, r := range summary.Results {
			if r.Pass {
				fmt.Fprintf(w, "✓ %s\n", r.Scenario)
				continue
			}
			fmt.Fprintf(w, "✗ %s\n", r.Scenario)
			for _, msg := range r.Errors {
				fmt.Fprintf(w, "  %s\n", msg)
			}
		}
		fmt.Fprintf(w, "\n%d passed, %d failed\n", summary.Passed, summary.Failed)
	}

	if summary.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", summary.Failed, len(summary.Results)))
	}
	return nil
}
