package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/gkquad/internal/store"
)

const defaultHistoryLimit = 20

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database  string
	Integrand string
	JobHash   string
	Limit     int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List runs recorded in the history database, newest first.

The database comes from --db or store.path in the config file.

Examples:
  gkquad history --db runs.db
  gkquad history --db runs.db --integrand gaussian --limit 5
  gkquad history --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "history database (default: config store.path)")
	cmd.Flags().StringVar(&opts.Integrand, "integrand", "", "only runs of this integrand")
	cmd.Flags().StringVar(&opts.JobHash, "job-hash", "", "only runs of this exact job")
	cmd.Flags().IntVar(&opts.Limit, "limit", defaultHistoryLimit, "maximum runs to show (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)

	dbPath := opts.storePath(opts.Database)
	if dbPath == "" {
		return out.fail(CodeUsage, NewExitError(ExitCommandError, "no database: pass --db or set store.path in the config"))
	}
	if opts.Limit < 0 {
		return out.fail(CodeUsage, NewExitError(ExitCommandError, fmt.Sprintf("invalid --limit %d: must be >= 0", opts.Limit)))
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return out.fail(CodeStore, WrapExitError(ExitCommandError, "failed to open database", err))
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), store.RunFilter{
		Integrand: opts.Integrand,
		JobHash:   opts.JobHash,
		Limit:     opts.Limit,
	})
	if err != nil {
		return out.fail(CodeStore, WrapExitError(ExitCommandError, "failed to list runs", err))
	}

	if out.JSON() {
		return out.Success(runs)
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tID\tINTEGRAND\tA\tB\tINTEGRAL\tERROR\tREGIONS\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%g\t%g\t%.15g\t%.3g\t%d\t%s\n",
			r.Seq, r.ID, r.Job.Integrand, r.Job.A, r.Job.B,
			r.Integral, r.Error, r.Regions, r.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}
