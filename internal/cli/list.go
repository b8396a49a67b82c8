package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/gkquad/internal/integrand"
)

// IntegrandInfo is the JSON form of a catalogue entry.
type IntegrandInfo struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Params      map[string]float64 `json:"params"`
	Domain      [2]float64         `json:"domain"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalogue integrands",
		Long: `List the integrands that integrate, run and test can refer to by name,
with their parameters (and defaults) and default domain.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
	return cmd
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts)
	defs := opts.registry().Definitions()

	if out.JSON() {
		infos := make([]IntegrandInfo, 0, len(defs))
		for _, d := range defs {
			params := d.Params
			if params == nil {
				params = map[string]float64{}
			}
			infos = append(infos, IntegrandInfo{
				Name:        d.Name,
				Description: d.Description,
				Params:      params,
				Domain:      d.Domain,
			})
		}
		return out.Success(infos)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPARAMS\tDOMAIN\tDESCRIPTION")
	for _, d := range defs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Name, formatParams(d), fmt.Sprintf("[%g, %g]", d.Domain[0], d.Domain[1]), d.Description)
	}
	return tw.Flush()
}

// formatParams renders "k=v,k=v" in name order, or "-" when there are none.
func formatParams(d integrand.Definition) string {
	names := d.ParamNames()
	if len(names) == 0 {
		return "-"
	}
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s=%g", n, d.Params[n])
	}
	return strings.Join(parts, ",")
}
