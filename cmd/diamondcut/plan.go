package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/diamondcut-go/internal/abicodec"
	"github.com/rmacdonaldsmith/diamondcut-go/pkg/diamondcut"
	"github.com/rmacdonaldsmith/diamondcut-go/pkg/routingtable"
)

func newPlanCommand() *cobra.Command {
	var (
		opts     planOptions
		jsonMode bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the diamond cut without encoding it",
		Long: `Compute the same cuts as build and print them with a summary of the
selectors added, replaced and removed. With --json the cuts are printed in
the positional tuple form used by format.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := opts.preparePlan(cmd.Context())
			if err != nil {
				return err
			}
			if jsonMode {
				out, err := abicodec.FormatJSON(plan)
				if err != nil {
					return err
				}
				return writeOutput(cmd, "", append(out, '\n'))
			}
			printPlan(cmd.OutOrStdout(), plan)
			return nil
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Print the cuts as JSON tuples")

	return cmd
}

func printPlan(w io.Writer, plan *diamondcut.Plan) {
	if plan.IsEmpty() {
		fmt.Fprintln(w, "No facet cuts to apply")
	}
	for i, cut := range plan.Cuts {
		fmt.Fprintf(w, "Cut %d: %-7s %s\n", i, cut.Action, cut.FacetAddress().Hex())
		fmt.Fprintf(w, "   Selectors: %s\n", joinSelectors(cut.Selectors))
	}

	summary := plan.Summary()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "   Added:    %d %s\n", len(summary.Added), joinSelectors(summary.Added))
	fmt.Fprintf(w, "   Replaced: %d %s\n", len(summary.Replaced), joinSelectors(summary.Replaced))
	fmt.Fprintf(w, "   Removed:  %d %s\n", len(summary.Removed), joinSelectors(summary.Removed))
	fmt.Fprintf(w, "   Init:     %s (%d bytes of calldata)\n", plan.InitAddress.Hex(), len(plan.InitCalldata))
}

func joinSelectors(selectors []routingtable.Selector) string {
	parts := make([]string, len(selectors))
	for i, sel := range selectors {
		parts[i] = sel.String()
	}
	return strings.Join(parts, ",")
}
