package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/quartermaster/pkg/alerts"
	"github.com/ogulcanaydogan/quartermaster/pkg/model"
	"github.com/ogulcanaydogan/quartermaster/pkg/tracker"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daily supply cycle",
	Long: `Apply one day of consumption to every configured army (or the ones named
with --army), write the new supply levels back and post status reports.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("dry-run", false, "Evaluate and print reports without writing or sending")
	runCmd.Flags().StringSliceP("army", "a", nil, "Only process the named armies")
	runCmd.Flags().Bool("force", false, "Process armies even if they already ran today")
}

func runRun(cmd *cobra.Command, _ []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	names, _ := cmd.Flags().GetStringSlice("army")
	force, _ := cmd.Flags().GetBool("force")

	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	armies, err := resolveArmies(a.cfg, a.registry, names)
	if err != nil {
		return err
	}
	t, err := a.newTracker(dryRun, force, nil)
	if err != nil {
		return err
	}

	outcomes, summary, err := t.Run(cmd.Context(), armies)
	if err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}

	out := cmd.OutOrStdout()
	if dryRun {
		for _, o := range outcomes {
			printMessage(out, o.Message)
		}
	}
	printOutcomes(out, outcomes, summary)
	return nil
}

func printOutcomes(out io.Writer, outcomes []tracker.Outcome, summary *model.RunSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ARMY\tSTATUS\tPREVIOUS\tNEW\tDAYS\tTIER\tNOTE\n")
	for _, o := range outcomes {
		r := o.Record
		note := r.Error
		if r.Resting {
			note = "resting"
		}
		if r.OverCapacity && note == "" {
			note = "over capacity"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.Army, r.Status, r.Previous, r.New, r.DaysRemaining, r.Tier, note)
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d armies: %d ok, %d failed, %d skipped (%s)\n",
		summary.Total, summary.OK, summary.Failed, summary.Skipped, summary.Duration)
}

// printMessage renders a report as plain text.
func printMessage(out io.Writer, msg alerts.Message) {
	fmt.Fprintf(out, "=== %s ===\n", msg.Title)
	if msg.Preamble != "" {
		fmt.Fprintln(out, msg.Preamble)
	}
	if msg.Description != "" {
		fmt.Fprintln(out, msg.Description)
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, f := range msg.Fields {
		fmt.Fprintf(w, "  %s:\t%s\n", f.Name, strings.ReplaceAll(f.Value, "\n", " "))
	}
	w.Flush()
	if msg.URL != "" {
		fmt.Fprintf(out, "  %s\n", msg.URL)
	}
	fmt.Fprintln(out)
}

