package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/quartermaster/pkg/model"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent supply runs",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringP("army", "a", "", "Filter by army")
	historyCmd.Flags().StringP("status", "s", "", "Filter by status (ok, error, skipped)")
	historyCmd.Flags().Duration("since", 7*24*time.Hour, "How far back to look")
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs")
	historyCmd.Flags().Bool("json", false, "Print JSON instead of a table")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	army, _ := cmd.Flags().GetString("army")
	status, _ := cmd.Flags().GetString("status")
	since, _ := cmd.Flags().GetDuration("since")
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	filter := model.RunFilter{
		Army:   army,
		Status: model.RunStatus(status),
		Limit:  limit,
	}
	if since > 0 {
		filter.Since = time.Now().Add(-since)
	}

	records, err := store.ListRuns(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No runs found.")
		return nil
	}

	loc, err := cfg.Location()
	if err != nil {
		loc = time.UTC
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RAN AT\tARMY\tSTATUS\tPREVIOUS\tNEW\tCONSUMED\tDAYS\tTIER\tWRITTEN\tSENT\tERROR\n")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			r.RanAt.In(loc).Format("2006-01-02 15:04"),
			r.Army, r.Status,
			r.Previous, r.New, r.Consumed,
			r.DaysRemaining, r.Tier,
			yesNo(r.Persisted), yesNo(r.Notified),
			r.Error,
		)
	}
	return w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
