package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Preview today's supply status without writing or sending anything",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringSliceP("army", "a", nil, "Only show the named armies")
	statusCmd.Flags().StringP("format", "f", "table", "Output format (table, json, yaml)")
}

// statusRow is one army's preview.
type statusRow struct {
	Army          string `json:"army" yaml:"army"`
	Supplies      string `json:"supplies,omitempty" yaml:"supplies,omitempty"`
	AfterToday    string `json:"after_today,omitempty" yaml:"after_today,omitempty"`
	Consumption   string `json:"daily_consumption,omitempty" yaml:"daily_consumption,omitempty"`
	DaysRemaining int64  `json:"days_remaining" yaml:"days_remaining"`
	RunsOut       string `json:"runs_out,omitempty" yaml:"runs_out,omitempty"`
	Tier          string `json:"tier,omitempty" yaml:"tier,omitempty"`
	Variant       string `json:"variant,omitempty" yaml:"variant,omitempty"`
	Resting       bool   `json:"resting" yaml:"resting"`
	Carried       string `json:"carried,omitempty" yaml:"carried,omitempty"`
	Capacity      string `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	OverCapacity  bool   `json:"over_capacity" yaml:"over_capacity"`
	Error         string `json:"error,omitempty" yaml:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	names, _ := cmd.Flags().GetStringSlice("army")
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}

	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	armies, err := resolveArmies(a.cfg, nil, names)
	if err != nil {
		return err
	}
	t, err := a.newTracker(true, true, nil)
	if err != nil {
		return err
	}

	rows := make([]statusRow, 0, len(armies))
	for _, army := range armies {
		row := statusRow{Army: army.Name}
		r, err := t.Evaluate(cmd.Context(), army)
		if err != nil {
			row.Error = err.Error()
			rows = append(rows, row)
			continue
		}
		cls := r.Classification
		row.Supplies = r.Transition.Previous.String()
		row.AfterToday = r.Transition.New.String()
		row.Consumption = r.DailyConsumption.String()
		row.DaysRemaining = cls.DaysRemaining
		row.RunsOut = cls.ProjectedZeroDate.Format("2006-01-02")
		row.Tier = string(cls.Tier)
		row.Variant = string(cls.Variant)
		row.Resting = r.Transition.Resting
		row.Carried = r.Capacity.Adjusted.String()
		row.Capacity = r.Capacity.Limit.String()
		row.OverCapacity = r.Capacity.OverCapacity
		rows = append(rows, row)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(rows)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ARMY\tSUPPLIES\tAFTER TODAY\tDAYS\tRUNS OUT\tTIER\tCARRIED/CAP\tNOTE\n")
	for _, r := range rows {
		if r.Error != "" {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t-\t-\terror: %s\n", r.Army, r.Error)
			continue
		}
		note := ""
		switch {
		case r.Resting:
			note = "resting"
		case r.OverCapacity:
			note = "over capacity"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s/%s\t%s\n",
			r.Army, r.Supplies, r.AfterToday, r.DaysRemaining, r.RunsOut, r.Tier, r.Carried, r.Capacity, note)
	}
	return w.Flush()
}

