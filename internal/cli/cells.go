package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/quartermaster/internal/config"
	"github.com/ogulcanaydogan/quartermaster/pkg/sheets"
)

var cellsCmd = &cobra.Command{
	Use:   "cells",
	Short: "Read and write cells in the local cell store",
	Long: `Manage the local cell store used when sheets.backend is "local".
Cells are addressed by sheet ID, tab and A1 address; --army fills in the
sheet and tab of a configured army.`,
}

var cellsGetCmd = &cobra.Command{
	Use:   "get [CELL...]",
	Short: "Print cell values (all cells of the tab when none are given)",
	RunE:  runCellsGet,
}

var cellsSetCmd = &cobra.Command{
	Use:   "set CELL VALUE",
	Short: "Store a value in a cell (an empty value clears it)",
	Args:  cobra.ExactArgs(2),
	RunE:  runCellsSet,
}

func init() {
	rootCmd.AddCommand(cellsCmd)
	cellsCmd.AddCommand(cellsGetCmd)
	cellsCmd.AddCommand(cellsSetCmd)

	cellsCmd.PersistentFlags().String("sheet", "", "Sheet ID")
	cellsCmd.PersistentFlags().String("tab", "", "Sheet tab (default: sheets.default_tab)")
	cellsCmd.PersistentFlags().StringP("army", "a", "", "Use the sheet and tab of a configured army")
}

// cellTarget resolves the sheet and tab the cells command works on.
func cellTarget(cmd *cobra.Command, cfg *config.Config) (sheetID, tab string, err error) {
	sheetID, _ = cmd.Flags().GetString("sheet")
	tab, _ = cmd.Flags().GetString("tab")
	armyName, _ := cmd.Flags().GetString("army")

	if armyName != "" {
		a, ok := cfg.Army(armyName)
		if !ok {
			return "", "", fmt.Errorf("army %q not found in config", armyName)
		}
		if sheetID == "" {
			sheetID = a.SheetID
		}
		if tab == "" {
			tab = a.Tab()
		}
	}
	if tab == "" {
		tab = cfg.Sheets.DefaultTab
	}
	if sheetID == "" {
		return "", "", fmt.Errorf("--sheet or --army is required")
	}
	return sheetID, tab, nil
}

func runCellsGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sheetID, tab, err := cellTarget(cmd, cfg)
	if err != nil {
		return err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	if len(args) == 0 {
		cells, err := store.ListCells(cmd.Context(), sheetID, tab)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "CELL\tVALUE\tKIND\tUPDATED\n")
		for _, c := range cells {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Address, c.Value, c.Kind, c.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	}

	values, err := store.GetCellValues(cmd.Context(), sheetID, tab, args)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "CELL\tVALUE\n")
	for _, arg := range args {
		cell := sheets.NormalizeCell(arg)
		v, ok := values[cell]
		if !ok {
			fmt.Fprintf(w, "%s\t(empty)\n", cell)
			continue
		}
		fmt.Fprintf(w, "%s\t%v\n", cell, v)
	}
	return nil
}

func runCellsSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sheetID, tab, err := cellTarget(cmd, cfg)
	if err != nil {
		return err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	cell, raw := args[0], args[1]
	var value any = raw
	switch raw {
	case "true", "false":
		value = raw == "true"
	}

	if err := store.PutCell(cmd.Context(), sheetID, tab, cell, value); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %q\n", sheets.A1Range(tab, sheets.NormalizeCell(cell)), raw)
	return nil
}
