package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/quartermaster/pkg/alerts"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and army list",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadValidConfig()
		if err != nil {
			return err
		}

		// Building every notifier catches kinds the registry cannot serve.
		registry := alerts.NewDefaultRegistry(nil, alerts.Settings{})
		if _, err := resolveArmies(cfg, registry, nil); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration OK: %d armies\n", len(cfg.Armies))
		for _, a := range cfg.Armies {
			fmt.Fprintf(out, "  %s (tab %q, %s)\n", a.Name, a.Tab(), a.WebhookKind)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
