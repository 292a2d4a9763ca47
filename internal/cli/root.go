package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/quartermaster/internal/config"
	"github.com/ogulcanaydogan/quartermaster/internal/logging"
	"github.com/ogulcanaydogan/quartermaster/internal/server"
	"github.com/ogulcanaydogan/quartermaster/pkg/alerts"
	"github.com/ogulcanaydogan/quartermaster/pkg/sheets"
	"github.com/ogulcanaydogan/quartermaster/pkg/storage"
	"github.com/ogulcanaydogan/quartermaster/pkg/supply"
	"github.com/ogulcanaydogan/quartermaster/pkg/tracker"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "qm",
	Short: "Quartermaster - daily supply tracking for armies kept in spreadsheets",
	Long: `Quartermaster reads each army's supplies from its spreadsheet, applies one
day of consumption, writes the new level back and posts a status report to
the army's chat webhook.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.qm/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// loadValidConfig loads the configuration and rejects it when invalid.
func loadValidConfig() (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(cfg.Logging, os.Stderr)
}

// initStorage creates the local database from config.
func initStorage(cfg *config.Config) (*storage.SQLite, error) {
	return storage.NewSQLite(cfg.Storage.Path)
}

// initSheets returns the configured cell backend.
func initSheets(cfg *config.Config, local *storage.SQLite, logger *slog.Logger) (sheets.Store, error) {
	switch cfg.Sheets.Backend {
	case "local":
		return local, nil
	case "google":
		timeout, err := config.Duration(cfg.Sheets.Timeout)
		if err != nil {
			return nil, fmt.Errorf("sheets.timeout: %w", err)
		}
		client := alerts.NewHTTPClient(alerts.ClientOptions{
			Timeout:  timeout,
			RetryMax: cfg.Sheets.RetryMax,
			Logger:   logger.With("component", "sheets"),
		})
		return sheets.NewGoogleClient(sheets.GoogleOptions{
			BaseURL:     cfg.Sheets.BaseURL,
			APIKey:      cfg.Sheets.APIKey,
			AccessToken: cfg.Sheets.AccessToken,
			Client:      client,
		}), nil
	}
	return nil, fmt.Errorf("%w: unknown sheets backend %q", config.ErrConfiguration, cfg.Sheets.Backend)
}

// initRegistry creates the notifier registry from config.
func initRegistry(cfg *config.Config, logger *slog.Logger) (*alerts.Registry, error) {
	timeout, err := config.Duration(cfg.Alerts.Timeout)
	if err != nil {
		return nil, fmt.Errorf("alerts.timeout: %w", err)
	}
	client := alerts.NewHTTPClient(alerts.ClientOptions{
		Timeout:  timeout,
		RetryMax: cfg.Alerts.RetryMax,
		Logger:   logger.With("component", "alerts"),
	})
	return alerts.NewDefaultRegistry(client, alerts.Settings{
		Username:      cfg.Alerts.Username,
		SlackChannel:  cfg.Alerts.SlackChannel,
		WebhookSecret: cfg.Alerts.WebhookSecret,
	}), nil
}

// resolveArmies turns configured armies into tracker armies. An empty names
// list selects every army.
func resolveArmies(cfg *config.Config, registry *alerts.Registry, names []string) ([]tracker.Army, error) {
	selected := cfg.Armies
	if len(names) > 0 {
		selected = make([]config.Army, 0, len(names))
		for _, name := range names {
			a, ok := cfg.Army(strings.TrimSpace(name))
			if !ok {
				return nil, fmt.Errorf("%w: %q", server.ErrUnknownArmy, name)
			}
			selected = append(selected, a)
		}
	}

	armies := make([]tracker.Army, 0, len(selected))
	for _, a := range selected {
		var notifier alerts.Notifier
		if registry != nil {
			n, err := registry.New(a.WebhookKind, a.WebhookURL)
			if err != nil {
				return nil, fmt.Errorf("army %q: %w", a.Name, err)
			}
			notifier = n
		}

		metrics := make(map[supply.MetricKey]string, len(a.Metrics))
		for key, cell := range a.Metrics {
			metrics[supply.MetricKey(key)] = cell
		}

		armies = append(armies, tracker.Army{
			Name:    a.Name,
			SheetID: a.SheetID,
			Tab:     a.Tab(),
			Link:    a.Link(),
			Cells: tracker.Cells{
				Supplies:    a.Cells.Supplies,
				Consumption: a.Cells.Consumption,
				Carried:     a.Cells.Carried,
				Capacity:    a.Cells.Capacity,
				Resting:     a.Cells.Resting,
			},
			Metrics:  metrics,
			Notifier: notifier,
		})
	}
	return armies, nil
}

// app bundles everything a command needs to run cycles.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *storage.SQLite
	sheets   sheets.Store
	registry *alerts.Registry
}

// initApp wires storage, the cell backend and notifiers from a valid config.
func initApp() (*app, error) {
	cfg, err := loadValidConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	store, err := initStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	cells, err := initSheets(cfg, store, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	registry, err := initRegistry(cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, store: store, sheets: cells, registry: registry}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// newTracker builds a supply tracker; logger overrides the app logger when set.
func (a *app) newTracker(dryRun, force bool, logger *slog.Logger) (*tracker.SupplyTracker, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}
	delay, err := config.Duration(a.cfg.Schedule.Delay)
	if err != nil {
		return nil, fmt.Errorf("schedule.delay: %w", err)
	}
	if logger == nil {
		logger = a.logger
	}
	return tracker.NewSupplyTracker(a.sheets, a.store, tracker.Options{
		Delay:      delay,
		DryRun:     dryRun,
		OncePerDay: a.cfg.Schedule.OncePerDay && !force,
		Location:   loc,
	}, logger), nil
}
