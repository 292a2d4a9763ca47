package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ogulcanaydogan/quartermaster/pkg/supply"
)

// ErrConfiguration marks problems in the configuration or the army list.
var ErrConfiguration = errors.New("invalid configuration")

// Config holds all Quartermaster configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Sheets   SheetsConfig   `mapstructure:"sheets"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Server   ServerConfig   `mapstructure:"server"`
	Armies   []Army         `mapstructure:"armies"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Redact bool   `mapstructure:"redact"`
}

// StorageConfig defines database settings.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// SheetsConfig selects and configures the cell backend.
type SheetsConfig struct {
	Backend     string `mapstructure:"backend"` // google or local
	DefaultTab  string `mapstructure:"default_tab"`
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	AccessToken string `mapstructure:"access_token"`
	Timeout     string `mapstructure:"timeout"`
	RetryMax    int    `mapstructure:"retry_max"`
}

// AlertsConfig defines notifier settings shared by all armies.
type AlertsConfig struct {
	DefaultKind   string `mapstructure:"default_kind"`
	Username      string `mapstructure:"username"`
	SlackChannel  string `mapstructure:"slack_channel"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	Timeout       string `mapstructure:"timeout"`
	RetryMax      int    `mapstructure:"retry_max"`
}

// ScheduleConfig controls how a daily run behaves.
type ScheduleConfig struct {
	Timezone   string `mapstructure:"timezone"`
	Delay      string `mapstructure:"delay"`
	OncePerDay bool   `mapstructure:"once_per_day"`
}

// ServerConfig defines the HTTP trigger server.
type ServerConfig struct {
	Listen       string `mapstructure:"listen"`
	Token        string `mapstructure:"token"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// Army is one tracked army as written in the config file.
type Army struct {
	Name        string            `mapstructure:"name"`
	SheetID     string            `mapstructure:"sheet_id"`
	SheetTab    string            `mapstructure:"sheet_tab"`
	SheetURL    string            `mapstructure:"sheet_url"`
	WebhookURL  string            `mapstructure:"webhook_url"`
	WebhookKind string            `mapstructure:"webhook_kind"`
	Cells       Cells             `mapstructure:"cells"`
	Metrics     map[string]string `mapstructure:"metrics"`
}

// Cells holds the A1 addresses of an army's required inputs.
type Cells struct {
	Supplies    string `mapstructure:"supplies"`
	Consumption string `mapstructure:"consumption"`
	Carried     string `mapstructure:"carried"`
	Capacity    string `mapstructure:"capacity"`
	Resting     string `mapstructure:"resting"`
}

// Tab returns the army's sheet tab.
func (a Army) Tab() string { return a.SheetTab }

// Link returns the URL of the army's sheet.
func (a Army) Link() string {
	if a.SheetURL != "" {
		return a.SheetURL
	}
	if a.SheetID == "" {
		return ""
	}
	return "https://docs.google.com/spreadsheets/d/" + a.SheetID
}

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".qm"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	home, _ := os.UserHomeDir()
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.redact", true)
	v.SetDefault("storage.path", filepath.Join(home, ".qm", "quartermaster.db"))
	v.SetDefault("sheets.backend", "google")
	v.SetDefault("sheets.default_tab", "Supplies")
	v.SetDefault("sheets.timeout", "15s")
	v.SetDefault("sheets.retry_max", 3)
	v.SetDefault("alerts.default_kind", "discord")
	v.SetDefault("alerts.username", "Quartermaster")
	v.SetDefault("alerts.timeout", "10s")
	v.SetDefault("alerts.retry_max", 3)
	v.SetDefault("schedule.timezone", "America/New_York")
	v.SetDefault("schedule.delay", "2s")
	v.SetDefault("schedule.once_per_day", true)
	v.SetDefault("server.listen", "127.0.0.1:8080")
	v.SetDefault("server.token", "")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "5m")

	// Environment variables
	v.SetEnvPrefix("QM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.resolveArmies()

	return &cfg, nil
}

// resolveArmies fills per-army defaults once so nothing downstream guesses.
func (c *Config) resolveArmies() {
	for i := range c.Armies {
		a := &c.Armies[i]
		a.Name = strings.TrimSpace(a.Name)
		if a.SheetTab == "" {
			a.SheetTab = c.Sheets.DefaultTab
		}
		if a.WebhookKind == "" {
			a.WebhookKind = c.Alerts.DefaultKind
		}
		a.WebhookKind = strings.ToLower(a.WebhookKind)
	}
}

// Location returns the reference timezone for calendar days.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: schedule.timezone: %w", ErrConfiguration, err)
	}
	return loc, nil
}

// Army returns the army with the given name.
func (c *Config) Army(name string) (Army, bool) {
	for _, a := range c.Armies {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return Army{}, false
}

// Duration parses a duration setting, treating an empty value as zero.
func Duration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

var (
	cellPattern  = regexp.MustCompile(`^\$?[A-Za-z]{1,3}\$?[1-9][0-9]*$`)
	webhookKinds = map[string]bool{"discord": true, "slack": true, "webhook": true}
)

// Validate reports every problem at once, wrapped in ErrConfiguration.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		add("logging.level: unknown level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		add("logging.format: must be json or text, got %q", c.Logging.Format)
	}
	switch c.Sheets.Backend {
	case "google", "local":
	default:
		add("sheets.backend: must be google or local, got %q", c.Sheets.Backend)
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		add("schedule.timezone: %v", err)
	}
	for key, val := range map[string]string{
		"sheets.timeout":       c.Sheets.Timeout,
		"alerts.timeout":       c.Alerts.Timeout,
		"schedule.delay":       c.Schedule.Delay,
		"server.read_timeout":  c.Server.ReadTimeout,
		"server.write_timeout": c.Server.WriteTimeout,
	} {
		if d, err := Duration(val); err != nil || d < 0 {
			add("%s: invalid duration %q", key, val)
		}
	}

	if len(c.Armies) == 0 {
		add("armies: no armies configured")
	}
	seen := make(map[string]bool, len(c.Armies))
	for i, a := range c.Armies {
		errs = append(errs, a.validate(i)...)
		key := strings.ToLower(a.Name)
		if a.Name != "" && seen[key] {
			add("armies[%d]: duplicate name %q", i, a.Name)
		}
		seen[key] = true
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrConfiguration, errors.Join(errs...))
}

func (a Army) validate(i int) []error {
	var errs []error
	label := fmt.Sprintf("armies[%d]", i)
	if a.Name != "" {
		label = fmt.Sprintf("army %q", a.Name)
	}
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(label+": "+format, args...))
	}

	if a.Name == "" {
		add("name is required")
	}
	if a.SheetID == "" {
		add("sheet_id is required")
	}
	if a.SheetTab == "" {
		add("sheet_tab is required")
	}
	if a.WebhookURL == "" {
		add("webhook_url is required")
	}
	if !webhookKinds[a.WebhookKind] {
		add("unknown webhook_kind %q", a.WebhookKind)
	}

	for field, cell := range map[string]string{
		"supplies":    a.Cells.Supplies,
		"consumption": a.Cells.Consumption,
		"carried":     a.Cells.Carried,
		"capacity":    a.Cells.Capacity,
	} {
		switch {
		case cell == "":
			add("cells.%s is required", field)
		case !cellPattern.MatchString(cell):
			add("cells.%s: invalid cell address %q", field, cell)
		}
	}
	if a.Cells.Resting != "" && !cellPattern.MatchString(a.Cells.Resting) {
		add("cells.resting: invalid cell address %q", a.Cells.Resting)
	}

	for key, cell := range a.Metrics {
		if !supply.MetricKey(key).Valid() {
			add("metrics: unknown metric %q", key)
			continue
		}
		if !cellPattern.MatchString(cell) {
			add("metrics.%s: invalid cell address %q", key, cell)
		}
	}
	return errs
}
