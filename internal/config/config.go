package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Tiliavir/tick/internal/attendance"
	"github.com/Tiliavir/tick/internal/timecalc"
)

// Config is the root configuration for tick, stored in <home>/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	// Home is the data directory; it is resolved at load time, not stored.
	Home      string          `json:"-"`
	Timezone  string          `json:"timezone"`
	Storage   StorageConfig   `json:"storage"`
	Rules     RulesConfig     `json:"rules"`
	Watch     WatchConfig     `json:"watch"`
	Server    ServerConfig    `json:"server"`
	Log       LogConfig       `json:"log"`
	Directory DirectoryConfig `json:"directory"`
}

// StorageConfig selects where punches, the roster and acknowledgements live.
type StorageConfig struct {
	// Driver is "file" (JSON day files) or "sqlite".
	Driver string `json:"driver"`
	// Path is the SQLite database file. Empty = <home>/tick.db.
	Path string `json:"path"`
}

// RulesConfig holds the anomaly thresholds.
type RulesConfig struct {
	LateAfter        string `json:"late_after"`
	EarlyBefore      string `json:"early_before"`
	ExcessiveMinutes int    `json:"excessive_minutes"`
	SevereMinutes    int    `json:"severe_minutes"`
	MultipleClockIns int    `json:"multiple_clock_ins"`
}

// WatchConfig controls periodic re-evaluation.
type WatchConfig struct {
	Interval string `json:"interval"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr           string   `json:"addr"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// DirectoryConfig holds Microsoft Graph / Entra ID roster sync settings.
type DirectoryConfig struct {
	// TenantID is the Azure AD tenant. Use "organizations" for any work account.
	TenantID string `json:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `json:"client_id"`
}

const (
	// DefaultTenantID accepts any organisational (work or school) account.
	DefaultTenantID = "organizations"
	// DefaultClientID is the well-known public Azure CLI app ID.
	// It supports device code flow without a client secret. Replace with your
	// own registered app ID for production deployments.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"

	DefaultDriver        = "file"
	DefaultAddr          = ":8080"
	DefaultWatchInterval = "5m"
)

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig(home string) Config {
	return Config{
		Home:    home,
		Storage: StorageConfig{Driver: DefaultDriver},
		Rules: RulesConfig{
			LateAfter:        "09:00",
			EarlyBefore:      "17:00",
			ExcessiveMinutes: 600,
			SevereMinutes:    720,
			MultipleClockIns: 2,
		},
		Watch:  WatchConfig{Interval: DefaultWatchInterval},
		Server: ServerConfig{Addr: DefaultAddr, AllowedOrigins: []string{"http://localhost:3000"}},
		Log:    LogConfig{Level: "info", Format: "text"},
		Directory: DirectoryConfig{
			TenantID: DefaultTenantID,
			ClientID: DefaultClientID,
		},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// tick configuration – <home>/config.json
//
// All settings are optional; the defaults below describe a regular office day.
// Any value can also be set through a .env file or TICK_* environment variables.
{
  // IANA timezone punches are recorded in, e.g. "Europe/Berlin".
  // Leave empty to use the machine's local time.
  "timezone": "",

  // ── Storage ──────────────────────────────────────────────────────────────
  "storage": {
    // "file"   – one JSON file per day under the data directory (default)
    // "sqlite" – a single SQLite database
    "driver": "file",
    // SQLite database path; empty = <home>/tick.db
    "path": ""
  },

  // ── Anomaly rules ────────────────────────────────────────────────────────
  "rules": {
    // Clock-ins strictly after this time of day are late arrivals.
    "late_after": "09:00",
    // Clock-outs strictly before this time of day are early departures.
    "early_before": "17:00",
    // Worked intervals longer than this are flagged medium, longer than
    // severe_minutes are flagged high.
    "excessive_minutes": 600,
    "severe_minutes": 720,
    // Number of clock-ins on one day that raises a finding.
    "multiple_clock_ins": 2
  },

  // How often 'tick watch' and 'tick serve' re-evaluate today's punches.
  "watch": {
    "interval": "5m"
  },

  // ── HTTP API ('tick serve') ──────────────────────────────────────────────
  "server": {
    "addr": ":8080",
    "allowed_origins": ["http://localhost:3000"]
  },

  "log": {
    // debug, info, warn, error
    "level": "info",
    // text or json
    "format": "text"
  },

  // ── Microsoft Graph roster sync ('tick roster sync') ─────────────────────
  "directory": {
    // Azure AD tenant ID or "organizations".
    "tenant_id": "organizations",
    // Azure application (client) ID used for the OAuth2 device code flow.
    "client_id": "04b07795-8542-4c4a-95af-30b2c573d5ab"
  }
}
`

// HomeDir returns the data directory: $TICK_HOME, or ~/.tick.
func HomeDir() (string, error) {
	if h := os.Getenv("TICK_HOME"); h != "" {
		return h, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".tick"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load resolves the data directory and loads its configuration.
func Load() (Config, error) {
	home, err := HomeDir()
	if err != nil {
		return defaultConfig(""), err
	}
	return LoadFrom(home)
}

// LoadFrom reads <home>/config.json, creating it with annotated defaults on
// first run. Values from .env files (working directory, then <home>) and
// TICK_* environment variables override the file.
func LoadFrom(home string) (Config, error) {
	for _, envFile := range []string{".env", filepath.Join(home, ".env")} {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return defaultConfig(home), fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := defaultConfig(home)
	path := filepath.Join(home, "config.json")

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	case err != nil:
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
			return defaultConfig(home), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
		cfg.Home = home
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays TICK_* environment variables.
func (c *Config) applyEnv() error {
	setString := map[string]*string{
		"TICK_TIMEZONE":       &c.Timezone,
		"TICK_STORAGE_DRIVER": &c.Storage.Driver,
		"TICK_STORAGE_PATH":   &c.Storage.Path,
		"TICK_LATE_AFTER":     &c.Rules.LateAfter,
		"TICK_EARLY_BEFORE":   &c.Rules.EarlyBefore,
		"TICK_WATCH_INTERVAL": &c.Watch.Interval,
		"TICK_ADDR":           &c.Server.Addr,
		"TICK_LOG_LEVEL":      &c.Log.Level,
		"TICK_LOG_FORMAT":     &c.Log.Format,
		"TICK_TENANT_ID":      &c.Directory.TenantID,
		"TICK_CLIENT_ID":      &c.Directory.ClientID,
	}
	for key, dst := range setString {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setInt := map[string]*int{
		"TICK_EXCESSIVE_MINUTES": &c.Rules.ExcessiveMinutes,
		"TICK_SEVERE_MINUTES":    &c.Rules.SevereMinutes,
	}
	for key, dst := range setInt {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
	}

	if v := os.Getenv("TICK_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
	return nil
}

// fillDefaults fills zero-value fields with built-in defaults so callers always
// get a usable Config even if the user only partially fills in the file.
func (c *Config) fillDefaults() {
	d := defaultConfig(c.Home)
	if c.Storage.Driver == "" {
		c.Storage.Driver = d.Storage.Driver
	}
	if c.Storage.Path == "" && c.Home != "" {
		c.Storage.Path = filepath.Join(c.Home, "tick.db")
	}
	if c.Rules.LateAfter == "" {
		c.Rules.LateAfter = d.Rules.LateAfter
	}
	if c.Rules.EarlyBefore == "" {
		c.Rules.EarlyBefore = d.Rules.EarlyBefore
	}
	if c.Rules.ExcessiveMinutes == 0 {
		c.Rules.ExcessiveMinutes = d.Rules.ExcessiveMinutes
	}
	if c.Rules.SevereMinutes == 0 {
		c.Rules.SevereMinutes = d.Rules.SevereMinutes
	}
	if c.Rules.MultipleClockIns == 0 {
		c.Rules.MultipleClockIns = d.Rules.MultipleClockIns
	}
	if c.Watch.Interval == "" {
		c.Watch.Interval = d.Watch.Interval
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Directory.TenantID == "" {
		c.Directory.TenantID = DefaultTenantID
	}
	if c.Directory.ClientID == "" {
		c.Directory.ClientID = DefaultClientID
	}
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "file", "sqlite":
	default:
		return fmt.Errorf("storage.driver must be \"file\" or \"sqlite\", got %q", c.Storage.Driver)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.ClassifierRules(); err != nil {
		return err
	}
	if _, err := c.WatchInterval(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be \"text\" or \"json\", got %q", c.Log.Format)
	}
	return nil
}

// Location returns the configured timezone, or time.Local when unset.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ClassifierRules converts the rules section into attendance.Rules.
func (c Config) ClassifierRules() (attendance.Rules, error) {
	late, err := timecalc.ParseClock(c.Rules.LateAfter)
	if err != nil {
		return attendance.Rules{}, fmt.Errorf("rules.late_after: %w", err)
	}
	early, err := timecalc.ParseClock(c.Rules.EarlyBefore)
	if err != nil {
		return attendance.Rules{}, fmt.Errorf("rules.early_before: %w", err)
	}
	r := attendance.Rules{
		ExcessiveMinutes: c.Rules.ExcessiveMinutes,
		SevereMinutes:    c.Rules.SevereMinutes,
		LateAfter:        late,
		EarlyBefore:      early,
		MultipleClockIns: c.Rules.MultipleClockIns,
	}
	if err := r.Validate(); err != nil {
		return attendance.Rules{}, fmt.Errorf("rules: %w", err)
	}
	return r, nil
}

// Classifier builds the attendance classifier for this configuration.
func (c Config) Classifier() (attendance.Classifier, error) {
	rules, err := c.ClassifierRules()
	if err != nil {
		return attendance.Classifier{}, err
	}
	loc, err := c.Location()
	if err != nil {
		return attendance.Classifier{}, err
	}
	return attendance.Classifier{Rules: rules, Location: loc}, nil
}

// WatchInterval parses watch.interval.
func (c Config) WatchInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watch.Interval)
	if err != nil {
		return 0, fmt.Errorf("watch.interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("watch.interval must be positive, got %v", d)
	}
	return d, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
