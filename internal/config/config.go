package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the summary API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// PortalURL is the government portal index page listing the members
	// of the Conseil des ministres and their agenda exports.
	PortalURL string `yaml:"portal_url" json:"portal_url"`

	// DataDir is the root directory for downloaded exports and generated
	// artifacts. Layout underneath:
	//   active/ inactive/           downloaded exports per collection
	//   active_ical/ inactive_ical/ generated calendars per collection
	//   daily_summaries/            per-day JSON and markdown
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// Timezone is the IANA timezone timed events are localized into.
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a cron-style schedule string (e.g. "0 6 * * *") for
	// the periodic download-and-convert run.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// SummaryDays is the trailing number of days to generate daily
	// summaries for, today included.
	SummaryDays int `yaml:"summary_days" json:"summary_days"`

	// EventDurationMinutes is the fixed duration assigned to timed
	// calendar events (the exports carry no end times).
	EventDurationMinutes int `yaml:"event_duration_minutes" json:"event_duration_minutes"`

	// Listen is the HTTP listen address for the summary API. Empty
	// disables the server.
	Listen string `yaml:"listen" json:"listen"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		PortalURL:            "https://www.quebec.ca/gouvernement/gouvernement-ouvert/transparence-performance/agenda-membres-conseil-ministres",
		DataDir:              "./minister_agendas",
		Timezone:             "America/Montreal",
		RefreshCron:          "0 6 * * *",
		SummaryDays:          7,
		EventDurationMinutes: 60,
		Listen:               "127.0.0.1:8080",
		BasicAuth:            nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.PortalURL == "" {
		c.PortalURL = def.PortalURL
	}
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if c.SummaryDays <= 0 {
		c.SummaryDays = def.SummaryDays
	}
	if c.EventDurationMinutes <= 0 {
		c.EventDurationMinutes = def.EventDurationMinutes
	}
}

// Directory helpers for the layout under DataDir.

func (c *Config) SourceDir(active bool) string {
	if active {
		return filepath.Join(c.DataDir, "active")
	}
	return filepath.Join(c.DataDir, "inactive")
}

func (c *Config) CalendarDir(active bool) string {
	if active {
		return filepath.Join(c.DataDir, "active_ical")
	}
	return filepath.Join(c.DataDir, "inactive_ical")
}

func (c *Config) SummaryDir() string {
	return filepath.Join(c.DataDir, "daily_summaries")
}

func (c *Config) CacheDir() string {
	return filepath.Join(c.DataDir, "http-cache")
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there (0600,
//     parent directory created) and returned.
//   - If the file exists, it is unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path, atomically via
// a temp file + rename, with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".agendacal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method that delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
