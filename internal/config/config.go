// Package config provides YAML-based configuration loading for Linkshelf.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level Linkshelf configuration, loaded from linkshelf.yaml.
type Config struct {
	Token      string   `yaml:"token"`
	MainAdmins []int64  `yaml:"main_admins"`
	DB         DBConfig `yaml:"db"`

	TitlePageSize   int `yaml:"title_page_size"`
	EpisodePageSize int `yaml:"episode_page_size"`

	// AutoDeleteSeconds is the delay before admin-surface messages are
	// deleted from the chat. Unset selects the default of 300; an
	// explicit zero or negative value disables auto-deletion.
	AutoDeleteSeconds *int `yaml:"auto_delete_seconds"`

	// SessionTimeoutSeconds expires an idle admin input session. Zero
	// (the default) disables expiry; sessions end only on /done or /cancel.
	SessionTimeoutSeconds int `yaml:"session_timeout_seconds"`

	// UTCOffsetHours shifts report dates into the audience's local time.
	// Unset defaults to +7; an explicit zero is honored as UTC.
	UTCOffsetHours *int `yaml:"utc_offset_hours"`

	DonateImage   string `yaml:"donate_image"`
	DashboardPort int    `yaml:"dashboard_port"`

	// LinkSweepCron is a 5-field cron expression for the nightly dead-link
	// sweep. Empty disables the sweep.
	LinkSweepCron string `yaml:"link_sweep_cron"`
}

// DBConfig holds connection settings for the catalog database.
type DBConfig struct {
	Driver   string `yaml:"driver"` // "sqlite" (default) or "mysql"
	Path     string `yaml:"path"`   // sqlite file path
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// Load reads a YAML config file from path and returns a validated Config.
// A .env file next to the process, if present, is loaded first so that
// environment overrides work the same in development and deployment.
func Load(path string) (*Config, error) {
	godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config. Environment
// variables BOT_TOKEN, MAIN_ADMIN_IDS and DB_PATH override file values.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays environment variables onto file values.
func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("BOT_TOKEN")); v != "" {
		c.Token = v
	}
	if v := strings.TrimSpace(os.Getenv("DB_PATH")); v != "" {
		c.DB.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("MAIN_ADMIN_IDS")); v != "" {
		c.MainAdmins = parseIDList(v)
	}
}

// parseIDList splits a comma-separated id list, dropping malformed entries.
func parseIDList(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.DB.Driver == "" {
		c.DB.Driver = "sqlite"
	}
	if c.DB.Driver == "sqlite" && c.DB.Path == "" {
		c.DB.Path = "linkshelf.db"
	}
	if c.DB.Driver == "mysql" {
		if c.DB.Host == "" {
			c.DB.Host = "127.0.0.1"
		}
		if c.DB.Port == 0 {
			c.DB.Port = 3306
		}
		if c.DB.Database == "" {
			c.DB.Database = "linkshelf"
		}
	}
	if c.TitlePageSize == 0 {
		c.TitlePageSize = 20
	}
	if c.EpisodePageSize == 0 {
		c.EpisodePageSize = 30
	}
	if c.DonateImage == "" {
		c.DonateImage = "donate_qr.png"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Token == "" {
		errs = append(errs, "token is required (file or BOT_TOKEN)")
	}
	if len(c.MainAdmins) == 0 {
		errs = append(errs, "at least one main admin is required")
	}
	switch c.DB.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("db.driver must be sqlite or mysql, got %q", c.DB.Driver))
	}
	if c.TitlePageSize < 0 || c.EpisodePageSize < 0 {
		errs = append(errs, "page sizes must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// AutoDeleteDelay returns the admin-surface message deletion delay.
// Zero means deletion is disabled.
func (c *Config) AutoDeleteDelay() time.Duration {
	if c.AutoDeleteSeconds == nil {
		return 300 * time.Second
	}
	if *c.AutoDeleteSeconds <= 0 {
		return 0
	}
	return time.Duration(*c.AutoDeleteSeconds) * time.Second
}

// UTCOffset returns the display timezone offset for date reports.
func (c *Config) UTCOffset() time.Duration {
	if c.UTCOffsetHours == nil {
		return 7 * time.Hour
	}
	return time.Duration(*c.UTCOffsetHours) * time.Hour
}

// IsMainAdmin reports whether id is one of the configured main admins.
func (c *Config) IsMainAdmin(id int64) bool {
	for _, a := range c.MainAdmins {
		if a == id {
			return true
		}
	}
	return false
}
