// Package config loads dexcel settings from a YAML file.
//
// The file is chosen by the --config flag or the DEXCEL_CONFIG
// environment variable. Without either, built-in defaults are used.
// Command line flags are applied on top of the file by the caller.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/dexcel/internal/types"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config path.
const EnvConfigPath = "DEXCEL_CONFIG"

// Backend selects the server API shape.
type Backend string

const (
	// BackendPrimary is the /api/data style backend.
	BackendPrimary Backend = "primary"
	// BackendLegacy is the /api/table style backend.
	BackendLegacy Backend = "legacy"
)

type Config struct {
	// ServerURL is the base URL of the backend, without the /api suffix.
	ServerURL string `yaml:"server_url"`

	Backend Backend `yaml:"backend"`

	// LogFile receives JSON log records. The TUI owns the terminal.
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`

	// ExportDir is where table exports are written.
	ExportDir string `yaml:"export_dir"`

	// Templates are used when the backend cannot serve its own.
	Templates TemplatesConfig `yaml:"templates"`
}

type TemplatesConfig struct {
	Converted    string `yaml:"convertita"`
	NotConverted string `yaml:"non_convertita"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	logFile := "dexcel.log"
	if dir, err := os.UserCacheDir(); err == nil {
		logFile = filepath.Join(dir, "dexcel", "dexcel.log")
	}
	exportDir, _ := os.Getwd()

	return &Config{
		ServerURL: "http://localhost:5000",
		Backend:   BackendPrimary,
		LogFile:   logFile,
		LogLevel:  "info",
		ExportDir: exportDir,
		Templates: TemplatesConfig{
			Converted:    types.DefaultTemplates.Converted,
			NotConverted: types.DefaultTemplates.NotConverted,
		},
	}
}

// Load reads path over the defaults. An empty path falls back to
// DEXCEL_CONFIG; if that is empty too the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields that cannot be defaulted.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.ServerURL)
	if err != nil {
		errs = append(errs, fmt.Errorf("server_url: %w", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Errorf("server_url: scheme must be http or https, got %q", c.ServerURL))
	}

	switch c.Backend {
	case BackendPrimary, BackendLegacy:
	default:
		errs = append(errs, fmt.Errorf("backend: unknown backend %q", c.Backend))
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// FallbackTemplates returns the configured templates, filling blanks
// from the built-in defaults.
func (c *Config) FallbackTemplates() types.Templates {
	t := types.Templates{
		Converted:    c.Templates.Converted,
		NotConverted: c.Templates.NotConverted,
	}
	if strings.TrimSpace(t.Converted) == "" {
		t.Converted = types.DefaultTemplates.Converted
	}
	if strings.TrimSpace(t.NotConverted) == "" {
		t.NotConverted = types.DefaultTemplates.NotConverted
	}
	return t
}

// ParseLevel maps a log_level string to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log_level: unknown level %q", level)
}
