package commands

import (
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds CLI defaults loaded from OASFORGE_* environment
// variables. Command line flags override these values.
type Config struct {
	OutputDir              string `envconfig:"OUTPUT_DIR" default:"gen"`
	PackageName            string `envconfig:"PACKAGE" default:"client"`
	Grouping               string `envconfig:"GROUPING" default:"tag"`
	Overwrite              bool   `envconfig:"OVERWRITE" default:"false"`
	SkipUnresolvedExternal bool   `envconfig:"SKIP_UNRESOLVED_EXTERNAL" default:"false"`
	LogLevel               string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig reads the environment-derived defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("oasforge", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParsedLogLevel maps the configured LogLevel string to a slog.Level.
func (c *Config) ParsedLogLevel() slog.Level {
	return parseLogLevel(c.LogLevel)
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
