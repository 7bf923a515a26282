// Package config loads server settings from an optional YAML file and
// PLATE_MCP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
	"github.com/ironsheep/plate-tools-mcp/internal/tracing"
)

// EnvPrefix is prepended (with an underscore) to every key when reading
// environment overrides, e.g. PLATE_MCP_LOG_LEVEL.
const EnvPrefix = "PLATE_MCP"

// Log levels understood by the server.
const (
	LogLevelInfo  = "info"
	LogLevelDebug = "debug"
)

// Config holds the server settings. Detection tunables are fixed and are
// not part of it.
type Config struct {
	LogLevel         string `mapstructure:"log_level"`
	OutputDir        string `mapstructure:"output_dir"`        // where saved plate crops go
	OverlayColor     string `mapstructure:"overlay_color"`     // hex stroke color for plate_overlay
	OverlayThickness int    `mapstructure:"overlay_thickness"` // stroke width in pixels
	AutoOrient       bool   `mapstructure:"auto_orient"`       // apply EXIF orientation on load
	TraceExporter    string `mapstructure:"trace_exporter"`    // "none" or "stdout" (spans go to stderr)
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		LogLevel:         LogLevelInfo,
		OutputDir:        ".",
		OverlayColor:     "#00FF00",
		OverlayThickness: 3,
		AutoOrient:       true,
		TraceExporter:    tracing.ExporterNone,
	}
}

// Debug reports whether debug logging is enabled.
func (c Config) Debug() bool {
	return c.LogLevel == LogLevelDebug
}

// Load reads the configuration.
//
// When configFile is empty, plate-mcp.yaml is looked up in the working
// directory and then in $HOME/.config/plate-mcp; a missing file is not an
// error. An explicit configFile must exist. Environment variables override
// file values.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("output_dir", def.OutputDir)
	v.SetDefault("overlay_color", def.OverlayColor)
	v.SetDefault("overlay_thickness", def.OverlayThickness)
	v.SetDefault("auto_orient", def.AutoOrient)
	v.SetDefault("trace_exporter", def.TraceExporter)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("plate-mcp")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/plate-mcp")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges, lower-cases the log level and trace
// exporter, and defaults an empty output directory to ".".
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case LogLevelInfo, LogLevelDebug:
	default:
		return fmt.Errorf("invalid log_level %q: want %q or %q", c.LogLevel, LogLevelInfo, LogLevelDebug)
	}

	if c.OverlayThickness < 1 {
		return fmt.Errorf("invalid overlay_thickness %d: must be at least 1", c.OverlayThickness)
	}
	if _, err := imaging.ParseColor(c.OverlayColor); err != nil {
		return fmt.Errorf("invalid overlay_color: %w", err)
	}
	c.TraceExporter = strings.ToLower(strings.TrimSpace(c.TraceExporter))
	switch c.TraceExporter {
	case "":
		c.TraceExporter = tracing.ExporterNone
	case tracing.ExporterNone, tracing.ExporterStdout:
	default:
		return fmt.Errorf("invalid trace_exporter %q: want %q or %q", c.TraceExporter, tracing.ExporterNone, tracing.ExporterStdout)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		c.OutputDir = "."
	}
	return nil
}
