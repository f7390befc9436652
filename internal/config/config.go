// Package config loads the evaluate command's settings.
//
// Configuration precedence (highest to lowest):
//  1. Command line flags
//  2. Environment variables (FOLIOEVICT_*)
//  3. Configuration file
//  4. Default values
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/alexhholmes/folioevict/internal/base"
	"github.com/alexhholmes/folioevict/internal/engine"
)

const EnvPrefix = "FOLIOEVICT"

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full CLI configuration.
type Config struct {
	// Path is the reclaim path to model: release or invalidate.
	Path string `mapstructure:"path" yaml:"path"`

	// Mapping overrides the snapshot's mapping under test. Accepts 0x hex.
	Mapping string `mapstructure:"mapping" yaml:"mapping"`

	// UnitSize is the bytes credited per folio. 0 takes the snapshot's
	// page_size, then the host page size.
	UnitSize int `mapstructure:"unit_size" yaml:"unit_size"`

	TransientPins   int  `mapstructure:"transient_pins" yaml:"transient_pins"`
	RequireTreeRef  bool `mapstructure:"require_tree_ref" yaml:"require_tree_ref"`
	Workers         int  `mapstructure:"workers" yaml:"workers"`
	DuplicateWindow int  `mapstructure:"duplicate_window" yaml:"duplicate_window"`

	// Output is table, json or yaml.
	Output string `mapstructure:"output" yaml:"output"`

	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

type LoggingConfig struct {
	// Level is DEBUG, INFO, WARN or ERROR.
	Level string `mapstructure:"level" yaml:"level"`

	// Backend is zap or logrus.
	Backend string `mapstructure:"backend" yaml:"backend"`
}

type MetricsConfig struct {
	// TextfilePath, when set, receives the run totals in Prometheus text
	// format for node_exporter's textfile collector.
	TextfilePath string `mapstructure:"textfile_path" yaml:"textfile_path"`
}

// GetDefaultConfig returns the configuration used when nothing is set.
func GetDefaultConfig() *Config {
	return &Config{
		Path:            "release",
		TransientPins:   engine.DefaultTransientPins,
		Workers:         1,
		DuplicateWindow: 1 << 16,
		Output:          "table",
		Logging: LoggingConfig{
			Level:   "INFO",
			Backend: "zap",
		},
	}
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"path":             "path",
	"mapping":          "mapping",
	"unit-size":        "unit_size",
	"transient-pins":   "transient_pins",
	"require-tree-ref": "require_tree_ref",
	"workers":          "workers",
	"duplicate-window": "duplicate_window",
	"output":           "output",
	"log-level":        "logging.level",
	"log-backend":      "logging.backend",
	"metrics-textfile": "metrics.textfile_path",
}

// Load reads configPath (optional), the environment and any flags present in
// flags, then applies defaults and validates.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if _, err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// setupViper registers defaults for every key so environment variables are
// picked up without a config file.
func setupViper(v *viper.Viper, configPath string) {
	def := GetDefaultConfig()
	v.SetDefault("path", def.Path)
	v.SetDefault("mapping", def.Mapping)
	v.SetDefault("unit_size", def.UnitSize)
	v.SetDefault("transient_pins", def.TransientPins)
	v.SetDefault("require_tree_ref", def.RequireTreeRef)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("duplicate_window", def.DuplicateWindow)
	v.SetDefault("output", def.Output)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.backend", def.Logging.Backend)
	v.SetDefault("metrics.textfile_path", def.Metrics.TextfilePath)

	// Example: FOLIOEVICT_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	}
}

// readConfigFile reads the config file if one was given. A missing explicit
// file is an error; no file at all means defaults.
func readConfigFile(v *viper.Viper, configPath string) (bool, error) {
	if configPath == "" {
		return false, nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return false, fmt.Errorf("configuration file not found: %s", configPath)
	}
	if err := v.ReadInConfig(); err != nil {
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// ApplyDefaults fills zero values and normalizes case.
func ApplyDefaults(cfg *Config) {
	def := GetDefaultConfig()

	cfg.Path = strings.ToLower(strings.TrimSpace(cfg.Path))
	if cfg.Path == "" {
		cfg.Path = def.Path
	}
	if cfg.Workers == 0 {
		cfg.Workers = def.Workers
	}
	cfg.Output = strings.ToLower(strings.TrimSpace(cfg.Output))
	if cfg.Output == "" {
		cfg.Output = def.Output
	}

	cfg.Logging.Level = strings.ToUpper(strings.TrimSpace(cfg.Logging.Level))
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	cfg.Logging.Backend = strings.ToLower(strings.TrimSpace(cfg.Logging.Backend))
	if cfg.Logging.Backend == "" {
		cfg.Logging.Backend = def.Logging.Backend
	}
}

// Validate checks every field and reports the first problem found.
func Validate(cfg *Config) error {
	if _, err := engine.ParsePath(cfg.Path); err != nil {
		return err
	}
	if _, _, err := cfg.MappingID(); err != nil {
		return err
	}
	if cfg.UnitSize != 0 {
		if err := base.ValidatePageSize(cfg.UnitSize); err != nil {
			return err
		}
	}
	if cfg.TransientPins < 0 {
		return fmt.Errorf("%w: transient_pins must be >= 0, got %d", ErrInvalidConfig, cfg.TransientPins)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalidConfig, cfg.Workers)
	}
	if cfg.DuplicateWindow < 0 || uint64(cfg.DuplicateWindow) > math.MaxUint32 {
		return fmt.Errorf("%w: duplicate_window must be in [0, %d], got %d", ErrInvalidConfig, uint64(math.MaxUint32), cfg.DuplicateWindow)
	}

	switch cfg.Output {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("%w: output %q (valid: table, json, yaml)", ErrInvalidConfig, cfg.Output)
	}
	switch cfg.Logging.Level {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("%w: logging.level %q", ErrInvalidConfig, cfg.Logging.Level)
	}
	switch cfg.Logging.Backend {
	case "zap", "logrus":
	default:
		return fmt.Errorf("%w: logging.backend %q (valid: zap, logrus)", ErrInvalidConfig, cfg.Logging.Backend)
	}
	return nil
}

// MappingID parses Mapping. ok is false when no override is configured.
func (c *Config) MappingID() (id base.MappingID, ok bool, err error) {
	s := strings.TrimSpace(c.Mapping)
	if s == "" {
		return base.NullMapping, false, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: mapping %q: %v", ErrInvalidConfig, c.Mapping, err)
	}
	return base.MappingID(v), true, nil
}
