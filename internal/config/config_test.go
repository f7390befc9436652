package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexhholmes/folioevict/internal/base"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
path: Invalidate
mapping: "0xffff888102a3c6f8"
unit_size: 16384
transient_pins: 0
require_tree_ref: true
workers: 4
output: JSON
logging:
  level: debug
  backend: logrus
metrics:
  textfile_path: /var/lib/node_exporter/folioevict.prom
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "invalidate", cfg.Path)
	assert.Equal(t, 16384, cfg.UnitSize)
	assert.Equal(t, 0, cfg.TransientPins)
	assert.True(t, cfg.RequireTreeRef)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "logrus", cfg.Logging.Backend)
	assert.Equal(t, "/var/lib/node_exporter/folioevict.prom", cfg.Metrics.TextfilePath)

	id, ok, err := cfg.MappingID()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, base.MappingID(0xffff888102a3c6f8), id)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadEnvAndFlags(t *testing.T) {
	t.Setenv("FOLIOEVICT_WORKERS", "8")
	t.Setenv("FOLIOEVICT_LOGGING_LEVEL", "warn")
	t.Setenv("FOLIOEVICT_OUTPUT", "yaml")

	flags := pflag.NewFlagSet("evaluate", pflag.ContinueOnError)
	flags.String("output", "table", "")
	flags.Int("transient-pins", 1, "")
	require.NoError(t, flags.Parse([]string{"--output", "json"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "WARN", cfg.Logging.Level)
	// Changed flags beat the environment, unchanged flags do not
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, 1, cfg.TransientPins)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"path", func(c *Config) { c.Path = "evict" }},
		{"mapping", func(c *Config) { c.Mapping = "0xzz" }},
		{"unit size", func(c *Config) { c.UnitSize = 1000 }},
		{"pins", func(c *Config) { c.TransientPins = -1 }},
		{"workers", func(c *Config) { c.Workers = 0 }},
		{"window", func(c *Config) { c.DuplicateWindow = -1 }},
		{"output", func(c *Config) { c.Output = "xml" }},
		{"level", func(c *Config) { c.Logging.Level = "TRACE" }},
		{"backend", func(c *Config) { c.Logging.Backend = "glog" }},
	}

	require.NoError(t, Validate(GetDefaultConfig()))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestMappingIDUnset(t *testing.T) {
	t.Parallel()

	id, ok, err := GetDefaultConfig().MappingID()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, base.NullMapping, id)
}
