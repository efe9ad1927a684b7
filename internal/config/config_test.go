package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliteGoblin/focusd/app_rm/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apprm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// TestLoad_DefaultsWhenNoFile verifies a missing default config file is not an error.
func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, []domain.RegistryLocation{
		{Root: domain.RootLocalMachine, Path: UninstallKeyPath},
		{Root: domain.RootLocalMachine, Path: UninstallKeyPath32},
		{Root: domain.RootCurrentUser, Path: UninstallKeyPath},
	}, cfg.Locations())
}

func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
registry_locations:
  - root: HKEY_CURRENT_USER
    path: 'SOFTWARE\Custom\Uninstall'
hide_system_components: true
output_limit: 200
settle_delay: 3s
metrics_file: /tmp/apprm.prom
log:
  level: debug
  file: /tmp/apprm.log
  compress: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []domain.RegistryLocation{
		{Root: domain.RootCurrentUser, Path: `SOFTWARE\Custom\Uninstall`},
	}, cfg.Locations())
	assert.True(t, cfg.HideSystemComponents)
	assert.Equal(t, 200, cfg.OutputLimit)
	assert.Equal(t, 3*time.Second, cfg.SettleDelay)
	assert.Equal(t, "/tmp/apprm.prom", cfg.MetricsFile)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/apprm.log", cfg.Log.File)
	assert.True(t, cfg.Log.Compress)
	// Unset rotation values keep their defaults
	assert.Equal(t, 10, cfg.Log.MaxSizeMB)
	assert.Equal(t, 3, cfg.Log.MaxBackups)
	assert.Equal(t, 7, cfg.Log.MaxAgeDays)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "output_limit: 200\n")
	t.Setenv("APPRM_OUTPUT_LIMIT", "50")
	t.Setenv("APPRM_SETTLE_DELAY", "250ms")
	t.Setenv("APPRM_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.OutputLimit)
	assert.Equal(t, 250*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidRoot(t *testing.T) {
	path := writeConfig(t, `
registry_locations:
  - root: HKXX
    path: 'SOFTWARE\x'
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownRoot)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"no locations", func(c *Config) { c.RegistryLocations = nil }, true},
		{"empty path", func(c *Config) { c.RegistryLocations[0].Path = "  " }, true},
		{"zero output limit", func(c *Config) { c.OutputLimit = 0 }, true},
		{"negative settle delay", func(c *Config) { c.SettleDelay = -time.Second }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"negative backups", func(c *Config) { c.Log.MaxBackups = -1 }, true},
		{"long root name", func(c *Config) { c.RegistryLocations[0].Root = "HKEY_LOCAL_MACHINE" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
