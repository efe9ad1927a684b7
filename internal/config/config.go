// Package config loads apprm settings from file and environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/eliteGoblin/focusd/app_rm/internal/domain"
)

const (
	// DefaultOutputLimit bounds captured stdout/stderr per stream, in characters.
	DefaultOutputLimit = 1000

	// DefaultSettleDelay is the wait between batch completion and a re-scan.
	DefaultSettleDelay = time.Second

	envPrefix  = "APPRM"
	configName = "apprm"
)

// UninstallKeyPath is the per-hive location of installed-program entries.
const (
	UninstallKeyPath   = `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`
	UninstallKeyPath32 = `SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`
)

type Location struct {
	Root string `mapstructure:"root" yaml:"root"`
	Path string `mapstructure:"path" yaml:"path"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type Config struct {
	RegistryLocations    []Location    `mapstructure:"registry_locations"`
	HideSystemComponents bool          `mapstructure:"hide_system_components"`
	OutputLimit          int           `mapstructure:"output_limit"`
	SettleDelay          time.Duration `mapstructure:"settle_delay"`
	MetricsFile          string        `mapstructure:"metrics_file"`
	Log                  LogConfig     `mapstructure:"log"`
}

func Default() *Config {
	return &Config{
		RegistryLocations: []Location{
			{Root: "HKLM", Path: UninstallKeyPath},
			{Root: "HKLM", Path: UninstallKeyPath32},
			{Root: "HKCU", Path: UninstallKeyPath},
		},
		OutputLimit: DefaultOutputLimit,
		SettleDelay: DefaultSettleDelay,
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// Load reads cfgFile, or apprm.yaml from the config dir or the working
// directory when cfgFile is empty. A missing default file is not an error.
// APPRM_* environment variables override file values.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir())
		v.AddConfigPath(".")
	}

	setDefaults(v, cfg)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// A configured list replaces the defaults instead of merging by index.
	if v.IsSet("registry_locations") {
		cfg.RegistryLocations = nil
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every scalar key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("hide_system_components", cfg.HideSystemComponents)
	v.SetDefault("output_limit", cfg.OutputLimit)
	v.SetDefault("settle_delay", cfg.SettleDelay)
	v.SetDefault("metrics_file", cfg.MetricsFile)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
	v.SetDefault("log.max_age_days", cfg.Log.MaxAgeDays)
	v.SetDefault("log.compress", cfg.Log.Compress)
}

// Validate rejects settings the scanner or executor cannot work with.
func (c *Config) Validate() error {
	if len(c.RegistryLocations) == 0 {
		return errors.New("config: registry_locations must not be empty")
	}
	for i, loc := range c.RegistryLocations {
		if _, err := domain.ParseRegistryRoot(loc.Root); err != nil {
			return fmt.Errorf("config: registry_locations[%d]: %w", i, err)
		}
		if strings.TrimSpace(loc.Path) == "" {
			return fmt.Errorf("config: registry_locations[%d]: empty path", i)
		}
	}
	if c.OutputLimit <= 0 {
		return fmt.Errorf("config: output_limit must be positive, got %d", c.OutputLimit)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("config: settle_delay must not be negative, got %s", c.SettleDelay)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return errors.New("config: log rotation values must not be negative")
	}
	return nil
}

// Locations converts the configured entries into scanner input, in order.
// Call Validate first; entries with unknown roots are skipped.
func (c *Config) Locations() []domain.RegistryLocation {
	out := make([]domain.RegistryLocation, 0, len(c.RegistryLocations))
	for _, loc := range c.RegistryLocations {
		root, err := domain.ParseRegistryRoot(loc.Root)
		if err != nil {
			continue
		}
		out = append(out, domain.RegistryLocation{Root: root, Path: strings.TrimSpace(loc.Path)})
	}
	return out
}

func configDir() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "apprm")
		}
		return filepath.Join(home, "AppData", "Roaming", "apprm")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "apprm")
	default:
		return filepath.Join(home, ".config", "apprm")
	}
}
