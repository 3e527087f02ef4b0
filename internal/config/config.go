// Package config loads settings for the snapwait command.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/cboone/snapwait/internal/report"
	"github.com/cboone/snapwait/internal/snapstore"
)

// Color modes accepted by the color setting.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds the runtime configuration of the snapwait command.
// Values are populated from .snapwait.yaml, SNAPWAIT_* env vars, and flags.
type Config struct {
	ReportDir   string `mapstructure:"report_dir"`
	SnapshotDir string `mapstructure:"snapshot_dir"`
	Color       string `mapstructure:"color"`
	Verbose     bool   `mapstructure:"verbose"`
}

// NewViper returns a viper instance with the snapwait defaults, config file
// search path and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("report_dir", report.DefaultDir)
	v.SetDefault("snapshot_dir", snapstore.DefaultRoot)
	v.SetDefault("color", ColorAuto)
	v.SetDefault("verbose", false)

	v.SetEnvPrefix("SNAPWAIT")
	v.AutomaticEnv()
	return v
}

// ReadFile reads configFile into v, or searches for .snapwait.yaml in the
// working directory and the home directory when configFile is empty.
// A missing search-path config file is not an error.
func ReadFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".snapwait")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("config: read: %w", err)
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	switch cfg.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return Config{}, fmt.Errorf("config: color must be %s, %s or %s, got %q", ColorAuto, ColorAlways, ColorNever, cfg.Color)
	}
	if cfg.ReportDir == "" {
		return Config{}, errors.New("config: report_dir is empty")
	}
	if cfg.SnapshotDir == "" {
		return Config{}, errors.New("config: snapshot_dir is empty")
	}
	return cfg, nil
}
