// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package config

import (
	"errors"
	"slices"
	"strings"

	"github.com/spf13/viper"

	otamaerr "github.com/otama-dev/otama-go/pkg/errors"
)

// EnvPrefix is the environment variable prefix for CLI settings.
const EnvPrefix = "OTAMA"

// Output formats understood by the CLI.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	validBackends = []string{"auto", "libotama", "sqlite"}
	validFormats  = []string{FormatText, FormatJSON}
)

// Config is the top-level otama CLI configuration. The engine itself is
// configured by the separate file named in Engine.Config.
type Config struct {
	Engine  EngineConfig `mapstructure:"engine"`
	Search  SearchConfig `mapstructure:"search"`
	Output  OutputConfig `mapstructure:"output"`
	Verbose bool         `mapstructure:"verbose"`
}

// EngineConfig selects the engine backend and its configuration file.
type EngineConfig struct {
	Config  string `mapstructure:"config"`
	Backend string `mapstructure:"backend"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	Limit int `mapstructure:"limit"`
}

// OutputConfig controls how results are printed.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("engine.config", "")
	v.SetDefault("engine.backend", "auto")
	v.SetDefault("search.limit", 10)
	v.SetDefault("output.format", FormatText)
	v.SetDefault("verbose", false)
}

// SetupEnv binds OTAMA_* environment variables, with "." in keys mapped to
// "_" (engine.backend → OTAMA_ENGINE_BACKEND).
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix OTAMA_).
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, otamaerr.Errorf(otamaerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper decodes and validates the settings held by v. An empty
// engine.config resolves to DefaultEngineConfigPath.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, otamaerr.Errorf(otamaerr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	if cfg.Engine.Config == "" {
		path, err := DefaultEngineConfigPath()
		if err != nil {
			return nil, err
		}
		cfg.Engine.Config = path
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, otamaerr.Errorf(otamaerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	if c.Engine.Config == "" {
		errs = append(errs, otamaerr.Errorf(otamaerr.CodeConfigValidateInvalidValue, "config: engine.config must not be empty"))
	}
	if !slices.Contains(validBackends, c.Engine.Backend) {
		errs = append(errs, otamaerr.Errorf(otamaerr.CodeConfigValidateInvalidValue,
			"config: engine.backend must be one of [%s], got %q",
			strings.Join(validBackends, ", "), c.Engine.Backend,
		))
	}
	if c.Search.Limit < 1 {
		errs = append(errs, otamaerr.Errorf(otamaerr.CodeConfigValidateInvalidValue,
			"config: search.limit must be greater than 0, got %d",
			c.Search.Limit,
		))
	}
	if !slices.Contains(validFormats, c.Output.Format) {
		errs = append(errs, otamaerr.Errorf(otamaerr.CodeConfigValidateInvalidValue,
			"config: output.format must be one of [%s], got %q",
			strings.Join(validFormats, ", "), c.Output.Format,
		))
	}

	return errs
}
