// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package sqlitevec

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	otamaerr "github.com/otama-dev/otama-go/pkg/errors"
	"github.com/spf13/viper"
)

// DriverHistogram is the only fingerprint driver the reference engine ships.
const DriverHistogram = "histogram"

// Config is the engine configuration file read on open.
type Config struct {
	Namespace string         `mapstructure:"namespace" yaml:"namespace"`
	Driver    DriverConfig   `mapstructure:"driver" yaml:"driver"`
	Database  DatabaseConfig `mapstructure:"database" yaml:"database"`
}

// DriverConfig selects the fingerprint extractor and its working directory.
type DriverConfig struct {
	Name    string `mapstructure:"name" yaml:"name"`
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
}

// DatabaseConfig locates the SQLite file. A relative name resolves against
// driver.data_dir.
type DatabaseConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
}

var namespacePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// DefaultConfig returns the configuration written by `otama init`.
func DefaultConfig() Config {
	return Config{
		Namespace: "default",
		Driver:    DriverConfig{Name: DriverHistogram, DataDir: "data"},
		Database:  DatabaseConfig{Name: "otama.db"},
	}
}

// LoadConfig reads the engine configuration at path with environment
// variable overrides (prefix OTAMA_ENGINE_). Relative directories resolve
// against the directory holding the file.
func LoadConfig(path string) (*Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetDefault("namespace", def.Namespace)
	v.SetDefault("driver.name", def.Driver.Name)
	v.SetDefault("driver.data_dir", def.Driver.DataDir)
	v.SetDefault("database.name", def.Database.Name)

	v.SetEnvPrefix("OTAMA_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, otamaerr.Errorf(otamaerr.CodeConfigLoadReadFailure, "reading engine config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, otamaerr.Errorf(otamaerr.CodeConfigValidateInvalidValue, "unmarshalling engine config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, otamaerr.Errorf(otamaerr.CodeConfigValidateInvalidValue, "validating engine config: %w", errors.Join(errs...))
	}

	if !filepath.IsAbs(cfg.Driver.DataDir) {
		cfg.Driver.DataDir = filepath.Join(filepath.Dir(path), cfg.Driver.DataDir)
	}
	return &cfg, nil
}

// Validate collects every problem in the configuration.
func (c *Config) Validate() []error {
	var errs []error

	if !namespacePattern.MatchString(c.Namespace) {
		errs = append(errs, otamaerr.Errorf(otamaerr.CodeConfigValidateInvalidValue,
			"config: namespace must match %s, got %q", namespacePattern, c.Namespace,
		))
	}
	if c.Driver.Name != DriverHistogram {
		errs = append(errs, otamaerr.Errorf(otamaerr.CodeConfigValidateInvalidValue,
			"config: driver.name must be one of [%s], got %q", DriverHistogram, c.Driver.Name,
		))
	}
	if c.Driver.DataDir == "" {
		errs = append(errs, otamaerr.Errorf(otamaerr.CodeConfigValidateInvalidValue, "config: driver.data_dir must not be empty"))
	}
	if c.Database.Name == "" {
		errs = append(errs, otamaerr.Errorf(otamaerr.CodeConfigValidateInvalidValue, "config: database.name must not be empty"))
	}

	return errs
}

// DatabasePath returns the SQLite file location.
func (c *Config) DatabasePath() string {
	if filepath.IsAbs(c.Database.Name) {
		return c.Database.Name
	}
	return filepath.Join(c.Driver.DataDir, c.Database.Name)
}
