// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package config

import (
	_ "embed"
	"log/slog"
	"os"
	"path/filepath"

	otamaerr "github.com/otama-dev/otama-go/pkg/errors"
)

//go:embed otama.yaml.default
var DefaultConfigYAML []byte

// Dir returns ~/.config/otama.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", otamaerr.Errorf(otamaerr.CodeConfigLoadReadFailure, "resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "otama"), nil
}

// DefaultConfigPath returns ~/.config/otama/otama.yaml.
func DefaultConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "otama.yaml"), nil
}

// DefaultEngineConfigPath returns ~/.config/otama/engine.yaml.
func DefaultEngineConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "engine.yaml"), nil
}

// BootstrapConfig writes the default commented config to the default path if
// it does not already exist. Returns the path written, or empty string if the
// file already existed or an error occurred (non-fatal, logged and skipped).
func BootstrapConfig() string {
	cfgPath, err := DefaultConfigPath()
	if err != nil {
		slog.Debug("skipping config bootstrap", "error", err)
		return ""
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return ""
	}

	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		slog.Debug("skipping config bootstrap: cannot create directory", "path", dir, "error", err)
		return ""
	}

	if err := os.WriteFile(cfgPath, DefaultConfigYAML, 0o600); err != nil {
		slog.Debug("skipping config bootstrap: cannot write config", "path", cfgPath, "error", err)
		return ""
	}

	slog.Info("created default config", "path", cfgPath)
	return cfgPath
}
