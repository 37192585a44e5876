// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	otamaerr "github.com/otama-dev/otama-go/pkg/errors"
)

func TestRootCommand_Help(t *testing.T) {
	isolate(t)
	out, err := execute(t, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"init", "create-db", "insert", "pull", "search", "search-id", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "otama dev")
	assert.Contains(t, out, "sqlite")
}

func TestRootCommand_BootstrapsConfig(t *testing.T) {
	home := isolate(t)
	_, err := execute(t, "version")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(home, ".config", "otama", "otama.yaml"))
}

func TestRootCommand_MissingConfigFile(t *testing.T) {
	isolate(t)
	_, err := execute(t, "count", "--config", "/nonexistent/otama.yaml")
	require.Error(t, err)
	assert.True(t, otamaerr.HasCode(err, otamaerr.CodeConfigLoadReadFailure))
}

func TestRootCommand_InvalidOutputFlag(t *testing.T) {
	isolate(t)
	_, err := execute(t, "count", "--output", "xml")
	require.Error(t, err)
	assert.Equal(t, 2, otamaerr.ExitCode(err))
}

func TestRootCommand_UnknownBackend(t *testing.T) {
	isolate(t)
	_, err := execute(t, "count", "--backend", "libotama-missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine.backend")
}

func TestRootCommand_ConfigFileSettings(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "otama.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("engine:\n  backend: sqlite\n  config: "+
		filepath.Join(dir, "missing-engine.yaml")+"\n"), 0o600))

	_, err := execute(t, "count", "--config", cfgPath)
	require.Error(t, err)
	// Open failures are not classified further.
	assert.True(t, otamaerr.HasCode(err, otamaerr.CodeEngineUnknown))
	assert.Equal(t, 1, otamaerr.ExitCode(err))
}
