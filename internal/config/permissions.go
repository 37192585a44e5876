// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

//go:build !windows

package config

import (
	"io/fs"
	"log/slog"
	"os"
)

// WarnInsecurePermissions logs a warning when a configuration file can be
// modified by other users. Such a user could point engine.config or
// driver.data_dir at a database of their choosing. Startup is not failed.
func WarnInsecurePermissions(path string) {
	if path == "" {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		slog.Debug("could not stat config file for permission check", "path", path, "error", err)
		return
	}

	mode := info.Mode()
	const groupWrite fs.FileMode = 0o020
	const otherWrite fs.FileMode = 0o002

	if mode.Perm()&(groupWrite|otherWrite) != 0 {
		slog.Warn(
			"config file is writable by other users",
			"path", path,
			"mode", mode,
			"recommended", "0600",
		)
	}
}
