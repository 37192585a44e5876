// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package main

import (
	"bytes"
	"io"
	"testing"
)

// isolate points HOME at a temp dir so config discovery and bootstrap never
// touch the real user configuration.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}
