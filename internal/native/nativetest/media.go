// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package nativetest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/otama-dev/otama-go/internal/native/sqlitevec"
)

// PNG encodes a w×h image filled with c.
func PNG(t testing.TB, c color.Color, w, h int) []byte {
	t.Helper()
	return Split(t, c, c, w, h, w)
}

// Split encodes a w×h image whose first cut columns are a and the rest b.
// Varying cut produces images of graded similarity.
func Split(t testing.TB, a, b color.Color, w, h, cut int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < cut {
				img.Set(x, y, a)
			} else {
				img.Set(x, y, b)
			}
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// WriteFile writes data to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// EngineConfig writes a reference engine configuration into a fresh temp
// directory and returns its path. The database lands next to it.
func EngineConfig(t testing.TB, namespace string) string {
	t.Helper()
	cfg := sqlitevec.DefaultConfig()
	cfg.Namespace = namespace
	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	return WriteFile(t, t.TempDir(), "engine.yaml", out)
}
