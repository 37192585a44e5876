// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package sqlitevec

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/otama-dev/otama-go/internal/native"
)

// Dimensions is the length of a fingerprint: 4 levels per RGB channel.
const Dimensions = 64

// Fingerprint computes an L2-normalised colour histogram of an encoded
// image. Alpha is ignored.
func Fingerprint(data []byte) ([]float32, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	var hist [Dimensions]float64
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			hist[(r>>14)<<4|(g>>14)<<2|bl>>14]++
		}
	}

	var norm float64
	for _, h := range hist {
		norm += h * h
	}
	if norm == 0 {
		return nil, fmt.Errorf("image has no pixels")
	}
	norm = math.Sqrt(norm)

	vec := make([]float32, Dimensions)
	for i, h := range hist {
		vec[i] = float32(h / norm)
	}
	return vec, nil
}

// Identify derives the binary identifier of a media blob.
func Identify(data []byte) native.ID {
	return native.ID(sha1.Sum(data))
}
