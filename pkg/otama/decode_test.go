// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package otama_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/otama-dev/otama-go/internal/native"
	"github.com/otama-dev/otama-go/internal/native/nativetest"
	"github.com/otama-dev/otama-go/pkg/otama"
)

func TestDecode_Scalars(t *testing.T) {
	f := nativetest.New()
	log, _ := testLogger()

	tests := []struct {
		name string
		v    native.Value
		want otama.Value
	}{
		{"null", f.Null(), otama.Null{}},
		{"int", f.Int(-7), otama.Int(-7)},
		{"float", f.Float(0.75), otama.Float(0.75)},
		{"text", f.Text("héllo"), otama.Text("héllo")},
		{"empty text", f.Text(""), otama.Text("")},
		{"empty array", f.Array(), otama.Sequence{}},
		{"empty hash", f.Hash(), otama.Mapping{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, otama.Decode(f, log, tt.v))
		})
	}
}

func TestDecode_NarrowsToThirtyTwoBits(t *testing.T) {
	f := nativetest.New()
	log, _ := testLogger()

	assert.Equal(t, otama.Int(math.MaxInt32), otama.Decode(f, log, f.Int(math.MaxInt32)))
	assert.Equal(t, otama.Int(math.MinInt32), otama.Decode(f, log, f.Int(math.MinInt32)))
	assert.Equal(t, otama.Float(float32(0.1)), otama.Decode(f, log, f.Float(0.1)))
}

func TestDecode_UnknownTagIsNull(t *testing.T) {
	f := nativetest.New()
	log, _ := testLogger()

	assert.Equal(t, otama.Null{}, otama.Decode(f, log, f.Tagged(native.ValueType(99))))
	assert.Equal(t, otama.Null{}, otama.Decode(f, log, f.Tagged(native.ValueType(-1))))

	// Unknown tags nested in containers decode in place.
	seq := otama.Decode(f, log, f.Array(f.Int(1), f.Tagged(42), f.Int(3)))
	assert.Equal(t, otama.Sequence{otama.Int(1), otama.Null{}, otama.Int(3)}, seq)
}

func TestDecode_ArrayPreservesOrder(t *testing.T) {
	f := nativetest.New()
	log, _ := testLogger()

	v := f.Array(f.Text("c"), f.Text("a"), f.Text("b"))
	assert.Equal(t, otama.Sequence{otama.Text("c"), otama.Text("a"), otama.Text("b")}, otama.Decode(f, log, v))
}

func TestDecode_Nested(t *testing.T) {
	f := nativetest.New()
	log, _ := testLogger()

	inner := f.Hash(
		nativetest.Pair{Key: "similarity", Value: f.Float(0.5)},
		nativetest.Pair{Key: "label", Value: f.Text("cat")},
	)
	v := f.Hash(
		nativetest.Pair{Key: "hits", Value: f.Array(inner, f.Null(), f.Array(f.Int(1)))},
		nativetest.Pair{Key: "count", Value: f.Int(2)},
	)

	want := otama.Mapping{
		"hits": otama.Sequence{
			otama.Mapping{"similarity": otama.Float(0.5), "label": otama.Text("cat")},
			otama.Null{},
			otama.Sequence{otama.Int(1)},
		},
		"count": otama.Int(2),
	}
	assert.Equal(t, want, otama.Decode(f, log, v))
}

func TestDecode_DuplicateKeyLastWins(t *testing.T) {
	f := nativetest.New()
	log, buf := testLogger()

	v := f.Hash(
		nativetest.Pair{Key: "k", Value: f.Int(1)},
		nativetest.Pair{Key: "other", Value: f.Null()},
		nativetest.Pair{Key: "k", Value: f.Int(2)},
	)

	assert.Equal(t, otama.Mapping{"k": otama.Int(2), "other": otama.Null{}}, otama.Decode(f, log, v))
	assert.Contains(t, buf.String(), "duplicate key")
	assert.Contains(t, buf.String(), "key=k")
}

func TestDecode_ContractViolationsPanic(t *testing.T) {
	f := nativetest.New()
	log, _ := testLogger()

	t.Run("null handle", func(t *testing.T) {
		assert.Panics(t, func() { otama.Decode(f, log, 0) })
	})
	t.Run("null array slot", func(t *testing.T) {
		v := f.Array(f.Int(1), 0)
		assert.Panics(t, func() { otama.Decode(f, log, v) })
	})
	t.Run("null hash value", func(t *testing.T) {
		v := f.Hash(nativetest.Pair{Key: "k", Value: 0})
		assert.Panics(t, func() { otama.Decode(f, log, v) })
	})
	t.Run("non string key", func(t *testing.T) {
		v := f.RawHash(f.Array(f.Int(5)), nil)
		assert.Panics(t, func() { otama.Decode(f, log, v) })
	})
	t.Run("null key list", func(t *testing.T) {
		v := f.RawHash(0, nil)
		assert.Panics(t, func() { otama.Decode(f, log, v) })
	})
}
