// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package otama

import (
	"fmt"
	"log/slog"

	"github.com/otama-dev/otama-go/internal/native"
)

// decoder walks native tagged values and copies them into owned Values.
// Nothing it returns refers to native memory.
type decoder struct {
	eng native.Engine
	log *slog.Logger
}

// decode never fails. Unknown type tags decode to Null. A NULL handle where
// the engine promised a value is a broken native contract and panics.
func (d decoder) decode(v native.Value) Value {
	if v == 0 {
		panic("otama: native value handle is NULL")
	}

	switch d.eng.ValueType(v) {
	case native.TypeNull:
		return Null{}
	case native.TypeInt:
		return Int(int32(d.eng.ValueInt(v)))
	case native.TypeFloat:
		return Float(float32(d.eng.ValueFloat(v)))
	case native.TypeString:
		return Text(d.eng.ValueString(v))
	case native.TypeArray:
		return d.decodeArray(v)
	case native.TypeHash:
		return d.decodeHash(v)
	default:
		return Null{}
	}
}

func (d decoder) decodeArray(v native.Value) Sequence {
	n := d.eng.ArrayCount(v)
	seq := make(Sequence, 0, n)
	for i := 0; i < n; i++ {
		seq = append(seq, d.decode(d.element(v, i, n)))
	}
	return seq
}

func (d decoder) decodeHash(v native.Value) Mapping {
	keys := d.eng.HashKeys(v)
	if keys == 0 {
		panic("otama: native hash key list is NULL")
	}

	n := d.eng.ArrayCount(keys)
	m := make(Mapping, n)
	for i := 0; i < n; i++ {
		k := d.element(keys, i, n)
		if t := d.eng.ValueType(k); t != native.TypeString {
			panic(fmt.Sprintf("otama: native hash key %d has type tag %d, want string", i, t))
		}
		name := d.eng.ValueString(k)

		val := d.eng.HashAt(v, k)
		if val == 0 {
			panic(fmt.Sprintf("otama: native hash has no value for key %q", name))
		}

		if _, dup := m[name]; dup {
			d.log.Warn("duplicate key in native hash, keeping last value", "key", name)
		}
		m[name] = d.decode(val)
	}
	return m
}

func (d decoder) element(v native.Value, i, n int) native.Value {
	e := d.eng.ArrayAt(v, i)
	if e == 0 {
		panic(fmt.Sprintf("otama: native array element %d of %d is NULL", i, n))
	}
	return e
}
