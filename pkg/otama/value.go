// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package otama

// Type is the shape of a decoded Value.
type Type uint8

const (
	TypeNull Type = iota
	TypeInt
	TypeFloat
	TypeText
	TypeSequence
	TypeMapping
)

func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeText:
		return "text"
	case TypeSequence:
		return "sequence"
	case TypeMapping:
		return "mapping"
	default:
		return "invalid"
	}
}

// Value is an owned decoding of a native tagged value. The set of
// implementations is closed: Null, Int, Float, Text, Sequence and Mapping.
type Value interface {
	Type() Type
	isValue()
}

type (
	Null     struct{}
	Int      int32
	Float    float32
	Text     string
	Sequence []Value
	// Mapping does not preserve the native key order.
	Mapping map[string]Value
)

func (Null) Type() Type     { return TypeNull }
func (Int) Type() Type      { return TypeInt }
func (Float) Type() Type    { return TypeFloat }
func (Text) Type() Type     { return TypeText }
func (Sequence) Type() Type { return TypeSequence }
func (Mapping) Type() Type  { return TypeMapping }

func (Null) isValue()     {}
func (Int) isValue()      {}
func (Float) isValue()    {}
func (Text) isValue()     {}
func (Sequence) isValue() {}
func (Mapping) isValue()  {}

// Float returns the value stored under key when it is a Float.
func (m Mapping) Float(key string) (float32, bool) {
	f, ok := m[key].(Float)
	return float32(f), ok
}

// Interface converts v to plain Go values: nil, int32, float32, string,
// []any and map[string]any.
func Interface(v Value) any {
	switch t := v.(type) {
	case Int:
		return int32(t)
	case Float:
		return float32(t)
	case Text:
		return string(t)
	case Sequence:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Interface(e)
		}
		return out
	case Mapping:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Interface(e)
		}
		return out
	default:
		return nil
	}
}
