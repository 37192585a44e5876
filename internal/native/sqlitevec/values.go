// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package sqlitevec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/otama-dev/otama-go/internal/native"
)

// similarityKey is the hash key every result value carries.
const similarityKey = "similarity"

type resultSet struct {
	rows   []row
	values []native.Value
}

type row struct {
	id    native.ID
	value native.Value
}

// value is one node of a result value tree. Nodes live until the owning
// result set is freed.
type value struct {
	typ   native.ValueType
	i     int64
	f     float64
	s     string
	elems []native.Value
	keys  native.Value
	hash  map[string]native.Value
}

// alloc registers a node under set. The caller holds e.mu.
func (e *Engine) alloc(set *resultSet, v *value) native.Value {
	h := native.Value(e.id())
	e.values[h] = v
	set.values = append(set.values, h)
	return h
}

// similarityValue builds {"similarity": sim}. The caller holds e.mu.
func (e *Engine) similarityValue(set *resultSet, sim float32) native.Value {
	key := e.alloc(set, &value{typ: native.TypeString, s: similarityKey})
	keys := e.alloc(set, &value{typ: native.TypeArray, elems: []native.Value{key}})
	score := e.alloc(set, &value{typ: native.TypeFloat, f: float64(sim)})
	return e.alloc(set, &value{
		typ:  native.TypeHash,
		keys: keys,
		hash: map[string]native.Value{similarityKey: score},
	})
}

func (e *Engine) resultSet(rs native.Results) *resultSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.results[rs]
}

func (e *Engine) value(v native.Value) *value {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.values[v]
}

func (e *Engine) ResultCount(rs native.Results) int {
	set := e.resultSet(rs)
	if set == nil {
		return 0
	}
	return len(set.rows)
}

func (e *Engine) ResultID(rs native.Results, i int) (native.ID, bool) {
	set := e.resultSet(rs)
	if set == nil || i < 0 || i >= len(set.rows) {
		return native.ID{}, false
	}
	return set.rows[i].id, true
}

func (e *Engine) ResultValue(rs native.Results, i int) native.Value {
	set := e.resultSet(rs)
	if set == nil || i < 0 || i >= len(set.rows) {
		return 0
	}
	return set.rows[i].value
}

func (e *Engine) FreeResults(rs native.Results) {
	e.mu.Lock()
	defer e.mu.Unlock()
	set, ok := e.results[rs]
	if !ok {
		return
	}
	for _, v := range set.values {
		delete(e.values, v)
	}
	delete(e.results, rs)
}

func (e *Engine) ValueType(v native.Value) native.ValueType {
	n := e.value(v)
	if n == nil {
		return native.TypeNull
	}
	return n.typ
}

func (e *Engine) ValueInt(v native.Value) int64 {
	if n := e.value(v); n != nil {
		return n.i
	}
	return 0
}

func (e *Engine) ValueFloat(v native.Value) float64 {
	if n := e.value(v); n != nil {
		return n.f
	}
	return 0
}

func (e *Engine) ValueString(v native.Value) string {
	if n := e.value(v); n != nil {
		return n.s
	}
	return ""
}

func (e *Engine) ArrayCount(v native.Value) int {
	if n := e.value(v); n != nil {
		return len(n.elems)
	}
	return 0
}

func (e *Engine) ArrayAt(v native.Value, i int) native.Value {
	n := e.value(v)
	if n == nil || i < 0 || i >= len(n.elems) {
		return 0
	}
	return n.elems[i]
}

func (e *Engine) HashKeys(v native.Value) native.Value {
	if n := e.value(v); n != nil {
		return n.keys
	}
	return 0
}

func (e *Engine) HashAt(v, key native.Value) native.Value {
	n, k := e.value(v), e.value(key)
	if n == nil || k == nil || k.typ != native.TypeString {
		return 0
	}
	return n.hash[k.s]
}

// deserializeFloat32 is the inverse of sqlite_vec.SerializeFloat32.
func deserializeFloat32(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector blob has %d bytes, not a multiple of 4", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}
