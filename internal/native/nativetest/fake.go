// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

// Package nativetest provides a scriptable in-memory native.Engine that
// records every call, so tests can assert on handle ownership and release
// counts without linking a real engine.
package nativetest

import (
	"sync"

	"github.com/otama-dev/otama-go/internal/native"
)

// Compile-time interface check.
var _ native.Engine = (*Fake)(nil)

// Pair is one key/value entry of a hash built with Fake.Hash.
type Pair struct {
	Key   string
	Value native.Value
}

// Row is one search hit built with Fake.Results. NullID makes ResultID
// report the row as having no identifier.
type Row struct {
	ID     native.ID
	Value  native.Value
	NullID bool
}

type node struct {
	typ   native.ValueType
	i     int64
	f     float64
	s     string
	elems []native.Value
	keys  native.Value
	byKey map[native.Value]native.Value
}

type resultSet struct {
	rows  []Row
	count int
}

// Fake is a native.Engine whose behaviour is scripted by the test.
// All methods are safe for concurrent use.
type Fake struct {
	mu sync.Mutex

	next    uintptr
	nodes   map[native.Value]*node
	results map[native.Results]*resultSet
	open    map[native.Handle]bool

	statuses map[string]native.Status
	calls    []string
	closed   map[native.Handle]int
	freed    map[native.Results]int

	// InsertID is returned by InsertFile and InsertData.
	InsertID native.ID
	// ExistsResult is returned by Exists.
	ExistsResult bool
	// CountResult is returned by Count.
	CountResult int64
	// SearchResults is handed out by the next search call.
	SearchResults native.Results
	// LastLimit records the n passed to the last search call.
	LastLimit int
	// LastPath records the path passed to the last file call.
	LastPath string
	// LastID records the identifier passed to the last id call.
	LastID native.ID
}

// New returns an empty Fake where every call succeeds.
func New() *Fake {
	return &Fake{
		nodes:    make(map[native.Value]*node),
		results:  make(map[native.Results]*resultSet),
		open:     make(map[native.Handle]bool),
		statuses: make(map[string]native.Status),
		closed:   make(map[native.Handle]int),
		freed:    make(map[native.Results]int),
	}
}

// SetStatus scripts the status returned by the named call ("open",
// "create_database", "insert_file", "search_file", ...).
func (f *Fake) SetStatus(call string, st native.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[call] = st
}

// Calls returns the engine-level calls issued so far, in order. Value and
// result-row accessors are not recorded.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CloseCount reports how many times h was closed.
func (f *Fake) CloseCount(h native.Handle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed[h]
}

// FreeCount reports how many times rs was released.
func (f *Fake) FreeCount(rs native.Results) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.freed[rs]
}

// OpenHandles returns the number of handles opened and not yet closed.
func (f *Fake) OpenHandles() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.open)
}

// ---------------------------------------------------------------------------
// Value builders
// ---------------------------------------------------------------------------

func (f *Fake) add(n *node) native.Value {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	v := native.Value(f.next)
	f.nodes[v] = n
	return v
}

func (f *Fake) Null() native.Value            { return f.add(&node{typ: native.TypeNull}) }
func (f *Fake) Int(i int64) native.Value      { return f.add(&node{typ: native.TypeInt, i: i}) }
func (f *Fake) Float(x float64) native.Value  { return f.add(&node{typ: native.TypeFloat, f: x}) }
func (f *Fake) Text(s string) native.Value    { return f.add(&node{typ: native.TypeString, s: s}) }
func (f *Fake) Tagged(t native.ValueType) native.Value {
	return f.add(&node{typ: t})
}

// Array builds an array value. A zero element simulates a NULL slot.
func (f *Fake) Array(elems ...native.Value) native.Value {
	return f.add(&node{typ: native.TypeArray, elems: elems})
}

// Hash builds a hash value whose key list follows the order of pairs.
// Repeated keys are kept as separate entries.
func (f *Fake) Hash(pairs ...Pair) native.Value {
	keys := make([]native.Value, 0, len(pairs))
	byKey := make(map[native.Value]native.Value, len(pairs))
	for _, p := range pairs {
		k := f.Text(p.Key)
		keys = append(keys, k)
		byKey[k] = p.Value
	}
	return f.add(&node{typ: native.TypeHash, keys: f.Array(keys...), byKey: byKey})
}

// RawHash builds a hash value from a key list handle and a key-handle to
// value map as given, for simulating malformed native hashes.
func (f *Fake) RawHash(keys native.Value, byKey map[native.Value]native.Value) native.Value {
	return f.add(&node{typ: native.TypeHash, keys: keys, byKey: byKey})
}

// Results builds a result set holding rows. Its reported count is len(rows)
// unless overridden with SetResultCount.
func (f *Fake) Results(rows ...Row) native.Results {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	rs := native.Results(f.next)
	f.results[rs] = &resultSet{rows: rows, count: len(rows)}
	return rs
}

// SetResultCount overrides the row count rs reports.
func (f *Fake) SetResultCount(rs native.Results, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[rs].count = n
}

// ---------------------------------------------------------------------------
// native.Engine
// ---------------------------------------------------------------------------

func (f *Fake) record(call string) native.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.statuses[call]
}

func (f *Fake) Open(configPath string) (native.Handle, native.Status) {
	st := f.record("open")
	if st != native.StatusOK {
		return 0, st
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastPath = configPath
	f.next++
	h := native.Handle(f.next)
	f.open[h] = true
	return h, st
}

func (f *Fake) Close(h native.Handle) {
	f.record("close")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed[h]++
	delete(f.open, h)
}

func (f *Fake) CreateDatabase(native.Handle) native.Status { return f.record("create_database") }
func (f *Fake) DropDatabase(native.Handle) native.Status   { return f.record("drop_database") }
func (f *Fake) Pull(native.Handle) native.Status           { return f.record("pull") }

func (f *Fake) InsertFile(_ native.Handle, path string) (native.ID, native.Status) {
	st := f.record("insert_file")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastPath = path
	return f.InsertID, st
}

func (f *Fake) InsertData(native.Handle, []byte) (native.ID, native.Status) {
	st := f.record("insert_data")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.InsertID, st
}

func (f *Fake) Remove(_ native.Handle, id native.ID) native.Status {
	st := f.record("remove")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastID = id
	return st
}

func (f *Fake) Exists(_ native.Handle, id native.ID) (bool, native.Status) {
	st := f.record("exists")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastID = id
	return f.ExistsResult, st
}

func (f *Fake) Count(native.Handle) (int64, native.Status) {
	st := f.record("count")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.CountResult, st
}

func (f *Fake) search(call string, n int) (native.Results, native.Status) {
	st := f.record(call)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastLimit = n
	if st != native.StatusOK {
		return 0, st
	}
	rs := f.SearchResults
	f.SearchResults = 0
	return rs, st
}

func (f *Fake) SearchFile(_ native.Handle, n int, path string) (native.Results, native.Status) {
	f.mu.Lock()
	f.LastPath = path
	f.mu.Unlock()
	return f.search("search_file", n)
}

func (f *Fake) SearchData(_ native.Handle, n int, _ []byte) (native.Results, native.Status) {
	return f.search("search_data", n)
}

func (f *Fake) SearchID(_ native.Handle, n int, id native.ID) (native.Results, native.Status) {
	f.mu.Lock()
	f.LastID = id
	f.mu.Unlock()
	return f.search("search_id", n)
}

func (f *Fake) ResultCount(rs native.Results) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if set, ok := f.results[rs]; ok {
		return set.count
	}
	return 0
}

func (f *Fake) row(rs native.Results, i int) (Row, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.results[rs]
	if !ok || i < 0 || i >= len(set.rows) {
		return Row{}, false
	}
	return set.rows[i], true
}

func (f *Fake) ResultID(rs native.Results, i int) (native.ID, bool) {
	r, ok := f.row(rs, i)
	return r.ID, ok && !r.NullID
}

func (f *Fake) ResultValue(rs native.Results, i int) native.Value {
	r, _ := f.row(rs, i)
	return r.Value
}

func (f *Fake) FreeResults(rs native.Results) {
	f.record("free_results")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.freed[rs]++
}

func (f *Fake) lookup(v native.Value) *node {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nodes[v]
}

func (f *Fake) ValueType(v native.Value) native.ValueType {
	if n := f.lookup(v); n != nil {
		return n.typ
	}
	return native.TypeNull
}

func (f *Fake) ValueInt(v native.Value) int64 {
	if n := f.lookup(v); n != nil {
		return n.i
	}
	return 0
}

func (f *Fake) ValueFloat(v native.Value) float64 {
	if n := f.lookup(v); n != nil {
		return n.f
	}
	return 0
}

func (f *Fake) ValueString(v native.Value) string {
	if n := f.lookup(v); n != nil {
		return n.s
	}
	return ""
}

func (f *Fake) ArrayCount(v native.Value) int {
	if n := f.lookup(v); n != nil {
		return len(n.elems)
	}
	return 0
}

func (f *Fake) ArrayAt(v native.Value, i int) native.Value {
	n := f.lookup(v)
	if n == nil || i < 0 || i >= len(n.elems) {
		return 0
	}
	return n.elems[i]
}

func (f *Fake) HashKeys(v native.Value) native.Value {
	if n := f.lookup(v); n != nil {
		return n.keys
	}
	return 0
}

func (f *Fake) HashAt(v native.Value, key native.Value) native.Value {
	if n := f.lookup(v); n != nil {
		return n.byKey[key]
	}
	return 0
}
