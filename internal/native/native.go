// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

// Package native describes the C-style boundary of a fingerprint engine:
// opaque handles, enumerated status codes and tagged values. Backends
// (libotama over cgo, the SQLite reference engine) implement Engine and
// register themselves by name.
package native

// Status is the enumerated outcome of a native call.
type Status int32

const (
	StatusOK Status = iota
	StatusNoData
	StatusInvalidArguments
	StatusAssertionFailure
	StatusSysError
	StatusNotImplemented
	StatusEnd
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoData:
		return "no_data"
	case StatusInvalidArguments:
		return "invalid_arguments"
	case StatusAssertionFailure:
		return "assertion_failure"
	case StatusSysError:
		return "syserror"
	case StatusNotImplemented:
		return "not_implemented"
	case StatusEnd:
		return "end"
	default:
		return "unknown"
	}
}

// ValueType is the type tag a native value reports about itself.
type ValueType int32

const (
	TypeNull ValueType = iota
	TypeInt
	TypeFloat
	TypeString
	TypeArray
	TypeHash
)

// IDLen is the width of a binary identifier.
const IDLen = 20

// ID is a binary identifier slot. The engine fills it on insert; result rows
// hand out copies.
type ID [IDLen]byte

// Handle refers to an open engine session. The zero Handle is never valid.
type Handle uintptr

// Results refers to a batch of search hits. The zero Results is never valid.
type Results uintptr

// Value refers to a tagged value owned by a result set. The zero Value is
// the native NULL pointer, not a value of TypeNull.
type Value uintptr

// Engine is the full set of calls the marshaling layer issues. Handle-typed
// return values are only meaningful when the accompanying status is
// StatusOK. Implementations need not be safe for concurrent use of a single
// Handle; callers serialise access.
type Engine interface {
	Open(configPath string) (Handle, Status)
	Close(h Handle)

	CreateDatabase(h Handle) Status
	DropDatabase(h Handle) Status
	InsertFile(h Handle, path string) (ID, Status)
	InsertData(h Handle, data []byte) (ID, Status)
	Remove(h Handle, id ID) Status
	Exists(h Handle, id ID) (bool, Status)
	Count(h Handle) (int64, Status)
	Pull(h Handle) Status

	SearchFile(h Handle, n int, path string) (Results, Status)
	SearchData(h Handle, n int, data []byte) (Results, Status)
	SearchID(h Handle, n int, id ID) (Results, Status)

	ResultCount(rs Results) int
	// ResultID reports false when row i has no identifier (native NULL).
	ResultID(rs Results, i int) (ID, bool)
	ResultValue(rs Results, i int) Value
	FreeResults(rs Results)

	ValueType(v Value) ValueType
	ValueInt(v Value) int64
	ValueFloat(v Value) float64
	ValueString(v Value) string
	ArrayCount(v Value) int
	ArrayAt(v Value, i int) Value
	HashKeys(v Value) Value
	HashAt(v Value, key Value) Value
}
