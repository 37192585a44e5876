// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

//go:build otama && cgo

package libotama

/*
#cgo linux LDFLAGS: -lotama
#cgo darwin CFLAGS: -I/usr/local/include
#cgo darwin LDFLAGS: -L/usr/local/lib -Wl,-rpath,/usr/local/lib -lotama
#include <stdlib.h>
#include <string.h>
#include <otama.h>

// ============================================================================
// ID SLOTS
// ============================================================================

static void otg_id_copy_out(const otama_id_t *id, unsigned char *out) {
	memcpy(out, id, OTAMA_ID_LEN);
}

static void otg_id_copy_in(otama_id_t *id, const unsigned char *in) {
	memcpy(id, in, OTAMA_ID_LEN);
}

// ============================================================================
// ENGINE OPERATIONS
// ============================================================================

static int otg_insert_file(otama_t *o, unsigned char *out, const char *path) {
	otama_id_t id;
	otama_status_t st = otama_insert_file(o, &id, path);
	if (st == OTAMA_STATUS_OK) otg_id_copy_out(&id, out);
	return (int)st;
}

static int otg_insert_data(otama_t *o, unsigned char *out, const void *data, size_t len) {
	otama_id_t id;
	otama_status_t st = otama_insert_data(o, &id, data, len);
	if (st == OTAMA_STATUS_OK) otg_id_copy_out(&id, out);
	return (int)st;
}

static int otg_remove(otama_t *o, const unsigned char *in) {
	otama_id_t id;
	otg_id_copy_in(&id, in);
	return (int)otama_remove(o, &id);
}

static int otg_exists(otama_t *o, const unsigned char *in, int *found) {
	otama_id_t id;
	otg_id_copy_in(&id, in);
	return (int)otama_exists(o, found, &id);
}

static int otg_search(otama_t *o, otama_result_t **rs, int n, const unsigned char *in) {
	otama_id_t id;
	otg_id_copy_in(&id, in);
	return (int)otama_search(o, rs, n, &id);
}

static int otg_result_id(const otama_result_t *rs, int i, unsigned char *out) {
	const otama_id_t *id = otama_result_id(rs, i);
	if (!id) return 0;
	otg_id_copy_out(id, out);
	return 1;
}
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/otama-dev/otama-go/internal/native"
)

func init() {
	native.Register(native.BackendLibotama, func() native.Engine { return New() })
}

// Compile-time interface check.
var _ native.Engine = (*Engine)(nil)

// Engine maps native handles onto libotama pointers. Pointers never cross
// into Go as integers; every handle is an index into this table.
type Engine struct {
	mu      sync.Mutex
	next    uintptr
	engines map[native.Handle]*C.otama_t
	results map[native.Results]*resultSet
	values  map[native.Value]variant
}

type variant struct {
	ptr   *C.otama_variant_t
	owner native.Results
}

type resultSet struct {
	ptr    *C.otama_result_t
	values []native.Value
}

// New returns an engine with an empty handle table.
func New() *Engine {
	return &Engine{
		engines: make(map[native.Handle]*C.otama_t),
		results: make(map[native.Results]*resultSet),
		values:  make(map[native.Value]variant),
	}
}

// status translates a libotama status. Codes this binding does not know
// become an out-of-range Status, which callers report as Unknown.
func status[T ~int32 | ~uint32](st T) native.Status {
	switch int64(st) {
	case C.OTAMA_STATUS_OK:
		return native.StatusOK
	case C.OTAMA_STATUS_NODATA:
		return native.StatusNoData
	case C.OTAMA_STATUS_INVALID_ARGUMENTS:
		return native.StatusInvalidArguments
	case C.OTAMA_STATUS_ASSERTION_FAILURE:
		return native.StatusAssertionFailure
	case C.OTAMA_STATUS_SYSERROR:
		return native.StatusSysError
	case C.OTAMA_STATUS_NOT_IMPLEMENTED:
		return native.StatusNotImplemented
	case C.OTAMA_STATUS_END:
		return native.StatusEnd
	default:
		return native.Status(-1)
	}
}

func (e *Engine) id() uintptr {
	e.next++
	return e.next
}

func (e *Engine) engine(h native.Handle) *C.otama_t {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.engines[h]
}

func (e *Engine) Open(configPath string) (native.Handle, native.Status) {
	cpath := C.CString(configPath)
	defer C.free(unsafe.Pointer(cpath))

	var o *C.otama_t
	st := status(C.otama_open(&o, cpath))
	if st != native.StatusOK || o == nil {
		return 0, st
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	h := native.Handle(e.id())
	e.engines[h] = o
	return h, st
}

func (e *Engine) Close(h native.Handle) {
	e.mu.Lock()
	o, ok := e.engines[h]
	delete(e.engines, h)
	e.mu.Unlock()
	if ok {
		C.otama_close(&o)
	}
}

func (e *Engine) CreateDatabase(h native.Handle) native.Status {
	o := e.engine(h)
	if o == nil {
		return native.StatusInvalidArguments
	}
	return status(C.otama_create_database(o))
}

func (e *Engine) DropDatabase(h native.Handle) native.Status {
	o := e.engine(h)
	if o == nil {
		return native.StatusInvalidArguments
	}
	return status(C.otama_drop_database(o))
}

func (e *Engine) Pull(h native.Handle) native.Status {
	o := e.engine(h)
	if o == nil {
		return native.StatusInvalidArguments
	}
	return status(C.otama_pull(o))
}

func (e *Engine) InsertFile(h native.Handle, path string) (native.ID, native.Status) {
	var id native.ID
	o := e.engine(h)
	if o == nil {
		return id, native.StatusInvalidArguments
	}
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	st := C.otg_insert_file(o, (*C.uchar)(unsafe.Pointer(&id[0])), cpath)
	return id, status(st)
}

func (e *Engine) InsertData(h native.Handle, data []byte) (native.ID, native.Status) {
	var id native.ID
	o := e.engine(h)
	if o == nil || len(data) == 0 {
		return id, native.StatusInvalidArguments
	}
	cdata := C.CBytes(data)
	defer C.free(cdata)

	st := C.otg_insert_data(o, (*C.uchar)(unsafe.Pointer(&id[0])), cdata, C.size_t(len(data)))
	return id, status(st)
}

func (e *Engine) Remove(h native.Handle, id native.ID) native.Status {
	o := e.engine(h)
	if o == nil {
		return native.StatusInvalidArguments
	}
	return status(C.otg_remove(o, (*C.uchar)(unsafe.Pointer(&id[0]))))
}

func (e *Engine) Exists(h native.Handle, id native.ID) (bool, native.Status) {
	o := e.engine(h)
	if o == nil {
		return false, native.StatusInvalidArguments
	}
	var found C.int
	st := C.otg_exists(o, (*C.uchar)(unsafe.Pointer(&id[0])), &found)
	return found != 0, status(st)
}

func (e *Engine) Count(h native.Handle) (int64, native.Status) {
	o := e.engine(h)
	if o == nil {
		return 0, native.StatusInvalidArguments
	}
	var n C.int64_t
	st := C.otama_count(o, &n)
	return int64(n), status(st)
}

func (e *Engine) SearchFile(h native.Handle, n int, path string) (native.Results, native.Status) {
	o := e.engine(h)
	if o == nil {
		return 0, native.StatusInvalidArguments
	}
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	var rs *C.otama_result_t
	st := status(C.otama_search_file(o, &rs, C.int(n), cpath))
	return e.track(rs, st)
}

func (e *Engine) SearchData(h native.Handle, n int, data []byte) (native.Results, native.Status) {
	o := e.engine(h)
	if o == nil || len(data) == 0 {
		return 0, native.StatusInvalidArguments
	}
	cdata := C.CBytes(data)
	defer C.free(cdata)

	var rs *C.otama_result_t
	st := status(C.otama_search_data(o, &rs, C.int(n), cdata, C.size_t(len(data))))
	return e.track(rs, st)
}

func (e *Engine) SearchID(h native.Handle, n int, id native.ID) (native.Results, native.Status) {
	o := e.engine(h)
	if o == nil {
		return 0, native.StatusInvalidArguments
	}
	var rs *C.otama_result_t
	st := status(C.otg_search(o, &rs, C.int(n), (*C.uchar)(unsafe.Pointer(&id[0]))))
	return e.track(rs, st)
}

// track registers a result set produced by a successful search. On failure
// nothing is registered and any pointer the library handed back is freed.
func (e *Engine) track(rs *C.otama_result_t, st native.Status) (native.Results, native.Status) {
	if st != native.StatusOK || rs == nil {
		if rs != nil {
			C.otama_result_free(&rs)
		}
		return 0, st
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	r := native.Results(e.id())
	e.results[r] = &resultSet{ptr: rs}
	return r, st
}

func (e *Engine) resultSet(rs native.Results) *resultSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.results[rs]
}

func (e *Engine) ResultCount(rs native.Results) int {
	set := e.resultSet(rs)
	if set == nil {
		return 0
	}
	return int(C.otama_result_count(set.ptr))
}

func (e *Engine) ResultID(rs native.Results, i int) (native.ID, bool) {
	var id native.ID
	set := e.resultSet(rs)
	if set == nil {
		return id, false
	}
	found := C.otg_result_id(set.ptr, C.int(i), (*C.uchar)(unsafe.Pointer(&id[0])))
	return id, found != 0
}

func (e *Engine) ResultValue(rs native.Results, i int) native.Value {
	set := e.resultSet(rs)
	if set == nil {
		return 0
	}
	return e.value(rs, C.otama_result_value(set.ptr, C.int(i)))
}

func (e *Engine) FreeResults(rs native.Results) {
	e.mu.Lock()
	set, ok := e.results[rs]
	delete(e.results, rs)
	if ok {
		for _, v := range set.values {
			delete(e.values, v)
		}
	}
	e.mu.Unlock()

	if ok {
		C.otama_result_free(&set.ptr)
	}
}

// value registers a variant owned by result set rs. A NULL variant maps to
// the zero Value.
func (e *Engine) value(rs native.Results, p *C.otama_variant_t) native.Value {
	if p == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	set, ok := e.results[rs]
	if !ok {
		return 0
	}
	v := native.Value(e.id())
	e.values[v] = variant{ptr: p, owner: rs}
	set.values = append(set.values, v)
	return v
}

// owner returns the result set v belongs to, so values derived from v are
// released together with it.
func (e *Engine) owner(v native.Value) (native.Results, *C.otama_variant_t) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ref, ok := e.values[v]
	if !ok {
		return 0, nil
	}
	return ref.owner, ref.ptr
}

func (e *Engine) variant(v native.Value) *C.otama_variant_t {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.values[v].ptr
}

func (e *Engine) ValueType(v native.Value) native.ValueType {
	p := e.variant(v)
	if p == nil {
		return native.TypeNull
	}
	switch C.otama_variant_type(p) {
	case C.OTAMA_VARIANT_TYPE_NULL:
		return native.TypeNull
	case C.OTAMA_VARIANT_TYPE_INT:
		return native.TypeInt
	case C.OTAMA_VARIANT_TYPE_FLOAT:
		return native.TypeFloat
	case C.OTAMA_VARIANT_TYPE_STRING:
		return native.TypeString
	case C.OTAMA_VARIANT_TYPE_ARRAY:
		return native.TypeArray
	case C.OTAMA_VARIANT_TYPE_HASH:
		return native.TypeHash
	default:
		// Tags this binding does not know (pointer, binary, ...) surface as
		// an out-of-range tag so callers can apply their own fallback.
		return native.ValueType(-1)
	}
}

func (e *Engine) ValueInt(v native.Value) int64 {
	p := e.variant(v)
	if p == nil {
		return 0
	}
	return int64(C.otama_variant_to_int(p))
}

func (e *Engine) ValueFloat(v native.Value) float64 {
	p := e.variant(v)
	if p == nil {
		return 0
	}
	return float64(C.otama_variant_to_float(p))
}

func (e *Engine) ValueString(v native.Value) string {
	p := e.variant(v)
	if p == nil {
		return ""
	}
	return C.GoString(C.otama_variant_to_string(p))
}

func (e *Engine) ArrayCount(v native.Value) int {
	p := e.variant(v)
	if p == nil {
		return 0
	}
	return int(C.otama_variant_array_count(p))
}

func (e *Engine) ArrayAt(v native.Value, i int) native.Value {
	rs, p := e.owner(v)
	if p == nil {
		return 0
	}
	return e.value(rs, C.otama_variant_array_at(p, C.long(i)))
}

func (e *Engine) HashKeys(v native.Value) native.Value {
	rs, p := e.owner(v)
	if p == nil {
		return 0
	}
	return e.value(rs, C.otama_variant_hash_keys(p))
}

func (e *Engine) HashAt(v native.Value, key native.Value) native.Value {
	rs, p := e.owner(v)
	k := e.variant(key)
	if p == nil || k == nil {
		return 0
	}
	return e.value(rs, C.otama_variant_hash_at2(p, k))
}
