// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

// Package sqlitevec is an in-process reference engine that speaks the native
// handle/status protocol on top of SQLite and sqlite-vec. Entries are staged
// on insert and become searchable after pull; search is cosine KNN over
// colour-histogram fingerprints.
package sqlitevec

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/otama-dev/otama-go/internal/native"
)

func init() {
	sqlite_vec.Auto()
	native.Register(native.BackendSQLite, func() native.Engine { return New() })
}

// Compile-time interface check.
var _ native.Engine = (*Engine)(nil)

var (
	errNoDatabase = errors.New("database not created")
	errNotFound   = errors.New("no such entry")
)

// Engine serves any number of open handles, each backed by its own
// SQLite connection pool.
type Engine struct {
	mu      sync.Mutex
	next    uintptr
	conns   map[native.Handle]*conn
	results map[native.Results]*resultSet
	values  map[native.Value]*value
}

type conn struct {
	db     *sql.DB
	tables tables
}

// New returns an engine with no open handles.
func New() *Engine {
	return &Engine{
		conns:   make(map[native.Handle]*conn),
		results: make(map[native.Results]*resultSet),
		values:  make(map[native.Value]*value),
	}
}

func (e *Engine) id() uintptr {
	e.next++
	return e.next
}

func (e *Engine) conn(h native.Handle) *conn {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conns[h]
}

func (e *Engine) Open(configPath string) (native.Handle, native.Status) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		slog.Debug("sqlitevec: loading config", "path", configPath, "error", err)
		return 0, native.StatusInvalidArguments
	}

	if err := os.MkdirAll(cfg.Driver.DataDir, 0o755); err != nil {
		slog.Debug("sqlitevec: creating data directory", "path", cfg.Driver.DataDir, "error", err)
		return 0, native.StatusSysError
	}

	db, err := sql.Open("sqlite3", cfg.DatabasePath()+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		slog.Debug("sqlitevec: opening sqlite db", "error", err)
		return 0, native.StatusSysError
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		slog.Debug("sqlitevec: pinging sqlite db", "error", err)
		return 0, native.StatusSysError
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	h := native.Handle(e.id())
	e.conns[h] = &conn{db: db, tables: tablesFor(cfg.Namespace)}
	return h, native.StatusOK
}

func (e *Engine) Close(h native.Handle) {
	e.mu.Lock()
	c, ok := e.conns[h]
	delete(e.conns, h)
	e.mu.Unlock()
	if ok {
		_ = c.db.Close()
	}
}

func (e *Engine) CreateDatabase(h native.Handle) native.Status {
	c := e.conn(h)
	if c == nil {
		return native.StatusInvalidArguments
	}
	return status("create database", c.create(context.Background()))
}

func (e *Engine) DropDatabase(h native.Handle) native.Status {
	c := e.conn(h)
	if c == nil {
		return native.StatusInvalidArguments
	}
	return status("drop database", c.drop(context.Background()))
}

func (e *Engine) Pull(h native.Handle) native.Status {
	c := e.conn(h)
	if c == nil {
		return native.StatusInvalidArguments
	}
	return status("pull", c.pull(context.Background()))
}

func (e *Engine) InsertFile(h native.Handle, path string) (native.ID, native.Status) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Debug("sqlitevec: reading media file", "path", path, "error", err)
		return native.ID{}, native.StatusSysError
	}
	return e.InsertData(h, data)
}

func (e *Engine) InsertData(h native.Handle, data []byte) (native.ID, native.Status) {
	c := e.conn(h)
	if c == nil || len(data) == 0 {
		return native.ID{}, native.StatusInvalidArguments
	}
	vec, err := Fingerprint(data)
	if err != nil {
		slog.Debug("sqlitevec: fingerprinting", "error", err)
		return native.ID{}, native.StatusInvalidArguments
	}
	id := Identify(data)
	if err := c.insert(context.Background(), id, vec); err != nil {
		return native.ID{}, status("insert", err)
	}
	return id, native.StatusOK
}

func (e *Engine) Remove(h native.Handle, id native.ID) native.Status {
	c := e.conn(h)
	if c == nil {
		return native.StatusInvalidArguments
	}
	return status("remove", c.remove(context.Background(), id))
}

func (e *Engine) Exists(h native.Handle, id native.ID) (bool, native.Status) {
	c := e.conn(h)
	if c == nil {
		return false, native.StatusInvalidArguments
	}
	found, err := c.exists(context.Background(), id)
	return found, status("exists", err)
}

func (e *Engine) Count(h native.Handle) (int64, native.Status) {
	c := e.conn(h)
	if c == nil {
		return 0, native.StatusInvalidArguments
	}
	n, err := c.count(context.Background())
	return n, status("count", err)
}

func (e *Engine) SearchFile(h native.Handle, n int, path string) (native.Results, native.Status) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Debug("sqlitevec: reading query file", "path", path, "error", err)
		return 0, native.StatusSysError
	}
	return e.SearchData(h, n, data)
}

func (e *Engine) SearchData(h native.Handle, n int, data []byte) (native.Results, native.Status) {
	c := e.conn(h)
	if c == nil || n <= 0 || len(data) == 0 {
		return 0, native.StatusInvalidArguments
	}
	vec, err := Fingerprint(data)
	if err != nil {
		slog.Debug("sqlitevec: fingerprinting query", "error", err)
		return 0, native.StatusInvalidArguments
	}
	return e.search(c, n, vec)
}

func (e *Engine) SearchID(h native.Handle, n int, id native.ID) (native.Results, native.Status) {
	c := e.conn(h)
	if c == nil || n <= 0 {
		return 0, native.StatusInvalidArguments
	}
	vec, err := c.vector(context.Background(), id)
	if err != nil {
		return 0, status("search id", err)
	}
	return e.search(c, n, vec)
}

func (e *Engine) search(c *conn, n int, vec []float32) (native.Results, native.Status) {
	matches, err := c.knn(context.Background(), vec, n)
	if err != nil {
		return 0, status("search", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	rs := native.Results(e.id())
	set := &resultSet{}
	for _, m := range matches {
		set.rows = append(set.rows, row{id: m.id, value: e.similarityValue(set, 1-m.distance)})
	}
	e.results[rs] = set
	return rs, native.StatusOK
}

// status classifies a storage error. Everything the caller cannot fix by
// changing arguments is a system error.
func status(op string, err error) native.Status {
	switch {
	case err == nil:
		return native.StatusOK
	case errors.Is(err, errNoDatabase), errors.Is(err, errNotFound):
		return native.StatusNoData
	default:
		slog.Debug(fmt.Sprintf("sqlitevec: %s", op), "error", err)
		return native.StatusSysError
	}
}
