// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package otama

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/otama-dev/otama-go/internal/native"
	otamaerr "github.com/otama-dev/otama-go/pkg/errors"
)

// Option configures Open.
type Option func(*options)

type options struct {
	backend string
	engine  native.Engine
	logger  *slog.Logger
}

// WithBackend selects a registered engine backend ("libotama", "sqlite").
// The default prefers libotama when it is linked in.
func WithBackend(name string) Option {
	return func(o *options) { o.backend = name }
}

// WithLogger sets the logger for session events. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func withEngine(e native.Engine) Option {
	return func(o *options) { o.engine = e }
}

// Session owns one open engine handle. Operations hold an exclusive lock for
// the duration of the native call; the engine is never entered concurrently
// through the same Session. Using a Session after Close panics.
type Session struct {
	mu      sync.Mutex
	id      string
	eng     native.Engine
	handle  native.Handle
	closed  bool
	cleanup runtime.Cleanup
	log     *slog.Logger
}

type openHandle struct {
	eng native.Engine
	h   native.Handle
}

// Open opens the engine described by the configuration file at configPath.
// Every open failure is reported as KindUnknown.
func Open(configPath string, opts ...Option) (*Session, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	eng := o.engine
	if eng == nil {
		var err error
		if eng, err = native.Lookup(o.backend); err != nil {
			return nil, err
		}
	}

	h, st := eng.Open(configPath)
	if st != native.StatusOK || h == 0 {
		o.logger.Debug("engine open failed", "path", configPath, "status", st.String())
		return nil, kindError(KindUnknown, "open", otamaerr.FieldPath(configPath))
	}

	s := &Session{
		id:     uuid.NewString(),
		eng:    eng,
		handle: h,
	}
	s.log = o.logger.With("session_id", s.id)
	// Released here only if the caller drops the Session without Close.
	s.cleanup = runtime.AddCleanup(s, func(oh openHandle) { oh.eng.Close(oh.h) }, openHandle{eng: eng, h: h})

	s.log.Info("engine session opened", "path", configPath)
	return s, nil
}

// ID returns the session identifier used in log records.
func (s *Session) ID() string {
	return s.id
}

// Close releases the engine handle. Calling Close more than once is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.cleanup.Stop()
	s.eng.Close(s.handle)
	s.handle = 0

	s.log.Info("engine session closed")
	return nil
}

// CreateDatabase creates the engine's storage.
func (s *Session) CreateDatabase(ctx context.Context) error {
	return s.exec(ctx, "create database", s.eng.CreateDatabase)
}

// DropDatabase removes the storage created by CreateDatabase.
func (s *Session) DropDatabase(ctx context.Context) error {
	return s.exec(ctx, "drop database", s.eng.DropDatabase)
}

// Pull merges pending insertions into the searchable index.
func (s *Session) Pull(ctx context.Context) error {
	return s.exec(ctx, "pull", s.eng.Pull)
}

// Insert adds the media file at path and returns its identifier.
// Inserting the same file twice creates two entries.
func (s *Session) Insert(ctx context.Context, path string) (string, error) {
	var id native.ID
	err := s.exec(ctx, "insert", func(h native.Handle) (st native.Status) {
		id, st = s.eng.InsertFile(h, path)
		return st
	}, otamaerr.FieldPath(path))
	if err != nil {
		return "", err
	}
	return ID(id).String(), nil
}

// InsertData adds an in-memory media blob and returns its identifier.
func (s *Session) InsertData(ctx context.Context, data []byte) (string, error) {
	var id native.ID
	err := s.exec(ctx, "insert data", func(h native.Handle) (st native.Status) {
		id, st = s.eng.InsertData(h, data)
		return st
	}, otamaerr.Field("size", len(data)))
	if err != nil {
		return "", err
	}
	return ID(id).String(), nil
}

// Remove deletes every entry stored under id.
func (s *Session) Remove(ctx context.Context, id string) error {
	bin, err := s.parseID("remove", id)
	if err != nil {
		return err
	}
	return s.exec(ctx, "remove", func(h native.Handle) native.Status {
		return s.eng.Remove(h, native.ID(bin))
	}, otamaerr.Field("id", id))
}

// Exists reports whether any entry is stored under id.
func (s *Session) Exists(ctx context.Context, id string) (bool, error) {
	bin, err := s.parseID("exists", id)
	if err != nil {
		return false, err
	}
	var found bool
	err = s.exec(ctx, "exists", func(h native.Handle) (st native.Status) {
		found, st = s.eng.Exists(h, native.ID(bin))
		return st
	}, otamaerr.Field("id", id))
	return found, err
}

// Count returns the number of stored entries.
func (s *Session) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.exec(ctx, "count", func(h native.Handle) (st native.Status) {
		n, st = s.eng.Count(h)
		return st
	})
	return n, err
}

// Search returns up to limit hits for the media file at path, in the order
// the engine ranks them. A limit below 1 is InvalidArguments and is rejected
// before reaching the engine.
func (s *Session) Search(ctx context.Context, limit int, path string) ([]SearchHit, error) {
	return s.search(ctx, "search", limit, func(h native.Handle) (native.Results, native.Status) {
		return s.eng.SearchFile(h, limit, path)
	}, otamaerr.FieldPath(path))
}

// SearchData searches with an in-memory media blob as the query.
func (s *Session) SearchData(ctx context.Context, limit int, data []byte) ([]SearchHit, error) {
	return s.search(ctx, "search data", limit, func(h native.Handle) (native.Results, native.Status) {
		return s.eng.SearchData(h, limit, data)
	}, otamaerr.Field("size", len(data)))
}

// SearchID searches with the fingerprint of a stored entry as the query.
func (s *Session) SearchID(ctx context.Context, limit int, id string) ([]SearchHit, error) {
	bin, err := s.parseID("search id", id)
	if err != nil {
		return nil, err
	}
	return s.search(ctx, "search id", limit, func(h native.Handle) (native.Results, native.Status) {
		return s.eng.SearchID(h, limit, native.ID(bin))
	}, otamaerr.Field("id", id))
}

func (s *Session) search(
	ctx context.Context,
	op string,
	limit int,
	call func(native.Handle) (native.Results, native.Status),
	fields ...otamaerr.Attr,
) ([]SearchHit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeOpen(op)

	if limit < 1 {
		return nil, kindError(KindInvalidArguments, op, s.fields(otamaerr.Field("limit", limit))...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rs, st := call(s.handle)
	s.log.DebugContext(ctx, "native call", "op", op, "status", st.String(), "limit", limit)
	if err := statusError(op, st, s.fields(fields...)...); err != nil {
		return nil, err
	}
	if rs == 0 {
		return nil, kindError(KindAssertionFailure, op, s.fields(fields...)...)
	}

	hits, err := adaptResults(s.eng, s.log, rs, limit)
	if err != nil {
		return nil, otamaerr.With(err, otamaerr.FieldSessionID(s.id))
	}
	return hits, nil
}

func (s *Session) exec(ctx context.Context, op string, call func(native.Handle) native.Status, fields ...otamaerr.Attr) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeOpen(op)

	if err := ctx.Err(); err != nil {
		return err
	}

	st := call(s.handle)
	s.log.DebugContext(ctx, "native call", "op", op, "status", st.String())
	return statusError(op, st, s.fields(fields...)...)
}

// fields prepends the session id so errors correlate with log records.
func (s *Session) fields(extra ...otamaerr.Attr) []otamaerr.Attr {
	return append([]otamaerr.Attr{otamaerr.FieldSessionID(s.id)}, extra...)
}

func (s *Session) parseID(op, id string) (ID, error) {
	bin, err := ParseID(id)
	if err != nil {
		return ID{}, otamaerr.With(err, otamaerr.FieldOp(op), otamaerr.FieldSessionID(s.id))
	}
	return bin, nil
}

func (s *Session) mustBeOpen(op string) {
	if s.closed {
		panic("otama: " + op + " on closed session")
	}
}
