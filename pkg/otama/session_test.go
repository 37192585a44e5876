// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package otama_test

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otama-dev/otama-go/internal/native"
	"github.com/otama-dev/otama-go/internal/native/nativetest"
	otamaerr "github.com/otama-dev/otama-go/pkg/errors"
	"github.com/otama-dev/otama-go/pkg/otama"
)

func requireKind(t *testing.T, err error, want otama.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	kind, ok := otama.KindOf(err)
	require.True(t, ok, "error %v carries no kind", err)
	assert.Equal(t, want, kind)
}

func TestOpen_FailureIsUnknown(t *testing.T) {
	for _, st := range []native.Status{
		native.StatusNoData,
		native.StatusInvalidArguments,
		native.StatusSysError,
		native.Status(77),
	} {
		t.Run(st.String(), func(t *testing.T) {
			fake := nativetest.New()
			fake.SetStatus("open", st)

			s, err := otama.Open("missing.yaml", otama.WithEngine(fake))
			assert.Nil(t, s)
			requireKind(t, err, otama.KindUnknown)
			assert.Equal(t, "missing.yaml", otamaerr.FieldsOf(err)["path"])
			assert.Zero(t, fake.OpenHandles())
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := otama.Open("engine.yaml", otama.WithBackend("nope"))
	require.Error(t, err)
	assert.True(t, otamaerr.HasCode(err, otamaerr.CodeEngineBackendUnsupported))
}

func TestSession_IDAndLogging(t *testing.T) {
	s, _, buf := openFake(t)
	assert.NotEmpty(t, s.ID())
	assert.Contains(t, buf.String(), "engine session opened")
	assert.Contains(t, buf.String(), "session_id="+s.ID())
}

func TestSession_CloseOnce(t *testing.T) {
	fake := nativetest.New()
	s, err := otama.Open("engine.yaml", otama.WithEngine(fake))
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.Equal(t, 1, fake.CloseCount(native.Handle(1)))
	assert.Zero(t, fake.OpenHandles())
}

func TestSession_UseAfterClosePanics(t *testing.T) {
	fake := nativetest.New()
	s, err := otama.Open("engine.yaml", otama.WithEngine(fake))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	ctx := context.Background()
	assert.Panics(t, func() { _ = s.CreateDatabase(ctx) })
	assert.Panics(t, func() { _ = s.Pull(ctx) })
	assert.Panics(t, func() { _, _ = s.Insert(ctx, "a.jpg") })
	assert.Panics(t, func() { _, _ = s.Search(ctx, 5, "a.jpg") })
	assert.Equal(t, []string{"open", "close"}, fake.Calls())
}

func TestSession_ReleasedWithoutClose(t *testing.T) {
	fake := nativetest.New()
	func() {
		_, err := otama.Open("engine.yaml", otama.WithEngine(fake))
		require.NoError(t, err)
	}()
	require.Equal(t, 1, fake.OpenHandles())

	assert.Eventually(t, func() bool {
		runtime.GC()
		return fake.OpenHandles() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestSession_StatusMapping(t *testing.T) {
	ctx := context.Background()
	validID := strings.Repeat("ab", otama.IDLen)

	ops := []struct {
		call string
		run  func(*otama.Session) error
	}{
		{"create_database", func(s *otama.Session) error { return s.CreateDatabase(ctx) }},
		{"drop_database", func(s *otama.Session) error { return s.DropDatabase(ctx) }},
		{"pull", func(s *otama.Session) error { return s.Pull(ctx) }},
		{"insert_file", func(s *otama.Session) error { _, err := s.Insert(ctx, "a.jpg"); return err }},
		{"insert_data", func(s *otama.Session) error { _, err := s.InsertData(ctx, []byte{1}); return err }},
		{"remove", func(s *otama.Session) error { return s.Remove(ctx, validID) }},
		{"exists", func(s *otama.Session) error { _, err := s.Exists(ctx, validID); return err }},
		{"count", func(s *otama.Session) error { _, err := s.Count(ctx); return err }},
		{"search_file", func(s *otama.Session) error { _, err := s.Search(ctx, 3, "a.jpg"); return err }},
		{"search_data", func(s *otama.Session) error { _, err := s.SearchData(ctx, 3, []byte{1}); return err }},
		{"search_id", func(s *otama.Session) error { _, err := s.SearchID(ctx, 3, validID); return err }},
	}

	statuses := map[native.Status]otama.ErrorKind{
		native.StatusNoData:           otama.KindNoData,
		native.StatusInvalidArguments: otama.KindInvalidArguments,
		native.StatusAssertionFailure: otama.KindAssertionFailure,
		native.StatusSysError:         otama.KindSystemError,
		native.StatusNotImplemented:   otama.KindNotImplemented,
		native.StatusEnd:              otama.KindEndOfStream,
		native.Status(99):             otama.KindUnknown,
	}

	for _, op := range ops {
		for st, want := range statuses {
			t.Run(op.call+"/"+want.String(), func(t *testing.T) {
				s, fake, _ := openFake(t)
				fake.SetStatus(op.call, st)
				requireKind(t, op.run(s), want)
			})
		}
	}
}

func TestSession_Insert(t *testing.T) {
	s, fake, _ := openFake(t)
	fake.InsertID = native.ID{0x0f, 0xa0}

	id, err := s.Insert(context.Background(), "photos/cat.jpg")
	require.NoError(t, err)
	assert.Equal(t, "0fa0"+strings.Repeat("0", 36), id)
	assert.Equal(t, "photos/cat.jpg", fake.LastPath)

	id, err = s.InsertData(context.Background(), []byte("raw"))
	require.NoError(t, err)
	assert.Len(t, id, otama.IDHexLen)
}

func TestSession_IDArguments(t *testing.T) {
	ctx := context.Background()
	s, fake, _ := openFake(t)
	fake.ExistsResult = true

	hexID := "00112233445566778899aabbccddeeff00112233"
	found, err := s.Exists(ctx, hexID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, hexID, otama.ID(fake.LastID).String())

	require.NoError(t, s.Remove(ctx, strings.ToUpper(hexID)))
	assert.Equal(t, hexID, otama.ID(fake.LastID).String())

	before := len(fake.Calls())
	err = s.Remove(ctx, "not-an-id")
	requireKind(t, err, otama.KindInvalidArguments)
	assert.Equal(t, "remove", otamaerr.FieldsOf(err)["op"])
	_, err = s.SearchID(ctx, 1, "xyz")
	requireKind(t, err, otama.KindInvalidArguments)
	assert.Len(t, fake.Calls(), before, "malformed ids never reach the engine")
}

func TestSession_Count(t *testing.T) {
	s, fake, _ := openFake(t)
	fake.CountResult = 12

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
}

func TestSession_Search(t *testing.T) {
	s, fake, _ := openFake(t)
	rs := fake.Results(
		nativetest.Row{ID: native.ID{9}, Value: scored(fake, 0.99)},
		nativetest.Row{ID: native.ID{8}, Value: scored(fake, 0.5)},
	)
	fake.SearchResults = rs

	hits, err := s.Search(context.Background(), 10, "query.jpg")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, otama.ID{9}.String(), hits[0].ID)
	assert.InDelta(t, 0.99, hits[0].Similarity, 1e-6)

	assert.Equal(t, 10, fake.LastLimit)
	assert.Equal(t, "query.jpg", fake.LastPath)
	assert.Equal(t, 1, fake.FreeCount(rs))
}

func TestSession_SearchLimitBelowOne(t *testing.T) {
	s, fake, _ := openFake(t)

	for _, limit := range []int{0, -1} {
		_, err := s.Search(context.Background(), limit, "query.jpg")
		requireKind(t, err, otama.KindInvalidArguments)
		_, err = s.SearchData(context.Background(), limit, []byte{1})
		requireKind(t, err, otama.KindInvalidArguments)
	}
	assert.Equal(t, []string{"open"}, fake.Calls())
}

func TestSession_SearchFailureSkipsAdapter(t *testing.T) {
	s, fake, _ := openFake(t)
	fake.SetStatus("search_file", native.StatusSysError)

	_, err := s.Search(context.Background(), 5, "query.jpg")
	requireKind(t, err, otama.KindSystemError)
	assert.NotContains(t, fake.Calls(), "free_results")
}

func TestSession_SearchNullResultSet(t *testing.T) {
	s, fake, _ := openFake(t)
	fake.SearchResults = 0

	_, err := s.Search(context.Background(), 5, "query.jpg")
	requireKind(t, err, otama.KindAssertionFailure)
}

func TestSession_ErrorsCarrySessionID(t *testing.T) {
	ctx := context.Background()
	s, fake, _ := openFake(t)
	fake.SetStatus("pull", native.StatusNoData)
	neg := fake.Results()
	fake.SetResultCount(neg, -1)
	fake.SearchResults = neg

	_, limitErr := s.Search(ctx, 0, "query.jpg")
	_, idErr := s.Exists(ctx, "nope")
	_, countErr := s.SearchData(ctx, 3, []byte{1})
	for name, err := range map[string]error{
		"status":  s.Pull(ctx),
		"limit":   limitErr,
		"bad id":  idErr,
		"adapter": countErr,
	} {
		require.Error(t, err, name)
		assert.Equal(t, s.ID(), otamaerr.FieldsOf(err)["session_id"], name)
	}
}

func TestSession_CanceledContext(t *testing.T) {
	s, fake, _ := openFake(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Pull(ctx), context.Canceled)
	_, err := s.Search(ctx, 5, "q.jpg")
	assert.ErrorIs(t, err, context.Canceled)
	_, ok := otama.KindOf(err)
	assert.False(t, ok)
	assert.Equal(t, []string{"open"}, fake.Calls())
}

func TestSession_Serialised(t *testing.T) {
	s, fake, _ := openFake(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Pull(context.Background())
		}()
	}
	wg.Wait()

	pulls := 0
	for _, c := range fake.Calls() {
		if c == "pull" {
			pulls++
		}
	}
	assert.Equal(t, 16, pulls)
}
