// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package otama_test

import (
	"context"
	"image/color"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otama-dev/otama-go/internal/native"
	"github.com/otama-dev/otama-go/internal/native/nativetest"
	"github.com/otama-dev/otama-go/pkg/otama"
)

var hexID = regexp.MustCompile(`^[0-9a-f]{40}$`)

func openSQLite(t *testing.T) *otama.Session {
	t.Helper()
	log, _ := testLogger()
	s, err := otama.Open(nativetest.EngineConfig(t, "scenario"),
		otama.WithBackend(native.BackendSQLite),
		otama.WithLogger(log),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestScenario_CreateAndInsert(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	require.NoError(t, s.CreateDatabase(ctx))

	path := nativetest.WriteFile(t, t.TempDir(), "green.png", nativetest.PNG(t, color.RGBA{G: 255, A: 255}, 16, 16))
	id, err := s.Insert(ctx, path)
	require.NoError(t, err)
	assert.Regexp(t, hexID, id)
}

func TestScenario_PullThenSearch(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	require.NoError(t, s.CreateDatabase(ctx))

	dir := t.TempDir()
	redPath := nativetest.WriteFile(t, dir, "red.png", nativetest.PNG(t, color.RGBA{R: 255, A: 255}, 16, 16))
	mixPath := nativetest.WriteFile(t, dir, "mix.png",
		nativetest.Split(t, color.RGBA{R: 255, A: 255}, color.RGBA{B: 255, A: 255}, 16, 16, 4))

	redID, err := s.Insert(ctx, redPath)
	require.NoError(t, err)
	mixID, err := s.Insert(ctx, mixPath)
	require.NoError(t, err)
	require.NoError(t, s.Pull(ctx))

	hits, err := s.Search(ctx, 10, redPath)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, redID, hits[0].ID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-3)
	assert.Equal(t, mixID, hits[1].ID)
	assert.Less(t, hits[1].Similarity, hits[0].Similarity)

	byID, err := s.SearchID(ctx, 1, mixID)
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, mixID, byID[0].ID)
}

func TestScenario_SearchZeroLimit(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	require.NoError(t, s.CreateDatabase(ctx))

	_, err := s.Search(ctx, 0, "never-read.png")
	requireKind(t, err, otama.KindInvalidArguments)
}

func TestScenario_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	_, err := s.Count(ctx)
	requireKind(t, err, otama.KindNoData)

	require.NoError(t, s.CreateDatabase(ctx))
	data := nativetest.PNG(t, color.White, 8, 8)
	id, err := s.InsertData(ctx, data)
	require.NoError(t, err)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	found, err := s.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, s.Remove(ctx, id))
	requireKind(t, s.Remove(ctx, id), otama.KindNoData)

	_, err = s.InsertData(ctx, []byte("not an image"))
	requireKind(t, err, otama.KindInvalidArguments)

	require.NoError(t, s.DropDatabase(ctx))
	_, err = s.Count(ctx)
	requireKind(t, err, otama.KindNoData)
}

func TestScenario_OpenBadConfig(t *testing.T) {
	_, err := otama.Open("/nonexistent/engine.yaml", otama.WithBackend(native.BackendSQLite))
	requireKind(t, err, otama.KindUnknown)
}
