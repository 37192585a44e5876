// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package otama_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otama-dev/otama-go/internal/native"
	"github.com/otama-dev/otama-go/internal/native/nativetest"
	"github.com/otama-dev/otama-go/pkg/otama"
)

func scored(f *nativetest.Fake, sim float64) native.Value {
	return f.Hash(nativetest.Pair{Key: otama.SimilarityKey, Value: f.Float(sim)})
}

func TestAdaptResults_NativeOrder(t *testing.T) {
	f := nativetest.New()
	log, _ := testLogger()

	// Deliberately not sorted by similarity; the adapter must not reorder.
	rs := f.Results(
		nativetest.Row{ID: native.ID{1}, Value: scored(f, 0.4)},
		nativetest.Row{ID: native.ID{2}, Value: scored(f, 0.9)},
		nativetest.Row{ID: native.ID{3}, Value: scored(f, 0.1)},
	)

	hits, err := otama.AdaptResults(f, log, rs, 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, otama.ID{1}.String(), hits[0].ID)
	assert.Equal(t, otama.ID{2}.String(), hits[1].ID)
	assert.Equal(t, otama.ID{3}.String(), hits[2].ID)
	assert.InDelta(t, 0.4, hits[0].Similarity, 1e-6)
	assert.InDelta(t, 0.9, hits[1].Similarity, 1e-6)
	assert.Equal(t, 1, f.FreeCount(rs))
}

func TestAdaptResults_Empty(t *testing.T) {
	f := nativetest.New()
	log, _ := testLogger()
	rs := f.Results()

	hits, err := otama.AdaptResults(f, log, rs, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.NotNil(t, hits)
	assert.Equal(t, 1, f.FreeCount(rs))
}

func TestAdaptResults_DegradedSimilarity(t *testing.T) {
	f := nativetest.New()
	log, buf := testLogger()

	rs := f.Results(
		nativetest.Row{ID: native.ID{1}, Value: f.Hash()},
		nativetest.Row{ID: native.ID{2}, Value: f.Hash(nativetest.Pair{Key: otama.SimilarityKey, Value: f.Int(1)})},
		nativetest.Row{ID: native.ID{3}, Value: f.Float(0.8)},
		nativetest.Row{ID: native.ID{4}, Value: f.Null()},
	)

	hits, err := otama.AdaptResults(f, log, rs, 4)
	require.NoError(t, err)
	require.Len(t, hits, 4)
	for _, h := range hits {
		assert.Equal(t, float32(0.0), h.Similarity, h.ID)
		assert.Equal(t, otama.DefaultSimilarity, h.Similarity)
	}
	assert.Contains(t, buf.String(), "no float similarity")
	assert.Equal(t, 1, f.FreeCount(rs))
}

func TestAdaptResults_TruncatesToRequested(t *testing.T) {
	f := nativetest.New()
	log, buf := testLogger()

	rs := f.Results(
		nativetest.Row{ID: native.ID{1}, Value: scored(f, 0.9)},
		nativetest.Row{ID: native.ID{2}, Value: scored(f, 0.8)},
		nativetest.Row{ID: native.ID{3}, Value: scored(f, 0.7)},
	)

	hits, err := otama.AdaptResults(f, log, rs, 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
	assert.Contains(t, buf.String(), "truncating")
	assert.Equal(t, 1, f.FreeCount(rs))
}

func TestAdaptResults_NegativeCount(t *testing.T) {
	f := nativetest.New()
	log, _ := testLogger()
	rs := f.Results()
	f.SetResultCount(rs, -1)

	_, err := otama.AdaptResults(f, log, rs, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, otama.ErrAssertionFailure)
	assert.Equal(t, 1, f.FreeCount(rs))
}

func TestAdaptResults_ReleasedOnPanic(t *testing.T) {
	f := nativetest.New()
	log, _ := testLogger()

	rs := f.Results(
		nativetest.Row{ID: native.ID{1}, Value: scored(f, 0.9)},
		nativetest.Row{ID: native.ID{2}, Value: 0},
	)

	assert.Panics(t, func() { _, _ = otama.AdaptResults(f, log, rs, 2) })
	assert.Equal(t, 1, f.FreeCount(rs))
}

func TestAdaptResults_FewerRowsThanReported(t *testing.T) {
	f := nativetest.New()
	log, _ := testLogger()

	// The engine claims two rows but only has one: the second row has no
	// identifier, which is a contract violation.
	rs := f.Results(nativetest.Row{ID: native.ID{1}, Value: scored(f, 0.9)})
	f.SetResultCount(rs, 2)

	assert.Panics(t, func() { _, _ = otama.AdaptResults(f, log, rs, 5) })
	assert.Equal(t, 1, f.FreeCount(rs))
}

func TestAdaptResults_NullRowID(t *testing.T) {
	f := nativetest.New()
	log, _ := testLogger()

	rs := f.Results(
		nativetest.Row{ID: native.ID{1}, Value: scored(f, 0.9)},
		nativetest.Row{Value: scored(f, 0.5), NullID: true},
	)

	assert.PanicsWithValue(t, "otama: native result row 1 of 2 has no identifier", func() {
		_, _ = otama.AdaptResults(f, log, rs, 5)
	})
	assert.Equal(t, 1, f.FreeCount(rs))
}

func TestAdaptResults_KeepsRowValue(t *testing.T) {
	f := nativetest.New()
	log, _ := testLogger()

	rs := f.Results(nativetest.Row{
		ID: native.ID{7},
		Value: f.Hash(
			nativetest.Pair{Key: otama.SimilarityKey, Value: f.Float(0.75)},
			nativetest.Pair{Key: "label", Value: f.Text("cat")},
		),
	})

	hits, err := otama.AdaptResults(f, log, rs, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	m, ok := hits[0].Value.(otama.Mapping)
	require.True(t, ok)
	assert.Equal(t, otama.Text("cat"), m["label"])
	assert.InDelta(t, 0.75, hits[0].Similarity, 1e-6)
}
