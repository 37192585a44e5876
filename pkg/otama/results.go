// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package otama

import (
	"fmt"
	"log/slog"

	"github.com/otama-dev/otama-go/internal/native"
	otamaerr "github.com/otama-dev/otama-go/pkg/errors"
)

// SimilarityKey is the row value key holding the similarity score.
const SimilarityKey = "similarity"

// DefaultSimilarity is reported for rows whose value carries no Float under
// SimilarityKey. Identity is what matters for a hit; a missing score does not
// fail the row.
const DefaultSimilarity float32 = 0

// SearchHit is one ranked result of a similarity query. Value is the full
// decoded row value the score was read from; engines may attach more keys
// than SimilarityKey.
type SearchHit struct {
	ID         string  `json:"id"`
	Similarity float32 `json:"similarity"`
	Value      Value   `json:"-"`
}

// adaptResults turns a native result set into SearchHits in native order.
// rs is released exactly once before returning, including when decoding
// panics.
func adaptResults(eng native.Engine, log *slog.Logger, rs native.Results, requested int) ([]SearchHit, error) {
	defer eng.FreeResults(rs)

	n := eng.ResultCount(rs)
	if n < 0 {
		return nil, kindError(KindAssertionFailure, "search", otamaerr.Field("count", n))
	}
	if n > requested {
		log.Warn("engine returned more rows than requested, truncating", "count", n, "requested", requested)
		n = requested
	}

	dec := decoder{eng: eng, log: log}
	hits := make([]SearchHit, 0, n)
	for i := 0; i < n; i++ {
		id, ok := eng.ResultID(rs, i)
		if !ok {
			panic(fmt.Sprintf("otama: native result row %d of %d has no identifier", i, n))
		}
		val := dec.decode(eng.ResultValue(rs, i))
		hits = append(hits, SearchHit{
			ID:         ID(id).String(),
			Similarity: similarity(log, val, i),
			Value:      val,
		})
	}
	return hits, nil
}

func similarity(log *slog.Logger, v Value, row int) float32 {
	if m, ok := v.(Mapping); ok {
		if f, ok := m.Float(SimilarityKey); ok {
			return f
		}
	}
	log.Warn("search row has no float similarity, using default",
		"row", row,
		"type", v.Type().String(),
		"default", DefaultSimilarity,
	)
	return DefaultSimilarity
}
