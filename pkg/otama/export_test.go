// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package otama

import (
	"log/slog"

	"github.com/otama-dev/otama-go/internal/native"
)

// MapStatus exposes mapStatus for white-box testing.
var MapStatus = mapStatus

// StatusError exposes statusError for white-box testing.
var StatusError = statusError

// AdaptResults exposes adaptResults for white-box testing.
var AdaptResults = adaptResults

// WithEngine injects a native engine in place of a registered backend.
func WithEngine(e native.Engine) Option { return withEngine(e) }

// Decode runs the value decoder against eng.
func Decode(eng native.Engine, log *slog.Logger, v native.Value) Value {
	return decoder{eng: eng, log: log}.decode(v)
}
