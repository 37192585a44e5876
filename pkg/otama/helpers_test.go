// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package otama_test

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/otama-dev/otama-go/internal/native/nativetest"
	"github.com/otama-dev/otama-go/pkg/otama"
)

// logBuffer is a goroutine-safe sink for a text slog handler.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testLogger() (*slog.Logger, *logBuffer) {
	buf := &logBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// openFake opens a session backed by a fresh Fake and closes it on cleanup.
func openFake(t *testing.T) (*otama.Session, *nativetest.Fake, *logBuffer) {
	t.Helper()
	fake := nativetest.New()
	log, buf := testLogger()
	s, err := otama.Open("engine.yaml", otama.WithEngine(fake), otama.WithLogger(log))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, fake, buf
}
