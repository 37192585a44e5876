// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package native

import (
	"sort"
	"sync"

	otamaerr "github.com/otama-dev/otama-go/pkg/errors"
)

// Backend names known to this module.
const (
	BackendLibotama = "libotama"
	BackendSQLite   = "sqlite"
)

// Factory creates an Engine for a registered backend.
type Factory func() Engine

var (
	factories   = map[string]Factory{}
	factoriesMu sync.RWMutex
)

// Register registers a factory for a named backend. Backend packages call this
// from init(). This function is goroutine-safe.
func Register(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// Lookup creates an engine for the named backend. An empty name or "auto"
// resolves to DefaultBackend.
func Lookup(name string) (Engine, error) {
	if name == "" || name == "auto" {
		name = DefaultBackend()
	}

	factoriesMu.RLock()
	f, ok := factories[name]
	factoriesMu.RUnlock()
	if !ok {
		return nil, otamaerr.New(otamaerr.CodeEngineBackendUnsupported,
			"unsupported engine backend",
			otamaerr.FieldBackend(name),
			otamaerr.Field("available", Backends()),
		)
	}

	return f(), nil
}

// DefaultBackend prefers the linked libotama and falls back to the SQLite
// reference engine.
func DefaultBackend() string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	if _, ok := factories[BackendLibotama]; ok {
		return BackendLibotama
	}
	return BackendSQLite
}

// Backends lists the registered backend names in sorted order.
func Backends() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
