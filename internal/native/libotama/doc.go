// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

// Package libotama binds the native libotama engine through cgo and registers
// it as the "libotama" backend. The binding is compiled only with the otama
// build tag and cgo enabled (go build -tags otama), since it links -lotama.
package libotama
