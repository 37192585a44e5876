// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package otama

import (
	_ "github.com/otama-dev/otama-go/internal/native/libotama"  // register libotama backend (build tag otama)
	_ "github.com/otama-dev/otama-go/internal/native/sqlitevec" // register sqlite backend
)
