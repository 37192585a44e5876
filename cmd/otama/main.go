// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package main

import (
	"fmt"
	"os"

	otamaerr "github.com/otama-dev/otama-go/pkg/errors"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "otama:", err)
		os.Exit(otamaerr.ExitCode(err))
	}
}
