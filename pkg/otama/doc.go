// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

// Package otama is a safe Go front end for handle-based media fingerprint
// engines. A Session owns one native engine handle; search results, dynamic
// values and identifiers are copied into owned Go values before any call
// returns, so callers never hold a reference into native memory.
//
// Failures are classified into a closed set of ErrorKinds. Use KindOf or
// errors.Is with the Err* sentinels to branch on them.
package otama
