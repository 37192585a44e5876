// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package otama

import (
	"encoding/hex"

	"github.com/otama-dev/otama-go/internal/native"
	otamaerr "github.com/otama-dev/otama-go/pkg/errors"
)

const (
	// IDLen is the width of a binary identifier in bytes.
	IDLen = native.IDLen
	// IDHexLen is the length of the textual form of an identifier.
	IDHexLen = IDLen * 2
)

// ID is the binary form of an entry identifier.
type ID [IDLen]byte

// String returns the 40-character lowercase hex form of id.
func (id ID) String() string {
	return EncodeID(id)
}

// EncodeID converts a binary identifier to its canonical lowercase hex form.
func EncodeID(id ID) string {
	var buf [IDHexLen]byte
	hex.Encode(buf[:], id[:])
	return string(buf[:])
}

// ParseID converts a hex identifier back to binary. Upper- and lowercase
// digits are accepted; any other length or character is InvalidArguments.
func ParseID(s string) (ID, error) {
	var id ID
	if len(s) != IDHexLen {
		return id, kindError(KindInvalidArguments, "parse id",
			otamaerr.Field("length", len(s)),
		)
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return ID{}, kindError(KindInvalidArguments, "parse id",
			otamaerr.Field("reason", err.Error()),
		)
	}
	return id, nil
}
