// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package otama

import (
	stderrors "errors"

	"github.com/otama-dev/otama-go/internal/native"
	otamaerr "github.com/otama-dev/otama-go/pkg/errors"
)

// ErrorKind classifies a failed engine call. It is the only failure detail
// surfaced to callers; native status codes and messages are not propagated.
type ErrorKind int

const (
	KindNoData ErrorKind = iota + 1
	KindInvalidArguments
	KindAssertionFailure
	KindSystemError
	KindNotImplemented
	KindEndOfStream
	KindUnknown
)

// Sentinels for errors.Is. Session errors wrap exactly one, except context
// cancellation errors, which are returned as is, and backend lookup failures
// from Open, which carry only an engine.backend code.
var (
	ErrNoData           = stderrors.New("no data")
	ErrInvalidArguments = stderrors.New("invalid arguments")
	ErrAssertionFailure = stderrors.New("assertion failure")
	ErrSystemError      = stderrors.New("system error")
	ErrNotImplemented   = stderrors.New("not implemented")
	ErrEndOfStream      = stderrors.New("end of stream")
	ErrUnknown          = stderrors.New("unknown error")
)

var kinds = []ErrorKind{
	KindNoData,
	KindInvalidArguments,
	KindAssertionFailure,
	KindSystemError,
	KindNotImplemented,
	KindEndOfStream,
	KindUnknown,
}

func (k ErrorKind) String() string {
	switch k {
	case KindNoData:
		return "NoData"
	case KindInvalidArguments:
		return "InvalidArguments"
	case KindAssertionFailure:
		return "AssertionFailure"
	case KindSystemError:
		return "SystemError"
	case KindNotImplemented:
		return "NotImplemented"
	case KindEndOfStream:
		return "EndOfStream"
	default:
		return "Unknown"
	}
}

// Code returns the machine-readable error code for the kind.
func (k ErrorKind) Code() otamaerr.Code {
	switch k {
	case KindNoData:
		return otamaerr.CodeEngineNoData
	case KindInvalidArguments:
		return otamaerr.CodeEngineInvalidArguments
	case KindAssertionFailure:
		return otamaerr.CodeEngineAssertionFailure
	case KindSystemError:
		return otamaerr.CodeEngineSystemError
	case KindNotImplemented:
		return otamaerr.CodeEngineNotImplemented
	case KindEndOfStream:
		return otamaerr.CodeEngineEndOfStream
	default:
		return otamaerr.CodeEngineUnknown
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNoData:
		return ErrNoData
	case KindInvalidArguments:
		return ErrInvalidArguments
	case KindAssertionFailure:
		return ErrAssertionFailure
	case KindSystemError:
		return ErrSystemError
	case KindNotImplemented:
		return ErrNotImplemented
	case KindEndOfStream:
		return ErrEndOfStream
	default:
		return ErrUnknown
	}
}

// KindOf reports the ErrorKind carried by err. The second result is false
// when err is nil or did not originate from this package.
func KindOf(err error) (ErrorKind, bool) {
	if err == nil {
		return 0, false
	}
	for _, k := range kinds {
		if stderrors.Is(err, k.sentinel()) {
			return k, true
		}
	}
	return 0, false
}

// mapStatus classifies a native status. ok is true only for StatusOK.
// Codes outside the known set map to KindUnknown.
func mapStatus(st native.Status) (kind ErrorKind, ok bool) {
	switch st {
	case native.StatusOK:
		return 0, true
	case native.StatusNoData:
		return KindNoData, false
	case native.StatusInvalidArguments:
		return KindInvalidArguments, false
	case native.StatusAssertionFailure:
		return KindAssertionFailure, false
	case native.StatusSysError:
		return KindSystemError, false
	case native.StatusNotImplemented:
		return KindNotImplemented, false
	case native.StatusEnd:
		return KindEndOfStream, false
	default:
		return KindUnknown, false
	}
}

func statusError(op string, st native.Status, fields ...otamaerr.Attr) error {
	kind, ok := mapStatus(st)
	if ok {
		return nil
	}
	return kindError(kind, op, fields...)
}

func kindError(kind ErrorKind, op string, fields ...otamaerr.Attr) error {
	fields = append([]otamaerr.Attr{otamaerr.FieldOp(op)}, fields...)
	return otamaerr.Wrap(kind.sentinel(), kind.Code(), op, fields...)
}
