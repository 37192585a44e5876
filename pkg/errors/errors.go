// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package errors

import (
	"fmt"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeEngineNoData             Code = "engine.status.no_data"
	CodeEngineInvalidArguments   Code = "engine.status.invalid_arguments"
	CodeEngineAssertionFailure   Code = "engine.status.assertion_failure"
	CodeEngineSystemError        Code = "engine.status.system_error"
	CodeEngineNotImplemented     Code = "engine.status.not_implemented"
	CodeEngineEndOfStream        Code = "engine.status.end_of_stream"
	CodeEngineUnknown            Code = "engine.status.unknown"
	CodeEngineBackendUnsupported Code = "engine.backend.unsupported"

	CodeConfigLoadReadFailure      Code = "config.load.read_failure"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"

	CodeCLIInputInvalid  Code = "cli.input.invalid"
	CodeCLISetupFailure  Code = "cli.setup.failure"
	CodeCLIOutputFailure Code = "cli.output.failure"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// FieldValue creates a structured error field.
func FieldValue(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Field is kept as the primary helper for terse callsites.
func Field(key string, value any) Attr {
	return FieldValue(key, value)
}

func FieldOp(value string) Attr {
	return Field("op", value)
}

func FieldPath(value string) Attr {
	return Field("path", value)
}

func FieldBackend(value string) Attr {
	return Field("backend", value)
}

func FieldSessionID(value string) Attr {
	return Field("session_id", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

// With adds structured fields to an existing error chain.
func With(err error, fields ...Attr) error {
	if err == nil {
		return nil
	}

	code := CodeOf(err)
	if code == "" {
		code = CodeEngineUnknown
	}

	return oops.Code(code).With(flatten(fields)...).Wrap(err)
}

func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}

	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}

	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

func IsNoData(err error) bool {
	return reason(CodeOf(err)) == "no_data"
}

func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid" || r == "invalid_arguments" || r == "invalid_value"
}

func IsNotImplemented(err error) bool {
	return reason(CodeOf(err)) == "not_implemented"
}

// ExitCode maps an error to a process exit status for the CLI.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case IsInvalidInput(err):
		return 2
	case IsNoData(err):
		return 3
	case IsNotImplemented(err):
		return 4
	default:
		return 1
	}
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}

func reason(code Code) string {
	if code == "" {
		return ""
	}

	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}
