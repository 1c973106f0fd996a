package model

import (
	"errors"
	"fmt"
)

// ErrorCode classifies fatal compile-time errors.
type ErrorCode string

const (
	// CodeUnsupportedConfig is returned when a backend is asked for an option
	// it cannot honor, such as an unknown regex dialect.
	CodeUnsupportedConfig ErrorCode = "unsupported_config"

	// CodeMalformedModel is returned for a dangling reference, an inconsistent
	// node or any other structural problem of the input model.
	CodeMalformedModel ErrorCode = "malformed_model"

	// CodeInternal is returned when a compiler invariant does not hold, such as
	// a fingerprint collision between structurally different nodes.
	CodeInternal ErrorCode = "internal"
)

// Error is a fatal compile-time error. Generation stops at the first one.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Errorf builds an *Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
