package docfed

import (
	"errors"
	"fmt"
)

// Application error codes. They map domain failures onto a small,
// machine-readable vocabulary that transport layers can translate.
const (
	ECONFIG      = "config"      // missing or contradictory configuration
	EINVALID     = "invalid"     // validation failed
	EMALFORMED   = "malformed"   // provider payload could not be decoded
	ENOTFOUND    = "not_found"   // entity does not exist
	EPROVIDER    = "provider"    // provider call failed
	ETIMEOUT     = "timeout"     // deadline expired
	EUNAVAILABLE = "unavailable" // dependency temporarily unavailable
	EINTERNAL    = "internal"    // unexpected internal error
)

// Error represents an application error with a machine-readable code
// and a human-readable message.
type Error struct {
	// Code is one of the E* constants above.
	Code string

	// Message is a human-readable description of the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("docfed error: code=%s message=%s", e.Code, e.Message)
}

// Errorf constructs an Error with the given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors return EINTERNAL; a nil error returns
// an empty string.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors return a generic message; a nil error returns
// an empty string.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}
