package xla

// This file implements the conversion of the native status objects to Go errors.

/*
#include "xla_rs.h"
*/
import "C"
import (
	"github.com/pkg/errors"
)

// Error is a failure reported by the XLA library.
// It is returned wrapped with a stack trace: use errors.As to retrieve it.
type Error struct {
	Msg string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return "XLA error: " + e.Msg
}

// statusToError converts a status returned by a native call to an error, or nil if there were no errors.
// It reads the message and frees the status, so the status must not be used afterward.
func statusToError(s C.status) error {
	if s == nil {
		return nil
	}
	msg := cStrFree(C.status_error_message(s))
	C.status_free(s)
	return errors.WithStack(&Error{Msg: msg})
}
