package application

import (
	"errors"
	"fmt"
)

// Reason classifies a failure for the transport layer.
type Reason string

const (
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonForbidden       Reason = "forbidden"
	ReasonInvalidInput    Reason = "invalid input"
	ReasonNotFound        Reason = "not found"
	ReasonStore           Reason = "store error"
	ReasonInternal        Reason = "internal error"
)

const genericInternalMessage = "internal server error"

// Error is the single error type returned by services.
type Error struct {
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// ReasonOf extracts the reason carried by err. Unknown errors are internal.
func ReasonOf(err error) Reason {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ReasonInternal
}

// PublicMessage is the text safe to show to a client for err.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Reason != ReasonInternal {
		return appErr.Message
	}
	return genericInternalMessage
}

func errUnauthenticated() error {
	return &Error{Reason: ReasonUnauthenticated, Message: "authentication required"}
}

func errForbidden() error {
	return &Error{Reason: ReasonForbidden, Message: "not allowed to modify this resource"}
}

func errInvalidInput(msg string) error {
	return &Error{Reason: ReasonInvalidInput, Message: msg}
}

func errNotFound(msg string) error {
	return &Error{Reason: ReasonNotFound, Message: msg}
}

// errStore passes the store's own message through to the client.
func errStore(err error) error {
	return &Error{Reason: ReasonStore, Message: err.Error(), Err: err}
}

func errInternal(err error) error {
	return &Error{Reason: ReasonInternal, Message: genericInternalMessage, Err: err}
}
