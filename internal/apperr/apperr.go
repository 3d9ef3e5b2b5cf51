// Package apperr defines the error taxonomy shared by the service layer.
// Handlers translate kinds into HTTP statuses; services never retry.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnauthorized
	KindInvalidArgument
	KindConflict
)

type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound marks a missing Post/Comment/User/Category.
func NotFound(resource string, id uint) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: id=%d", resource, id)}
}

func NotFoundName(resource, name string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: name=%s", resource, name)}
}

func Unauthorized(reason string) *Error {
	return &Error{Kind: KindUnauthorized, Message: reason}
}

func InvalidArgument(reason string) *Error {
	return &Error{Kind: KindInvalidArgument, Message: reason}
}

func Conflict(reason string) *Error {
	return &Error{Kind: KindConflict, Message: reason}
}

// Internal wraps an unexpected failure. The cause is kept for logs but the
// message stays opaque to callers.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf extracts the taxonomy kind, defaulting to KindInternal for
// unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
