package core

import (
	"errors"
	"fmt"
)

// AbortReason classifies a business-rule rejection.
type AbortReason string

const (
	ReasonNotFound   AbortReason = "not_found"
	ReasonNotAllowed AbortReason = "not_allowed"
	ReasonConflict   AbortReason = "conflict"
	ReasonMalformed  AbortReason = "malformed"
)

// Abort is a typed business-rule rejection. Returning one from inside a
// store transaction unwinds it immediately, without retry and with zero
// visible side effects.
type Abort struct {
	Reason  AbortReason `json:"reason"`
	Message string      `json:"message"`
}

func (a Abort) Error() string {
	return fmt.Sprintf("%s: %s", a.Reason, a.Message)
}

func NotFound(message string) Abort {
	return Abort{Reason: ReasonNotFound, Message: message}
}

func NotAllowed(message string) Abort {
	return Abort{Reason: ReasonNotAllowed, Message: message}
}

func Conflict(message string) Abort {
	return Abort{Reason: ReasonConflict, Message: message}
}

func Malformed(message string) Abort {
	return Abort{Reason: ReasonMalformed, Message: message}
}

func AsAbort(err error) (Abort, bool) {
	var abort Abort
	ok := errors.As(err, &abort)
	return abort, ok
}

// StorageError is a fatal failure of the underlying store. It propagates
// upward uninterpreted and fails the whole request.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// SerializationError reports a corrupt or incompatible stored
// representation. Like StorageError it is fatal for the request.
type SerializationError struct {
	What string
	Err  error
}

func NewSerializationError(what string, err error) *SerializationError {
	return &SerializationError{What: what, Err: err}
}

func (e *SerializationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("serialization: corrupt %s", e.What)
	}

	return fmt.Sprintf("serialization: %s: %v", e.What, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
