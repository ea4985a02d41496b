package utils

import (
	"fmt"
	"strings"
)

// The engine reports every failure through one of five error kinds.
// Controllers map them to HTTP status codes in a single place; services
// never touch transport codes.

// ValidationError signals missing or malformed input. The caller can
// recover by correcting the input.
type ValidationError struct {
	Message       string
	MissingFields []string
}

func (e *ValidationError) Error() string {
	if len(e.MissingFields) > 0 {
		return fmt.Sprintf("%s: missing fields [%s]", e.Message, strings.Join(e.MissingFields, ", "))
	}
	return e.Message
}

// AuthorizationError signals that the actor lacks the capability for
// the attempted operation. Never retried automatically.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// NotFoundError signals that a referenced application, document or
// profile does not exist (or is not visible to the actor).
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// ConflictError signals a unique-constraint violation or a concurrent
// state-transition race: the loser of two racing transitions sees this.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// StorageError signals a failure in the external blob store. Raised
// after the compensating cleanup described in the document workflow.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("blob storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
