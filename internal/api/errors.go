package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Op names one client operation.
type Op string

const (
	OpCreate Op = "create"
	OpList   Op = "list"
	OpGet    Op = "get"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpUpload Op = "upload"
)

// Failure kinds. Every *Error matches exactly one of these with errors.Is.
var (
	ErrFetchFailed  = errors.New("failed to fetch items")
	ErrCreateFailed = errors.New("failed to create item")
	ErrUpdateFailed = errors.New("failed to update item")
	ErrDeleteFailed = errors.New("failed to delete item")
	ErrUploadFailed = errors.New("failed to upload image")
)

// Kind returns the failure kind for op.
func (op Op) Kind() error {
	switch op {
	case OpCreate:
		return ErrCreateFailed
	case OpUpdate:
		return ErrUpdateFailed
	case OpDelete:
		return ErrDeleteFailed
	case OpUpload:
		return ErrUploadFailed
	default:
		return ErrFetchFailed
	}
}

// Error is returned by every Client method on failure.
// Status holds the non-2xx response status, or 0 when the failure happened
// before or after the status check.
type Error struct {
	Op     Op
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := e.Op.Kind().Error()
	if e.Status != 0 {
		msg += fmt.Sprintf(" (%d %s)", e.Status, http.StatusText(e.Status))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Op.Kind()}
	}
	return []error{e.Op.Kind(), e.Err}
}

// KindOf returns the failure kind carried by err, or nil if err did not
// come from the client.
func KindOf(err error) error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Op.Kind()
	}
	return nil
}
