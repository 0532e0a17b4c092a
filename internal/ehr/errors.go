package ehr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrReference       = errors.New("reference error")
)

// QueryError is returned by every lookup and query in this module.
// Match the kind with errors.Is(err, ErrNotFound) and friends.
type QueryError struct {
	kind error
	msg  string
}

func newQueryError(kind error, format string, args ...any) *QueryError {
	return &QueryError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...any) *QueryError {
	return newQueryError(ErrNotFound, format, args...)
}

func NewInvalidArgumentError(format string, args ...any) *QueryError {
	return newQueryError(ErrInvalidArgument, format, args...)
}

func NewReferenceError(format string, args ...any) *QueryError {
	return newQueryError(ErrReference, format, args...)
}

func (e *QueryError) Error() string { return e.msg }
func (e *QueryError) Unwrap() error { return e.kind }

// Status maps the error kind onto the status codes the query server replies with.
func (e *QueryError) Status() int {
	switch e.kind {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrInvalidArgument:
		return http.StatusBadRequest
	case ErrReference:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
