package services

import (
	"errors"
	"fmt"

	"arthemis/internal/repositories"
)

// Kind classifies a service failure. The HTTP layer maps each kind to a status.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnauthorized
	KindUnauthenticated
	KindValidation
	KindConflict
	KindInvalidState
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindValidation:
		return "validation_failed"
	case KindConflict:
		return "conflict"
	case KindInvalidState:
		return "invalid_state"
	case KindUpstream:
		return "upstream_failure"
	}
	return "internal"
}

// Error is a classified service error whose Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
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

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// for every not-found failure.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Kind sentinels for errors.Is.
var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrValidation      = &Error{Kind: KindValidation}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrInvalidState    = &Error{Kind: KindInvalidState}
	ErrUpstream        = &Error{Kind: KindUpstream}
)

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// lookupErr turns a repository miss into a NotFound error with msg and leaves
// every other error classified as internal.
func lookupErr(err error, msg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return &Error{Kind: KindNotFound, Message: msg, Err: err}
	}
	return &Error{Kind: KindInternal, Message: "Server Error", Err: err}
}

func internal(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindInternal, Message: "Server Error", Err: err}
}
