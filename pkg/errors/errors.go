package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindPermissionDenied
	KindNotFound
	KindConflict
	KindTooManyRequests
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindPermissionDenied:
		return "permission_denied"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTooManyRequests:
		return "too_many_requests"
	default:
		return "internal"
	}
}

// Error is a typed business error. Two errors are equal under errors.Is
// when their codes match, so sentinels survive Wrap and WithFields.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Fields  map[string]string
	Err     error
}

// New declares a sentinel.
func New(kind Kind, code int, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap returns a copy carrying cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Fields = copyFields(e.Fields)
	cp.Err = cause
	return &cp
}

// WithFields returns a copy carrying its own copy of fields, so
// sentinels declared with fields never share a map with callers.
func (e *Error) WithFields(fields map[string]string) *Error {
	cp := *e
	cp.Fields = copyFields(fields)
	return &cp
}

func copyFields(fields map[string]string) map[string]string {
	if fields == nil {
		return nil
	}
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// WithMessage returns a copy with a more specific message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Fields = copyFields(e.Fields)
	cp.Message = msg
	return &cp
}

// ── common sentinels ──

var (
	ErrInternal         = New(KindInternal, 50000, "internal server error")
	ErrValidation       = New(KindValidation, 10001, "validation failed")
	ErrUnauthenticated  = New(KindUnauthenticated, 10002, "authentication required")
	ErrPermissionDenied = New(KindPermissionDenied, 10003, "permission denied")
	ErrTooManyRequests  = New(KindTooManyRequests, 10004, "too many requests")
	ErrNotFound         = New(KindNotFound, 10006, "resource not found")

	// ErrOptimisticLock: a conditional update matched no row because the
	// record changed state underneath the caller.
	ErrOptimisticLock = New(KindConflict, 10007, "record was modified by another operation")
)

// Validation builds a validation failure from a field → message map.
func Validation(fields map[string]string) *Error {
	return ErrValidation.WithFields(fields)
}

// Internal wraps an unexpected failure.
func Internal(cause error) *Error {
	return ErrInternal.Wrap(cause)
}

// KindOf reports the kind of err, defaulting to KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As extracts the typed error, if any.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
