// Package apperr classifies failures into the kinds the API reports and
// decides which of them are worth retrying.
package apperr

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuth
	KindTransient
	KindNotFound
	KindPermission
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindTransient:
		return "transient"
	case KindNotFound:
		return "not-found"
	case KindPermission:
		return "permission"
	case KindConflict:
		return "conflict"
	}
	return "unknown"
}

const GenericMessage = "an error occurred"

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches errors of the same kind and code, so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Code == e.Code
}

var (
	ErrNotFound    = &Error{Kind: KindNotFound, Code: "not-found", Message: "data not found"}
	ErrPermission  = &Error{Kind: KindPermission, Code: "permission-denied", Message: "you do not have access to this data"}
	ErrUnavailable = &Error{Kind: KindTransient, Code: "unavailable", Message: "the service is temporarily unavailable"}
	ErrTimeout     = &Error{Kind: KindTransient, Code: "timeout", Message: "the request timed out"}
	ErrRateLimited = &Error{Kind: KindTransient, Code: "resource-exhausted", Message: "too many requests, please wait and try again"}
	ErrConflict    = &Error{Kind: KindConflict, Code: "already-exists", Message: "data already exists"}
)

// Validation reports field-level problems, one message per field.
func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Code: "invalid-argument", Message: "please correct the highlighted fields", Fields: fields}
}

func Wrap(base *Error, err error) *Error {
	return &Error{Kind: base.Kind, Code: base.Code, Message: base.Message, Err: err}
}

// Classify returns the kind of err, looking through wrapped driver errors.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return classify(err).Kind
}

// From converts any error into an *Error, preserving ones that already are.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	base := classify(err)
	if base.Kind == KindUnknown {
		return &Error{Kind: KindUnknown, Code: "unknown", Message: GenericMessage, Err: err}
	}
	return Wrap(base, err)
}

func classify(err error) *Error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, context.DeadlineExceeded), pgconn.Timeout(err):
		return ErrTimeout
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "53300":
			return ErrRateLimited
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08",
			pgErr.Code == "57P01", pgErr.Code == "57P02", pgErr.Code == "57P03":
			return ErrUnavailable
		case pgErr.Code == "57014":
			return ErrTimeout
		case pgErr.Code == "42501":
			return ErrPermission
		case pgErr.Code == "23505":
			return ErrConflict
		}
		return &Error{Kind: KindUnknown}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrUnavailable
	}
	if pgconn.SafeToRetry(err) {
		return ErrUnavailable
	}
	return &Error{Kind: KindUnknown}
}

// Retryable reports whether err is a transient failure.
func Retryable(err error) bool {
	return Classify(err) == KindTransient
}

// Message is the user-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if m := From(err).Message; m != "" {
		return m
	}
	return GenericMessage
}

func HTTPStatus(err error) int {
	e := From(err)
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return authStatus(e.Code)
	case KindTransient:
		if e.Code == ErrRateLimited.Code {
			return http.StatusTooManyRequests
		}
		return http.StatusServiceUnavailable
	case KindNotFound:
		return http.StatusNotFound
	case KindPermission:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
