package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so the HTTP boundary can pick the right
// recovery: flash+redirect, login redirect, JSON error, or the terminal
// error page.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuth
	KindAuthorization
	KindNotFound
	KindStore
	KindRateLimit
)

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

func (e *Error) Unwrap() error { return e.Err }

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func StoreErr(err error, message string) *Error {
	return &Error{Kind: KindStore, Message: message, Err: err}
}

// KindOf reports the kind of err, or KindUnknown for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the user-facing message of err, or the generic
// terminal message for untyped errors.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Something went wrong"
}

// StatusOf maps an error kind to an HTTP status, defaulting to 500.
func StatusOf(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Registration uniqueness collisions. The store layer translates
// duplicate-key failures into these so callers can flash a specific
// message for username vs email.
var (
	ErrUsernameTaken = &Error{Kind: KindValidation, Message: "Username is already taken. Please choose a different one."}
	ErrEmailTaken    = &Error{Kind: KindValidation, Message: "Email is already registered. Please use a different email or try logging in."}
)
