package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

const (
	CodeUnauthorized     = "unauthorized"
	CodeInvalidArgument  = "invalid_argument"
	CodeNotFound         = "not_found"
	CodeUnavailable      = "unavailable"
	CodeCapacityExceeded = "capacity_exceeded"
	CodeRateLimited      = "rate_limited"
	CodeUnsupportedMedia = "unsupported_media_type"
)

func Unauthorized(msg string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, errors.New(msg))
}

func InvalidArgument(format string, args ...any) *Error {
	return New(http.StatusBadRequest, CodeInvalidArgument, fmt.Errorf(format, args...))
}

func NotFound(msg string) *Error {
	return New(http.StatusNotFound, CodeNotFound, errors.New(msg))
}

// Unavailable marks a referenced resource that exists but cannot be used.
func Unavailable(msg string) *Error {
	return New(http.StatusBadRequest, CodeUnavailable, errors.New(msg))
}

func CapacityExceeded(msg string) *Error {
	return New(http.StatusConflict, CodeCapacityExceeded, errors.New(msg))
}

func RateLimited(msg string) *Error {
	return New(http.StatusTooManyRequests, CodeRateLimited, errors.New(msg))
}

func UnsupportedMedia(msg string) *Error {
	return New(http.StatusUnsupportedMediaType, CodeUnsupportedMedia, errors.New(msg))
}

// StatusOf returns the HTTP status carried by err, or fallback when err has none.
func StatusOf(err error, fallback int) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return fallback
}

// CodeOf returns the taxonomy code carried by err, or "" when err has none.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
