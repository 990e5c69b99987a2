package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an AppError. Two AppErrors match under errors.Is when their codes match.
type Code string

const (
	CodeUnauthenticated     Code = "unauthenticated"
	CodeUnauthorized        Code = "unauthorized"
	CodeNotFound            Code = "not_found"
	CodeConflict            Code = "conflict"
	CodeValidation          Code = "validation_failed"
	CodeUpstreamUnavailable Code = "upstream_unavailable"
	CodeUpstreamTimeout     Code = "upstream_timeout"
	CodeInternal            Code = "internal_error"
)

// AppError is the error type every service returns to the HTTP layer.
type AppError struct {
	Code     Code
	Message  string
	HTTPCode int
	Err      error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches on Code so callers can test against the sentinels below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Error string `json:"error"`
		Code  Code   `json:"code"`
	}{Error: e.Message, Code: e.Code})
}

var (
	ErrUnauthenticated     = New(CodeUnauthenticated, "authentication required", http.StatusUnauthorized)
	ErrUnauthorized        = New(CodeUnauthorized, "not authorized", http.StatusForbidden)
	ErrNotFound            = New(CodeNotFound, "not found", http.StatusNotFound)
	ErrConflict            = New(CodeConflict, "conflict", http.StatusConflict)
	ErrValidation          = New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)
	ErrUpstreamUnavailable = New(CodeUpstreamUnavailable, "upstream service unavailable", http.StatusServiceUnavailable)
	ErrUpstreamTimeout     = New(CodeUpstreamTimeout, "upstream service timeout", http.StatusGatewayTimeout)
	ErrInternal            = New(CodeInternal, "internal error", http.StatusInternalServerError)
)

func New(code Code, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode}
}

// Wrap attaches a cause that is logged but never sent to the client.
func Wrap(err error, code Code, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode, Err: err}
}

func Unauthenticated(msg string) *AppError {
	return New(CodeUnauthenticated, msg, http.StatusUnauthorized)
}

func Unauthorized(msg string) *AppError {
	return New(CodeUnauthorized, msg, http.StatusForbidden)
}

func NotFound(msg string) *AppError {
	return New(CodeNotFound, msg, http.StatusNotFound)
}

func Conflict(msg string) *AppError {
	return New(CodeConflict, msg, http.StatusConflict)
}

func Validation(msg string) *AppError {
	return New(CodeValidation, msg, http.StatusUnprocessableEntity)
}

func UpstreamUnavailable(msg string, err error) *AppError {
	return Wrap(err, CodeUpstreamUnavailable, msg, http.StatusServiceUnavailable)
}

func UpstreamTimeout(msg string, err error) *AppError {
	return Wrap(err, CodeUpstreamTimeout, msg, http.StatusGatewayTimeout)
}

func Internal(err error) *AppError {
	return Wrap(err, CodeInternal, "internal error", http.StatusInternalServerError)
}

// From returns err as an *AppError, converting anything else to ErrInternal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
