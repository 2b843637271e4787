package common

import "errors"

// AppError is a domain failure a handler can translate directly into an HTTP
// response: a stable machine-readable code, a user-facing message and the
// status to answer with. The wrapped cause stays visible to errors.Is/As.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StatusOr returns the attached HTTP status, or fallback when none was set.
func (e *AppError) StatusOr(fallback int) int {
	if e == nil || e.HTTPStatus == 0 {
		return fallback
	}
	return e.HTTPStatus
}

// NewAppError builds an AppError wrapping err.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// AsAppError extracts an AppError from anywhere in the error chain.
func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
