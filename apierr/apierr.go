package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation   = "validation_error"
	CodeUnauthorized = "unauthorized"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeServer       = "server_error"
)

const genericServerMessage = "An unexpected error occurred."

type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string][]string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code, message string, err error) *Error {
	return &Error{Status: status, Code: code, Message: message, Err: err}
}

func Validation(message string, details map[string][]string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Message: message, Details: details}
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, CodeNotFound, message, nil)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, CodeConflict, message, nil)
}

// Internal hides err behind a generic message. The cause stays reachable
// through Unwrap for logging.
func Internal(err error) *Error {
	return New(http.StatusInternalServerError, CodeServer, genericServerMessage, err)
}

// From converts any error into an *Error. Unknown errors become Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err)
}

func Is(err error, code string) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}
