// Package apperr classifies failures into the categories surfaced to API clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Category string

const (
	CategoryNetwork        Category = "network"
	CategoryValidation     Category = "validation"
	CategoryAuthentication Category = "authentication"
	CategoryAuthorization  Category = "authorization"
	CategoryNotFound       Category = "not_found"
	CategoryServer         Category = "server"
	CategoryClient         Category = "client"
	CategoryUnknown        Category = "unknown"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// Error carries a category alongside the wrapped cause. Fields holds per-field
// messages for validation failures.
type Error struct {
	Op       string
	Category Category
	Message  string
	Fields   map[string]string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Category) + " error"
	}

	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the category sentinels so callers can use errors.Is(err, ErrNotFound).
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Category == CategoryNotFound
	case ErrValidation:
		return e.Category == CategoryValidation
	}
	return false
}

func New(op string, category Category, message string) *Error {
	return &Error{Op: op, Category: category, Message: message}
}

func Wrap(op string, category Category, err error) *Error {
	return &Error{Op: op, Category: category, Err: err}
}

func NotFound(op, message string) *Error {
	return &Error{Op: op, Category: CategoryNotFound, Message: message, Err: ErrNotFound}
}

func Validation(op string, fields map[string]string) *Error {
	return &Error{Op: op, Category: CategoryValidation, Message: "validation failed", Fields: fields, Err: ErrValidation}
}

// FromStatus maps an HTTP status code to a category.
func FromStatus(code int) Category {
	switch {
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return CategoryValidation
	case code == http.StatusUnauthorized:
		return CategoryAuthentication
	case code == http.StatusForbidden:
		return CategoryAuthorization
	case code == http.StatusNotFound:
		return CategoryNotFound
	case code >= 500 && code <= 599:
		return CategoryServer
	case code >= 400 && code <= 499:
		return CategoryClient
	default:
		return CategoryUnknown
	}
}

// CategoryOf returns the category of the first *Error in the chain, or
// CategoryUnknown.
func CategoryOf(err error) Category {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Category
	}
	if errors.Is(err, ErrNotFound) {
		return CategoryNotFound
	}
	if errors.Is(err, ErrValidation) {
		return CategoryValidation
	}
	return CategoryUnknown
}

// FieldsOf returns validation messages carried by err, if any.
func FieldsOf(err error) map[string]string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}

// Status is the HTTP status a server should answer with for a category.
func Status(c Category) int {
	switch c {
	case CategoryValidation:
		return http.StatusBadRequest
	case CategoryAuthentication:
		return http.StatusUnauthorized
	case CategoryAuthorization:
		return http.StatusForbidden
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryClient:
		return http.StatusConflict
	case CategoryNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
