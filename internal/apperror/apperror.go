// Package apperror defines the error kinds shared by the services and the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// Internal is anything unexpected.
	Internal Kind = iota
	// Validation: malformed or out-of-range input.
	Validation
	// Auth: missing or invalid credentials.
	Auth
	// Permission: authenticated but not allowed to touch the resource.
	Permission
	// NotFound: the referenced entity does not exist.
	NotFound
	// Conflict: the write collides with existing state (duplicate favorite, taken username).
	Conflict
	// Transient: the backing store or an external service failed.
	Transient
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation_error"
	case Auth:
		return "auth_error"
	case Permission:
		return "permission_error"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Transient:
		return "transient_error"
	default:
		return "internal_error"
	}
}

// AppError carries a kind, a user-facing message and an optional cause.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code appropriate for the error kind
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case Auth:
		return http.StatusUnauthorized
	case Permission:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Transient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode is the machine-readable code sent to clients.
func (e *AppError) ErrorCode() string {
	if e.Code != "" {
		return e.Code
	}
	return e.Kind.String()
}

// WithCode returns a copy of e with a more specific client code.
func (e *AppError) WithCode(code string) *AppError {
	cp := *e
	cp.Code = code
	return &cp
}

func New(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NewValidation(message string) *AppError {
	return New(Validation, message, nil)
}

func NewAuth(message string) *AppError {
	return New(Auth, message, nil)
}

func NewPermission(message string) *AppError {
	return New(Permission, message, nil)
}

func NewNotFound(message string) *AppError {
	return New(NotFound, message, nil)
}

func NewConflict(message string, err error) *AppError {
	return New(Conflict, message, err)
}

func NewTransient(message string, err error) *AppError {
	return New(Transient, message, err)
}

func NewInternal(message string, err error) *AppError {
	return New(Internal, message, err)
}

// From extracts the *AppError from an error chain. Plain errors come back as Internal.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal("internal server error", err)
}

// KindOf reports the kind of err, Internal for foreign errors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

func IsValidation(err error) bool { return err != nil && KindOf(err) == Validation }
func IsAuth(err error) bool       { return err != nil && KindOf(err) == Auth }
func IsPermission(err error) bool { return err != nil && KindOf(err) == Permission }
func IsNotFound(err error) bool   { return err != nil && KindOf(err) == NotFound }
func IsConflict(err error) bool   { return err != nil && KindOf(err) == Conflict }
func IsTransient(err error) bool  { return err != nil && KindOf(err) == Transient }
