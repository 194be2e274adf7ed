package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"storefront-backend/logger"

	"github.com/gin-gonic/gin"
)

// Error is an application error carrying the HTTP status it maps to.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	Err     error  `json:"-"`

	kind *Error
}

// New creates a new sentinel Error.
func New(code int, message string) *Error {
	e := &Error{Code: code, Message: message}
	e.kind = e
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether e was derived from target, so errors.Is(err, ErrNotFound)
// holds for copies made with WithMessage, Wrap and Newf.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.kind != nil && t == e.kind
}

// WithMessage returns a copy of e with a different message.
func (e *Error) WithMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

// WithDetails returns a copy of e carrying extra response details.
func (e *Error) WithDetails(details any) *Error {
	c := *e
	c.Details = details
	return &c
}

// Wrap returns a copy of base wrapping err.
func Wrap(base *Error, err error) *Error {
	c := *base
	c.Err = err
	return &c
}

// Newf returns a copy of base with a formatted message.
func Newf(base *Error, format string, args ...any) *Error {
	return base.WithMessage(fmt.Sprintf(format, args...))
}

// Common error types
var (
	ErrBadRequest   = New(http.StatusBadRequest, "Bad request")
	ErrUnauthorized = New(http.StatusUnauthorized, "Unauthorized")
	ErrForbidden    = New(http.StatusForbidden, "Forbidden")
	ErrNotFound     = New(http.StatusNotFound, "Not found")
	ErrConflict     = New(http.StatusConflict, "Conflict")
	ErrInternal     = New(http.StatusInternalServerError, "Internal server error")
)

// Authentication error types
var (
	ErrInvalidCredentials = New(http.StatusUnauthorized, "Invalid credentials")
	ErrInvalidToken       = New(http.StatusUnauthorized, "Invalid or expired token")
)

// Business logic error types
var (
	ErrInsufficientStock = New(http.StatusConflict, "Insufficient stock")
	ErrInvalidPromo      = New(http.StatusBadRequest, "Invalid promo code")
	ErrInvalidTransition = New(http.StatusConflict, "Invalid order status transition")
)

// StatusOf returns the HTTP status err maps to.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// Respond writes err as a JSON error body. Errors that are not *Error become 500s.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		logger.Error(c, "unhandled error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": ErrInternal.Message})
		return
	}

	if appErr.Code >= http.StatusInternalServerError {
		logger.Error(c, appErr.Message, appErr.Err)
	}

	body := gin.H{"error": appErr.Message}
	if appErr.Details != nil {
		body["details"] = appErr.Details
	}
	c.JSON(appErr.Code, body)
}
