package apperror

import (
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind is the closed set of failure categories the API can report.
// The global error handler switches exhaustively on this discriminant.
type Kind int

const (
	KindValidation Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
	KindInternal
	KindBadGateway
	KindUnavailable
)

// Status maps a kind to its default HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindInternal:
		return http.StatusInternalServerError
	case KindBadGateway:
		return http.StatusBadGateway
	case KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Code maps a kind to its stable machine-readable error code.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindRateLimited:
		return "RATE_LIMIT_EXCEEDED"
	case KindInternal:
		return "INTERNAL_ERROR"
	case KindBadGateway:
		return "BAD_GATEWAY"
	case KindUnavailable:
		return "SERVICE_UNAVAILABLE"
	}
	return "INTERNAL_ERROR"
}

// FieldError describes one violated field in a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error is the typed failure carried from services to the error handler.
type Error struct {
	Kind    Kind
	Message string
	Details interface{}
	Err     error // wrapped cause, logged but never sent to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Code(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Code(), e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Constructors

func Validation(message string, details interface{}) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func RateLimited(message string) *Error {
	return &Error{Kind: KindRateLimited, Message: message}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "An unexpected error occurred", Err: err}
}

func BadGateway(message string, err error) *Error {
	return &Error{Kind: KindBadGateway, Message: message, Err: err}
}

func Unavailable(message string) *Error {
	return &Error{Kind: KindUnavailable, Message: message}
}

// From normalizes any error into a taxonomy error:
//   - *Error passes through unchanged
//   - ozzo validation.Errors becomes Validation with one detail per field
//   - pgx duplicate-key (SQLSTATE 23505) becomes Conflict
//   - pgx.ErrNoRows becomes NotFound
//   - everything else becomes Internal
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var vErrs validation.Errors
	if errors.As(err, &vErrs) {
		return Validation("Request validation failed", FieldErrors(vErrs))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Conflict("Resource already exists")
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound("Resource not found")
	}

	return Internal(err)
}

// FieldErrors flattens ozzo validation.Errors into FieldError entries.
// Nested struct errors keep their dotted path.
func FieldErrors(errs validation.Errors) []FieldError {
	return fieldErrors("", errs)
}

func fieldErrors(prefix string, errs validation.Errors) []FieldError {
	out := make([]FieldError, 0, len(errs))
	for field, err := range errs {
		path := field
		if prefix != "" {
			path = prefix + "." + field
		}

		var nested validation.Errors
		if errors.As(err, &nested) {
			out = append(out, fieldErrors(path, nested)...)
			continue
		}

		fe := FieldError{Field: path, Message: err.Error(), Code: "invalid"}
		var ozzoErr validation.Error
		if errors.As(err, &ozzoErr) {
			fe.Code = ozzoErr.Code()
		}
		out = append(out, fe)
	}
	return out
}
