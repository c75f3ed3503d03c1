package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	cases := []struct {
		kind   Kind
		status int
		code   string
	}{
		{KindValidation, http.StatusBadRequest, "VALIDATION_ERROR"},
		{KindUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{KindForbidden, http.StatusForbidden, "FORBIDDEN"},
		{KindNotFound, http.StatusNotFound, "NOT_FOUND"},
		{KindConflict, http.StatusConflict, "CONFLICT"},
		{KindRateLimited, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
		{KindInternal, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{KindBadGateway, http.StatusBadGateway, "BAD_GATEWAY"},
		{KindUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.kind.Status(), tc.code)
		assert.Equal(t, tc.code, tc.kind.Code())
	}
}

func TestKindUnknownFallsBackToInternal(t *testing.T) {
	unknown := Kind(99)
	assert.Equal(t, http.StatusInternalServerError, unknown.Status())
	assert.Equal(t, "INTERNAL_ERROR", unknown.Code())
}

func TestFromPassesThroughAppError(t *testing.T) {
	orig := Conflict("duplicate name")

	got := From(orig)
	assert.Same(t, orig, got)

	wrapped := fmt.Errorf("service: %w", orig)
	got = From(wrapped)
	assert.Same(t, orig, got)
}

func TestFromValidationErrors(t *testing.T) {
	vErrs := validation.Errors{
		"name": errors.New("cannot be blank"),
	}

	got := From(vErrs)
	require.Equal(t, KindValidation, got.Kind)

	details, ok := got.Details.([]FieldError)
	require.True(t, ok)
	require.Len(t, details, 1)
	assert.Equal(t, "name", details[0].Field)
	assert.Equal(t, "cannot be blank", details[0].Message)
}

func TestFromUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_snippets_owner_name_active"}

	got := From(fmt.Errorf("create snippet: %w", pgErr))
	assert.Equal(t, KindConflict, got.Kind)
}

func TestFromOtherPgErrorIsInternal(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503"} // foreign key violation

	got := From(pgErr)
	assert.Equal(t, KindInternal, got.Kind)
}

func TestFromNoRows(t *testing.T) {
	got := From(fmt.Errorf("get snippet: %w", pgx.ErrNoRows))
	assert.Equal(t, KindNotFound, got.Kind)
}

func TestFromUnknownErrorIsInternal(t *testing.T) {
	cause := errors.New("boom")

	got := From(cause)
	assert.Equal(t, KindInternal, got.Kind)
	assert.Equal(t, "An unexpected error occurred", got.Message)
	assert.ErrorIs(t, got, cause)
}

func TestFieldErrorsNestedPath(t *testing.T) {
	nested := validation.Errors{
		"data": validation.Errors{
			"email": errors.New("invalid email format"),
		},
	}

	out := FieldErrors(nested)
	require.Len(t, out, 1)
	assert.Equal(t, "data.email", out[0].Field)
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := BadGateway("billing provider unavailable", errors.New("dial tcp: timeout"))
	assert.Contains(t, err.Error(), "BAD_GATEWAY")
	assert.Contains(t, err.Error(), "dial tcp: timeout")

	bare := NotFound("Snippet not found")
	assert.Equal(t, "NOT_FOUND: Snippet not found", bare.Error())
}
