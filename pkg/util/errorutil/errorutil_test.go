package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorKeepsDomainErrors(t *testing.T) {
	original := NewValidationError("username is required", map[string]any{"field": "username"})
	wrapped := fmt.Errorf("handler: %w", original)

	de := ToDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Equal(t, "username", de.Details["field"])
}

func TestToDomainErrorMapsFiberErrors(t *testing.T) {
	de := ToDomainError(fiber.NewError(http.StatusForbidden, "insufficient role"))
	assert.Equal(t, "FORBIDDEN", de.Code)
	assert.Equal(t, "insufficient role", de.Message)
	assert.Equal(t, http.StatusForbidden, de.HTTPStatus)

	de = ToDomainError(fiber.ErrUnprocessableEntity)
	assert.Equal(t, "UNPROCESSABLE_ENTITY", de.Code)
}

func TestToDomainErrorHidesUnknownErrors(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	de := ToDomainError(cause)

	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.Equal(t, "internal server error", de.Message)
	assert.ErrorIs(t, de, cause)
	assert.Nil(t, ToDomainError(nil))
}

func TestAuthenticationFailedIsGeneric(t *testing.T) {
	err := NewAuthenticationFailed(errors.New("token is expired"))
	de := ToDomainError(err)

	assert.Equal(t, "AUTHENTICATION_FAILED", de.Code)
	assert.Equal(t, "authentication failed", de.Message)
	assert.Equal(t, http.StatusUnauthorized, de.HTTPStatus)
}

func TestTooManyRequestsDetails(t *testing.T) {
	de := ToDomainError(NewTooManyRequests("too many failed sign-in attempts", 60))
	assert.Equal(t, http.StatusTooManyRequests, de.HTTPStatus)
	assert.Equal(t, 60, de.Details["retry_after_seconds"])
}
