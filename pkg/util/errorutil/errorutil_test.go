package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	conflict := NewConflict("email already registered", nil)
	wrapped := fmt.Errorf("register: %w", conflict)
	require.Same(t, conflict, ToDomainError(wrapped))
	require.True(t, HasCode(wrapped, CodeConflict))
	require.True(t, errors.Is(wrapped, &DomainError{Code: CodeConflict}))

	notFound := ToDomainError(fmt.Errorf("load: %w", pgx.ErrNoRows))
	require.Equal(t, CodeNotFound, notFound.Code)
	require.Equal(t, http.StatusNotFound, notFound.HTTPStatus)

	fromFiber := ToDomainError(fiber.ErrUnprocessableEntity)
	require.Equal(t, CodeValidation, fromFiber.Code)
	require.Equal(t, http.StatusUnprocessableEntity, fromFiber.HTTPStatus)

	internal := ToDomainError(errors.New("connection reset"))
	require.Equal(t, CodeInternal, internal.Code)
	require.Equal(t, "internal server error", internal.Message)
	require.ErrorContains(t, internal.Unwrap(), "connection reset")

	require.Nil(t, ToDomainError(nil))
	require.NoError(t, MapError(nil))
}

func TestConstructors(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewValidationError("bad", nil), CodeValidation, http.StatusBadRequest},
		{NewUnauthorized("who"), CodeUnauthorized, http.StatusUnauthorized},
		{NewForbidden("no"), CodeForbidden, http.StatusForbidden},
		{NewNotFound("work order", nil), CodeNotFound, http.StatusNotFound},
		{NewConflict("dup", nil), CodeConflict, http.StatusConflict},
		{NewRateLimited(2), CodeRateLimited, http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		de := ToDomainError(tc.err)
		require.Equal(t, tc.code, de.Code)
		require.Equal(t, tc.status, de.HTTPStatus)
	}
	require.Equal(t, "work order not found", ToDomainError(NewNotFound("work order", nil)).Message)
}
