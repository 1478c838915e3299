package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrAccountLockedAdmin.WithCause(stderrors.New("internal detail")))

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.ElementsMatch(t, []string{"timestamp", "message", "details", "status"}, keys(env))
	require.EqualValues(t, 403, env["status"])
	require.Equal(t, ErrAccountLockedAdmin.Message, env["message"])
	require.Equal(t, "ACCOUNT_LOCKED_ADMIN", env["details"].(map[string]any)["code"])
	require.NotContains(t, rec.Body.String(), "internal detail")
}

func TestWriteError_UnknownIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, stderrors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "boom")
}

func TestWriteSuccess_PayloadInDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, http.StatusCreated, "ok", map[string]string{"accessToken": "a"})

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, 201, env.Status)
	require.Equal(t, "a", env.Details.(map[string]any)["accessToken"])
	require.NotEmpty(t, env.Timestamp)
}

func TestAppError_IsAndCopies(t *testing.T) {
	wrapped := fmt.Errorf("layer: %w", ErrInvalidToken.WithDetail("x"))
	require.True(t, stderrors.Is(wrapped, ErrInvalidToken))
	require.False(t, stderrors.Is(wrapped, ErrUnauthorized))
	require.Empty(t, ErrInvalidToken.Detail)
	require.Equal(t, http.StatusUnauthorized, FromError(wrapped).HTTPStatus)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
