package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("no rows")
	err := NewNotFoundError("expense not found", cause)

	assert.Equal(t, "expense not found: no rows", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusNotFound, err.Code)
	assert.Equal(t, "forbidden", NewForbiddenError("forbidden").Error())
}

func TestAsAppError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("update: %w", NewBadRequestError("bad currency", nil))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.False(t, IsNotFound(wrapped))
	assert.True(t, IsNotFound(NewNotFoundError("gone", nil)))
}

func TestSuccessResponseWithMeta(t *testing.T) {
	c, w := newTestContext()

	SuccessResponseWithMeta(c, []string{"a"}, &Meta{Limit: 20, Total: 1, TotalPages: 1})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestAppErrorResponse(t *testing.T) {
	c, w := newTestContext()

	AppErrorResponse(c, NewNotFoundError("expense not found", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "expense not found", resp.Error.Message)
}

func TestHandleError_HidesInternalCause(t *testing.T) {
	c, w := newTestContext()

	HandleError(c, errors.New("pq: connection refused"), "failed to load expenses")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "failed to load expenses", resp.Error.Message)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestHealthCheckWithDeps(t *testing.T) {
	c, w := newTestContext()

	handler := HealthCheckWithDeps("expense-api", "1.0.0", map[string]func() error{
		"database": func() error { return nil },
		"redis":    func() error { return errors.New("timeout") },
	})
	handler(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["database"])
}

func TestHealthCheckWithDeps_OptionalDependencyDegrades(t *testing.T) {
	c, w := newTestContext()

	handler := HealthCheckWithDeps("expense-api", "1.0.0", map[string]func() error{
		"database": func() error { return nil },
		"llm":      func() error { return errors.New("circuit open") },
	}, "llm")
	handler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Contains(t, body.Checks["llm"], "degraded")
}
