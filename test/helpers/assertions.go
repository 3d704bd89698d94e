package helpers

import (
	"strings"
	"testing"

	"github.com/richxcame/expense-tracker/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertAppError asserts that err is a *common.AppError with the given code
func AssertAppError(t *testing.T, err error, code int) {
	t.Helper()
	appErr, ok := common.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

// AssertValidJWT asserts that a string is a valid JWT token format
func AssertValidJWT(t *testing.T, token string) {
	t.Helper()
	assert.NotEmpty(t, token)
	// JWT tokens should have 3 parts separated by dots
	assert.Len(t, strings.Split(token, "."), 3)
}
