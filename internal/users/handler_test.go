package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/expense-tracker/pkg/common"
	"github.com/richxcame/expense-tracker/pkg/middleware"
	"github.com/richxcame/expense-tracker/pkg/models"
	"github.com/richxcame/expense-tracker/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = validation.RegisterGinValidators()
}

// MockService is a mock implementation of ServiceInterface
type MockService struct {
	mock.Mock
}

func (m *MockService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockService) UpdatePreferences(ctx context.Context, userID uuid.UUID, req *UpdatePreferencesRequest) (*PreferencesResult, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PreferencesResult), args.Error(1)
}

func (m *MockService) UpdateCurrency(ctx context.Context, userID uuid.UUID, currency string) (*MigrationReport, error) {
	args := m.Called(ctx, userID, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MigrationReport), args.Error(1)
}

func setupRouter(svc *MockService, userID uuid.UUID) *gin.Engine {
	router := gin.New()
	api := router.Group("/api/v1")
	if userID != uuid.Nil {
		api.Use(func(c *gin.Context) {
			c.Set(middleware.UserIDKey, userID)
			c.Next()
		})
	}
	NewHandler(svc).RegisterRoutes(api)
	return router
}

func perform(router *gin.Engine, method, url, body, lang string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	if lang != "" {
		req.Header.Set("Accept-Language", lang)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) common.Response {
	t.Helper()
	var resp common.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandler_GetProfile(t *testing.T) {
	svc := new(MockService)
	user := testUser("BRL")
	user.PasswordHash = "secret-hash"
	svc.On("GetProfile", mock.Anything, user.ID).Return(user, nil)

	w := perform(setupRouter(svc, user.ID), http.MethodGet, "/api/v1/users/me", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-hash")
	data := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, "BRL", data["currency"])
}

func TestHandler_Unauthorized(t *testing.T) {
	router := setupRouter(new(MockService), uuid.Nil)

	assert.Equal(t, http.StatusUnauthorized, perform(router, http.MethodGet, "/api/v1/users/me", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(router, http.MethodPut, "/api/v1/users/me/preferences", `{"name":"x"}`, "").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(router, http.MethodPut, "/api/v1/users/me/currency", `{"currency":"EUR"}`, "").Code)
}

func TestHandler_UpdatePreferences_Messages(t *testing.T) {
	tests := []struct {
		name      string
		lang      string
		migration *MigrationReport
		want      string
	}{
		{
			name: "no currency change",
			lang: "en",
			want: "Preferences updated",
		},
		{
			name:      "complete migration",
			lang:      "pt-BR",
			migration: &MigrationReport{Total: 3, Restored: 1, Converted: 2, Failed: []MigrationFailure{}},
			want:      "Moeda atualizada, 3 despesas recalculadas",
		},
		{
			name:      "partial migration",
			lang:      "en-US",
			migration: &MigrationReport{Total: 4, Converted: 3, Failed: []MigrationFailure{{ExpenseID: uuid.New(), Error: "boom"}}},
			want:      "Currency updated, but 1 of 4 expenses could not be recalculated",
		},
		{
			name: "falls back to the user's language",
			lang: "",
			want: "Preferencias actualizadas",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			user := testUser("EUR")
			user.Language = "es"
			svc.On("UpdatePreferences", mock.Anything, user.ID, mock.MatchedBy(func(req *UpdatePreferencesRequest) bool {
				return req.Currency != nil && *req.Currency == "EUR" && req.Name == nil
			})).Return(&PreferencesResult{User: user, Migration: tt.migration}, nil)

			w := perform(setupRouter(svc, user.ID), http.MethodPut, "/api/v1/users/me/preferences", `{"currency":"EUR"}`, tt.lang)

			require.Equal(t, http.StatusOK, w.Code)
			resp := decodeResponse(t, w)
			assert.Equal(t, tt.want, resp.Message)

			_, hasMigration := resp.Data.(map[string]interface{})["migration"]
			assert.Equal(t, tt.migration != nil, hasMigration)
		})
	}
}

func TestHandler_UpdatePreferences_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad currency", `{"currency":"dollars"}`},
		{"blank name", `{"name":"   "}`},
		{"long language", `{"language":"portuguese-brazil"}`},
		{"malformed", `{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			w := perform(setupRouter(svc, uuid.New()), http.MethodPut, "/api/v1/users/me/preferences", tt.body, "")

			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "UpdatePreferences", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_UpdateCurrency(t *testing.T) {
	svc := new(MockService)
	userID := uuid.New()
	report := &MigrationReport{UserID: userID, FromCurrency: "USD", ToCurrency: "JPY", Total: 2, Converted: 2, Failed: []MigrationFailure{}}
	svc.On("UpdateCurrency", mock.Anything, userID, "JPY").Return(report, nil)

	w := perform(setupRouter(svc, userID), http.MethodPut, "/api/v1/users/me/currency", `{"currency":"JPY"}`, "en")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "Currency updated, 2 expenses recalculated", resp.Message)
	assert.Equal(t, "JPY", resp.Data.(map[string]interface{})["to_currency"])

	w = perform(setupRouter(svc, userID), http.MethodPut, "/api/v1/users/me/currency", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_UpdateCurrency_ServiceError(t *testing.T) {
	svc := new(MockService)
	userID := uuid.New()
	svc.On("UpdateCurrency", mock.Anything, userID, "EUR").
		Return(nil, common.NewInternalError("currency updated but expenses could not be recalculated", assert.AnError))

	w := perform(setupRouter(svc, userID), http.MethodPut, "/api/v1/users/me/currency", `{"currency":"EUR"}`, "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}
