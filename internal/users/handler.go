package users

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/expense-tracker/pkg/common"
	"github.com/richxcame/expense-tracker/pkg/i18n"
	"github.com/richxcame/expense-tracker/pkg/middleware"
)

// Handler handles HTTP requests for the current user
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new user handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// GetProfile returns the caller's profile
// GET /api/v1/users/me
func (h *Handler) GetProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		common.HandleError(c, err, "failed to get profile")
		return
	}

	common.SuccessResponse(c, user)
}

// UpdatePreferences updates name, language and display currency
// PUT /api/v1/users/me/preferences
func (h *Handler) UpdatePreferences(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdatePreferencesRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	result, err := h.service.UpdatePreferences(c.Request.Context(), userID, &req)
	if err != nil {
		common.HandleError(c, err, "failed to update preferences")
		return
	}

	lang := c.GetHeader("Accept-Language")
	if lang == "" {
		lang = result.User.Language
	}

	message := i18n.Translate("preferences.updated", lang)
	if result.Migration != nil {
		message = migrationMessage(result.Migration, lang)
	}
	common.SuccessResponseWithStatus(c, http.StatusOK, result, message)
}

// UpdateCurrency changes the display currency and recalculates every expense
// PUT /api/v1/users/me/currency
func (h *Handler) UpdateCurrency(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateCurrencyRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	report, err := h.service.UpdateCurrency(c.Request.Context(), userID, req.Currency)
	if err != nil {
		common.HandleError(c, err, "failed to update currency")
		return
	}

	common.SuccessResponseWithStatus(c, http.StatusOK, report, migrationMessage(report, c.GetHeader("Accept-Language")))
}

// RegisterRoutes registers user routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	me := rg.Group("/users/me")
	{
		me.GET("", h.GetProfile)
		me.PUT("/preferences", h.UpdatePreferences)
		me.PUT("/currency", h.UpdateCurrency)
	}
}

func migrationMessage(report *MigrationReport, lang string) string {
	if report.Partial() {
		return i18n.Translate("currency.migrated.partial", lang, len(report.Failed), report.Total)
	}
	return i18n.Translate("currency.migrated", lang, report.Updated())
}
