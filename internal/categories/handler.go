package categories

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/expense-tracker/pkg/common"
	"github.com/richxcame/expense-tracker/pkg/i18n"
	"github.com/richxcame/expense-tracker/pkg/middleware"
)

// Handler handles HTTP requests for categories
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new category handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// List returns the categories available to the caller
// GET /api/v1/categories
func (h *Handler) List(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	options, err := h.service.ListAvailable(c.Request.Context(), userID)
	if err != nil {
		common.HandleError(c, err, "failed to list categories")
		return
	}

	common.SuccessResponse(c, gin.H{"categories": options})
}

// Create adds a custom category
// POST /api/v1/categories
func (h *Handler) Create(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateCategoryRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	option, err := h.service.CreateCategory(c.Request.Context(), userID, &req)
	if err != nil {
		common.HandleError(c, err, "failed to create category")
		return
	}

	common.CreatedResponse(c, option)
}

// Delete removes a custom category
// DELETE /api/v1/categories/:id
func (h *Handler) Delete(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), userID, categoryID); err != nil {
		common.HandleError(c, err, "failed to delete category")
		return
	}

	common.SuccessResponseWithStatus(c, http.StatusOK, nil, i18n.Translate("category.deleted", c.GetHeader("Accept-Language")))
}

// RegisterRoutes registers category routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	r := rg.Group("/categories")
	{
		r.GET("", h.List)
		r.POST("", h.Create)
		r.DELETE("/:id", h.Delete)
	}
}
