package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/expense-tracker/pkg/logger"
	"go.uber.org/zap"
)

// Response is the JSON envelope returned by every endpoint
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo describes a failed request
type ErrorInfo struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Meta holds pagination details for list responses
type Meta struct {
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// SuccessResponse writes a 200 response with data
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// SuccessResponseWithMeta writes a 200 response with data and pagination meta
func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta *Meta) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Meta: meta})
}

// SuccessResponseWithStatus writes a success response with a custom status and message
func SuccessResponseWithStatus(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Response{Success: true, Data: data, Message: message})
}

// CreatedResponse writes a 201 response with data
func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// ErrorResponse writes an error response
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Success: false,
		Error:   &ErrorInfo{Code: status, Message: message},
	})
}

// AppErrorResponse writes an error response from an AppError.
// Causes of 5xx errors are logged and never sent to the client.
func AppErrorResponse(c *gin.Context, appErr *AppError) {
	if appErr.Code >= http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error(appErr.Message, zap.Error(appErr.Err))
	}
	ErrorResponse(c, appErr.Code, appErr.Message)
}

// HandleError maps any service error to a response, defaulting to 500
func HandleError(c *gin.Context, err error, fallbackMessage string) {
	if appErr, ok := AsAppError(err); ok {
		AppErrorResponse(c, appErr)
		return
	}
	logger.WithContext(c.Request.Context()).Error(fallbackMessage, zap.Error(err))
	ErrorResponse(c, http.StatusInternalServerError, fallbackMessage)
}
