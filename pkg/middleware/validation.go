package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/expense-tracker/pkg/common"
	"github.com/richxcame/expense-tracker/pkg/validation"
)

// ValidateJSON binds the JSON body into req and validates it
func ValidateJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return validation.FromBindingError(err)
	}
	return validation.ValidateStruct(req)
}

// ValidateQuery binds query parameters into req and validates it
func ValidateQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return validation.FromBindingError(err)
	}
	return validation.ValidateStruct(req)
}

// RespondWithValidationError writes a 400 envelope. Field errors are returned
// under data.fields.
func RespondWithValidationError(c *gin.Context, err error) {
	var valErr *validation.ValidationError
	if errors.As(err, &valErr) {
		c.JSON(http.StatusBadRequest, common.Response{
			Success: false,
			Data:    gin.H{"fields": valErr.Errors},
			Error:   &common.ErrorInfo{Code: http.StatusBadRequest, Message: "validation failed"},
		})
		return
	}
	common.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
}

// ValidateAndBind validates and binds the JSON body. On failure the error
// response has been written and false is returned.
func ValidateAndBind(c *gin.Context, req interface{}) bool {
	if err := ValidateJSON(c, req); err != nil {
		RespondWithValidationError(c, err)
		return false
	}
	return true
}

// ValidateAndBindQuery validates and binds query parameters
func ValidateAndBindQuery(c *gin.Context, req interface{}) bool {
	if err := ValidateQuery(c, req); err != nil {
		RespondWithValidationError(c, err)
		return false
	}
	return true
}

// MaxBodySize limits the request body size
func MaxBodySize(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil {
			c.Next()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				common.ErrorResponse(c, http.StatusRequestEntityTooLarge, "request body too large")
				c.Abort()
				return
			}
		}

		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		c.Next()
	}
}
