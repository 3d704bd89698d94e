package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/expense-tracker/pkg/logger"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request. 5xx responses log at Error and 4xx
// at Warn.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}

		reqLogger := logger.WithContext(c.Request.Context())

		switch {
		case len(c.Errors) > 0 || status >= 500:
			reqLogger.Error("Request completed with errors", append(fields, zap.String("errors", c.Errors.String()))...)
		case status >= 400:
			reqLogger.Warn("Request rejected", fields...)
		default:
			reqLogger.Info("Request completed", fields...)
		}
	}
}
