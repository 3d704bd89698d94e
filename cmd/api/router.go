package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/timeout"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richxcame/expense-tracker/pkg/common"
	"github.com/richxcame/expense-tracker/pkg/config"
	"github.com/richxcame/expense-tracker/pkg/health"
	"github.com/richxcame/expense-tracker/pkg/middleware"
)

const (
	version     = "1.0.0"
	maxBodySize = 1 << 20
)

// routeRegistrar is implemented by every domain handler
type routeRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// healthChecks are the dependency deps behind /health. Names listed in
// optional only degrade the status.
type healthChecks struct {
	checks   map[string]health.Checker
	optional []string
}

func newRouter(cfg *config.Config, deps healthChecks, handlers ...routeRegistrar) *gin.Engine {
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics(cfg.Server.ServiceName))
	router.Use(middleware.SecurityHeaders(cfg.Server.IsProduction()))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins()
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "Accept-Language", middleware.CorrelationIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.CorrelationIDHeader}
	router.Use(cors.New(corsConfig))

	// Health check and metrics (no auth required)
	router.GET("/health", common.HealthCheckWithDeps(cfg.Server.ServiceName, version, deps.checks, deps.optional...))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(requestTimeout(time.Duration(cfg.Server.RequestTimeout) * time.Second))
	api.Use(middleware.MaxBodySize(maxBodySize))
	api.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}

	return router
}

func requestTimeout(d time.Duration) gin.HandlerFunc {
	return timeout.New(
		timeout.WithTimeout(d),
		timeout.WithResponse(func(c *gin.Context) {
			common.ErrorResponse(c, http.StatusGatewayTimeout, "request timed out")
		}),
	)
}
