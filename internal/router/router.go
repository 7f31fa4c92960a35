package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/middleware"
)

// Dependencies is everything the router needs to mount the application.
type Dependencies struct {
	DB          *gorm.DB
	Services    api.Services
	Limiter     *middleware.RateLimiter
	PageSize    int
	CORSOrigins []string
	// MediaDir, when set, is served under MediaRoute.
	MediaDir   string
	MediaRoute string
}

// SetupRouter configures the middleware chain and the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.ErrorHandler(),
		middleware.PrometheusMetrics(),
		middleware.CORS(deps.CORSOrigins),
	)

	router.GET("/health", healthCheck(deps.DB))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if deps.MediaDir != "" && deps.MediaRoute != "" {
		router.Static(deps.MediaRoute, deps.MediaDir)
	}

	api.RegisterRoutes(router.Group("/api"), deps.Services, deps.PageSize, deps.Limiter)
	return router
}

// healthCheck reports whether the database answers.
func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := database.HealthCheck(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "ok"})
	}
}
