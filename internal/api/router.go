package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/certifiedsliders/resultclaims/internal/api/middleware"
	"github.com/certifiedsliders/resultclaims/internal/logger"
	"github.com/certifiedsliders/resultclaims/internal/session"
)

// Handlers groups the route handlers the router mounts.
type Handlers struct {
	Claims      *ClaimsHandler
	Manual      *ManualHandler
	Submissions *SubmissionsHandler
}

// SetupRouter creates and configures the Gin router with all routes.
func SetupRouter(log logger.Interface, sessions session.Store, h Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.SessionAuth(sessions, log))

	v1.POST("/claims/two-link", h.Claims.SubmitTwoLink)
	v1.POST("/claims/manual", h.Manual.SubmitManual)
	v1.GET("/submissions", h.Submissions.List)
	v1.POST("/submissions/:id/decision", h.Submissions.Decide)

	return router
}

// loggingMiddleware logs each request with method, path, status, and
// duration.
func loggingMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("http request",
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("duration", time.Since(start)))
	}
}
