package http

import (
	"github.com/gin-gonic/gin"

	"github.com/layer-3/walletauth/internal/logger"
	"github.com/layer-3/walletauth/internal/metrics"
	"github.com/layer-3/walletauth/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(authService *service.AuthService, logger *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), LoggingMiddleware(logger))

	// Create handlers
	handlers := NewAuthHandlers(authService)

	router.GET("/healthz", handlers.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.POST("/challenge", handlers.Challenge)
		auth.POST("/verify", handlers.Verify)
	}

	// Protected API routes
	api := router.Group("/api")
	api.Use(AuthMiddleware(authService))
	{
		api.GET("/me", handlers.Me)
	}

	return router
}
