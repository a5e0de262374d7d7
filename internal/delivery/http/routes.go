package http

import (
	"github.com/foodlog/backend/config"
	"github.com/foodlog/backend/internal/logger"
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	httpLog := logger.Named("http")

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(httpLog))
	router.Use(LoggerMiddleware(httpLog))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		foodLog := v1.Group("/log")
		{
			foodLog.GET("", handler.GetLog)
			foodLog.POST("", handler.LogFood)
			foodLog.GET("/events", handler.Events)
			foodLog.DELETE("/meals/:mealIndex", handler.RemoveMeal)

			ingredient := foodLog.Group("/meals/:mealIndex/ingredients/:ingredientIndex")
			{
				ingredient.PUT("/measure", handler.SelectMeasure)
				ingredient.PUT("/grams", handler.SetCustomGrams)
				ingredient.POST("/reset", handler.ResetIngredient)
			}
		}
	}

	return router
}
