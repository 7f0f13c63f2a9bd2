package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"qrstats/internal/config"
	"qrstats/internal/domain"
	"qrstats/pkg/logger"
)

// NewRouter configures the Gin router with middleware and routes
func NewRouter(h *TargetHandler, cfg *config.Config, log *logger.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.CORSAllowedOrigins))
	router.Use(SecurityHeadersMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitPerMinute))
	if cfg.RequestTimeout > 0 {
		router.Use(TimeoutMiddleware(cfg.RequestTimeout))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "qrstats",
			"backend": cfg.StoreBackend,
		})
	})

	// Form and API creation share one handler
	router.POST("/create", h.CreateTarget)
	v1 := router.Group("/api/v1")
	{
		v1.POST("/targets", h.CreateTarget)
	}

	router.GET("/redirect/:id", h.Redirect)

	router.GET("/stats/:id", h.GetStats)
	router.POST("/stats/:id", h.PostStats)
	router.POST("/stats", h.StatsLogin)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, domain.ErrorResponse{
			Error:   "not_found",
			Message: "Endpoint not found",
			Code:    http.StatusNotFound,
		})
	})

	return router
}
