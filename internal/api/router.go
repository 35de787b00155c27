package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lnmn249/faire-lightspeed-lite/internal/api/handlers"
	"github.com/lnmn249/faire-lightspeed-lite/internal/api/middleware"
	"github.com/lnmn249/faire-lightspeed-lite/internal/config"
	"github.com/lnmn249/faire-lightspeed-lite/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, catalog *service.CatalogService, orders *service.OrderService, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(middleware.RequestID())
	router.Use(loggingMiddleware(logger))
	router.Use(middleware.CORS(cfg.UIOrigin))

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Faire to Lightspeed order bridge",
			"endpoints": []string{
				"GET /health",
				"GET /api/catalog/refresh",
				"GET /api/catalog/refresh/stream",
				"GET /api/catalog/last-refresh",
				"POST /api/orders/preview",
				"POST /api/orders/preview-csv",
				"POST /api/orders/submit",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		// Served under /api as well; probes hit either prefix
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		api.GET("/catalog/refresh", handlers.HandleCatalogRefresh(catalog, logger))
		api.GET("/catalog/refresh/stream", handlers.HandleCatalogRefreshStream(catalog, logger))
		api.GET("/catalog/last-refresh", handlers.HandleLastRefresh(catalog, logger))

		api.POST("/orders/preview", handlers.HandleOrdersPreview(orders, logger))
		api.POST("/orders/preview-csv", handlers.HandleOrdersPreviewCSV(orders, logger))
		api.POST("/orders/submit", handlers.HandleOrdersSubmit(orders, logger))
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.String("request_id", middleware.GetRequestID(c)),
		)
	}
}
