package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lnmn249/faire-lightspeed-lite/internal/service"
)

func pageSizeParam(c *gin.Context) int {
	if raw := c.Query("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return service.DefaultPageSize
}

// HandleCatalogRefresh handles GET /api/catalog/refresh
func HandleCatalogRefresh(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := catalog.Refresh(c.Request.Context(), pageSizeParam(c))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// HandleCatalogRefreshStream handles GET /api/catalog/refresh/stream as
// server-sent events. The engine guarantees a terminal done or error
// event, so the stream always ends cleanly.
func HandleCatalogRefreshStream(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")

		events := catalog.RefreshStream(c.Request.Context(), pageSizeParam(c))
		c.Stream(func(w io.Writer) bool {
			event, ok := <-events
			if !ok {
				return false
			}
			c.SSEvent(event.Event, event.Data)
			return true
		})
	}
}

// HandleLastRefresh handles GET /api/catalog/last-refresh
func HandleLastRefresh(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		last, err := catalog.LastRefresh(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"last_refresh": last})
	}
}
