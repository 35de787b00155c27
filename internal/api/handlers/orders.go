package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lnmn249/faire-lightspeed-lite/internal/domain"
	"github.com/lnmn249/faire-lightspeed-lite/internal/service"
)

// PreviewRequest carries structured order rows
type PreviewRequest struct {
	Items []domain.OrderLine `json:"items"`
}

// SubmitRequest carries order rows plus the auto-create switch
type SubmitRequest struct {
	Items             []domain.OrderLine `json:"items"`
	AutoCreateMissing bool               `json:"auto_create_missing"`
}

// HandleOrdersPreview handles POST /api/orders/preview
func HandleOrdersPreview(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PreviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		result, err := orders.Preview(c.Request.Context(), req.Items)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// HandleOrdersPreviewCSV handles POST /api/orders/preview-csv (multipart
// upload, field name "file")
func HandleOrdersPreviewCSV(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file upload required"})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload: " + err.Error()})
			return
		}
		defer file.Close()

		result, err := orders.PreviewCSV(c.Request.Context(), file)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// HandleOrdersSubmit handles POST /api/orders/submit
func HandleOrdersSubmit(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SubmitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		result, err := orders.Submit(c.Request.Context(), req.Items, req.AutoCreateMissing)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
