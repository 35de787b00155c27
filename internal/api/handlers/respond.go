package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/lnmn249/faire-lightspeed-lite/pkg/errors"
)

// respondError maps the error taxonomy to HTTP statuses: input validation
// is the client's fault, vendor validation keeps the vendor's 422, a
// failed upstream call is a bad gateway, everything else is internal.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var validation *apperrors.ErrValidation
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
		return
	}

	var productValidation *apperrors.ErrProductValidation
	if errors.As(err, &productValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": productValidation.Error()})
		return
	}

	var notFound *apperrors.ErrNotFound
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
		return
	}

	var missingSecret *apperrors.ErrMissingSecret
	if errors.As(err, &missingSecret) {
		logger.Error("Missing credential", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": missingSecret.Error()})
		return
	}

	var upstream *apperrors.ErrUpstream
	if errors.As(err, &upstream) {
		logger.Error("Upstream call failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": upstream.Error()})
		return
	}

	logger.Error("Request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
