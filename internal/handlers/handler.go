package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lottoworks/luckydraw-backend/internal/models"
)

// respondError maps domain errors onto HTTP statuses. Unrecognized errors
// become 500s with the message suppressed.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrInvalidPayment),
		errors.Is(err, models.ErrInvalidSeed),
		errors.Is(err, models.ErrInvalidSetting):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrDrawNotFound),
		errors.Is(err, models.ErrRequestNotFound),
		errors.Is(err, models.ErrTicketNotFound),
		errors.Is(err, models.ErrDistributionNotFound),
		errors.Is(err, models.ErrSettingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidPhase),
		errors.Is(err, models.ErrDuplicateRequest),
		errors.Is(err, models.ErrAlreadyFulfilled):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInsufficientEntries):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrTransferFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
