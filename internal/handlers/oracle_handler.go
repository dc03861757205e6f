package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lottoworks/luckydraw-backend/internal/services"
)

// OracleHandler receives randomness fulfillment callbacks from the oracle
type OracleHandler struct {
	randomnessService services.RandomnessService
}

// NewOracleHandler creates a new OracleHandler
func NewOracleHandler(randomnessService services.RandomnessService) *OracleHandler {
	return &OracleHandler{randomnessService: randomnessService}
}

// FulfillRequest is the body of POST /oracle/fulfillments
type FulfillRequest struct {
	RequestID string `json:"requestId" binding:"required"`
	Seed      string `json:"seed" binding:"required"` // 32 bytes, hex
}

// Fulfill handles POST /oracle/fulfillments. A replayed fulfillment gets a
// 409; the first delivery already completed the draw.
func (h *OracleHandler) Fulfill(c *gin.Context) {
	var request FulfillRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.randomnessService.Fulfill(c.Request.Context(), request.RequestID, request.Seed); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fulfillment accepted"})
}

// GetRequestByDraw handles GET /oracle/requests/:number
func (h *OracleHandler) GetRequestByDraw(c *gin.Context) {
	number, err := strconv.ParseUint(c.Param("number"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draw number"})
		return
	}

	request, err := h.randomnessService.GetRequestByDraw(c.Request.Context(), number)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}
