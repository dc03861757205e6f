package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lottoworks/luckydraw-backend/internal/models"
	"github.com/lottoworks/luckydraw-backend/internal/services"
)

// DrawHandler handles draw lifecycle HTTP requests
type DrawHandler struct {
	drawService services.DrawService
}

// NewDrawHandler creates a new DrawHandler
func NewDrawHandler(drawService services.DrawService) *DrawHandler {
	return &DrawHandler{drawService: drawService}
}

// OpenDraw handles POST /admin/draws/open
func (h *DrawHandler) OpenDraw(c *gin.Context) {
	draw, err := h.drawService.OpenDraw(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draw)
}

// PurchaseRequest is the body of POST /draws/purchase
type PurchaseRequest struct {
	Buyer      string `json:"buyer" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
	AmountPaid int64  `json:"amountPaid" binding:"required"`
}

// Purchase handles POST /draws/purchase
func (h *DrawHandler) Purchase(c *gin.Context) {
	var request PurchaseRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tickets, err := h.drawService.Purchase(c.Request.Context(), request.Buyer, request.Quantity, request.AmountPaid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ticketNumbers": tickets})
}

// TriggerDraw handles POST /draws/trigger. Open to anyone: once the sale
// window has elapsed, any caller may close the sale.
func (h *DrawHandler) TriggerDraw(c *gin.Context) {
	draw, err := h.drawService.TriggerDraw(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// EmergencyStop handles POST /admin/draws/emergency-stop
func (h *DrawHandler) EmergencyStop(c *gin.Context) {
	draw, err := h.drawService.EmergencyStop(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// GetCurrentDraw handles GET /draws/current
func (h *DrawHandler) GetCurrentDraw(c *gin.Context) {
	draw, err := h.drawService.GetCurrentDraw(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// GetDrawByNumber handles GET /draws/:number
func (h *DrawHandler) GetDrawByNumber(c *gin.Context) {
	number, err := strconv.ParseUint(c.Param("number"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draw number"})
		return
	}

	draw, err := h.drawService.GetDrawByNumber(c.Request.Context(), number)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// GetDraws handles GET /draws, optionally filtered by ?phase=
func (h *DrawHandler) GetDraws(c *gin.Context) {
	var (
		draws []*models.Draw
		err   error
	)
	if phase := c.Query("phase"); phase != "" {
		draws, err = h.drawService.GetDrawsByPhase(c.Request.Context(), models.DrawPhase(phase))
	} else {
		draws, err = h.drawService.GetDraws(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draws)
}

// GetWinners handles GET /draws/:number/winners
func (h *DrawHandler) GetWinners(c *gin.Context) {
	number, err := strconv.ParseUint(c.Param("number"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draw number"})
		return
	}

	winners, err := h.drawService.GetWinners(c.Request.Context(), number)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, winners)
}

// SetTicketPriceRequest is the body of PUT /admin/settings/ticket-price
type SetTicketPriceRequest struct {
	Price int64 `json:"price" binding:"required"`
}

// SetTicketPrice handles PUT /admin/settings/ticket-price
func (h *DrawHandler) SetTicketPrice(c *gin.Context) {
	var request SetTicketPriceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.drawService.SetTicketPrice(c.Request.Context(), request.Price); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ticket price updated"})
}

// SetSalePeriodRequest is the body of PUT /admin/settings/sale-period
type SetSalePeriodRequest struct {
	Seconds int `json:"seconds" binding:"required"`
}

// SetSalePeriod handles PUT /admin/settings/sale-period
func (h *DrawHandler) SetSalePeriod(c *gin.Context) {
	var request SetSalePeriodRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.drawService.SetSalePeriod(c.Request.Context(), request.Seconds); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sale period updated"})
}
