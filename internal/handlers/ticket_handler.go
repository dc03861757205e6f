package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lottoworks/luckydraw-backend/internal/services"
)

// TicketHandler handles ticket registry HTTP requests
type TicketHandler struct {
	ticketService services.TicketService
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(ticketService services.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// GetTicketsByDraw handles GET /tickets/draw/:number
func (h *TicketHandler) GetTicketsByDraw(c *gin.Context) {
	number, err := strconv.ParseUint(c.Param("number"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draw number"})
		return
	}

	tickets, err := h.ticketService.TicketsByDraw(c.Request.Context(), number)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// GetTicketOwner handles GET /tickets/:number/owner
func (h *TicketHandler) GetTicketOwner(c *gin.Context) {
	number, err := strconv.ParseUint(c.Param("number"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket number"})
		return
	}

	owner, err := h.ticketService.OwnerOf(c.Request.Context(), number)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticketNumber": number, "owner": owner})
}
