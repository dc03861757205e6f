package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lottoworks/luckydraw-backend/internal/services"
)

// PrizeHandler handles prize ledger HTTP requests
type PrizeHandler struct {
	prizeService services.PrizeService
}

// NewPrizeHandler creates a new PrizeHandler
func NewPrizeHandler(prizeService services.PrizeService) *PrizeHandler {
	return &PrizeHandler{prizeService: prizeService}
}

// ClaimRequest is the body of POST /prizes/claim
type ClaimRequest struct {
	Account string `json:"account" binding:"required"`
}

// Claim handles POST /prizes/claim. Claiming with a zero balance succeeds
// and pays nothing.
func (h *PrizeHandler) Claim(c *gin.Context) {
	var request ClaimRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := h.prizeService.Claim(c.Request.Context(), request.Account)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": request.Account, "amount": amount})
}

// GetClaimable handles GET /prizes/claimable/:account
func (h *PrizeHandler) GetClaimable(c *gin.Context) {
	account := c.Param("account")
	amount, err := h.prizeService.Claimable(c.Request.Context(), account)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account, "amount": amount})
}

// GetPoolBalance handles GET /prizes/pool
func (h *PrizeHandler) GetPoolBalance(c *gin.Context) {
	balance, err := h.prizeService.PoolBalance(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// GetDistribution handles GET /prizes/distributions/:number
func (h *PrizeHandler) GetDistribution(c *gin.Context) {
	number, err := strconv.ParseUint(c.Param("number"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draw number"})
		return
	}

	dist, err := h.prizeService.GetDistribution(c.Request.Context(), number)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dist)
}

// GetTransactions handles GET /prizes/transactions/:account
func (h *PrizeHandler) GetTransactions(c *gin.Context) {
	txs, err := h.prizeService.GetTransactions(c.Request.Context(), c.Param("account"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

// SetFeeRateRequest is the body of PUT /admin/settings/fee-rate
type SetFeeRateRequest struct {
	Bps int64 `json:"bps" binding:"min=0"`
}

// SetFeeRate handles PUT /admin/settings/fee-rate
func (h *PrizeHandler) SetFeeRate(c *gin.Context) {
	var request SetFeeRateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.prizeService.SetFeeRate(c.Request.Context(), request.Bps); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fee rate updated"})
}

// SetRatiosRequest is the body of PUT /admin/settings/distribution-ratios
type SetRatiosRequest struct {
	GrandPercent     int64 `json:"grandPercent" binding:"required"`
	SecondaryPercent int64 `json:"secondaryPercent" binding:"required"`
	TreasuryPercent  int64 `json:"treasuryPercent" binding:"required"`
}

// SetDistributionRatios handles PUT /admin/settings/distribution-ratios
func (h *PrizeHandler) SetDistributionRatios(c *gin.Context) {
	var request SetRatiosRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.prizeService.SetDistributionRatios(c.Request.Context(),
		request.GrandPercent, request.SecondaryPercent, request.TreasuryPercent)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Distribution ratios updated"})
}
