package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type registerAirlineRequest struct {
	Address string `json:"address" binding:"required"`
	Name    string `json:"name" binding:"required"`
}

// RegisterAirline proposes or votes for a candidate airline on behalf of the caller
func (h *Handler) RegisterAirline(c *gin.Context) {
	var req registerAirlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	res, err := h.ledger.RegisterAirline(c.Request.Context(), GetCaller(c), req.Address, req.Name)
	if err != nil {
		h.writeError(c, err, nil)
		return
	}

	status := http.StatusCreated
	if res.Duplicate || !res.Airline.IsRegistered() {
		status = http.StatusAccepted
	}
	c.JSON(status, gin.H{
		"airline":   toAirlineView(res.Airline),
		"votes":     res.Votes,
		"threshold": res.Threshold,
		"duplicate": res.Duplicate,
		"events":    res.Events,
	})
}

type fundRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Fund posts the calling airline's bond
func (h *Handler) Fund(c *gin.Context) {
	var req fundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	res, err := h.ledger.Fund(c.Request.Context(), GetCaller(c), req.Amount)
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"airline": toAirlineView(res.Airline), "events": res.Events})
}

// CountAirlines returns the number of registered airlines
func (h *Handler) CountAirlines(c *gin.Context) {
	count, err := h.ledger.GetAirlinesCount(c.Request.Context())
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// GetAirline returns one airline
func (h *Handler) GetAirline(c *gin.Context) {
	airline, err := h.ledger.GetAirline(c.Request.Context(), c.Param("address"))
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"airline":    toAirlineView(airline),
		"registered": airline.IsRegistered(),
		"funded":     airline.IsFunded(),
	})
}
