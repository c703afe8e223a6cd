package httpapi

import (
	"net/http"

	"flightsurety-service/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type registerOracleRequest struct {
	Fee decimal.Decimal `json:"fee"`
}

// RegisterOracle admits the caller as an oracle
func (h *Handler) RegisterOracle(c *gin.Context) {
	var req registerOracleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	res, err := h.ledger.RegisterOracle(c.Request.Context(), GetCaller(c), req.Fee)
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"oracle": GetCaller(c), "events": res.Events})
}

// FetchFlightStatus opens an oracle request for a flight
func (h *Handler) FetchFlightStatus(c *gin.Context) {
	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	res, err := h.ledger.FetchFlightStatus(c.Request.Context(), GetCaller(c), req.key())
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"index":   res.Request.Index,
		"request": toRequestView(res.Request),
		"events":  res.Events,
	})
}

type oracleResponseRequest struct {
	flightRequest
	Index      uint64 `json:"index" binding:"required"`
	StatusCode *int   `json:"statusCode" binding:"required"`
}

// SubmitOracleResponse records the calling oracle's report
func (h *Handler) SubmitOracleResponse(c *gin.Context) {
	var req oracleResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	res, err := h.ledger.SubmitOracleResponse(c.Request.Context(), GetCaller(c), req.Index, req.key(), entity.StatusCode(*req.StatusCode))
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"request":   toRequestView(res.Request),
		"closed":    res.Closed,
		"duplicate": res.Duplicate,
		"events":    res.Events,
	})
}

// GetOracleRequest returns a request and the reports received so far
func (h *Handler) GetOracleRequest(c *gin.Context) {
	index, ok := parseIndex(c)
	if !ok {
		return
	}
	request, err := h.ledger.GetOracleRequest(c.Request.Context(), index)
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": toRequestView(request)})
}
