package httpapi

import (
	"net/http"
	"strconv"

	"flightsurety-service/internal/domain/entity"
	"flightsurety-service/internal/usecase"
	"flightsurety-service/pkg/logger"
	"flightsurety-service/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Handler exposes the ledger over JSON
type Handler struct {
	ledger *usecase.Ledger
	logger logger.Logger
}

// NewHandler creates a new ledger handler
func NewHandler(ledger *usecase.Ledger, logger logger.Logger) *Handler {
	return &Handler{
		ledger: ledger,
		logger: logger,
	}
}

// Register mounts every ledger route on rg
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/operational", h.GetOperational)
	rg.GET("/airlines/count", h.CountAirlines)
	rg.GET("/airlines/:address", h.GetAirline)
	rg.GET("/flights/:airline/:code/:departure", h.GetFlight)
	rg.GET("/passengers/:address/policies", h.ListPolicies)
	rg.GET("/passengers/:address/credits", h.GetCredits)
	rg.GET("/oracle-requests/:index", h.GetOracleRequest)
	rg.GET("/withdrawals/pending", h.ListPendingWithdrawals)

	signed := rg.Group("", RequireCaller())
	signed.PUT("/operational", h.SetOperational)
	signed.POST("/airlines", h.RegisterAirline)
	signed.POST("/airlines/fund", h.Fund)
	signed.POST("/flights", h.RegisterFlight)
	signed.POST("/insurance", h.BuyInsurance)
	signed.POST("/oracles", h.RegisterOracle)
	signed.POST("/oracle-requests", h.FetchFlightStatus)
	signed.POST("/oracle-responses", h.SubmitOracleResponse)
	signed.POST("/credits", h.CreditInsurees)
	signed.POST("/withdrawals", h.Withdraw)
	signed.POST("/withdrawals/:id/reconcile", h.ReconcileWithdrawal)
}

// GetOperational reports the operational gate
func (h *Handler) GetOperational(c *gin.Context) {
	operational, err := h.ledger.IsOperational(c.Request.Context())
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"operational": operational})
}

type operationalRequest struct {
	Operational *bool `json:"operational" binding:"required"`
}

// SetOperational opens or closes the gate; owner only
func (h *Handler) SetOperational(c *gin.Context) {
	var req operationalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	res, err := h.ledger.SetOperatingStatus(c.Request.Context(), GetCaller(c), *req.Operational)
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"operational": *req.Operational, "events": res.Events})
}

// flightParams reads a flight key from the :airline/:code/:departure path
func flightParams(c *gin.Context) (entity.FlightKey, bool) {
	departure, err := utils.ParseDeparture(c.Param("departure"))
	if err != nil {
		badRequest(c, err.Error())
		return entity.FlightKey{}, false
	}
	return entity.FlightKey{
		Airline:   c.Param("airline"),
		Code:      c.Param("code"),
		Departure: departure,
	}, true
}

func parseIndex(c *gin.Context) (uint64, bool) {
	index, err := strconv.ParseUint(c.Param("index"), 10, 64)
	if err != nil {
		badRequest(c, "malformed request index")
		return 0, false
	}
	return index, true
}
