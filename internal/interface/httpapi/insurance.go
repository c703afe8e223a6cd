package httpapi

import (
	"net/http"

	"flightsurety-service/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type flightRequest struct {
	Airline   string `json:"airline" binding:"required"`
	Code      string `json:"code" binding:"required"`
	Departure int64  `json:"departure" binding:"required"`
}

func (r flightRequest) key() entity.FlightKey {
	return entity.FlightKey{Airline: r.Airline, Code: r.Code, Departure: r.Departure}
}

type registerFlightRequest struct {
	Code      string `json:"code" binding:"required"`
	Departure int64  `json:"departure" binding:"required"`
}

// RegisterFlight lists a flight operated by the calling airline
func (h *Handler) RegisterFlight(c *gin.Context) {
	var req registerFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	key := entity.FlightKey{Airline: GetCaller(c), Code: req.Code, Departure: req.Departure}
	res, err := h.ledger.RegisterFlight(c.Request.Context(), key)
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"flight": toFlightView(res.Flight), "events": res.Events})
}

// GetFlight returns a flight and its outcome
func (h *Handler) GetFlight(c *gin.Context) {
	key, ok := flightParams(c)
	if !ok {
		return
	}
	flight, err := h.ledger.GetFlight(c.Request.Context(), key)
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flight": toFlightView(flight)})
}

type buyInsuranceRequest struct {
	flightRequest
	Premium decimal.Decimal `json:"premium"`
}

// BuyInsurance adds premium to the caller's policy on a flight
func (h *Handler) BuyInsurance(c *gin.Context) {
	var req buyInsuranceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	res, err := h.ledger.BuyInsurance(c.Request.Context(), GetCaller(c), req.key(), req.Premium)
	if err != nil {
		var events []entity.Event
		if res != nil {
			events = res.Events
		}
		h.writeError(c, err, events)
		return
	}
	c.JSON(http.StatusOK, gin.H{"policy": toPolicyView(res.Policy), "events": res.Events})
}

// ListPolicies returns every policy a passenger holds
func (h *Handler) ListPolicies(c *gin.Context) {
	policies, err := h.ledger.ListPolicies(c.Request.Context(), c.Param("address"))
	if err != nil {
		h.writeError(c, err, nil)
		return
	}

	views := make([]policyView, 0, len(policies))
	for _, p := range policies {
		views = append(views, toPolicyView(p))
	}
	c.JSON(http.StatusOK, gin.H{"policies": views})
}
