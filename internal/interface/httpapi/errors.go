package httpapi

import (
	"errors"
	"net/http"

	"flightsurety-service/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

var errorStatuses = []struct {
	err    error
	status int
	code   string
}{
	{entity.ErrOperational, http.StatusServiceUnavailable, "operational"},
	{entity.ErrUnauthorized, http.StatusForbidden, "unauthorized"},
	{entity.ErrAlreadyRegistered, http.StatusConflict, "already_registered"},
	{entity.ErrAlreadyFunded, http.StatusConflict, "already_funded"},
	{entity.ErrNotFunded, http.StatusPreconditionFailed, "not_funded"},
	{entity.ErrNotRegistered, http.StatusPreconditionFailed, "not_registered"},
	{entity.ErrInsufficientFunds, http.StatusBadRequest, "insufficient_funds"},
	{entity.ErrPremiumExceedsCap, http.StatusBadRequest, "premium_exceeds_cap"},
	{entity.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
	{entity.ErrConsensusNotReached, http.StatusTooEarly, "consensus_not_reached"},
	{entity.ErrZeroBalance, http.StatusConflict, "zero_balance"},
	{entity.ErrNotFound, http.StatusNotFound, "not_found"},
	{entity.ErrPayoutTransferFailed, http.StatusBadGateway, "payout_failed"},
}

// statusFor maps a ledger error to its HTTP status and machine-readable code
func statusFor(err error) (int, string) {
	for _, es := range errorStatuses {
		if errors.Is(err, es.err) {
			return es.status, es.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

func (h *Handler) writeError(c *gin.Context, err error, events []entity.Event) {
	status, code := statusFor(err)
	body := gin.H{"error": err.Error(), "code": code}
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.FullPath(), "error", err)
		body["error"] = "internal error"
	}
	if entity.IsRetryable(err) {
		body["retryable"] = true
	}
	if len(events) > 0 {
		body["events"] = events
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "invalid_argument"})
}
