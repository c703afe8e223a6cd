package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type creditRequest struct {
	flightRequest
	Percentage int64 `json:"percentage" binding:"required"`
}

// CreditInsurees pays out policies on a flight delayed by the airline; owner only
func (h *Handler) CreditInsurees(c *gin.Context) {
	var req creditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	res, err := h.ledger.CreditInsurees(c.Request.Context(), GetCaller(c), req.Percentage, req.key())
	if err != nil {
		h.writeError(c, err, nil)
		return
	}

	views := make([]policyView, 0, len(res.Credited))
	for _, p := range res.Credited {
		views = append(views, toPolicyView(p))
	}
	c.JSON(http.StatusOK, gin.H{"credited": views, "total": res.Total, "events": res.Events})
}

// Withdraw pays the caller's whole balance out
func (h *Handler) Withdraw(c *gin.Context) {
	res, err := h.ledger.WithdrawCredits(c.Request.Context(), GetCaller(c))
	if err != nil {
		h.writeError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawal": toWithdrawalView(res.Withdrawal), "events": res.Events})
}

// ListPendingWithdrawals returns withdrawals awaiting reconciliation
func (h *Handler) ListPendingWithdrawals(c *gin.Context) {
	pending, err := h.ledger.PendingWithdrawals(c.Request.Context())
	if err != nil {
		h.writeError(c, err, nil)
		return
	}

	views := make([]withdrawalView, 0, len(pending))
	for _, w := range pending {
		views = append(views, toWithdrawalView(w))
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": views})
}

type reconcileRequest struct {
	Transferred *bool  `json:"transferred" binding:"required"`
	Reference   string `json:"reference"`
}

// ReconcileWithdrawal settles a pending withdrawal; owner only
func (h *Handler) ReconcileWithdrawal(c *gin.Context) {
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	res, err := h.ledger.ReconcileWithdrawal(c.Request.Context(), GetCaller(c), c.Param("id"), *req.Transferred, req.Reference)
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawal": toWithdrawalView(res.Withdrawal), "events": res.Events})
}

// GetCredits returns a passenger's withdrawable balance
func (h *Handler) GetCredits(c *gin.Context) {
	balance, err := h.ledger.GetCreditBalance(c.Request.Context(), c.Param("address"))
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"passenger": c.Param("address"), "balance": balance})
}
