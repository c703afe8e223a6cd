package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal Status
const (
	WithdrawalPending   = "PENDING"
	WithdrawalCompleted = "COMPLETED"
	WithdrawalFailed    = "FAILED"
)

// CreditAccount holds credits owed to a passenger pending withdrawal
type CreditAccount struct {
	Passenger string
	Balance   decimal.Decimal
	Version   int
	UpdatedAt time.Time
}

// Withdrawal records one payout of a passenger's balance
type Withdrawal struct {
	ID          string
	Passenger   string
	Amount      decimal.Decimal
	Status      string
	Reference   string
	ErrorDetail string
	CreatedAt   time.Time
	CompletedAt *time.Time
}
