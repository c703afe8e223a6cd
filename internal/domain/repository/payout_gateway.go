package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// PayoutGateway moves value out of the ledger to a passenger. Implementations may call
// back into the ledger before returning. withdrawalID is stable for one withdrawal and
// serves as the transfer's idempotency key.
type PayoutGateway interface {
	Transfer(ctx context.Context, withdrawalID, passenger string, amount decimal.Decimal) (reference string, err error)
}
