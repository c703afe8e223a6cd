package entity

import "errors"

// Hard failures abort the whole operation. Duplicate votes and duplicate oracle
// responses are absorbed as no-ops and never surface as errors.
var (
	ErrOperational          = errors.New("ledger is not operational")
	ErrUnauthorized         = errors.New("caller is not authorized")
	ErrAlreadyRegistered    = errors.New("already registered")
	ErrAlreadyFunded        = errors.New("airline already funded")
	ErrNotFunded            = errors.New("airline is not funded")
	ErrNotRegistered        = errors.New("not registered")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrPremiumExceedsCap    = errors.New("premium exceeds cap")
	ErrConsensusNotReached  = errors.New("oracle consensus not reached")
	ErrZeroBalance          = errors.New("no credits to withdraw")
	ErrNotFound             = errors.New("not found")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrDuplicateResponse    = errors.New("duplicate oracle response")
	ErrDuplicateVote        = errors.New("duplicate airline vote")
	ErrPayoutTransferFailed = errors.New("payout transfer failed")
)

// IsRetryable reports whether err is a "not yet" condition the caller may retry later
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConsensusNotReached)
}
