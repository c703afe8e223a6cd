package repository

import (
	"context"

	"flightsurety-service/internal/domain/entity"
)

// CreditRepository defines the interface for passenger credit balances and payouts
type CreditRepository interface {
	// GetAccount returns the account, or a zero-balance account if none exists yet
	GetAccount(ctx context.Context, passenger string) (*entity.CreditAccount, error)
	SaveAccount(ctx context.Context, account *entity.CreditAccount) error

	CreateWithdrawal(ctx context.Context, withdrawal *entity.Withdrawal) error
	UpdateWithdrawal(ctx context.Context, withdrawal *entity.Withdrawal) error
	GetWithdrawal(ctx context.Context, id string) (*entity.Withdrawal, error)
	FindWithdrawalsByStatus(ctx context.Context, status string) ([]*entity.Withdrawal, error)
}
