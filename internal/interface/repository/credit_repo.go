package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flightsurety-service/internal/domain/entity"
	"flightsurety-service/internal/domain/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCreditRepository implements the CreditRepository interface
type GormCreditRepository struct {
	db *gorm.DB
}

// NewGormCreditRepository creates a new GORM credit repository
func NewGormCreditRepository(db *gorm.DB) repository.CreditRepository {
	return &GormCreditRepository{
		db: db,
	}
}

// CreditAccounts GORM model for database mapping
type CreditAccounts struct {
	Passenger string          `gorm:"column:passenger;primaryKey;size:64"`
	Balance   decimal.Decimal `gorm:"column:balance;type:varchar(80)"`
	Version   int             `gorm:"column:version"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (CreditAccounts) TableName() string {
	return "fs_credit_accounts"
}

// Withdrawals GORM model for database mapping
type Withdrawals struct {
	ID          string          `gorm:"column:id;primaryKey;size:36"`
	Passenger   string          `gorm:"column:passenger;size:64;index"`
	Amount      decimal.Decimal `gorm:"column:amount;type:varchar(80)"`
	Status      string          `gorm:"column:status;index"`
	Reference   string          `gorm:"column:reference"`
	ErrorDetail string          `gorm:"column:error_detail"`
	CompletedAt *time.Time      `gorm:"column:completed_at"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the default table name
func (Withdrawals) TableName() string {
	return "fs_withdrawals"
}

// GetAccount finds a passenger's credit account
func (r *GormCreditRepository) GetAccount(ctx context.Context, passenger string) (*entity.CreditAccount, error) {
	var account CreditAccounts
	result := r.db.WithContext(ctx).Where("passenger = ?", passenger).First(&account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return &entity.CreditAccount{Passenger: passenger, Balance: decimal.Zero}, nil
		}
		return nil, result.Error
	}

	return &entity.CreditAccount{
		Passenger: account.Passenger,
		Balance:   account.Balance,
		Version:   account.Version,
		UpdatedAt: account.UpdatedAt,
	}, nil
}

// SaveAccount writes the balance. Version 0 means the account was never stored.
func (r *GormCreditRepository) SaveAccount(ctx context.Context, account *entity.CreditAccount) error {
	if account.Version == 0 {
		model := CreditAccounts{
			Passenger: account.Passenger,
			Balance:   account.Balance,
			Version:   1,
		}
		if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
			return fmt.Errorf("failed to create credit account: %w", err)
		}
		account.Version = 1
		account.UpdatedAt = model.UpdatedAt
		return nil
	}

	now := time.Now()
	result := r.db.WithContext(ctx).Model(&CreditAccounts{}).
		Where("passenger = ? AND version = ?", account.Passenger, account.Version).
		Updates(map[string]interface{}{
			"balance":    account.Balance,
			"version":    account.Version + 1,
			"updated_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update credit account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("credit account %s changed concurrently (version %d)", account.Passenger, account.Version)
	}

	account.Version++
	account.UpdatedAt = now
	return nil
}

// CreateWithdrawal inserts a withdrawal record
func (r *GormCreditRepository) CreateWithdrawal(ctx context.Context, withdrawal *entity.Withdrawal) error {
	model := Withdrawals{
		ID:        withdrawal.ID,
		Passenger: withdrawal.Passenger,
		Amount:    withdrawal.Amount,
		Status:    withdrawal.Status,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to create withdrawal: %w", err)
	}
	withdrawal.CreatedAt = model.CreatedAt
	return nil
}

// UpdateWithdrawal stores the outcome of a payout
func (r *GormCreditRepository) UpdateWithdrawal(ctx context.Context, withdrawal *entity.Withdrawal) error {
	result := r.db.WithContext(ctx).Model(&Withdrawals{}).
		Where("id = ?", withdrawal.ID).
		Updates(map[string]interface{}{
			"status":       withdrawal.Status,
			"reference":    withdrawal.Reference,
			"error_detail": withdrawal.ErrorDetail,
			"completed_at": withdrawal.CompletedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update withdrawal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("withdrawal %s: %w", withdrawal.ID, entity.ErrNotFound)
	}
	return nil
}

// GetWithdrawal finds a withdrawal by ID
func (r *GormCreditRepository) GetWithdrawal(ctx context.Context, id string) (*entity.Withdrawal, error) {
	var model Withdrawals
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("withdrawal %s: %w", id, entity.ErrNotFound)
		}
		return nil, result.Error
	}
	return model.toEntity(), nil
}

// FindWithdrawalsByStatus lists withdrawals in one status, oldest first
func (r *GormCreditRepository) FindWithdrawalsByStatus(ctx context.Context, status string) ([]*entity.Withdrawal, error) {
	var models []Withdrawals
	result := r.db.WithContext(ctx).Where("status = ?", status).Order("created_at ASC").Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	withdrawals := make([]*entity.Withdrawal, 0, len(models))
	for i := range models {
		withdrawals = append(withdrawals, models[i].toEntity())
	}
	return withdrawals, nil
}

func (m Withdrawals) toEntity() *entity.Withdrawal {
	return &entity.Withdrawal{
		ID:          m.ID,
		Passenger:   m.Passenger,
		Amount:      m.Amount,
		Status:      m.Status,
		Reference:   m.Reference,
		ErrorDetail: m.ErrorDetail,
		CreatedAt:   m.CreatedAt,
		CompletedAt: m.CompletedAt,
	}
}
