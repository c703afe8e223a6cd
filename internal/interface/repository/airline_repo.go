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

// GormAirlineRepository implements the AirlineRepository interface
type GormAirlineRepository struct {
	db *gorm.DB
}

// NewGormAirlineRepository creates a new GORM airline repository
func NewGormAirlineRepository(db *gorm.DB) repository.AirlineRepository {
	return &GormAirlineRepository{
		db: db,
	}
}

// Airlines GORM model for database mapping
type Airlines struct {
	Address      string          `gorm:"column:address;primaryKey;size:64"`
	Name         string          `gorm:"column:name"`
	Status       string          `gorm:"column:status;index"`
	FundedAmount decimal.Decimal `gorm:"column:funded_amount;type:varchar(80)"`
	Version      int             `gorm:"column:version"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the default table name
func (Airlines) TableName() string {
	return "fs_airlines"
}

// AirlineVotes GORM model; one row per distinct endorsement of an applied airline
type AirlineVotes struct {
	Candidate string `gorm:"column:candidate;primaryKey;size:64"`
	Voter     string `gorm:"column:voter;primaryKey;size:64"`
	CreatedAt time.Time
}

// TableName overrides the default table name
func (AirlineVotes) TableName() string {
	return "fs_airline_votes"
}

// GetByAddress finds an airline by address, including its pending votes
func (r *GormAirlineRepository) GetByAddress(ctx context.Context, address string) (*entity.Airline, error) {
	var airline Airlines
	result := r.db.WithContext(ctx).Where("address = ?", address).First(&airline)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("airline %s: %w", address, entity.ErrNotFound)
		}
		return nil, result.Error
	}

	var votes []AirlineVotes
	if err := r.db.WithContext(ctx).
		Where("candidate = ?", address).
		Order("created_at, voter").
		Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}

	voters := make([]string, 0, len(votes))
	for _, v := range votes {
		voters = append(voters, v.Voter)
	}

	// Convert GORM model to domain entity
	return &entity.Airline{
		Address:      airline.Address,
		Name:         airline.Name,
		Status:       entity.AirlineStatus(airline.Status),
		FundedAmount: airline.FundedAmount,
		Voters:       voters,
		Version:      airline.Version,
		CreatedAt:    airline.CreatedAt,
		UpdatedAt:    airline.UpdatedAt,
	}, nil
}

// Create inserts a new airline
func (r *GormAirlineRepository) Create(ctx context.Context, airline *entity.Airline) error {
	model := Airlines{
		Address:      airline.Address,
		Name:         airline.Name,
		Status:       string(airline.Status),
		FundedAmount: airline.FundedAmount,
		Version:      1,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to create airline: %w", err)
	}

	airline.Version = model.Version
	airline.CreatedAt = model.CreatedAt
	airline.UpdatedAt = model.UpdatedAt
	return nil
}

// Save writes status, name and bond, guarded by the record version
func (r *GormAirlineRepository) Save(ctx context.Context, airline *entity.Airline) error {
	result := r.db.WithContext(ctx).Model(&Airlines{}).
		Where("address = ? AND version = ?", airline.Address, airline.Version).
		Updates(map[string]interface{}{
			"name":          airline.Name,
			"status":        string(airline.Status),
			"funded_amount": airline.FundedAmount,
			"version":       airline.Version + 1,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to save airline: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("airline %s changed concurrently (version %d)", airline.Address, airline.Version)
	}

	airline.Version++
	return nil
}

// AddVote records voter's endorsement of candidate
func (r *GormAirlineRepository) AddVote(ctx context.Context, candidate, voter string) error {
	vote := AirlineVotes{Candidate: candidate, Voter: voter}
	if err := r.db.WithContext(ctx).Create(&vote).Error; err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}
	return nil
}

// ClearVotes removes every vote cast for candidate
func (r *GormAirlineRepository) ClearVotes(ctx context.Context, candidate string) error {
	if err := r.db.WithContext(ctx).Where("candidate = ?", candidate).Delete(&AirlineVotes{}).Error; err != nil {
		return fmt.Errorf("failed to clear votes: %w", err)
	}
	return nil
}

// CountRegistered counts airlines that are registered or funded
func (r *GormAirlineRepository) CountRegistered(ctx context.Context) (int, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&Airlines{}).
		Where("status IN ?", []string{string(entity.AirlineRegistered), string(entity.AirlineFunded)}).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(count), nil
}
