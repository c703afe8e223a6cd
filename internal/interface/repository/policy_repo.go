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
	"gorm.io/gorm/clause"
)

// GormPolicyRepository implements the PolicyRepository interface
type GormPolicyRepository struct {
	db *gorm.DB
}

// NewGormPolicyRepository creates a new GORM policy repository
func NewGormPolicyRepository(db *gorm.DB) repository.PolicyRepository {
	return &GormPolicyRepository{
		db: db,
	}
}

// InsurancePolicies GORM model for database mapping
type InsurancePolicies struct {
	Passenger string          `gorm:"column:passenger;primaryKey;size:64"`
	Airline   string          `gorm:"column:airline;primaryKey;size:64;index:idx_policy_flight"`
	Code      string          `gorm:"column:code;primaryKey;size:32;index:idx_policy_flight"`
	Departure int64           `gorm:"column:departure;primaryKey;index:idx_policy_flight"`
	Premium   decimal.Decimal `gorm:"column:premium;type:varchar(80)"`
	Claimed   bool            `gorm:"column:claimed"`
	Credited  decimal.Decimal `gorm:"column:credited;type:varchar(80)"`
	ClaimedAt *time.Time      `gorm:"column:claimed_at"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (InsurancePolicies) TableName() string {
	return "fs_insurance_policies"
}

func (p InsurancePolicies) toEntity() *entity.InsurancePolicy {
	return &entity.InsurancePolicy{
		Passenger: p.Passenger,
		Key: entity.FlightKey{
			Airline:   p.Airline,
			Code:      p.Code,
			Departure: p.Departure,
		},
		Premium:   p.Premium,
		Claimed:   p.Claimed,
		Credited:  p.Credited,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		ClaimedAt: p.ClaimedAt,
	}
}

// Get finds the policy a passenger holds on a flight
func (r *GormPolicyRepository) Get(ctx context.Context, passenger string, key entity.FlightKey) (*entity.InsurancePolicy, error) {
	var policy InsurancePolicies
	result := r.db.WithContext(ctx).
		Where("passenger = ? AND airline = ? AND code = ? AND departure = ?",
			passenger, key.Airline, key.Code, key.Departure).
		First(&policy)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("policy %s on %s: %w", passenger, key, entity.ErrNotFound)
		}
		return nil, result.Error
	}
	return policy.toEntity(), nil
}

// Save creates the policy or overwrites the stored one
func (r *GormPolicyRepository) Save(ctx context.Context, policy *entity.InsurancePolicy) error {
	now := time.Now()
	if policy.CreatedAt.IsZero() {
		policy.CreatedAt = now
	}
	policy.UpdatedAt = now

	model := InsurancePolicies{
		Passenger: policy.Passenger,
		Airline:   policy.Key.Airline,
		Code:      policy.Key.Code,
		Departure: policy.Key.Departure,
		Premium:   policy.Premium,
		Claimed:   policy.Claimed,
		Credited:  policy.Credited,
		ClaimedAt: policy.ClaimedAt,
		CreatedAt: policy.CreatedAt,
		UpdatedAt: policy.UpdatedAt,
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "passenger"}, {Name: "airline"}, {Name: "code"}, {Name: "departure"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"premium", "claimed", "credited", "claimed_at", "updated_at",
		}),
	}).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("failed to save policy: %w", result.Error)
	}
	return nil
}

// FindUnclaimedByFlight lists the policies on a flight that have not been credited
func (r *GormPolicyRepository) FindUnclaimedByFlight(ctx context.Context, key entity.FlightKey) ([]*entity.InsurancePolicy, error) {
	var policies []InsurancePolicies
	result := r.db.WithContext(ctx).
		Where("airline = ? AND code = ? AND departure = ? AND claimed = ?",
			key.Airline, key.Code, key.Departure, false).
		Order("created_at, passenger").
		Find(&policies)
	if result.Error != nil {
		return nil, result.Error
	}

	// Convert to domain entities
	entities := make([]*entity.InsurancePolicy, 0, len(policies))
	for _, p := range policies {
		entities = append(entities, p.toEntity())
	}
	return entities, nil
}

// FindByPassenger lists every policy held by a passenger
func (r *GormPolicyRepository) FindByPassenger(ctx context.Context, passenger string) ([]*entity.InsurancePolicy, error) {
	var policies []InsurancePolicies
	result := r.db.WithContext(ctx).
		Where("passenger = ?", passenger).
		Order("created_at").
		Find(&policies)
	if result.Error != nil {
		return nil, result.Error
	}

	entities := make([]*entity.InsurancePolicy, 0, len(policies))
	for _, p := range policies {
		entities = append(entities, p.toEntity())
	}
	return entities, nil
}
