package repository

import (
	"context"

	"flightsurety-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormStore implements repository.Store on a single gorm database
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store backed by db
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

// Migrate creates or updates the ledger tables
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&Airlines{},
		&AirlineVotes{},
		&Flights{},
		&InsurancePolicies{},
		&Oracles{},
		&OracleRequests{},
		&OracleResponses{},
		&CreditAccounts{},
		&Withdrawals{},
		&LedgerSettings{},
	)
}

// Transaction runs fn inside one database transaction; an error from fn rolls it back
func (s *GormStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) Airlines() repository.AirlineRepository {
	return NewGormAirlineRepository(s.db)
}

func (s *GormStore) Flights() repository.FlightRepository {
	return NewGormFlightRepository(s.db)
}

func (s *GormStore) Policies() repository.PolicyRepository {
	return NewGormPolicyRepository(s.db)
}

func (s *GormStore) Oracles() repository.OracleRepository {
	return NewGormOracleRepository(s.db)
}

func (s *GormStore) Credits() repository.CreditRepository {
	return NewGormCreditRepository(s.db)
}

func (s *GormStore) Settings() repository.SettingsRepository {
	return NewGormSettingsRepository(s.db)
}
