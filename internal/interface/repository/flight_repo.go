package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flightsurety-service/internal/domain/entity"
	"flightsurety-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormFlightRepository implements FlightRepository
type GormFlightRepository struct {
	db *gorm.DB
}

// NewGormFlightRepository creates a new flight repository
func NewGormFlightRepository(db *gorm.DB) repository.FlightRepository {
	return &GormFlightRepository{
		db: db,
	}
}

// Flights GORM model; (airline, code, departure) is unique
type Flights struct {
	ID         uint       `gorm:"primaryKey"`
	Airline    string     `gorm:"column:airline;size:64;uniqueIndex:idx_flight_key"`
	Code       string     `gorm:"column:code;size:32;uniqueIndex:idx_flight_key"`
	Departure  int64      `gorm:"column:departure;uniqueIndex:idx_flight_key"`
	Status     string     `gorm:"column:status"`
	Outcome    int        `gorm:"column:outcome"`
	ResolvedAt *time.Time `gorm:"column:resolved_at"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName overrides the default table name
func (Flights) TableName() string {
	return "fs_flights"
}

// GetByKey finds a flight by its composite key
func (r *GormFlightRepository) GetByKey(ctx context.Context, key entity.FlightKey) (*entity.Flight, error) {
	var flight Flights
	result := r.db.WithContext(ctx).
		Where("airline = ? AND code = ? AND departure = ?", key.Airline, key.Code, key.Departure).
		First(&flight)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("flight %s: %w", key, entity.ErrNotFound)
		}
		return nil, result.Error
	}

	return &entity.Flight{
		ID:           flight.ID,
		Key:          key,
		Status:       entity.FlightStatus(flight.Status),
		Outcome:      entity.StatusCode(flight.Outcome),
		RegisteredAt: flight.CreatedAt,
		ResolvedAt:   flight.ResolvedAt,
	}, nil
}

// Create inserts a flight in Registered status
func (r *GormFlightRepository) Create(ctx context.Context, flight *entity.Flight) error {
	model := Flights{
		Airline:   flight.Key.Airline,
		Code:      flight.Key.Code,
		Departure: flight.Key.Departure,
		Status:    string(entity.FlightRegistered),
		Outcome:   int(entity.StatusUnknown),
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to create flight: %w", err)
	}

	// Update the entity with the generated ID
	flight.ID = model.ID
	flight.Status = entity.FlightRegistered
	flight.RegisteredAt = model.CreatedAt
	return nil
}

// Resolve applies an outcome to a flight that has not been resolved yet
func (r *GormFlightRepository) Resolve(ctx context.Context, key entity.FlightKey, outcome entity.StatusCode, resolvedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&Flights{}).
		Where("airline = ? AND code = ? AND departure = ? AND status = ?",
			key.Airline, key.Code, key.Departure, string(entity.FlightRegistered)).
		Updates(map[string]interface{}{
			"status":      string(entity.FlightResolved),
			"outcome":     int(outcome),
			"resolved_at": resolvedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to resolve flight: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("flight %s not open for resolution: %w", key, entity.ErrNotFound)
	}
	return nil
}
