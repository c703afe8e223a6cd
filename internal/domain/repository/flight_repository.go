package repository

import (
	"context"
	"time"

	"flightsurety-service/internal/domain/entity"
)

// FlightRepository defines the interface for flight registry storage
type FlightRepository interface {
	GetByKey(ctx context.Context, key entity.FlightKey) (*entity.Flight, error)
	Create(ctx context.Context, flight *entity.Flight) error
	Resolve(ctx context.Context, key entity.FlightKey, outcome entity.StatusCode, resolvedAt time.Time) error
}
