package repository

import (
	"context"

	"flightsurety-service/internal/domain/entity"
)

// AirlineRepository defines the interface for airline registry storage
type AirlineRepository interface {
	GetByAddress(ctx context.Context, address string) (*entity.Airline, error)
	Create(ctx context.Context, airline *entity.Airline) error
	Save(ctx context.Context, airline *entity.Airline) error
	AddVote(ctx context.Context, candidate, voter string) error
	ClearVotes(ctx context.Context, candidate string) error
	CountRegistered(ctx context.Context) (int, error)
}
