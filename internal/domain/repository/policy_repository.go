package repository

import (
	"context"

	"flightsurety-service/internal/domain/entity"
)

// PolicyRepository defines the interface for insurance policy storage
type PolicyRepository interface {
	Get(ctx context.Context, passenger string, key entity.FlightKey) (*entity.InsurancePolicy, error)
	Save(ctx context.Context, policy *entity.InsurancePolicy) error
	FindUnclaimedByFlight(ctx context.Context, key entity.FlightKey) ([]*entity.InsurancePolicy, error)
	FindByPassenger(ctx context.Context, passenger string) ([]*entity.InsurancePolicy, error)
}
