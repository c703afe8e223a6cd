package repository

import (
	"context"
	"time"

	"flightsurety-service/internal/domain/entity"
)

// OracleRepository defines the interface for oracle and oracle request storage
type OracleRepository interface {
	GetOracle(ctx context.Context, address string) (*entity.Oracle, error)
	CreateOracle(ctx context.Context, oracle *entity.Oracle) error

	// CreateRequest stores a new request and assigns its index
	CreateRequest(ctx context.Context, request *entity.OracleRequest) error
	GetRequest(ctx context.Context, index uint64) (*entity.OracleRequest, error)
	CloseRequest(ctx context.Context, index uint64, outcome entity.StatusCode, closedAt time.Time) error

	HasResponse(ctx context.Context, index uint64, oracle string) (bool, error)
	AddResponse(ctx context.Context, index uint64, oracle string, code entity.StatusCode) error
	CountResponses(ctx context.Context, index uint64, code entity.StatusCode) (int, error)
}
