package repository

import (
	"context"

	"flightsurety-service/internal/domain/entity"
)

// EventPublisher delivers committed ledger events to external observers
type EventPublisher interface {
	Publish(ctx context.Context, events []entity.Event) error
}
