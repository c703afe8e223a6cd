package repository

import (
	"context"
	"errors"

	"flightsurety-service/internal/domain/entity"
	"flightsurety-service/internal/domain/repository"
)

// FanoutPublisher hands every batch to all configured publishers
type FanoutPublisher struct {
	publishers []repository.EventPublisher
}

// NewFanoutPublisher skips nil publishers
func NewFanoutPublisher(publishers ...repository.EventPublisher) *FanoutPublisher {
	f := &FanoutPublisher{}
	for _, p := range publishers {
		if p != nil {
			f.publishers = append(f.publishers, p)
		}
	}
	return f
}

// Len returns the number of publishers
func (f *FanoutPublisher) Len() int {
	return len(f.publishers)
}

// Publish delivers to every publisher even if one fails and joins the errors
func (f *FanoutPublisher) Publish(ctx context.Context, events []entity.Event) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
