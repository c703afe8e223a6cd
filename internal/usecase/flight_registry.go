package usecase

import (
	"context"
	"fmt"

	"flightsurety-service/internal/domain/entity"
	"flightsurety-service/internal/domain/repository"
)

// FlightResult is the outcome of RegisterFlight
type FlightResult struct {
	Result
	Flight *entity.Flight
}

// RegisterFlight lists a flight operated by a funded airline
func (l *Ledger) RegisterFlight(ctx context.Context, key entity.FlightKey) (*FlightResult, error) {
	res := &FlightResult{}
	err := l.execute(ctx, "register_flight", true, func(tx repository.Store) error {
		k, err := normalizeFlightKey(key)
		if err != nil {
			return err
		}

		airline, err := tx.Airlines().GetByAddress(ctx, k.Airline)
		if isNotFound(err) {
			return fmt.Errorf("airline %s: %w", k.Airline, entity.ErrNotFunded)
		}
		if err != nil {
			return err
		}
		if !airline.IsFunded() {
			return fmt.Errorf("airline %s: %w", k.Airline, entity.ErrNotFunded)
		}

		_, err = tx.Flights().GetByKey(ctx, k)
		if err == nil {
			return fmt.Errorf("flight %s: %w", k, entity.ErrAlreadyRegistered)
		}
		if !isNotFound(err) {
			return err
		}

		flight := &entity.Flight{Key: k}
		if err := tx.Flights().Create(ctx, flight); err != nil {
			return err
		}
		res.Flight = flight

		event := entity.NewEvent(entity.EventFlightRegistered).WithFlight(k)
		event.Airline = k.Airline
		res.emit(event)
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Flight registered", "flight", res.Flight.Key.String())
	l.publish(ctx, res.Events)
	return res, nil
}

// GetFlight returns the flight identified by key
func (l *Ledger) GetFlight(ctx context.Context, key entity.FlightKey) (*entity.Flight, error) {
	k, err := normalizeFlightKey(key)
	if err != nil {
		return nil, err
	}
	return l.store.Flights().GetByKey(ctx, k)
}
