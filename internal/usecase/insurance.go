package usecase

import (
	"context"
	"fmt"

	"flightsurety-service/internal/domain/entity"
	"flightsurety-service/internal/domain/repository"

	"github.com/shopspring/decimal"
)

// PurchaseResult is the outcome of BuyInsurance
type PurchaseResult struct {
	Result
	Policy *entity.InsurancePolicy
}

// BuyInsurance adds premium to the passenger's policy on a registered, unresolved flight.
// A failed purchase changes nothing but still returns a result carrying the
// InsurancePurchaseFailure event alongside the error.
func (l *Ledger) BuyInsurance(ctx context.Context, passenger string, key entity.FlightKey, premium decimal.Decimal) (*PurchaseResult, error) {
	res := &PurchaseResult{}
	var (
		holder string
		flight entity.FlightKey
	)
	err := l.execute(ctx, "buy_insurance", true, func(tx repository.Store) error {
		var err error
		holder, err = normalizeAddress("passenger", passenger)
		if err != nil {
			return err
		}
		flight, err = normalizeFlightKey(key)
		if err != nil {
			return err
		}
		if !premium.IsPositive() {
			return fmt.Errorf("%w: premium must be positive, got %s", entity.ErrInvalidArgument, premium)
		}
		if premium.GreaterThan(l.cfg.MaxPremium) {
			return fmt.Errorf("%w: %s > %s", entity.ErrPremiumExceedsCap, premium, l.cfg.MaxPremium)
		}

		record, err := tx.Flights().GetByKey(ctx, flight)
		if isNotFound(err) {
			return fmt.Errorf("flight %s: %w", flight, entity.ErrNotRegistered)
		}
		if err != nil {
			return err
		}
		if record.IsResolved() {
			return fmt.Errorf("flight %s already resolved: %w", flight, entity.ErrNotRegistered)
		}

		policy, err := tx.Policies().Get(ctx, holder, flight)
		if isNotFound(err) {
			policy = &entity.InsurancePolicy{
				Passenger: holder,
				Key:       flight,
				Premium:   decimal.Zero,
				Credited:  decimal.Zero,
			}
		} else if err != nil {
			return err
		}

		policy.Premium = policy.Premium.Add(premium)
		if err := tx.Policies().Save(ctx, policy); err != nil {
			return err
		}
		res.Policy = policy

		event := entity.NewEvent(entity.EventInsurancePurchaseSuccess).WithFlight(flight).WithAmount(premium)
		event.Passenger = holder
		res.emit(event)
		return nil
	})
	if err != nil {
		event := entity.NewEvent(entity.EventInsurancePurchaseFailure).WithAmount(premium)
		event.Passenger = passenger
		if holder != "" {
			event.Passenger = holder
		}
		if flight.Airline != "" {
			event = event.WithFlight(flight)
		} else {
			event = event.WithFlight(key)
		}
		event.Reason = err.Error()
		res.emit(event)
		l.publish(ctx, res.Events)
		return res, err
	}

	l.logger.Info("Insurance purchased",
		"passenger", res.Policy.Passenger,
		"flight", res.Policy.Key.String(),
		"premium", premium.String(),
		"total", res.Policy.Premium.String())
	l.publish(ctx, res.Events)
	return res, nil
}

// GetPolicy returns the passenger's policy on a flight
func (l *Ledger) GetPolicy(ctx context.Context, passenger string, key entity.FlightKey) (*entity.InsurancePolicy, error) {
	holder, err := normalizeAddress("passenger", passenger)
	if err != nil {
		return nil, err
	}
	k, err := normalizeFlightKey(key)
	if err != nil {
		return nil, err
	}
	return l.store.Policies().Get(ctx, holder, k)
}

// ListPolicies returns every policy the passenger holds
func (l *Ledger) ListPolicies(ctx context.Context, passenger string) ([]*entity.InsurancePolicy, error) {
	holder, err := normalizeAddress("passenger", passenger)
	if err != nil {
		return nil, err
	}
	return l.store.Policies().FindByPassenger(ctx, holder)
}
