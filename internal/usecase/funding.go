package usecase

import (
	"context"
	"fmt"

	"flightsurety-service/internal/domain/entity"
	"flightsurety-service/internal/domain/repository"

	"github.com/shopspring/decimal"
)

// FundResult is the outcome of Fund
type FundResult struct {
	Result
	Airline *entity.Airline
}

// Fund posts a registered airline's bond. The bond must be at least MinFund and can be
// posted once. Funding an airline that is not yet registered is ErrInsufficientFunds,
// also matching ErrNotRegistered.
func (l *Ledger) Fund(ctx context.Context, airline string, amount decimal.Decimal) (*FundResult, error) {
	res := &FundResult{}
	err := l.execute(ctx, "fund", true, func(tx repository.Store) error {
		addr, err := normalizeAddress("airline", airline)
		if err != nil {
			return err
		}
		if amount.LessThan(l.cfg.MinFund) {
			return fmt.Errorf("%w: bond %s is below minimum %s", entity.ErrInsufficientFunds, amount, l.cfg.MinFund)
		}

		record, err := tx.Airlines().GetByAddress(ctx, addr)
		if isNotFound(err) {
			return fmt.Errorf("%w: airline %s: %w", entity.ErrInsufficientFunds, addr, entity.ErrNotRegistered)
		}
		if err != nil {
			return err
		}
		if record.IsFunded() {
			return fmt.Errorf("airline %s: %w", addr, entity.ErrAlreadyFunded)
		}
		if !record.IsRegistered() {
			return fmt.Errorf("%w: airline %s: %w", entity.ErrInsufficientFunds, addr, entity.ErrNotRegistered)
		}

		record.Status = entity.AirlineFunded
		record.FundedAmount = amount
		if err := tx.Airlines().Save(ctx, record); err != nil {
			return err
		}
		res.Airline = record

		event := entity.NewEvent(entity.EventAirlineFunded).WithAmount(amount)
		event.Airline = addr
		res.emit(event)
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Airline funded", "airline", res.Airline.Address, "amount", amount.String())
	l.publish(ctx, res.Events)
	return res, nil
}

// IsAirlineFunded reports whether the airline has posted its bond
func (l *Ledger) IsAirlineFunded(ctx context.Context, address string) (bool, error) {
	airline, err := l.lookupAirline(ctx, address)
	if err != nil || airline == nil {
		return false, err
	}
	return airline.IsFunded(), nil
}
