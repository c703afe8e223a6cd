package usecase

import (
	"context"
	"fmt"

	"flightsurety-service/internal/domain/entity"
	"flightsurety-service/internal/domain/repository"
)

// IsOperational reports whether mutating operations are accepted
func (l *Ledger) IsOperational(ctx context.Context) (bool, error) {
	return l.store.Settings().IsOperational(ctx)
}

// SetOperatingStatus opens or closes the operational gate. Only the owner may call it,
// and it is the one mutating call that works while the ledger is paused.
func (l *Ledger) SetOperatingStatus(ctx context.Context, caller string, operational bool) (*Result, error) {
	res := &Result{}
	err := l.execute(ctx, "set_operating_status", false, func(tx repository.Store) error {
		if err := l.requireOwner(caller); err != nil {
			return err
		}
		if err := tx.Settings().SetOperational(ctx, operational); err != nil {
			return fmt.Errorf("failed to store operational status: %w", err)
		}

		event := entity.NewEvent(entity.EventOperatingStatusChanged)
		event.Reason = fmt.Sprintf("operational=%t", operational)
		res.emit(event)
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Operating status changed", "operational", operational, "by", caller)
	l.publish(ctx, res.Events)
	return res, nil
}

func (l *Ledger) requireOwner(caller string) error {
	addr, err := normalizeAddress("caller", caller)
	if err != nil {
		return err
	}
	if addr != l.cfg.Owner {
		return fmt.Errorf("%w: %s is not the ledger owner", entity.ErrUnauthorized, addr)
	}
	return nil
}
