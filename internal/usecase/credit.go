package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flightsurety-service/internal/domain/entity"
	"flightsurety-service/internal/domain/repository"
	"flightsurety-service/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditResult is the outcome of CreditInsurees
type CreditResult struct {
	Result
	Credited []*entity.InsurancePolicy
	Total    decimal.Decimal
}

// WithdrawResult is the outcome of WithdrawCredits
type WithdrawResult struct {
	Result
	Withdrawal *entity.Withdrawal
	Reference  string
}

// CreditInsurees credits percentage of the premium of every unclaimed policy on a flight
// resolved as LateAirline. Only the owner may call it. Policies are claimed once, so
// repeating the call credits nothing.
func (l *Ledger) CreditInsurees(ctx context.Context, caller string, percentage int64, key entity.FlightKey) (*CreditResult, error) {
	res := &CreditResult{Total: decimal.Zero}
	err := l.execute(ctx, "credit_insurees", true, func(tx repository.Store) error {
		if err := l.requireOwner(caller); err != nil {
			return err
		}
		if percentage <= 0 {
			return fmt.Errorf("%w: percentage must be positive, got %d", entity.ErrInvalidArgument, percentage)
		}
		k, err := normalizeFlightKey(key)
		if err != nil {
			return err
		}

		flight, err := tx.Flights().GetByKey(ctx, k)
		if isNotFound(err) {
			return fmt.Errorf("flight %s: %w", k, entity.ErrNotRegistered)
		}
		if err != nil {
			return err
		}
		if !flight.IsResolved() {
			return fmt.Errorf("flight %s is unresolved: %w", k, entity.ErrConsensusNotReached)
		}
		if flight.Outcome != entity.StatusLateAirline {
			return fmt.Errorf("flight %s resolved as %s: %w", k, flight.Outcome, entity.ErrConsensusNotReached)
		}

		policies, err := tx.Policies().FindUnclaimedByFlight(ctx, k)
		if err != nil {
			return fmt.Errorf("failed to load policies: %w", err)
		}

		now := time.Now()
		for _, policy := range policies {
			credit := utils.PercentOf(policy.Premium, percentage)

			account, err := tx.Credits().GetAccount(ctx, policy.Passenger)
			if err != nil {
				return err
			}
			account.Balance = account.Balance.Add(credit)
			if err := tx.Credits().SaveAccount(ctx, account); err != nil {
				return err
			}

			policy.Claimed = true
			policy.Credited = credit
			policy.ClaimedAt = &now
			if err := tx.Policies().Save(ctx, policy); err != nil {
				return err
			}

			res.Credited = append(res.Credited, policy)
			res.Total = res.Total.Add(credit)

			received := entity.NewEvent(entity.EventInsuranceCreditReceived).WithFlight(k).WithAmount(credit)
			received.Passenger = policy.Passenger
			paid := entity.NewEvent(entity.EventInsuranceClaimPaid).WithFlight(k).WithAmount(credit)
			paid.Passenger = policy.Passenger
			res.emit(received)
			res.emit(paid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if l.metrics != nil {
		l.metrics.CreditsIssued.Add(res.Total.InexactFloat64())
	}
	l.logger.Info("Insurees credited",
		"flight", key.String(),
		"policies", len(res.Credited),
		"total", res.Total.String())
	l.publish(ctx, res.Events)
	return res, nil
}

// WithdrawCredits pays out the passenger's whole balance. The balance is zeroed and
// committed before the transfer runs, outside the writer lock, so a call made from within
// the transfer sees nothing to withdraw. A failed transfer restores the balance.
func (l *Ledger) WithdrawCredits(ctx context.Context, passenger string) (*WithdrawResult, error) {
	res := &WithdrawResult{}
	var withdrawal *entity.Withdrawal
	err := l.execute(ctx, "withdraw_credits", true, func(tx repository.Store) error {
		holder, err := normalizeAddress("passenger", passenger)
		if err != nil {
			return err
		}

		account, err := tx.Credits().GetAccount(ctx, holder)
		if err != nil {
			return err
		}
		if !account.Balance.IsPositive() {
			return fmt.Errorf("passenger %s: %w", holder, entity.ErrZeroBalance)
		}

		amount := account.Balance
		account.Balance = decimal.Zero
		if err := tx.Credits().SaveAccount(ctx, account); err != nil {
			return err
		}

		withdrawal = &entity.Withdrawal{
			ID:        uuid.NewString(),
			Passenger: holder,
			Amount:    amount,
			Status:    entity.WithdrawalPending,
		}
		return tx.Credits().CreateWithdrawal(ctx, withdrawal)
	})
	if err != nil {
		return nil, err
	}
	res.Withdrawal = withdrawal

	reference, transferErr := l.payouts.Transfer(ctx, withdrawal.ID, withdrawal.Passenger, withdrawal.Amount)
	if transferErr != nil {
		if l.metrics != nil {
			l.metrics.PayoutFailures.Inc()
		}
		l.logger.Error("Payout transfer failed, restoring balance",
			"passenger", withdrawal.Passenger,
			"amount", withdrawal.Amount.String(),
			"withdrawal", withdrawal.ID,
			"error", transferErr)

		if err := l.compensateWithdrawal(ctx, withdrawal, transferErr); err != nil {
			return nil, errors.Join(fmt.Errorf("%w: %w", entity.ErrPayoutTransferFailed, transferErr), err)
		}
		return nil, fmt.Errorf("%w: %w", entity.ErrPayoutTransferFailed, transferErr)
	}
	res.Reference = reference

	now := time.Now()
	withdrawal.Status = entity.WithdrawalCompleted
	withdrawal.Reference = reference
	withdrawal.CompletedAt = &now
	settle := context.WithoutCancel(ctx)
	err = l.execute(settle, "complete_withdrawal", false, func(tx repository.Store) error {
		return tx.Credits().UpdateWithdrawal(settle, withdrawal)
	})
	if err != nil {
		// value has left the ledger; the record stays pending for reconciliation
		l.logger.Error("Failed to mark withdrawal completed", "withdrawal", withdrawal.ID, "reference", reference, "error", err)
	}

	if l.metrics != nil {
		l.metrics.CreditsWithdrawn.Add(withdrawal.Amount.InexactFloat64())
	}
	event := entity.NewEvent(entity.EventCreditsWithdrawn).WithAmount(withdrawal.Amount)
	event.Passenger = withdrawal.Passenger
	event.Reason = reference
	res.emit(event)

	l.logger.Info("Credits withdrawn",
		"passenger", withdrawal.Passenger,
		"amount", withdrawal.Amount.String(),
		"reference", reference)
	l.publish(ctx, res.Events)
	return res, nil
}

// compensateWithdrawal puts the amount back on the balance and marks the withdrawal failed.
// It runs even when the ledger has been paused in the meantime.
func (l *Ledger) compensateWithdrawal(ctx context.Context, withdrawal *entity.Withdrawal, cause error) error {
	ctx = context.WithoutCancel(ctx)
	return l.execute(ctx, "compensate_withdrawal", false, func(tx repository.Store) error {
		account, err := tx.Credits().GetAccount(ctx, withdrawal.Passenger)
		if err != nil {
			return err
		}
		account.Balance = account.Balance.Add(withdrawal.Amount)
		if err := tx.Credits().SaveAccount(ctx, account); err != nil {
			return err
		}

		withdrawal.Status = entity.WithdrawalFailed
		withdrawal.ErrorDetail = cause.Error()
		return tx.Credits().UpdateWithdrawal(ctx, withdrawal)
	})
}

// PendingWithdrawals lists withdrawals whose transfer outcome was never recorded. Outside a
// running WithdrawCredits call these are left over from a crash between debit and settlement.
func (l *Ledger) PendingWithdrawals(ctx context.Context) ([]*entity.Withdrawal, error) {
	return l.store.Credits().FindWithdrawalsByStatus(ctx, entity.WithdrawalPending)
}

// ReconcileWithdrawal settles a pending withdrawal once the payout service has been checked
// for a transfer under the withdrawal's ID. A transferred withdrawal is completed with the
// service's reference; otherwise the amount returns to the passenger's balance. Owner only,
// and it works while the ledger is paused.
func (l *Ledger) ReconcileWithdrawal(ctx context.Context, caller, id string, transferred bool, reference string) (*WithdrawResult, error) {
	res := &WithdrawResult{}
	err := l.execute(ctx, "reconcile_withdrawal", false, func(tx repository.Store) error {
		if err := l.requireOwner(caller); err != nil {
			return err
		}
		if transferred && reference == "" {
			return fmt.Errorf("%w: a transferred withdrawal needs its reference", entity.ErrInvalidArgument)
		}

		withdrawal, err := tx.Credits().GetWithdrawal(ctx, id)
		if err != nil {
			return err
		}
		if withdrawal.Status != entity.WithdrawalPending {
			return fmt.Errorf("%w: withdrawal %s is %s", entity.ErrInvalidArgument, id, withdrawal.Status)
		}
		res.Withdrawal = withdrawal

		if !transferred {
			account, err := tx.Credits().GetAccount(ctx, withdrawal.Passenger)
			if err != nil {
				return err
			}
			account.Balance = account.Balance.Add(withdrawal.Amount)
			if err := tx.Credits().SaveAccount(ctx, account); err != nil {
				return err
			}
			withdrawal.Status = entity.WithdrawalFailed
			withdrawal.ErrorDetail = "not transferred, restored on reconciliation"
			return tx.Credits().UpdateWithdrawal(ctx, withdrawal)
		}

		now := time.Now()
		withdrawal.Status = entity.WithdrawalCompleted
		withdrawal.Reference = reference
		withdrawal.CompletedAt = &now
		if err := tx.Credits().UpdateWithdrawal(ctx, withdrawal); err != nil {
			return err
		}
		res.Reference = reference

		event := entity.NewEvent(entity.EventCreditsWithdrawn).WithAmount(withdrawal.Amount)
		event.Passenger = withdrawal.Passenger
		event.Reason = reference
		res.emit(event)
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Withdrawal reconciled",
		"withdrawal", res.Withdrawal.ID,
		"passenger", res.Withdrawal.Passenger,
		"status", res.Withdrawal.Status,
		"reference", reference)
	l.publish(ctx, res.Events)
	return res, nil
}

// GetCreditBalance returns the passenger's withdrawable balance
func (l *Ledger) GetCreditBalance(ctx context.Context, passenger string) (decimal.Decimal, error) {
	holder, err := normalizeAddress("passenger", passenger)
	if err != nil {
		return decimal.Zero, err
	}
	account, err := l.store.Credits().GetAccount(ctx, holder)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}
