package usecase_test

import (
	"context"
	"errors"
	"testing"

	"flightsurety-service/internal/domain/entity"
	"flightsurety-service/internal/domain/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditInsurees(t *testing.T) {
	ctx := context.Background()
	alice, bob := addr(0x31), addr(0x32)

	setup := func(t *testing.T) *testLedger {
		tl := newTestLedger(t)
		tl.fundedAirline(t, founder)
		_, err := tl.RegisterFlight(ctx, flightOf(founder))
		require.NoError(t, err)
		_, err = tl.BuyInsurance(ctx, alice, flightOf(founder), dec("1"))
		require.NoError(t, err)
		_, err = tl.BuyInsurance(ctx, bob, flightOf(founder), dec("0.2"))
		require.NoError(t, err)
		return tl
	}

	t.Run("should wait for consensus", func(t *testing.T) {
		tl := setup(t)

		_, err := tl.CreditInsurees(ctx, owner, 150, flightOf(founder))
		assert.ErrorIs(t, err, entity.ErrConsensusNotReached)
		assert.True(t, entity.IsRetryable(err))
	})

	t.Run("should reject unknown flights and bad percentages", func(t *testing.T) {
		tl := setup(t)

		_, err := tl.CreditInsurees(ctx, owner, 150, entity.FlightKey{Airline: founder, Code: "FS0999", Departure: departure})
		assert.ErrorIs(t, err, entity.ErrNotRegistered)

		_, err = tl.CreditInsurees(ctx, owner, 0, flightOf(founder))
		assert.ErrorIs(t, err, entity.ErrInvalidArgument)
	})

	t.Run("should only let the owner credit", func(t *testing.T) {
		tl := setup(t)
		tl.resolve(t, flightOf(founder), entity.StatusLateAirline)

		_, err := tl.CreditInsurees(ctx, alice, 1000000, flightOf(founder))
		assert.ErrorIs(t, err, entity.ErrUnauthorized)

		_, err = tl.CreditInsurees(ctx, "", 150, flightOf(founder))
		assert.ErrorIs(t, err, entity.ErrInvalidArgument)

		balance, err := tl.GetCreditBalance(ctx, alice)
		require.NoError(t, err)
		assert.True(t, balance.IsZero(), balance.String())

		policy, err := tl.GetPolicy(ctx, alice, flightOf(founder))
		require.NoError(t, err)
		assert.False(t, policy.Claimed)
	})

	t.Run("should not pay for delays the airline is not liable for", func(t *testing.T) {
		tl := setup(t)
		tl.resolve(t, flightOf(founder), entity.StatusLateWeather)

		_, err := tl.CreditInsurees(ctx, owner, 150, flightOf(founder))
		assert.ErrorIs(t, err, entity.ErrConsensusNotReached)
	})

	t.Run("should credit every policy once", func(t *testing.T) {
		tl := setup(t)
		tl.resolve(t, flightOf(founder), entity.StatusLateAirline)

		res, err := tl.CreditInsurees(ctx, owner, 150, flightOf(founder))
		require.NoError(t, err)
		assert.Len(t, res.Credited, 2)
		assert.True(t, res.Total.Equal(dec("1.8")), res.Total.String())
		assert.Len(t, res.Events, 4)

		balance, err := tl.GetCreditBalance(ctx, alice)
		require.NoError(t, err)
		assert.True(t, balance.Equal(dec("1.5")), balance.String())

		balance, err = tl.GetCreditBalance(ctx, bob)
		require.NoError(t, err)
		assert.True(t, balance.Equal(dec("0.3")), balance.String())

		policy, err := tl.GetPolicy(ctx, alice, flightOf(founder))
		require.NoError(t, err)
		assert.True(t, policy.Claimed)
		assert.True(t, policy.Credited.Equal(dec("1.5")))

		res, err = tl.CreditInsurees(ctx, owner, 150, flightOf(founder))
		require.NoError(t, err)
		assert.Empty(t, res.Credited)
		assert.True(t, res.Total.IsZero())

		balance, err = tl.GetCreditBalance(ctx, alice)
		require.NoError(t, err)
		assert.True(t, balance.Equal(dec("1.5")))
	})
}

func TestWithdrawCredits(t *testing.T) {
	ctx := context.Background()
	passenger := addr(0x31)

	setup := func(t *testing.T) *testLedger {
		tl := newTestLedger(t)
		tl.fundedAirline(t, founder)
		_, err := tl.RegisterFlight(ctx, flightOf(founder))
		require.NoError(t, err)
		_, err = tl.BuyInsurance(ctx, passenger, flightOf(founder), dec("1"))
		require.NoError(t, err)
		tl.resolve(t, flightOf(founder), entity.StatusLateAirline)
		_, err = tl.CreditInsurees(ctx, owner, 150, flightOf(founder))
		require.NoError(t, err)
		return tl
	}

	t.Run("should reject an empty balance", func(t *testing.T) {
		tl := newTestLedger(t)

		_, err := tl.WithdrawCredits(ctx, passenger)
		assert.ErrorIs(t, err, entity.ErrZeroBalance)
	})

	t.Run("should pay the whole balance out", func(t *testing.T) {
		tl := setup(t)
		var paid decimal.Decimal
		tl.payout = func(ctx context.Context, to string, amount decimal.Decimal) (string, error) {
			paid = amount
			return "ref-1", nil
		}

		res, err := tl.WithdrawCredits(ctx, passenger)
		require.NoError(t, err)
		assert.True(t, paid.Equal(dec("1.5")))
		assert.Equal(t, "ref-1", res.Reference)
		assert.Equal(t, entity.WithdrawalCompleted, res.Withdrawal.Status)
		assert.Equal(t, []string{res.Withdrawal.ID}, tl.transfers)

		stored, err := tl.store.Credits().GetWithdrawal(ctx, res.Withdrawal.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.WithdrawalCompleted, stored.Status)
		assert.Equal(t, "ref-1", stored.Reference)
		require.Len(t, res.Events, 1)
		assert.Equal(t, entity.EventCreditsWithdrawn, res.Events[0].Type)

		balance, err := tl.GetCreditBalance(ctx, passenger)
		require.NoError(t, err)
		assert.True(t, balance.IsZero())

		_, err = tl.WithdrawCredits(ctx, passenger)
		assert.ErrorIs(t, err, entity.ErrZeroBalance)
	})

	t.Run("should zero the balance before the transfer runs", func(t *testing.T) {
		tl := setup(t)
		var reentrant error
		calls := 0
		tl.payout = func(ctx context.Context, to string, amount decimal.Decimal) (string, error) {
			calls++
			_, reentrant = tl.WithdrawCredits(ctx, to)
			return "ref-outer", nil
		}

		res, err := tl.WithdrawCredits(ctx, passenger)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.ErrorIs(t, reentrant, entity.ErrZeroBalance)
		assert.True(t, res.Withdrawal.Amount.Equal(dec("1.5")))

		balance, err := tl.GetCreditBalance(ctx, passenger)
		require.NoError(t, err)
		assert.True(t, balance.IsZero())
	})

	t.Run("should restore the balance when the transfer fails", func(t *testing.T) {
		tl := setup(t)
		transferErr := errors.New("beneficiary rejected")
		tl.payout = func(ctx context.Context, to string, amount decimal.Decimal) (string, error) {
			return "", transferErr
		}

		res, err := tl.WithdrawCredits(ctx, passenger)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, entity.ErrPayoutTransferFailed)
		assert.ErrorIs(t, err, transferErr)

		balance, err := tl.GetCreditBalance(ctx, passenger)
		require.NoError(t, err)
		assert.True(t, balance.Equal(dec("1.5")), balance.String())
		assert.NotContains(t, tl.events.types(), entity.EventCreditsWithdrawn)
	})

	t.Run("should restore the balance even if paused during the transfer", func(t *testing.T) {
		tl := setup(t)
		tl.payout = func(ctx context.Context, to string, amount decimal.Decimal) (string, error) {
			_, err := tl.SetOperatingStatus(ctx, owner, false)
			require.NoError(t, err)
			return "", errors.New("network down")
		}

		_, err := tl.WithdrawCredits(ctx, passenger)
		assert.ErrorIs(t, err, entity.ErrPayoutTransferFailed)

		balance, err := tl.GetCreditBalance(ctx, passenger)
		require.NoError(t, err)
		assert.True(t, balance.Equal(dec("1.5")))
	})
}

func TestReconcileWithdrawal(t *testing.T) {
	ctx := context.Background()
	passenger := addr(0x31)

	// strand leaves the passenger's credit debited behind a pending withdrawal, as a crash
	// between debit and settlement would
	strand := func(t *testing.T) (*testLedger, *entity.Withdrawal) {
		tl := newTestLedger(t)
		tl.fundedAirline(t, founder)
		_, err := tl.RegisterFlight(ctx, flightOf(founder))
		require.NoError(t, err)
		_, err = tl.BuyInsurance(ctx, passenger, flightOf(founder), dec("1"))
		require.NoError(t, err)
		tl.resolve(t, flightOf(founder), entity.StatusLateAirline)
		_, err = tl.CreditInsurees(ctx, owner, 150, flightOf(founder))
		require.NoError(t, err)

		withdrawal := &entity.Withdrawal{
			ID:        "7d2b7c1e-2f0a-4a51-8f43-5b0e9a6c1d20",
			Passenger: passenger,
			Amount:    dec("1.5"),
			Status:    entity.WithdrawalPending,
		}
		err = tl.store.Transaction(ctx, func(tx repository.Store) error {
			account, err := tx.Credits().GetAccount(ctx, passenger)
			if err != nil {
				return err
			}
			account.Balance = decimal.Zero
			if err := tx.Credits().SaveAccount(ctx, account); err != nil {
				return err
			}
			return tx.Credits().CreateWithdrawal(ctx, withdrawal)
		})
		require.NoError(t, err)
		return tl, withdrawal
	}

	t.Run("should list stranded withdrawals", func(t *testing.T) {
		tl, withdrawal := strand(t)
		require.NoError(t, tl.Initialize(ctx))

		pending, err := tl.PendingWithdrawals(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, withdrawal.ID, pending[0].ID)
		assert.True(t, pending[0].Amount.Equal(dec("1.5")))
	})

	t.Run("should only let the owner reconcile", func(t *testing.T) {
		tl, withdrawal := strand(t)

		_, err := tl.ReconcileWithdrawal(ctx, passenger, withdrawal.ID, false, "")
		assert.ErrorIs(t, err, entity.ErrUnauthorized)

		_, err = tl.ReconcileWithdrawal(ctx, owner, "missing", false, "")
		assert.ErrorIs(t, err, entity.ErrNotFound)

		_, err = tl.ReconcileWithdrawal(ctx, owner, withdrawal.ID, true, "")
		assert.ErrorIs(t, err, entity.ErrInvalidArgument)
	})

	t.Run("should restore a withdrawal that never transferred", func(t *testing.T) {
		tl, withdrawal := strand(t)
		_, err := tl.SetOperatingStatus(ctx, owner, false)
		require.NoError(t, err)

		res, err := tl.ReconcileWithdrawal(ctx, owner, withdrawal.ID, false, "")
		require.NoError(t, err)
		assert.Equal(t, entity.WithdrawalFailed, res.Withdrawal.Status)
		assert.Empty(t, res.Events)

		balance, err := tl.GetCreditBalance(ctx, passenger)
		require.NoError(t, err)
		assert.True(t, balance.Equal(dec("1.5")), balance.String())

		pending, err := tl.PendingWithdrawals(ctx)
		require.NoError(t, err)
		assert.Empty(t, pending)

		_, err = tl.ReconcileWithdrawal(ctx, owner, withdrawal.ID, false, "")
		assert.ErrorIs(t, err, entity.ErrInvalidArgument)

		balance, err = tl.GetCreditBalance(ctx, passenger)
		require.NoError(t, err)
		assert.True(t, balance.Equal(dec("1.5")))
	})

	t.Run("should complete a withdrawal that transferred", func(t *testing.T) {
		tl, withdrawal := strand(t)

		res, err := tl.ReconcileWithdrawal(ctx, owner, withdrawal.ID, true, "tx-77")
		require.NoError(t, err)
		assert.Equal(t, entity.WithdrawalCompleted, res.Withdrawal.Status)
		assert.Equal(t, "tx-77", res.Reference)
		require.Len(t, res.Events, 1)
		assert.Equal(t, entity.EventCreditsWithdrawn, res.Events[0].Type)

		balance, err := tl.GetCreditBalance(ctx, passenger)
		require.NoError(t, err)
		assert.True(t, balance.IsZero())

		stored, err := tl.store.Credits().GetWithdrawal(ctx, withdrawal.ID)
		require.NoError(t, err)
		assert.Equal(t, "tx-77", stored.Reference)
		assert.NotNil(t, stored.CompletedAt)
	})
}

func TestDelayedFlightPayout(t *testing.T) {
	ctx := context.Background()
	tl := newTestLedger(t)
	passenger := addr(0x31)
	key := flightOf(founder)

	_, err := tl.Fund(ctx, founder, dec("10"))
	require.NoError(t, err)
	_, err = tl.RegisterFlight(ctx, key)
	require.NoError(t, err)
	_, err = tl.BuyInsurance(ctx, passenger, key, dec("0.1"))
	require.NoError(t, err)

	tl.resolve(t, key, entity.StatusLateAirline)

	credit, err := tl.CreditInsurees(ctx, owner, 150, key)
	require.NoError(t, err)
	assert.True(t, credit.Total.Equal(dec("0.15")), credit.Total.String())

	balance, err := tl.GetCreditBalance(ctx, passenger)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("0.15")), balance.String())

	var paid decimal.Decimal
	tl.payout = func(ctx context.Context, to string, amount decimal.Decimal) (string, error) {
		paid = amount
		return "ref-e2e", nil
	}
	res, err := tl.WithdrawCredits(ctx, passenger)
	require.NoError(t, err)
	assert.True(t, paid.Equal(dec("0.15")), paid.String())
	assert.True(t, res.Withdrawal.Amount.Equal(dec("0.15")))

	balance, err = tl.GetCreditBalance(ctx, passenger)
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), balance.String())
}
