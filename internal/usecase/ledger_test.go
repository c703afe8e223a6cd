package usecase_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"flightsurety-service/internal/domain/entity"
	"flightsurety-service/internal/domain/repository"
	"flightsurety-service/internal/infrastructure/config"
	"flightsurety-service/internal/infrastructure/persistence"
	ledgerRepo "flightsurety-service/internal/interface/repository"
	"flightsurety-service/internal/usecase"
	"flightsurety-service/pkg/logger"
	"flightsurety-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner   = addr(0xA0)
	founder = addr(0x01)
)

func addr(n int) string {
	return fmt.Sprintf("0x%040x", n)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, events []entity.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []entity.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]entity.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

// payoutFunc adapts a function to the payout gateway interface
type payoutFunc func(ctx context.Context, withdrawalID, passenger string, amount decimal.Decimal) (string, error)

func (f payoutFunc) Transfer(ctx context.Context, withdrawalID, passenger string, amount decimal.Decimal) (string, error) {
	return f(ctx, withdrawalID, passenger, amount)
}

type testLedger struct {
	*usecase.Ledger
	store     repository.Store
	events    *recordingPublisher
	payout    func(ctx context.Context, passenger string, amount decimal.Decimal) (string, error)
	transfers []string
}

type ledgerOption func(*config.LedgerConfig)

func newTestLedger(t *testing.T, opts ...ledgerOption) *testLedger {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := persistence.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store := ledgerRepo.NewGormStore(db)
	require.NoError(t, store.Migrate(context.Background()))

	cfg := config.DefaultLedgerConfig()
	cfg.Owner = owner
	cfg.FoundingAirline = founder
	for _, opt := range opts {
		opt(&cfg)
	}

	tl := &testLedger{events: &recordingPublisher{}}
	tl.payout = func(ctx context.Context, passenger string, amount decimal.Decimal) (string, error) {
		return "ref-" + passenger[len(passenger)-4:], nil
	}
	gateway := payoutFunc(func(ctx context.Context, withdrawalID, passenger string, amount decimal.Decimal) (string, error) {
		tl.transfers = append(tl.transfers, withdrawalID)
		return tl.payout(ctx, passenger, amount)
	})

	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	ledger, err := usecase.NewLedger(store, tl.events, gateway, cfg, m, logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, ledger.Initialize(context.Background()))

	tl.Ledger = ledger
	tl.store = store
	return tl
}

// fundedAirline admits (if needed) and funds an airline with the minimum bond
func (tl *testLedger) fundedAirline(t *testing.T, address string) {
	t.Helper()
	ctx := context.Background()

	registered, err := tl.IsAirlineRegistered(ctx, address)
	require.NoError(t, err)
	if !registered {
		_, err := tl.RegisterAirline(ctx, founder, address, "Airline "+address[len(address)-2:])
		require.NoError(t, err)
	}
	_, err = tl.Fund(ctx, address, dec("10"))
	require.NoError(t, err)
}

func TestNewLedger(t *testing.T) {
	t.Run("should reject config without owner", func(t *testing.T) {
		cfg := config.DefaultLedgerConfig()
		cfg.FoundingAirline = founder

		_, err := usecase.NewLedger(nil, nil, payoutFunc(nil), cfg, nil, logger.NewNop())
		assert.Error(t, err)
	})

	t.Run("should reject malformed founding airline", func(t *testing.T) {
		cfg := config.DefaultLedgerConfig()
		cfg.Owner = owner
		cfg.FoundingAirline = "airline-one"

		_, err := usecase.NewLedger(nil, nil, payoutFunc(nil), cfg, nil, logger.NewNop())
		assert.Error(t, err)
	})

	t.Run("should require a payout gateway", func(t *testing.T) {
		cfg := config.DefaultLedgerConfig()
		cfg.Owner = owner
		cfg.FoundingAirline = founder

		_, err := usecase.NewLedger(nil, nil, nil, cfg, nil, logger.NewNop())
		assert.Error(t, err)
	})
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("should admit the founding airline unfunded", func(t *testing.T) {
		tl := newTestLedger(t)

		airline, err := tl.GetAirline(ctx, founder)
		require.NoError(t, err)
		assert.Equal(t, entity.AirlineRegistered, airline.Status)
		assert.Equal(t, "Airline 1", airline.Name)

		funded, err := tl.IsAirlineFunded(ctx, founder)
		require.NoError(t, err)
		assert.False(t, funded)

		count, err := tl.GetAirlinesCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, []entity.EventType{entity.EventAirlineRegistered}, tl.events.types())
	})

	t.Run("should be idempotent", func(t *testing.T) {
		tl := newTestLedger(t)

		require.NoError(t, tl.Initialize(ctx))

		count, err := tl.GetAirlinesCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Len(t, tl.events.types(), 1)
	})
}

func TestOperationalGate(t *testing.T) {
	ctx := context.Background()

	t.Run("should start operational", func(t *testing.T) {
		tl := newTestLedger(t)

		operational, err := tl.IsOperational(ctx)
		require.NoError(t, err)
		assert.True(t, operational)
	})

	t.Run("should only let the owner change status", func(t *testing.T) {
		tl := newTestLedger(t)

		_, err := tl.SetOperatingStatus(ctx, founder, false)
		assert.ErrorIs(t, err, entity.ErrUnauthorized)

		operational, err := tl.IsOperational(ctx)
		require.NoError(t, err)
		assert.True(t, operational)
	})

	t.Run("should accept the owner in any case", func(t *testing.T) {
		tl := newTestLedger(t)

		_, err := tl.SetOperatingStatus(ctx, owner[2:], false)
		assert.ErrorIs(t, err, entity.ErrInvalidArgument)

		res, err := tl.SetOperatingStatus(ctx, "0x"+strings.ToUpper(owner[2:]), false)
		require.NoError(t, err)
		require.Len(t, res.Events, 1)
		assert.Equal(t, entity.EventOperatingStatusChanged, res.Events[0].Type)
	})

	t.Run("should reject mutations while paused without side effects", func(t *testing.T) {
		tl := newTestLedger(t)

		_, err := tl.SetOperatingStatus(ctx, owner, false)
		require.NoError(t, err)

		_, err = tl.Fund(ctx, founder, dec("10"))
		assert.ErrorIs(t, err, entity.ErrOperational)

		_, err = tl.RegisterOracle(ctx, addr(0x50), dec("1"))
		assert.ErrorIs(t, err, entity.ErrOperational)

		_, err = tl.WithdrawCredits(ctx, addr(0x30))
		assert.ErrorIs(t, err, entity.ErrOperational)

		funded, err := tl.IsAirlineFunded(ctx, founder)
		require.NoError(t, err)
		assert.False(t, funded)
	})

	t.Run("should resume after the owner reopens", func(t *testing.T) {
		tl := newTestLedger(t)

		_, err := tl.SetOperatingStatus(ctx, owner, false)
		require.NoError(t, err)
		_, err = tl.SetOperatingStatus(ctx, owner, true)
		require.NoError(t, err)

		_, err = tl.Fund(ctx, founder, dec("10"))
		assert.NoError(t, err)
	})
}
