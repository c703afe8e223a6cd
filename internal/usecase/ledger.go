package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"flightsurety-service/internal/domain/entity"
	"flightsurety-service/internal/domain/repository"
	"flightsurety-service/internal/infrastructure/config"
	"flightsurety-service/pkg/logger"
	"flightsurety-service/pkg/metrics"
	"flightsurety-service/pkg/utils"
)

// Result carries the events emitted by a mutating operation. Duplicate is set when the
// call was an absorbed repeat (a second vote or oracle response) and changed nothing.
type Result struct {
	Events    []entity.Event
	Duplicate bool
	Ignored   error
}

func (r *Result) emit(event entity.Event) {
	r.Events = append(r.Events, event)
}

// Ledger is the flight insurance state machine. Mutating calls are serialized and each
// runs as one store transaction; events are published only after commit.
type Ledger struct {
	store     repository.Store
	publisher repository.EventPublisher
	payouts   repository.PayoutGateway
	cfg       config.LedgerConfig
	metrics   *metrics.Metrics
	logger    logger.Logger

	mu sync.Mutex
}

// NewLedger creates a ledger. publisher and m may be nil.
func NewLedger(
	store repository.Store,
	publisher repository.EventPublisher,
	payouts repository.PayoutGateway,
	cfg config.LedgerConfig,
	m *metrics.Metrics,
	logger logger.Logger,
) (*Ledger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ledger config: %w", err)
	}
	if payouts == nil {
		return nil, errors.New("payout gateway is required")
	}

	owner, err := utils.NormalizeAddress(cfg.Owner)
	if err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	founder, err := utils.NormalizeAddress(cfg.FoundingAirline)
	if err != nil {
		return nil, fmt.Errorf("founding airline: %w", err)
	}
	cfg.Owner = owner
	cfg.FoundingAirline = founder

	return &Ledger{
		store:     store,
		publisher: publisher,
		payouts:   payouts,
		cfg:       cfg,
		metrics:   m,
		logger:    logger,
	}, nil
}

// Initialize admits the founding airline if the store does not know it yet and reports
// withdrawals left pending by an earlier run
func (l *Ledger) Initialize(ctx context.Context) error {
	var events []entity.Event
	err := l.execute(ctx, "initialize", false, func(tx repository.Store) error {
		_, err := tx.Airlines().GetByAddress(ctx, l.cfg.FoundingAirline)
		if err == nil {
			return nil
		}
		if !errors.Is(err, entity.ErrNotFound) {
			return err
		}

		founder := &entity.Airline{
			Address: l.cfg.FoundingAirline,
			Name:    l.cfg.FoundingAirlineName,
			Status:  entity.AirlineRegistered,
		}
		if err := tx.Airlines().Create(ctx, founder); err != nil {
			return err
		}

		event := entity.NewEvent(entity.EventAirlineRegistered)
		event.Airline = founder.Address
		events = append(events, event)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to initialize ledger: %w", err)
	}

	if len(events) > 0 {
		l.logger.Info("Founding airline admitted", "airline", l.cfg.FoundingAirline, "name", l.cfg.FoundingAirlineName)
		l.publish(ctx, events)
	}

	pending, err := l.PendingWithdrawals(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending withdrawals: %w", err)
	}
	for _, w := range pending {
		l.logger.Warn("Withdrawal left pending, reconcile it against the payout service",
			"withdrawal", w.ID,
			"passenger", w.Passenger,
			"amount", w.Amount.String(),
			"createdAt", w.CreatedAt)
	}
	return nil
}

// execute runs fn in one transaction under the writer lock. Gated operations fail with
// ErrOperational before fn runs when the ledger is paused.
func (l *Ledger) execute(ctx context.Context, operation string, gated bool, fn func(tx repository.Store) error) error {
	start := time.Now()

	l.mu.Lock()
	err := l.store.Transaction(ctx, func(tx repository.Store) error {
		if gated {
			operational, err := tx.Settings().IsOperational(ctx)
			if err != nil {
				return fmt.Errorf("failed to read operational status: %w", err)
			}
			if !operational {
				return entity.ErrOperational
			}
		}
		return fn(tx)
	})
	l.mu.Unlock()

	l.observe(operation, start, err)
	return err
}

func (l *Ledger) observe(operation string, start time.Time, err error) {
	label := resultLabel(err)
	if l.metrics != nil {
		l.metrics.Operations.WithLabelValues(operation, label).Inc()
		l.metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}

	switch {
	case err == nil:
		l.logger.Debug("Ledger operation committed", "operation", operation)
	case label == "error":
		l.logger.Error("Ledger operation failed", "operation", operation, "error", err)
	default:
		l.logger.Warn("Ledger operation rejected", "operation", operation, "reason", label, "error", err)
	}
}

// publish hands committed events to the publisher. Delivery failures are logged; events
// are not ledger state and never undo a committed operation.
func (l *Ledger) publish(ctx context.Context, events []entity.Event) {
	if len(events) == 0 {
		return
	}
	if l.metrics != nil {
		for _, e := range events {
			l.metrics.EventsPublished.WithLabelValues(string(e.Type)).Inc()
		}
	}
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(ctx, events); err != nil {
		l.logger.Error("Failed to publish ledger events", "count", len(events), "error", err)
	}
}

var resultLabels = []struct {
	err   error
	label string
}{
	{entity.ErrOperational, "operational"},
	{entity.ErrUnauthorized, "unauthorized"},
	{entity.ErrAlreadyRegistered, "already_registered"},
	{entity.ErrAlreadyFunded, "already_funded"},
	{entity.ErrNotFunded, "not_funded"},
	{entity.ErrNotRegistered, "not_registered"},
	{entity.ErrInsufficientFunds, "insufficient_funds"},
	{entity.ErrPremiumExceedsCap, "premium_exceeds_cap"},
	{entity.ErrConsensusNotReached, "consensus_not_reached"},
	{entity.ErrZeroBalance, "zero_balance"},
	{entity.ErrNotFound, "not_found"},
	{entity.ErrInvalidArgument, "invalid_argument"},
	{entity.ErrPayoutTransferFailed, "payout_failed"},
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	for _, rl := range resultLabels {
		if errors.Is(err, rl.err) {
			return rl.label
		}
	}
	return "error"
}

func normalizeAddress(role, address string) (string, error) {
	addr, err := utils.NormalizeAddress(address)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", entity.ErrInvalidArgument, role, err)
	}
	return addr, nil
}

func normalizeFlightKey(key entity.FlightKey) (entity.FlightKey, error) {
	airline, err := normalizeAddress("airline", key.Airline)
	if err != nil {
		return key, err
	}
	code, err := utils.NormalizeFlightCode(key.Code)
	if err != nil {
		return key, fmt.Errorf("%w: %v", entity.ErrInvalidArgument, err)
	}
	if key.Departure <= 0 {
		return key, fmt.Errorf("%w: departure must be positive, got %d", entity.ErrInvalidArgument, key.Departure)
	}
	return entity.FlightKey{Airline: airline, Code: code, Departure: key.Departure}, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, entity.ErrNotFound)
}

func requireName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", fmt.Errorf("%w: airline name is required", entity.ErrInvalidArgument)
	}
	return n, nil
}
