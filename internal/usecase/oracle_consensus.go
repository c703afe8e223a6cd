package usecase

import (
	"context"
	"fmt"
	"time"

	"flightsurety-service/internal/domain/entity"
	"flightsurety-service/internal/domain/repository"

	"github.com/shopspring/decimal"
)

// OracleRequestResult is the outcome of FetchFlightStatus
type OracleRequestResult struct {
	Result
	Request *entity.OracleRequest
}

// OracleResponseResult is the outcome of SubmitOracleResponse. Closed is set on the
// response that brought the request to quorum.
type OracleResponseResult struct {
	Result
	Request *entity.OracleRequest
	Closed  bool
}

// RegisterOracle admits an oracle that pays at least the registration fee
func (l *Ledger) RegisterOracle(ctx context.Context, oracle string, fee decimal.Decimal) (*Result, error) {
	res := &Result{}
	var addr string
	err := l.execute(ctx, "register_oracle", true, func(tx repository.Store) error {
		var err error
		addr, err = normalizeAddress("oracle", oracle)
		if err != nil {
			return err
		}
		if fee.LessThan(l.cfg.OracleRegistrationFee) {
			return fmt.Errorf("%w: fee %s is below %s", entity.ErrInsufficientFunds, fee, l.cfg.OracleRegistrationFee)
		}

		_, err = tx.Oracles().GetOracle(ctx, addr)
		if err == nil {
			return fmt.Errorf("oracle %s: %w", addr, entity.ErrAlreadyRegistered)
		}
		if !isNotFound(err) {
			return err
		}

		if err := tx.Oracles().CreateOracle(ctx, &entity.Oracle{Address: addr, Fee: fee}); err != nil {
			return err
		}

		event := entity.NewEvent(entity.EventOracleRegistered).WithAmount(fee)
		event.Oracle = addr
		res.emit(event)
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Oracle registered", "oracle", addr)
	l.publish(ctx, res.Events)
	return res, nil
}

// FetchFlightStatus opens an oracle request for the flight under a fresh index.
// The flight does not have to be registered.
func (l *Ledger) FetchFlightStatus(ctx context.Context, requester string, key entity.FlightKey) (*OracleRequestResult, error) {
	res := &OracleRequestResult{}
	err := l.execute(ctx, "fetch_flight_status", true, func(tx repository.Store) error {
		addr, err := normalizeAddress("requester", requester)
		if err != nil {
			return err
		}
		k, err := normalizeFlightKey(key)
		if err != nil {
			return err
		}

		request := &entity.OracleRequest{Key: k, Requester: addr}
		if err := tx.Oracles().CreateRequest(ctx, request); err != nil {
			return err
		}
		res.Request = request

		event := entity.NewEvent(entity.EventOracleRequest).WithFlight(k)
		event.RequestIndex = request.Index
		res.emit(event)
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Oracle request opened", "index", res.Request.Index, "flight", res.Request.Key.String())
	l.publish(ctx, res.Events)
	return res, nil
}

// SubmitOracleResponse records a registered oracle's report for an open request. The
// first status code reported by QuorumSize distinct oracles closes the request and, for
// a registered flight not yet resolved, becomes the flight's outcome. Unknown reports
// never close a request. A second report from the same oracle is absorbed.
func (l *Ledger) SubmitOracleResponse(ctx context.Context, oracle string, index uint64, key entity.FlightKey, code entity.StatusCode) (*OracleResponseResult, error) {
	res := &OracleResponseResult{}
	var reporter string
	err := l.execute(ctx, "submit_oracle_response", true, func(tx repository.Store) error {
		var err error
		reporter, err = normalizeAddress("oracle", oracle)
		if err != nil {
			return err
		}
		k, err := normalizeFlightKey(key)
		if err != nil {
			return err
		}
		if !code.Valid() {
			return fmt.Errorf("%w: unknown status code %d", entity.ErrInvalidArgument, code)
		}

		oracles := tx.Oracles()
		if _, err := oracles.GetOracle(ctx, reporter); err != nil {
			if isNotFound(err) {
				return fmt.Errorf("%w: oracle %s is not registered", entity.ErrUnauthorized, reporter)
			}
			return err
		}

		request, err := oracles.GetRequest(ctx, index)
		if err != nil {
			return err
		}
		if request.Key != k {
			return fmt.Errorf("oracle request %d is for %s, not %s: %w", index, request.Key, k, entity.ErrNotFound)
		}
		res.Request = request

		answered, err := oracles.HasResponse(ctx, index, reporter)
		if err != nil {
			return err
		}
		if answered {
			res.Duplicate = true
			res.Ignored = entity.ErrDuplicateResponse
			return nil
		}

		if err := oracles.AddResponse(ctx, index, reporter, code); err != nil {
			return err
		}
		request.Reports[code] = append(request.Reports[code], reporter)

		report := entity.NewEvent(entity.EventOracleReport).WithFlight(k).WithStatus(code)
		report.Oracle = reporter
		report.RequestIndex = index
		res.emit(report)

		if request.IsClosed() || code == entity.StatusUnknown {
			return nil
		}
		count, err := oracles.CountResponses(ctx, index, code)
		if err != nil {
			return err
		}
		if count < l.cfg.QuorumSize {
			return nil
		}

		now := time.Now()
		if err := oracles.CloseRequest(ctx, index, code, now); err != nil {
			return err
		}
		request.Status = entity.RequestClosed
		request.Outcome = code
		request.ClosedAt = &now
		res.Closed = true

		if err := l.resolveFlight(ctx, tx, k, code, now); err != nil {
			return err
		}

		info := entity.NewEvent(entity.EventFlightStatusInfo).WithFlight(k).WithStatus(code)
		info.RequestIndex = index
		res.emit(info)
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case res.Duplicate:
		l.logger.Info("Duplicate oracle response ignored", "index", index, "oracle", reporter)
	case res.Closed:
		l.logger.Info("Oracle consensus reached", "index", index, "flight", res.Request.Key.String(), "status", code.String())
	default:
		l.logger.Debug("Oracle response recorded", "index", index, "oracle", reporter, "status", code.String())
	}
	l.publish(ctx, res.Events)
	return res, nil
}

// resolveFlight applies outcome to the flight if it is registered and still unresolved
func (l *Ledger) resolveFlight(ctx context.Context, tx repository.Store, key entity.FlightKey, outcome entity.StatusCode, at time.Time) error {
	flight, err := tx.Flights().GetByKey(ctx, key)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if flight.IsResolved() {
		return nil
	}
	return tx.Flights().Resolve(ctx, key, outcome, at)
}

// GetOracleRequest returns a request with the reports received so far
func (l *Ledger) GetOracleRequest(ctx context.Context, index uint64) (*entity.OracleRequest, error) {
	return l.store.Oracles().GetRequest(ctx, index)
}
