package usecase

import (
	"context"
	"fmt"

	"flightsurety-service/internal/domain/entity"
	"flightsurety-service/internal/domain/repository"
	"flightsurety-service/pkg/utils"
)

// AirlineResult is the outcome of RegisterAirline
type AirlineResult struct {
	Result
	Airline   *entity.Airline
	Votes     int
	Threshold int
}

// RegisterAirline lets a funded airline propose candidate. Below DirectAdmissionLimit
// registered airlines the candidate is admitted at once; from then on each call is a vote
// and the candidate is admitted when distinct votes reach ceil(registered/2).
// A repeated vote is absorbed without error.
func (l *Ledger) RegisterAirline(ctx context.Context, proposer, candidate, name string) (*AirlineResult, error) {
	res := &AirlineResult{}
	err := l.execute(ctx, "register_airline", true, func(tx repository.Store) error {
		sponsorAddr, err := normalizeAddress("proposer", proposer)
		if err != nil {
			return err
		}
		candidateAddr, err := normalizeAddress("candidate", candidate)
		if err != nil {
			return err
		}
		airlineName, err := requireName(name)
		if err != nil {
			return err
		}

		airlines := tx.Airlines()

		sponsor, err := airlines.GetByAddress(ctx, sponsorAddr)
		if isNotFound(err) {
			return fmt.Errorf("%w: proposer %s is not an airline", entity.ErrUnauthorized, sponsorAddr)
		}
		if err != nil {
			return err
		}
		if !sponsor.IsFunded() {
			return fmt.Errorf("%w: proposer %s is not funded", entity.ErrUnauthorized, sponsorAddr)
		}

		target, err := airlines.GetByAddress(ctx, candidateAddr)
		isNew := isNotFound(err)
		if err != nil && !isNew {
			return err
		}
		if isNew {
			target = &entity.Airline{
				Address: candidateAddr,
				Name:    airlineName,
				Status:  entity.AirlineApplied,
			}
		} else if target.IsRegistered() {
			return fmt.Errorf("airline %s: %w", candidateAddr, entity.ErrAlreadyRegistered)
		}

		registered, err := airlines.CountRegistered(ctx)
		if err != nil {
			return fmt.Errorf("failed to count airlines: %w", err)
		}
		res.Airline = target

		if registered < l.cfg.DirectAdmissionLimit {
			return l.admit(ctx, airlines, target, isNew, res)
		}

		res.Threshold = utils.CeilHalf(registered)
		if target.HasVoted(sponsorAddr) {
			res.Votes = len(target.Voters)
			res.Duplicate = true
			res.Ignored = entity.ErrDuplicateVote
			return nil
		}

		if isNew {
			if err := airlines.Create(ctx, target); err != nil {
				return err
			}
			isNew = false
		}
		if err := airlines.AddVote(ctx, candidateAddr, sponsorAddr); err != nil {
			return err
		}
		target.Voters = append(target.Voters, sponsorAddr)
		res.Votes = len(target.Voters)

		if res.Votes >= res.Threshold {
			return l.admit(ctx, airlines, target, isNew, res)
		}

		event := entity.NewEvent(entity.EventAirlineVoteRecorded)
		event.Airline = candidateAddr
		event.Votes = res.Votes
		event.Reason = fmt.Sprintf("endorsed by %s", sponsorAddr)
		res.emit(event)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Duplicate {
		l.logger.Info("Duplicate airline vote ignored", "candidate", res.Airline.Address, "proposer", proposer)
	} else {
		l.logger.Info("Airline proposal processed",
			"candidate", res.Airline.Address,
			"status", res.Airline.Status,
			"votes", res.Votes,
			"threshold", res.Threshold)
	}
	l.publish(ctx, res.Events)
	return res, nil
}

// admit moves target to Registered and drops its votes
func (l *Ledger) admit(ctx context.Context, airlines repository.AirlineRepository, target *entity.Airline, isNew bool, res *AirlineResult) error {
	target.Status = entity.AirlineRegistered
	if isNew {
		if err := airlines.Create(ctx, target); err != nil {
			return err
		}
	} else {
		if err := airlines.Save(ctx, target); err != nil {
			return err
		}
		if err := airlines.ClearVotes(ctx, target.Address); err != nil {
			return err
		}
	}
	target.Voters = nil

	event := entity.NewEvent(entity.EventAirlineRegistered)
	event.Airline = target.Address
	event.Votes = res.Votes
	res.emit(event)
	return nil
}

// IsAirlineRegistered reports whether address is a registered (or funded) airline
func (l *Ledger) IsAirlineRegistered(ctx context.Context, address string) (bool, error) {
	airline, err := l.lookupAirline(ctx, address)
	if err != nil || airline == nil {
		return false, err
	}
	return airline.IsRegistered(), nil
}

// GetAirlinesCount returns the number of registered airlines
func (l *Ledger) GetAirlinesCount(ctx context.Context) (int, error) {
	return l.store.Airlines().CountRegistered(ctx)
}

// GetAirline returns the airline at address
func (l *Ledger) GetAirline(ctx context.Context, address string) (*entity.Airline, error) {
	addr, err := normalizeAddress("airline", address)
	if err != nil {
		return nil, err
	}
	return l.store.Airlines().GetByAddress(ctx, addr)
}

// lookupAirline returns nil without error when the airline is unknown
func (l *Ledger) lookupAirline(ctx context.Context, address string) (*entity.Airline, error) {
	airline, err := l.GetAirline(ctx, address)
	if isNotFound(err) {
		return nil, nil
	}
	return airline, err
}
