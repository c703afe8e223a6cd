package httpapi

import (
	"time"

	"flightsurety-service/internal/domain/entity"

	"github.com/shopspring/decimal"
)

type airlineView struct {
	Address      string          `json:"address"`
	Name         string          `json:"name"`
	Status       string          `json:"status"`
	FundedAmount decimal.Decimal `json:"fundedAmount"`
	Votes        int             `json:"votes"`
}

func toAirlineView(a *entity.Airline) airlineView {
	return airlineView{
		Address:      a.Address,
		Name:         a.Name,
		Status:       string(a.Status),
		FundedAmount: a.FundedAmount,
		Votes:        len(a.Voters),
	}
}

type flightView struct {
	Key          entity.FlightKey `json:"key"`
	Status       string           `json:"status"`
	Outcome      int              `json:"statusCode"`
	OutcomeName  string           `json:"statusName"`
	RegisteredAt time.Time        `json:"registeredAt"`
	ResolvedAt   *time.Time       `json:"resolvedAt,omitempty"`
}

func toFlightView(f *entity.Flight) flightView {
	return flightView{
		Key:          f.Key,
		Status:       string(f.Status),
		Outcome:      int(f.Outcome),
		OutcomeName:  f.Outcome.String(),
		RegisteredAt: f.RegisteredAt,
		ResolvedAt:   f.ResolvedAt,
	}
}

type policyView struct {
	Passenger string           `json:"passenger"`
	Flight    entity.FlightKey `json:"flight"`
	Premium   decimal.Decimal  `json:"premium"`
	Claimed   bool             `json:"claimed"`
	Credited  decimal.Decimal  `json:"credited"`
	ClaimedAt *time.Time       `json:"claimedAt,omitempty"`
}

func toPolicyView(p *entity.InsurancePolicy) policyView {
	return policyView{
		Passenger: p.Passenger,
		Flight:    p.Key,
		Premium:   p.Premium,
		Claimed:   p.Claimed,
		Credited:  p.Credited,
		ClaimedAt: p.ClaimedAt,
	}
}

type requestView struct {
	Index     uint64           `json:"index"`
	Flight    entity.FlightKey `json:"flight"`
	Requester string           `json:"requester"`
	Status    string           `json:"status"`
	Outcome   *int             `json:"statusCode,omitempty"`
	Reports   map[int][]string `json:"reports"`
	OpenedAt  time.Time        `json:"openedAt"`
	ClosedAt  *time.Time       `json:"closedAt,omitempty"`
}

func toRequestView(r *entity.OracleRequest) requestView {
	view := requestView{
		Index:     r.Index,
		Flight:    r.Key,
		Requester: r.Requester,
		Status:    string(r.Status),
		Reports:   make(map[int][]string, len(r.Reports)),
		OpenedAt:  r.OpenedAt,
		ClosedAt:  r.ClosedAt,
	}
	if r.IsClosed() {
		outcome := int(r.Outcome)
		view.Outcome = &outcome
	}
	for code, oracles := range r.Reports {
		view.Reports[int(code)] = oracles
	}
	return view
}

type withdrawalView struct {
	ID        string          `json:"id"`
	Passenger string          `json:"passenger"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	Reference string          `json:"reference"`
}

func toWithdrawalView(w *entity.Withdrawal) withdrawalView {
	return withdrawalView{
		ID:        w.ID,
		Passenger: w.Passenger,
		Amount:    w.Amount,
		Status:    w.Status,
		Reference: w.Reference,
	}
}
