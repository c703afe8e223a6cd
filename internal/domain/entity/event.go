package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType names an observable ledger signal
type EventType string

const (
	EventOperatingStatusChanged   EventType = "operating_status_changed"
	EventAirlineRegistered        EventType = "airline_registered"
	EventAirlineVoteRecorded      EventType = "airline_vote_recorded"
	EventAirlineFunded            EventType = "airline_funded"
	EventFlightRegistered         EventType = "flight_registered"
	EventInsurancePurchaseSuccess EventType = "insurance_purchase_success"
	EventInsurancePurchaseFailure EventType = "insurance_purchase_failure"
	EventOracleRegistered         EventType = "oracle_registered"
	EventOracleRequest            EventType = "oracle_request"
	EventOracleReport             EventType = "oracle_report"
	EventFlightStatusInfo         EventType = "flight_status_info"
	EventInsuranceCreditReceived  EventType = "insurance_credit_received"
	EventInsuranceClaimPaid       EventType = "insurance_claim_paid"
	EventCreditsWithdrawn         EventType = "credits_withdrawn"
)

// Event is a notification emitted by a ledger operation. Events are not ledger state;
// they are returned to the caller and handed to publishers after commit.
type Event struct {
	ID           string           `json:"id"`
	Type         EventType        `json:"type"`
	Airline      string           `json:"airline,omitempty"`
	Passenger    string           `json:"passenger,omitempty"`
	Oracle       string           `json:"oracle,omitempty"`
	Flight       *FlightKey       `json:"flight,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	StatusCode   *StatusCode      `json:"statusCode,omitempty"`
	RequestIndex uint64           `json:"requestIndex,omitempty"`
	Votes        int              `json:"votes,omitempty"`
	Reason       string           `json:"reason,omitempty"`
	OccurredAt   time.Time        `json:"occurredAt"`
}

// NewEvent creates an event of the given type stamped with a fresh id
func NewEvent(eventType EventType) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
	}
}

// WithFlight sets the flight key
func (e Event) WithFlight(key FlightKey) Event {
	e.Flight = &key
	return e
}

// WithAmount sets the amount
func (e Event) WithAmount(amount decimal.Decimal) Event {
	e.Amount = &amount
	return e
}

// WithStatus sets the status code
func (e Event) WithStatus(code StatusCode) Event {
	e.StatusCode = &code
	return e
}
