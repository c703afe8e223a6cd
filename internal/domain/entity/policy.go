package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InsurancePolicy is a passenger's cover on one flight.
// At most one exists per (passenger, flight); repeat purchases accumulate the premium.
type InsurancePolicy struct {
	Passenger string
	Key       FlightKey
	Premium   decimal.Decimal
	Claimed   bool
	Credited  decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
	ClaimedAt *time.Time
}
