package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AirlineStatus is the lifecycle state of an airline in the registry
type AirlineStatus string

// Airline lifecycle: Applied -> Registered -> Funded
const (
	AirlineApplied    AirlineStatus = "APPLIED"
	AirlineRegistered AirlineStatus = "REGISTERED"
	AirlineFunded     AirlineStatus = "FUNDED"
)

// Airline represents an airline entity
type Airline struct {
	Address      string
	Name         string
	Status       AirlineStatus
	FundedAmount decimal.Decimal
	Voters       []string
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsRegistered reports whether the airline has been admitted. A funded airline is registered.
func (a *Airline) IsRegistered() bool {
	return a.Status == AirlineRegistered || a.Status == AirlineFunded
}

// IsFunded reports whether the airline has posted its bond
func (a *Airline) IsFunded() bool {
	return a.Status == AirlineFunded
}

// HasVoted reports whether voter already endorsed this airline
func (a *Airline) HasVoted(voter string) bool {
	for _, v := range a.Voters {
		if v == voter {
			return true
		}
	}
	return false
}
