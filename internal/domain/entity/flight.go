// internal/domain/entity/flight.go
package entity

import (
	"fmt"
	"time"
)

// FlightStatus is the lifecycle state of a flight
type FlightStatus string

const (
	FlightRegistered FlightStatus = "REGISTERED"
	FlightResolved   FlightStatus = "RESOLVED"
)

// FlightKey identifies a flight: {airline}:{code}:{departure}
type FlightKey struct {
	Airline   string `json:"airline"`
	Code      string `json:"code"`
	Departure int64  `json:"departure"`
}

func (k FlightKey) String() string {
	return fmt.Sprintf("%s:%s:%d", k.Airline, k.Code, k.Departure)
}

type Flight struct {
	ID           uint
	Key          FlightKey
	Status       FlightStatus
	Outcome      StatusCode
	RegisteredAt time.Time
	ResolvedAt   *time.Time
}

// IsResolved reports whether an oracle outcome has been applied to the flight
func (f *Flight) IsResolved() bool {
	return f.Status == FlightResolved
}
