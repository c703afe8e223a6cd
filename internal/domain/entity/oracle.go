package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusCode is a flight status reported by oracles
type StatusCode int

const (
	StatusUnknown       StatusCode = 0
	StatusOnTime        StatusCode = 10
	StatusLateAirline   StatusCode = 20
	StatusLateWeather   StatusCode = 30
	StatusLateTechnical StatusCode = 40
	StatusLateOther     StatusCode = 50
)

var statusCodeNames = map[StatusCode]string{
	StatusUnknown:       "UNKNOWN",
	StatusOnTime:        "ON_TIME",
	StatusLateAirline:   "LATE_AIRLINE",
	StatusLateWeather:   "LATE_WEATHER",
	StatusLateTechnical: "LATE_TECHNICAL",
	StatusLateOther:     "LATE_OTHER",
}

func (s StatusCode) String() string {
	if name, ok := statusCodeNames[s]; ok {
		return name
	}
	return "INVALID"
}

// Valid reports whether s is one of the known status codes
func (s StatusCode) Valid() bool {
	_, ok := statusCodeNames[s]
	return ok
}

// RequestStatus is the state of an oracle request
type RequestStatus string

const (
	RequestOpen   RequestStatus = "OPEN"
	RequestClosed RequestStatus = "CLOSED"
)

// Oracle is a registered, independent reporter of flight status
type Oracle struct {
	Address      string
	Fee          decimal.Decimal
	RegisteredAt time.Time
}

// OracleRequest collects reports for one flight under one request index
type OracleRequest struct {
	Index     uint64
	Key       FlightKey
	Requester string
	Status    RequestStatus
	Outcome   StatusCode
	Reports   map[StatusCode][]string
	OpenedAt  time.Time
	ClosedAt  *time.Time
}

// IsClosed reports whether the request reached quorum
func (r *OracleRequest) IsClosed() bool {
	return r.Status == RequestClosed
}
