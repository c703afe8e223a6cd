package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	addressPattern    = regexp.MustCompile(`^0x[0-9a-f]{40}$`)
	flightCodePattern = regexp.MustCompile(`^[A-Z0-9]{2,3}[0-9]{1,5}[A-Z]?$`)
)

// NormalizeAddress lower-cases and trims an account address and checks its shape
func NormalizeAddress(address string) (string, error) {
	addr := strings.ToLower(strings.TrimSpace(address))
	if !addressPattern.MatchString(addr) {
		return "", fmt.Errorf("malformed address %q", address)
	}
	return addr, nil
}

// NormalizeFlightCode upper-cases a flight code such as "ua0001" and checks its shape
func NormalizeFlightCode(code string) (string, error) {
	c := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), "/", ""))
	if !flightCodePattern.MatchString(c) {
		return "", fmt.Errorf("malformed flight code %q", code)
	}
	return c, nil
}

// ParseAmount parses a decimal amount of native units, e.g. "0.15"
func ParseAmount(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed amount %q: %w", value, err)
	}
	return amount, nil
}

// ParseDeparture parses a unix departure timestamp
func ParseDeparture(value string) (int64, error) {
	ts, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed departure %q: %w", value, err)
	}
	if ts <= 0 {
		return 0, fmt.Errorf("departure must be positive, got %d", ts)
	}
	return ts, nil
}
