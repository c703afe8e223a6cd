package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	t.Run("should lower-case valid addresses", func(t *testing.T) {
		addr, err := NormalizeAddress(" 0x00000000000000000000000000000000000000AB ")
		require.NoError(t, err)
		assert.Equal(t, "0x00000000000000000000000000000000000000ab", addr)
	})

	t.Run("should reject malformed addresses", func(t *testing.T) {
		for _, in := range []string{"", "0x1234", "00000000000000000000000000000000000000ab00", "0xzz000000000000000000000000000000000000ab"} {
			_, err := NormalizeAddress(in)
			assert.Error(t, err, in)
		}
	})
}

func TestNormalizeFlightCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"ua0001", "UA0001", true},
		{"FS/0101", "FS0101", true},
		{"QZ7510A", "QZ7510A", true},
		{"ND1309", "ND1309", true},
		{"", "", false},
		{"not a flight", "", false},
		{"UA", "", false},
	}

	for _, tt := range tests {
		got, err := NormalizeFlightCode(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseHelpers(t *testing.T) {
	amount, err := ParseAmount("0.15")
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("0.15")))

	_, err = ParseAmount("ten")
	assert.Error(t, err)

	ts, err := ParseDeparture("1767225600")
	require.NoError(t, err)
	assert.Equal(t, int64(1767225600), ts)

	_, err = ParseDeparture("-5")
	assert.Error(t, err)
}

func TestCeilHalf(t *testing.T) {
	assert.Equal(t, 2, CeilHalf(4))
	assert.Equal(t, 3, CeilHalf(5))
	assert.Equal(t, 1, CeilHalf(1))
}

func TestPercentOf(t *testing.T) {
	credit := PercentOf(decimal.RequireFromString("0.2"), 150)
	assert.True(t, credit.Equal(decimal.RequireFromString("0.3")), credit.String())
}
