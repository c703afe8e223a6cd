package utils

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// CeilHalf returns ceil(n/2), the endorsement threshold for n registered airlines
func CeilHalf(n int) int {
	return (n + 1) / 2
}

// PercentOf returns amount * percentage / 100
func PercentOf(amount decimal.Decimal, percentage int64) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(percentage)).Div(hundred)
}
