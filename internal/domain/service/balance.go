package service

import (
	"math/big"
	"strings"

	"wallet-activity-analyzer/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// nativeDecimals is the fixed-point scale of native-currency balances.
const nativeDecimals = 18

// NativeBalance resolves a wallet's native-currency balance from its
// token-balance list. The native entry is the one with a nil token address;
// its hex fixed-point value is interpreted as a 256-bit unsigned integer and
// scaled down by 10^18. Returns 0 when no native entry exists or the hex
// string does not parse.
func NativeBalance(balances []entity.TokenBalance) float64 {
	for _, b := range balances {
		if b.TokenAddress != nil {
			continue
		}
		if d, ok := parseFixedPointHex(b.TokenBalance); ok {
			return d.InexactFloat64()
		}
		return 0
	}
	return 0
}

// parseFixedPointHex parses an 18-decimal fixed-point hex string into a
// decimal amount. Values wider than 256 bits are rejected.
func parseFixedPointHex(s string) (decimal.Decimal, bool) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if h == "" || len(h) > 64 {
		return decimal.Zero, false
	}
	v, ok := new(big.Int).SetString(h, 16)
	if !ok {
		return decimal.Zero, false
	}
	return decimal.NewFromBigInt(v, -nativeDecimals), true
}
