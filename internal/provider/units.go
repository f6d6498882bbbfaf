package provider

import (
	"math/big"
	"strings"
)

// FormatUnits renders an integer amount in its smallest unit as a decimal
// string scaled by 10^decimals, trimming trailing fractional zeros.
// Arithmetic stays on big.Int so no precision is lost.
func FormatUnits(amount *big.Int, decimals int) string {
	if amount == nil || amount.Sign() == 0 {
		return "0"
	}
	sign := ""
	n := new(big.Int).Set(amount)
	if n.Sign() < 0 {
		sign = "-"
		n.Abs(n)
	}
	if decimals <= 0 {
		return sign + n.String()
	}

	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	intPart := new(big.Int).Quo(n, denom)
	frac := new(big.Int).Mod(n, denom)

	if frac.Sign() == 0 {
		return sign + intPart.String()
	}

	fracStr := frac.Text(10)
	if len(fracStr) < decimals {
		fracStr = strings.Repeat("0", decimals-len(fracStr)) + fracStr
	}
	fracStr = strings.TrimRight(fracStr, "0")
	return sign + intPart.String() + "." + fracStr
}

// FormatUnitsFixed is FormatUnits with the fractional part padded to exactly
// decimals digits, the conventional rendering for BTC amounts.
func FormatUnitsFixed(amount *big.Int, decimals int) string {
	if decimals <= 0 {
		return FormatUnits(amount, decimals)
	}
	if amount == nil {
		amount = big.NewInt(0)
	}
	sign := ""
	n := new(big.Int).Set(amount)
	if n.Sign() < 0 {
		sign = "-"
		n.Abs(n)
	}

	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	intPart := new(big.Int).Quo(n, denom)
	frac := new(big.Int).Mod(n, denom)

	fracStr := frac.Text(10)
	if len(fracStr) < decimals {
		fracStr = strings.Repeat("0", decimals-len(fracStr)) + fracStr
	}
	return sign + intPart.String() + "." + fracStr
}
