package trading

import (
	"fmt"
	"math/big"
)

// ToBaseUnits converts a whole-token amount to the integer smallest-unit
// string the venue expects: floor(amount * 10^decimals). Truncation toward
// zero, not rounding - the venue rejects fractional base units and rounding
// up could oversell a position.
func ToBaseUnits(amount float64, decimals int) (string, error) {
	if amount < 0 {
		return "", fmt.Errorf("negative amount: %f", amount)
	}

	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	scaled := new(big.Float).Mul(big.NewFloat(amount), scale)

	units, _ := scaled.Int(nil)
	return units.String(), nil
}
