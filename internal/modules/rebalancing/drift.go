// Package rebalancing implements the drift computation and order building
// that turn a portfolio snapshot into a sequenced list of trade
// instructions, with risk gating applied per symbol.
package rebalancing

import (
	"errors"

	"github.com/meletis/driftguard/internal/domain"
)

// ErrInsufficientFunds is returned when the total computed portfolio value
// across target symbols is zero. The cycle must abort without issuing any
// orders: there is nothing funded to rebalance.
var ErrInsufficientFunds = errors.New("no funded positions to rebalance")

// TotalValue computes the portfolio value in USD across target symbols.
// Symbols without a price contribute nothing.
func TotalValue(targets domain.TargetWeights, holdings domain.Holdings, prices domain.PriceSheet) float64 {
	total := 0.0
	for symbol := range targets {
		total += holdings[symbol] * prices[symbol]
	}
	return total
}

// ComputeDrift returns the signed drift fraction for a symbol:
// (currentValue - targetValue) / totalValue. Positive means overweight
// (candidate sell), negative underweight (candidate buy).
func ComputeDrift(symbol string, targets domain.TargetWeights, holdings domain.Holdings, prices domain.PriceSheet, totalValue float64) float64 {
	currentValue := holdings[symbol] * prices[symbol]
	targetValue := totalValue * targets[symbol]
	return (currentValue - targetValue) / totalValue
}
