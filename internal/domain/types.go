// Package domain holds the pure domain types shared across modules.
// Nothing in this package depends on infrastructure.
package domain

// TargetWeights maps symbol to target portfolio weight. Weights should sum
// to ~1.0 but the engine does not enforce it: total portfolio value
// normalizes drift implicitly, so an unnormalized set just scales drift.
type TargetWeights map[string]float64

// Holdings maps symbol to quantity held, in whole token units.
type Holdings map[string]float64

// PriceSheet maps symbol to USD price. A zero or absent price means the
// symbol is unpriceable and is skipped for the cycle.
type PriceSheet map[string]float64

// MarketMetrics is the per-symbol market risk record. Absence of a
// symbol's entry disables volatility/ATL gating for that symbol only.
type MarketMetrics struct {
	MarketCap         float64 `json:"market_cap"`
	Volume24h         float64 `json:"volume_24h"`
	PriceChange24hPct float64 `json:"price_change_24h"`
	PriceChange7dPct  float64 `json:"price_change_7d"`
	MarketCapRank     int     `json:"market_cap_rank"`
	CirculatingSupply float64 `json:"circulating_supply"`
	TotalSupply       float64 `json:"total_supply"`
	ATH               float64 `json:"ath"`
	ATHChangePct      float64 `json:"ath_change_percentage"`
	ATL               float64 `json:"atl"`
	ATLChangePct      float64 `json:"atl_change_percentage"`
}

// MetricsSet maps symbol to its market metrics snapshot.
type MetricsSet map[string]MarketMetrics

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Order is a single trade instruction. Immutable once produced.
// Amount is in whole token units; conversion to smallest transport units
// happens at the execution boundary.
type Order struct {
	ID     string  `json:"id"`
	Symbol string  `json:"symbol"`
	Side   Side    `json:"side"`
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

// PortfolioSnapshot bundles the per-cycle inputs to the rebalancing engine.
// All fields are fresh snapshots supplied by external collaborators; the
// engine never caches or mutates them.
type PortfolioSnapshot struct {
	Targets  TargetWeights
	Holdings Holdings
	Prices   PriceSheet
	Metrics  MetricsSet
}
