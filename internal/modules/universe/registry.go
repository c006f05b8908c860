// Package universe provides the static asset registry: the set of tokens the
// engine knows how to price, classify and trade. The registry is built once
// at startup and passed by reference into every component; it is never
// mutated afterwards.
package universe

import (
	"fmt"
	"sort"
)

// DriftClass is a named drift-threshold tier.
type DriftClass string

const (
	DriftConservative  DriftClass = "conservative"   // Stable assets
	DriftModerate      DriftClass = "moderate"       // Majors and DeFi blue chips
	DriftAggressive    DriftClass = "aggressive"     // High volatility meme coins
	DriftPassiveHodl   DriftClass = "passive_hodl"   // Passive holding
	DriftActiveTrading DriftClass = "active_trading" // Active trading
)

// driftThresholds maps each class to its minimum |drift| before a
// rebalancing order is generated.
var driftThresholds = map[DriftClass]float64{
	DriftConservative:  0.02,
	DriftModerate:      0.05,
	DriftAggressive:    0.10,
	DriftPassiveHodl:   0.01,
	DriftActiveTrading: 0.03,
}

// Slippage tolerances per liquidity tier.
const (
	SlippageDefault        = 0.005 // Stable/major pairs
	SlippageMeme           = 0.10
	SlippageLowLiquidity   = 0.20
	SlippageHighVolatility = 0.15

	// LowLiquidityVolume is the 24h USD volume under which an asset is
	// treated as low liquidity for slippage purposes.
	LowLiquidityVolume = 1_000_000
)

// Asset describes one tradeable token.
type Asset struct {
	Symbol      string
	Address     string // Token contract/mint address on its home chain
	Decimals    int    // Exponent for smallest-unit conversion
	CoinGeckoID string
	DriftClass  DriftClass
}

// Registry is the immutable symbol lookup table.
type Registry struct {
	assets  map[string]Asset
	memeSet map[string]bool // High-volatility meme tier for slippage
	majors  map[string]bool // Stable/major tier for slippage
}

// slippageTier is one (predicate, tolerance) pair of the fixed-priority
// slippage classification. Tiers are evaluated in order; the first match
// wins. Keeping this as an explicit list makes the priority contract
// visible and independently testable.
type slippageTier struct {
	name      string
	matches   func(r *Registry, symbol string, volume24h float64) bool
	tolerance float64
}

var slippageTiers = []slippageTier{
	{
		name:      "meme",
		matches:   func(r *Registry, symbol string, _ float64) bool { return r.memeSet[symbol] },
		tolerance: SlippageMeme,
	},
	{
		name:      "low_liquidity",
		matches:   func(_ *Registry, _ string, volume24h float64) bool { return volume24h < LowLiquidityVolume },
		tolerance: SlippageLowLiquidity,
	},
	{
		name:      "major",
		matches:   func(r *Registry, symbol string, _ float64) bool { return r.majors[symbol] },
		tolerance: SlippageDefault,
	},
	{
		name:      "high_volatility",
		matches:   func(_ *Registry, _ string, _ float64) bool { return true },
		tolerance: SlippageHighVolatility,
	},
}

// New builds the registry from the built-in asset tables.
func New() *Registry {
	r := &Registry{
		assets:  make(map[string]Asset, len(builtinAssets)),
		memeSet: make(map[string]bool, len(memeSymbols)),
		majors:  make(map[string]bool, len(majorSymbols)),
	}
	for _, a := range builtinAssets {
		r.assets[a.Symbol] = a
	}
	for _, s := range memeSymbols {
		r.memeSet[s] = true
	}
	for _, s := range majorSymbols {
		r.majors[s] = true
	}
	return r
}

// Lookup returns the asset record for a symbol.
func (r *Registry) Lookup(symbol string) (Asset, bool) {
	a, ok := r.assets[symbol]
	return a, ok
}

// Decimals returns the decimal exponent used for smallest-unit conversion.
// Unknown symbols are an error: an order for such a symbol cannot be
// converted to transport units.
func (r *Registry) Decimals(symbol string) (int, error) {
	a, ok := r.assets[symbol]
	if !ok {
		return 0, fmt.Errorf("unknown asset symbol: %s", symbol)
	}
	return a.Decimals, nil
}

// Address returns the token address for a symbol.
func (r *Registry) Address(symbol string) (string, error) {
	a, ok := r.assets[symbol]
	if !ok || a.Address == "" {
		return "", fmt.Errorf("unknown asset symbol: %s", symbol)
	}
	return a.Address, nil
}

// CoinGeckoID returns the CoinGecko identifier used by the market data client.
func (r *Registry) CoinGeckoID(symbol string) (string, bool) {
	a, ok := r.assets[symbol]
	if !ok || a.CoinGeckoID == "" {
		return "", false
	}
	return a.CoinGeckoID, true
}

// DriftThreshold returns the asset-specific drift threshold.
// Symbols without an explicit class default to moderate.
func (r *Registry) DriftThreshold(symbol string) float64 {
	a, ok := r.assets[symbol]
	if !ok || a.DriftClass == "" {
		return driftThresholds[DriftModerate]
	}
	t, ok := driftThresholds[a.DriftClass]
	if !ok {
		return driftThresholds[DriftModerate]
	}
	return t
}

// ThresholdFor returns the threshold for a drift class.
func ThresholdFor(class DriftClass) float64 {
	if t, ok := driftThresholds[class]; ok {
		return t
	}
	return driftThresholds[DriftModerate]
}

// SlippageTolerance resolves the slippage tolerance for a symbol given its
// 24h USD volume. Exactly one tier applies; priority is fixed:
// meme > low liquidity > major > high volatility.
func (r *Registry) SlippageTolerance(symbol string, volume24h float64) float64 {
	for _, tier := range slippageTiers {
		if tier.matches(r, symbol, volume24h) {
			return tier.tolerance
		}
	}
	// Unreachable: the last tier always matches.
	return SlippageHighVolatility
}

// IsMeme reports whether the symbol is in the designated meme set.
func (r *Registry) IsMeme(symbol string) bool {
	return r.memeSet[symbol]
}

// Symbols returns all registered symbols in sorted order.
func (r *Registry) Symbols() []string {
	out := make([]string, 0, len(r.assets))
	for s := range r.assets {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
