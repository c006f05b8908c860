package rebalancing

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meletis/driftguard/internal/config"
	"github.com/meletis/driftguard/internal/domain"
	"github.com/meletis/driftguard/internal/modules/risk"
	"github.com/meletis/driftguard/internal/modules/universe"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()

	cfg := config.StopLossConfig{
		Enabled:      true,
		Threshold:    0.15,
		MaxDailyLoss: 0.25,
		Cooldown:     24 * time.Hour,
	}
	engine := risk.NewEngine(cfg, risk.NewState(), zerolog.Nop())
	return NewBuilder(universe.New(), engine, zerolog.Nop())
}

// calmMetrics returns metrics that trip no volatility or ATL gate.
func calmMetrics(symbols ...string) domain.MetricsSet {
	m := make(domain.MetricsSet, len(symbols))
	for _, s := range symbols {
		m[s] = domain.MarketMetrics{
			PriceChange24hPct: 2,
			Volume24h:         50_000_000,
			ATLChangePct:      -80,
		}
	}
	return m
}

func TestBuildOrders_BalancedPortfolioIsNoOp(t *testing.T) {
	b := newTestBuilder(t)

	snap := domain.PortfolioSnapshot{
		Targets:  domain.TargetWeights{"WETH": 0.5, "WBTC": 0.5},
		Holdings: domain.Holdings{"WETH": 1, "WBTC": 0.05},
		Prices:   domain.PriceSheet{"WETH": 3000, "WBTC": 60000},
		Metrics:  calmMetrics("WETH", "WBTC"),
	}

	orders, err := b.BuildOrders(snap)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestBuildOrders_ZeroValuePortfolio(t *testing.T) {
	b := newTestBuilder(t)

	snap := domain.PortfolioSnapshot{
		Targets:  domain.TargetWeights{"WETH": 0.5, "WBTC": 0.5},
		Holdings: domain.Holdings{},
		Prices:   domain.PriceSheet{"WETH": 3000, "WBTC": 60000},
		Metrics:  calmMetrics("WETH", "WBTC"),
	}

	_, err := b.BuildOrders(snap)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestBuildOrders_SellBeforeBuyWithSlippage(t *testing.T) {
	b := newTestBuilder(t)

	// All value concentrated in WBTC; both symbols carry the moderate 5%
	// threshold and the major 0.5% slippage tier.
	snap := domain.PortfolioSnapshot{
		Targets:  domain.TargetWeights{"WBTC": 0.5, "WETH": 0.5},
		Holdings: domain.Holdings{"WBTC": 100, "WETH": 0},
		Prices:   domain.PriceSheet{"WBTC": 1, "WETH": 1},
		Metrics:  calmMetrics("WBTC", "WETH"),
	}

	orders, err := b.BuildOrders(snap)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	// Sell first, exact amount: sells are never slippage-inflated
	assert.Equal(t, "WBTC", orders[0].Symbol)
	assert.Equal(t, domain.SideSell, orders[0].Side)
	assert.InDelta(t, 50, orders[0].Amount, 1e-9)

	// Buy second, inflated by the 0.5% tolerance
	assert.Equal(t, "WETH", orders[1].Symbol)
	assert.Equal(t, domain.SideBuy, orders[1].Side)
	assert.InDelta(t, 50.25, orders[1].Amount, 1e-9)

	assert.Contains(t, orders[0].Reason, "rebalancing: 50.00% drift")
	assert.Contains(t, orders[1].Reason, "rebalancing: -50.00% drift")
	assert.NotEmpty(t, orders[0].ID)
	assert.NotEqual(t, orders[0].ID, orders[1].ID)
}

func TestBuildOrders_MemeBuyGetsMemeSlippage(t *testing.T) {
	b := newTestBuilder(t)

	snap := domain.PortfolioSnapshot{
		Targets:  domain.TargetWeights{"USDC": 0.5, "WIF": 0.5},
		Holdings: domain.Holdings{"USDC": 100, "WIF": 0},
		Prices:   domain.PriceSheet{"USDC": 1, "WIF": 2},
		Metrics:  calmMetrics("USDC", "WIF"),
	}

	orders, err := b.BuildOrders(snap)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	// Buy of 25 WIF inflated by the 10% meme tolerance
	assert.Equal(t, "WIF", orders[1].Symbol)
	assert.Equal(t, domain.SideBuy, orders[1].Side)
	assert.InDelta(t, 27.5, orders[1].Amount, 1e-9)
}

func TestBuildOrders_StopLossSellsEntirePosition(t *testing.T) {
	b := newTestBuilder(t)

	// Synthetic cost basis twice the current price: a 50% loss that
	// breaches the 15% threshold.
	b.SetEntryPriceFunc(func(_ string, currentPrice float64) float64 {
		return currentPrice * 2
	})

	snap := domain.PortfolioSnapshot{
		Targets:  domain.TargetWeights{"WETH": 1.0},
		Holdings: domain.Holdings{"WETH": 10},
		Prices:   domain.PriceSheet{"WETH": 1000},
		Metrics:  calmMetrics("WETH"),
	}

	orders, err := b.BuildOrders(snap)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	assert.Equal(t, domain.SideSell, orders[0].Side)
	assert.InDelta(t, 10, orders[0].Amount, 1e-9)
	assert.Equal(t, "stop-loss: stop-loss triggered: 50.00% loss", orders[0].Reason)
}

func TestBuildOrders_RiskReductionSellsHalf(t *testing.T) {
	b := newTestBuilder(t)

	metrics := calmMetrics("WETH")
	m := metrics["WETH"]
	m.PriceChange24hPct = 40 // High volatility gate
	metrics["WETH"] = m

	snap := domain.PortfolioSnapshot{
		Targets:  domain.TargetWeights{"WETH": 1.0},
		Holdings: domain.Holdings{"WETH": 40},
		Prices:   domain.PriceSheet{"WETH": 1000},
		Metrics:  metrics,
	}

	orders, err := b.BuildOrders(snap)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	assert.Equal(t, domain.SideSell, orders[0].Side)
	assert.InDelta(t, 20, orders[0].Amount, 1e-9)
	assert.Equal(t, "risk reduction: high volatility: 40.0% (24h)", orders[0].Reason)
}

func TestBuildOrders_UnpricedSymbolSkipped(t *testing.T) {
	b := newTestBuilder(t)

	// LINK has no price: it is skipped entirely even though it is a target,
	// and the remaining symbols rebalance against the priced total.
	snap := domain.PortfolioSnapshot{
		Targets:  domain.TargetWeights{"WETH": 0.5, "WBTC": 0.25, "LINK": 0.25},
		Holdings: domain.Holdings{"WETH": 1, "WBTC": 0.05, "LINK": 100},
		Prices:   domain.PriceSheet{"WETH": 3000, "WBTC": 60000},
		Metrics:  calmMetrics("WETH", "WBTC", "LINK"),
	}

	orders, err := b.BuildOrders(snap)
	require.NoError(t, err)

	for _, o := range orders {
		assert.NotEqual(t, "LINK", o.Symbol)
	}
}

func TestBuildOrders_NoMetricsDisablesRiskGating(t *testing.T) {
	b := newTestBuilder(t)

	// Absent metrics must not flag risk reduction; only drift applies.
	snap := domain.PortfolioSnapshot{
		Targets:  domain.TargetWeights{"WETH": 0.5, "WBTC": 0.5},
		Holdings: domain.Holdings{"WETH": 1, "WBTC": 0.05},
		Prices:   domain.PriceSheet{"WETH": 3000, "WBTC": 60000},
		Metrics:  domain.MetricsSet{},
	}

	orders, err := b.BuildOrders(snap)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestBuildOrders_DeterministicOrdering(t *testing.T) {
	b := newTestBuilder(t)

	snap := domain.PortfolioSnapshot{
		Targets:  domain.TargetWeights{"WETH": 0.3, "WBTC": 0.3, "LINK": 0.4},
		Holdings: domain.Holdings{"USDC": 0, "WETH": 0, "WBTC": 0, "LINK": 100},
		Prices:   domain.PriceSheet{"WETH": 3000, "WBTC": 60000, "LINK": 15, "USDC": 1},
		Metrics:  calmMetrics("WETH", "WBTC", "LINK"),
	}

	first, err := b.BuildOrders(snap)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := b.BuildOrders(snap)
		require.NoError(t, err)
		require.Len(t, again, len(first))
		for j := range again {
			assert.Equal(t, first[j].Symbol, again[j].Symbol)
			assert.Equal(t, first[j].Side, again[j].Side)
		}
	}
}
