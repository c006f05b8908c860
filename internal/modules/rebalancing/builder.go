package rebalancing

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/meletis/driftguard/internal/domain"
	"github.com/meletis/driftguard/internal/modules/risk"
	"github.com/meletis/driftguard/internal/modules/universe"
	"github.com/rs/zerolog"
)

// positionReductionFraction is how much of a holding is sold when the risk
// engine flags the position for reduction.
const positionReductionFraction = 0.5

// EntryPriceFunc estimates the entry price of a held position for stop-loss
// evaluation. Real cost basis requires lot accounting; until the ledger
// grows that, the default approximates entry as currentPrice * 1.1.
type EntryPriceFunc func(symbol string, currentPrice float64) float64

// DefaultEntryPrice is the synthetic entry-price heuristic carried over
// from the original cycle wiring. Note that it yields a constant ~9.09%
// loss fraction, below the default 15% stop-loss threshold.
func DefaultEntryPrice(_ string, currentPrice float64) float64 {
	return currentPrice * 1.1
}

// Builder turns a portfolio snapshot into a sequenced order list.
// It is pure computation except for the risk-state mutations performed by
// the risk engine when a stop-loss fires.
type Builder struct {
	registry   *universe.Registry
	riskEngine *risk.Engine
	entryPrice EntryPriceFunc
	log        zerolog.Logger
}

// NewBuilder creates an order builder.
func NewBuilder(registry *universe.Registry, riskEngine *risk.Engine, log zerolog.Logger) *Builder {
	return &Builder{
		registry:   registry,
		riskEngine: riskEngine,
		entryPrice: DefaultEntryPrice,
		log:        log.With().Str("module", "rebalancing").Logger(),
	}
}

// SetEntryPriceFunc overrides the entry-price estimator.
func (b *Builder) SetEntryPriceFunc(fn EntryPriceFunc) {
	b.entryPrice = fn
}

// BuildOrders computes the trade instructions for one cycle.
//
// Per target symbol, in sorted symbol order: skip unpriced symbols; a
// triggered stop-loss sells the entire position; a flagged risk reduction
// sells half; otherwise drift against the asset-specific threshold decides
// a normal rebalance order, with buy amounts inflated by the slippage
// tolerance. The returned sequence places every sell before every buy so
// the downstream venue settles proceeds into the quote asset before
// purchases draw on it.
func (b *Builder) BuildOrders(snap domain.PortfolioSnapshot) ([]domain.Order, error) {
	totalValue := TotalValue(snap.Targets, snap.Holdings, snap.Prices)
	if totalValue == 0 {
		return nil, ErrInsufficientFunds
	}

	// Sorted iteration keeps the within-bucket order deterministic.
	symbols := make([]string, 0, len(snap.Targets))
	for symbol := range snap.Targets {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var sells, buys []domain.Order

	for _, symbol := range symbols {
		price := snap.Prices[symbol]
		if price == 0 {
			b.log.Warn().Str("symbol", symbol).Msg("No usable price, skipping symbol this cycle")
			continue
		}

		qty := snap.Holdings[symbol]

		if qty > 0 {
			entry := b.entryPrice(symbol, price)
			if decision := b.riskEngine.EvaluateStopLoss(symbol, price, entry, qty); decision.Triggered {
				sells = append(sells, domain.Order{
					ID:     uuid.NewString(),
					Symbol: symbol,
					Side:   domain.SideSell,
					Amount: qty,
					Reason: "stop-loss: " + decision.Reason,
				})
				continue
			}
		}

		if reduce, reason := b.riskEngine.ShouldReducePosition(symbol, snap.Metrics); reduce && qty > 0 {
			sells = append(sells, domain.Order{
				ID:     uuid.NewString(),
				Symbol: symbol,
				Side:   domain.SideSell,
				Amount: qty * positionReductionFraction,
				Reason: "risk reduction: " + reason,
			})
			continue
		}

		drift := ComputeDrift(symbol, snap.Targets, snap.Holdings, snap.Prices, totalValue)
		threshold := b.registry.DriftThreshold(symbol)
		if math.Abs(drift) < threshold {
			continue
		}

		currentValue := qty * price
		targetValue := totalValue * snap.Targets[symbol]
		amount := math.Abs(targetValue-currentValue) / price

		side := domain.SideBuy
		if drift > 0 {
			side = domain.SideSell
		}

		if side == domain.SideBuy {
			// Sell amounts are never inflated: slippage padding only makes
			// sense when acquiring tokens.
			tolerance := b.registry.SlippageTolerance(symbol, snap.Metrics[symbol].Volume24h)
			amount *= 1 + tolerance
		}

		order := domain.Order{
			ID:     uuid.NewString(),
			Symbol: symbol,
			Side:   side,
			Amount: amount,
			Reason: fmt.Sprintf("rebalancing: %.2f%% drift", drift*100),
		}
		if side == domain.SideSell {
			sells = append(sells, order)
		} else {
			buys = append(buys, order)
		}
	}

	orders := make([]domain.Order, 0, len(sells)+len(buys))
	orders = append(orders, sells...)
	orders = append(orders, buys...)

	b.log.Debug().
		Int("sells", len(sells)).
		Int("buys", len(buys)).
		Float64("total_value", totalValue).
		Msg("Built order sequence")

	return orders, nil
}
