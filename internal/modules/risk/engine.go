// Package risk implements the stop-loss and volatility gating that can
// suppress or override normal drift rebalancing.
package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/meletis/driftguard/internal/config"
	"github.com/meletis/driftguard/internal/domain"
	"github.com/rs/zerolog"
)

// Volatility and ATL gate thresholds.
const (
	extremeVolatilityPct = 50.0
	highVolatilityPct    = 30.0
	veryLowVolumeUSD     = 500_000.0
	lowVolumeUSD         = 1_000_000.0

	// atlProximityPct: an atl_change_pct above this (i.e. within 10% of the
	// historical low) marks the position for reduction.
	atlProximityPct = -10.0
)

// StopLossDecision is the outcome of a stop-loss evaluation.
type StopLossDecision struct {
	Triggered bool
	Reason    string
}

// Engine evaluates stop-loss and volatility conditions. It owns no I/O;
// its only side effect is mutating the injected State when a stop-loss
// fires.
type Engine struct {
	cfg   config.StopLossConfig
	state *State
	now   func() time.Time
	log   zerolog.Logger
}

// NewEngine creates a risk engine around a long-lived state.
func NewEngine(cfg config.StopLossConfig, state *State, log zerolog.Logger) *Engine {
	return &Engine{
		cfg:   cfg,
		state: state,
		now:   time.Now,
		log:   log.With().Str("module", "risk").Logger(),
	}
}

// SetClock overrides the time source. Tests use this to evaluate cooldown
// and daily-cap windows deterministically.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// State returns the engine's risk state.
func (e *Engine) State() *State {
	return e.state
}

// EvaluateStopLoss decides whether the position in symbol must be force-sold.
// Checks run in fixed priority order: feature gate, empty position, cooldown,
// daily loss cap, loss threshold. The cooldown overrides everything else,
// even a fresh breach.
func (e *Engine) EvaluateStopLoss(symbol string, currentPrice, entryPrice, holdingsQty float64) StopLossDecision {
	if !e.cfg.Enabled || holdingsQty == 0 {
		return StopLossDecision{}
	}

	lossFraction := (entryPrice - currentPrice) / entryPrice
	now := e.now()

	if last := e.state.LastTrigger(symbol); !last.IsZero() && now.Sub(last) < e.cfg.Cooldown {
		return StopLossDecision{}
	}

	if e.state.DailyLoss(now, symbol) >= e.cfg.MaxDailyLoss {
		return StopLossDecision{Reason: "daily loss limit reached"}
	}

	if lossFraction >= e.cfg.Threshold {
		e.state.RecordTrigger(symbol, now, lossFraction)
		e.log.Warn().
			Str("symbol", symbol).
			Float64("loss_fraction", lossFraction).
			Msg("Stop-loss triggered")
		return StopLossDecision{
			Triggered: true,
			Reason:    fmt.Sprintf("stop-loss triggered: %.2f%% loss", lossFraction*100),
		}
	}

	return StopLossDecision{}
}

// EvaluateVolatility checks the volatility tiers in fixed priority order:
// extreme 24h move, high 24h move, very low volume, low volume.
func (e *Engine) EvaluateVolatility(m domain.MarketMetrics) (bool, string) {
	change24h := math.Abs(m.PriceChange24hPct)

	if change24h > extremeVolatilityPct {
		return true, fmt.Sprintf("extreme volatility: %.1f%% (24h)", change24h)
	}
	if change24h > highVolatilityPct {
		return true, fmt.Sprintf("high volatility: %.1f%% (24h)", change24h)
	}

	if m.Volume24h < veryLowVolumeUSD {
		return true, fmt.Sprintf("very low volume: $%.0f", m.Volume24h)
	}
	if m.Volume24h < lowVolumeUSD {
		return true, fmt.Sprintf("low volume: $%.0f", m.Volume24h)
	}

	return false, ""
}

// ShouldReducePosition decides whether a position should be cut due to
// market risk: any volatility condition, or price sitting within 10% of
// the symbol's all-time low. A symbol with no metrics entry is never
// flagged - absence means "no additional risk signal".
func (e *Engine) ShouldReducePosition(symbol string, metrics domain.MetricsSet) (bool, string) {
	m, ok := metrics[symbol]
	if !ok {
		return false, ""
	}

	if risky, reason := e.EvaluateVolatility(m); risky {
		return true, reason
	}

	if m.ATLChangePct > atlProximityPct {
		return true, fmt.Sprintf("near all-time low: %.1f%% from ATL", m.ATLChangePct)
	}

	return false, ""
}
