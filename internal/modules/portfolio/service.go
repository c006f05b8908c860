// Package portfolio produces analysis reports of the current portfolio
// against its targets: per-symbol weights, drift, and risk flags.
package portfolio

import (
	"math"
	"sort"

	"github.com/meletis/driftguard/internal/domain"
	"github.com/meletis/driftguard/internal/modules/rebalancing"
	"github.com/meletis/driftguard/internal/modules/risk"
	"github.com/meletis/driftguard/internal/modules/universe"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// RiskLevel buckets a position's current risk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// mediumRiskChangePct: a 24h move above this marks a position medium risk
// even when no reduction condition fires.
const mediumRiskChangePct = 20.0

// PositionReport is one row of the analysis.
type PositionReport struct {
	Symbol         string    `json:"symbol"`
	CurrentWeight  float64   `json:"current_weight"`
	TargetWeight   float64   `json:"target_weight"`
	DriftPct       float64   `json:"drift_pct"`
	DriftThreshold float64   `json:"drift_threshold"`
	ValueUSD       float64   `json:"value_usd"`
	RiskLevel      RiskLevel `json:"risk_level"`
	RiskReason     string    `json:"risk_reason,omitempty"`
}

// Analysis is the full portfolio report.
type Analysis struct {
	TotalValueUSD   float64          `json:"total_value_usd"`
	Positions       []PositionReport `json:"positions"`
	MeanAbsDriftPct float64          `json:"mean_abs_drift_pct"`
	StdAbsDriftPct  float64          `json:"std_abs_drift_pct"`
	HighRiskSymbols []string         `json:"high_risk_symbols"`
	LowVolumeCount  int              `json:"low_volume_count"`
}

// Service computes portfolio analyses.
type Service struct {
	registry   *universe.Registry
	riskEngine *risk.Engine
	log        zerolog.Logger
}

// NewService creates a new portfolio analysis service.
func NewService(registry *universe.Registry, riskEngine *risk.Engine, log zerolog.Logger) *Service {
	return &Service{
		registry:   registry,
		riskEngine: riskEngine,
		log:        log.With().Str("service", "portfolio").Logger(),
	}
}

// Analyze builds the report for a snapshot. Unpriced symbols are skipped,
// matching the engine's behaviour. A zero-value portfolio still produces a
// report (weights are reported as zero); only order building treats it as
// fatal.
func (s *Service) Analyze(snap domain.PortfolioSnapshot) Analysis {
	totalValue := rebalancing.TotalValue(snap.Targets, snap.Holdings, snap.Prices)

	symbols := make([]string, 0, len(snap.Targets))
	for symbol := range snap.Targets {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	analysis := Analysis{TotalValueUSD: totalValue}
	var absDrifts []float64

	for _, symbol := range symbols {
		price := snap.Prices[symbol]
		if price == 0 {
			continue
		}

		value := snap.Holdings[symbol] * price
		currentWeight := 0.0
		if totalValue > 0 {
			currentWeight = value / totalValue
		}
		targetWeight := snap.Targets[symbol]
		driftPct := (currentWeight - targetWeight) * 100

		report := PositionReport{
			Symbol:         symbol,
			CurrentWeight:  currentWeight,
			TargetWeight:   targetWeight,
			DriftPct:       driftPct,
			DriftThreshold: s.registry.DriftThreshold(symbol) * 100,
			ValueUSD:       value,
			RiskLevel:      RiskLow,
		}

		if m, ok := snap.Metrics[symbol]; ok {
			if reduce, reason := s.riskEngine.ShouldReducePosition(symbol, snap.Metrics); reduce {
				report.RiskLevel = RiskHigh
				report.RiskReason = reason
				analysis.HighRiskSymbols = append(analysis.HighRiskSymbols, symbol)
			} else if math.Abs(m.PriceChange24hPct) > mediumRiskChangePct {
				report.RiskLevel = RiskMedium
			}

			if m.Volume24h < universe.LowLiquidityVolume {
				analysis.LowVolumeCount++
			}
		}

		analysis.Positions = append(analysis.Positions, report)
		absDrifts = append(absDrifts, math.Abs(driftPct))
	}

	if len(absDrifts) > 0 {
		analysis.MeanAbsDriftPct = stat.Mean(absDrifts, nil)
		if len(absDrifts) > 1 {
			analysis.StdAbsDriftPct = stat.StdDev(absDrifts, nil)
		}
	}

	return analysis
}
