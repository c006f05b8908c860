package rebalancing

import (
	"fmt"

	"github.com/meletis/driftguard/internal/domain"
	"github.com/meletis/driftguard/internal/modules/allocation"
	"github.com/meletis/driftguard/internal/modules/trading"
	"github.com/rs/zerolog"
)

// MarketDataClient supplies the per-cycle price and metrics snapshots.
type MarketDataClient interface {
	GetPrices(symbols []string) (domain.PriceSheet, error)
	GetMarketMetrics(symbols []string) (domain.MetricsSet, error)
}

// BalanceClient supplies current holdings from the execution venue.
type BalanceClient interface {
	GetBalances() (domain.Holdings, error)
}

// CycleResult summarizes one rebalance cycle.
type CycleResult struct {
	Orders   []domain.Order            `json:"orders"`
	Results  []trading.ExecutionResult `json:"results,omitempty"`
	Executed bool                      `json:"executed"`
}

// Service orchestrates the full rebalance cycle: snapshot assembly, order
// building, and execution.
type Service struct {
	builder        *Builder
	allocRepo      *allocation.Repository
	marketData     MarketDataClient
	balances       BalanceClient
	tradingService *trading.Service
	log            zerolog.Logger
}

// NewService creates a new rebalancing service.
func NewService(
	builder *Builder,
	allocRepo *allocation.Repository,
	marketData MarketDataClient,
	balances BalanceClient,
	tradingService *trading.Service,
	log zerolog.Logger,
) *Service {
	return &Service{
		builder:        builder,
		allocRepo:      allocRepo,
		marketData:     marketData,
		balances:       balances,
		tradingService: tradingService,
		log:            log.With().Str("service", "rebalancing").Logger(),
	}
}

// Snapshot assembles the fresh per-cycle inputs from collaborators.
// Market metrics failures are non-fatal: absence only disables
// volatility/ATL gating, and the cycle is still sound without it.
func (s *Service) Snapshot() (domain.PortfolioSnapshot, error) {
	var snap domain.PortfolioSnapshot

	targets, err := s.allocRepo.GetAll()
	if err != nil {
		return snap, fmt.Errorf("failed to load target weights: %w", err)
	}

	symbols := make([]string, 0, len(targets))
	for symbol := range targets {
		symbols = append(symbols, symbol)
	}

	prices, err := s.marketData.GetPrices(symbols)
	if err != nil {
		return snap, fmt.Errorf("failed to fetch prices: %w", err)
	}

	holdings, err := s.balances.GetBalances()
	if err != nil {
		return snap, fmt.Errorf("failed to fetch holdings: %w", err)
	}

	metrics, err := s.marketData.GetMarketMetrics(symbols)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to fetch market metrics, risk gating disabled this cycle")
		metrics = domain.MetricsSet{}
	}

	snap = domain.PortfolioSnapshot{
		Targets:  targets,
		Holdings: holdings,
		Prices:   prices,
		Metrics:  metrics,
	}
	return snap, nil
}

// Preview computes the order sequence without executing anything.
func (s *Service) Preview() (CycleResult, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return CycleResult{}, err
	}

	orders, err := s.builder.BuildOrders(snap)
	if err != nil {
		return CycleResult{}, err
	}

	return CycleResult{Orders: orders}, nil
}

// Run executes a full rebalance cycle.
func (s *Service) Run() (CycleResult, error) {
	s.log.Info().Msg("Starting rebalance cycle")

	snap, err := s.Snapshot()
	if err != nil {
		return CycleResult{}, err
	}

	orders, err := s.builder.BuildOrders(snap)
	if err != nil {
		return CycleResult{}, err
	}

	if len(orders) == 0 {
		s.log.Info().Msg("Portfolio already within drift thresholds")
		return CycleResult{Orders: orders}, nil
	}

	results := s.tradingService.ExecuteSequence(orders, snap.Prices)

	failed := 0
	for _, res := range results {
		if res.Err != "" {
			failed++
		}
	}

	s.log.Info().
		Int("orders", len(orders)).
		Int("failed", failed).
		Msg("Rebalance cycle completed")

	return CycleResult{Orders: orders, Results: results, Executed: true}, nil
}
