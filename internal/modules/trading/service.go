package trading

import (
	"fmt"
	"time"

	"github.com/meletis/driftguard/internal/domain"
	"github.com/meletis/driftguard/internal/modules/universe"
	"github.com/rs/zerolog"
)

// quoteSymbol is the quote asset every order settles against.
const quoteSymbol = "USDC"

// ExecutionClient submits a single swap to the venue. Implemented by the
// Recall client; tests substitute a fake.
type ExecutionClient interface {
	ExecuteTrade(fromToken, toToken, baseUnits, reason string) (status string, err error)
}

// Service executes order sequences and records the ledger trail.
type Service struct {
	venue     ExecutionClient
	registry  *universe.Registry
	tradeRepo *TradeRepository
	log       zerolog.Logger
}

// NewService creates a new trading service.
func NewService(venue ExecutionClient, registry *universe.Registry, tradeRepo *TradeRepository, log zerolog.Logger) *Service {
	return &Service{
		venue:     venue,
		registry:  registry,
		tradeRepo: tradeRepo,
		log:       log.With().Str("service", "trading").Logger(),
	}
}

// ExecuteSequence submits orders strictly in the given sequence. The
// builder places sells before buys; submitting out of order could leave
// buys unfunded. Each order is attempted independently - one failure never
// aborts the rest - and every attempt is recorded in the ledger.
func (s *Service) ExecuteSequence(orders []domain.Order, prices domain.PriceSheet) []ExecutionResult {
	results := make([]ExecutionResult, 0, len(orders))

	for _, order := range orders {
		status, err := s.executeOne(order)

		result := ExecutionResult{Order: order, Status: status}
		if err != nil {
			result.Err = err.Error()
			s.log.Error().
				Err(err).
				Str("symbol", order.Symbol).
				Str("side", string(order.Side)).
				Float64("amount", order.Amount).
				Msg("Order execution failed")
		} else {
			s.log.Info().
				Str("symbol", order.Symbol).
				Str("side", string(order.Side)).
				Float64("amount", order.Amount).
				Str("status", status).
				Msg("Order executed")
		}
		results = append(results, result)

		price := prices[order.Symbol]
		if repoErr := s.tradeRepo.Create(Trade{
			UUID:       order.ID,
			ExecutedAt: time.Now(),
			Symbol:     order.Symbol,
			Side:       order.Side,
			Amount:     order.Amount,
			Price:      price,
			Status:     status,
			Reason:     order.Reason,
			TotalValue: order.Amount * price,
		}); repoErr != nil {
			s.log.Error().Err(repoErr).Str("symbol", order.Symbol).Msg("Failed to record trade in ledger")
		}
	}

	return results
}

// executeOne resolves the trading pair and submits a single order.
// A sell swaps the asset into the quote token; a buy swaps quote into the
// asset. Amount is always denominated in the non-quote asset.
func (s *Service) executeOne(order domain.Order) (string, error) {
	assetAddr, err := s.registry.Address(order.Symbol)
	if err != nil {
		return "rejected", fmt.Errorf("cannot resolve trading pair: %w", err)
	}
	quoteAddr, err := s.registry.Address(quoteSymbol)
	if err != nil {
		return "rejected", fmt.Errorf("cannot resolve quote token: %w", err)
	}

	decimals, err := s.registry.Decimals(order.Symbol)
	if err != nil {
		return "rejected", fmt.Errorf("cannot resolve decimals: %w", err)
	}

	baseUnits, err := ToBaseUnits(order.Amount, decimals)
	if err != nil {
		return "rejected", fmt.Errorf("cannot convert amount to base units: %w", err)
	}

	fromToken, toToken := assetAddr, quoteAddr
	if order.Side == domain.SideBuy {
		fromToken, toToken = quoteAddr, assetAddr
	}

	status, err := s.venue.ExecuteTrade(fromToken, toToken, baseUnits, order.Reason)
	if err != nil {
		return "failed", err
	}
	return status, nil
}
