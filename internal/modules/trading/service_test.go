package trading

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meletis/driftguard/internal/domain"
	"github.com/meletis/driftguard/internal/modules/universe"
)

// fakeVenue records submitted trades and fails configured symbols by
// token address.
type fakeVenue struct {
	calls   []fakeCall
	failAll bool
}

type fakeCall struct {
	fromToken string
	toToken   string
	baseUnits string
	reason    string
}

func (f *fakeVenue) ExecuteTrade(fromToken, toToken, baseUnits, reason string) (string, error) {
	f.calls = append(f.calls, fakeCall{fromToken, toToken, baseUnits, reason})
	if f.failAll {
		return "", errors.New("venue unavailable")
	}
	return "executed", nil
}

func newTestTradingService(t *testing.T, venue ExecutionClient) (*Service, *TradeRepository, func()) {
	t.Helper()

	db, cleanup := setupLedgerDB(t)
	repo := NewTradeRepository(db.Conn(), zerolog.Nop())
	return NewService(venue, universe.New(), repo, zerolog.Nop()), repo, cleanup
}

func TestExecuteSequence_SwapsDirectionPerSide(t *testing.T) {
	venue := &fakeVenue{}
	service, _, cleanup := newTestTradingService(t, venue)
	defer cleanup()

	orders := []domain.Order{
		{ID: "o1", Symbol: "WETH", Side: domain.SideSell, Amount: 2, Reason: "rebalancing: 8.00% drift"},
		{ID: "o2", Symbol: "WBTC", Side: domain.SideBuy, Amount: 0.5, Reason: "rebalancing: -6.00% drift"},
	}
	prices := domain.PriceSheet{"WETH": 3000, "WBTC": 60000}

	results := service.ExecuteSequence(orders, prices)
	require.Len(t, results, 2)
	require.Len(t, venue.calls, 2)

	reg := universe.New()
	wethAddr, _ := reg.Address("WETH")
	wbtcAddr, _ := reg.Address("WBTC")
	usdcAddr, _ := reg.Address("USDC")

	// Sell: asset into quote
	assert.Equal(t, wethAddr, venue.calls[0].fromToken)
	assert.Equal(t, usdcAddr, venue.calls[0].toToken)
	assert.Equal(t, "2000000000000000000", venue.calls[0].baseUnits)

	// Buy: quote into asset, amount still in the asset's decimals
	assert.Equal(t, usdcAddr, venue.calls[1].fromToken)
	assert.Equal(t, wbtcAddr, venue.calls[1].toToken)
	assert.Equal(t, "50000000", venue.calls[1].baseUnits)

	for _, res := range results {
		assert.Equal(t, "executed", res.Status)
		assert.Empty(t, res.Err)
	}
}

func TestExecuteSequence_FailureDoesNotAbortRest(t *testing.T) {
	venue := &fakeVenue{failAll: true}
	service, repo, cleanup := newTestTradingService(t, venue)
	defer cleanup()

	orders := []domain.Order{
		{ID: "o1", Symbol: "WETH", Side: domain.SideSell, Amount: 1, Reason: "r"},
		{ID: "o2", Symbol: "WBTC", Side: domain.SideBuy, Amount: 1, Reason: "r"},
	}

	results := service.ExecuteSequence(orders, domain.PriceSheet{"WETH": 3000, "WBTC": 60000})
	require.Len(t, results, 2)

	// Both were attempted despite the first failing
	assert.Len(t, venue.calls, 2)
	for _, res := range results {
		assert.Equal(t, "failed", res.Status)
		assert.NotEmpty(t, res.Err)
	}

	// Every attempt lands in the ledger, failures included
	trades, err := repo.GetRecent(10)
	require.NoError(t, err)
	assert.Len(t, trades, 2)
	assert.Equal(t, "failed", trades[0].Status)
}

func TestExecuteSequence_UnresolvableSymbolRejected(t *testing.T) {
	venue := &fakeVenue{}
	service, repo, cleanup := newTestTradingService(t, venue)
	defer cleanup()

	// DOGE carries no tradeable address
	orders := []domain.Order{
		{ID: "o1", Symbol: "DOGE", Side: domain.SideSell, Amount: 100, Reason: "r"},
	}

	results := service.ExecuteSequence(orders, domain.PriceSheet{"DOGE": 0.1})
	require.Len(t, results, 1)

	assert.Equal(t, "rejected", results[0].Status)
	assert.NotEmpty(t, results[0].Err)
	// The venue was never called
	assert.Empty(t, venue.calls)

	trades, err := repo.GetRecent(10)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "rejected", trades[0].Status)
}

func TestExecuteSequence_PreservesOrder(t *testing.T) {
	venue := &fakeVenue{}
	service, _, cleanup := newTestTradingService(t, venue)
	defer cleanup()

	orders := []domain.Order{
		{ID: "s1", Symbol: "WETH", Side: domain.SideSell, Amount: 1, Reason: "sell first"},
		{ID: "s2", Symbol: "WBTC", Side: domain.SideSell, Amount: 1, Reason: "sell second"},
		{ID: "b1", Symbol: "WIF", Side: domain.SideBuy, Amount: 1, Reason: "buy last"},
	}

	results := service.ExecuteSequence(orders, domain.PriceSheet{})
	require.Len(t, results, 3)
	require.Len(t, venue.calls, 3)

	assert.Equal(t, "sell first", venue.calls[0].reason)
	assert.Equal(t, "sell second", venue.calls[1].reason)
	assert.Equal(t, "buy last", venue.calls[2].reason)
}
