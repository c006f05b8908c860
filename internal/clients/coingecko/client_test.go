package coingecko

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meletis/driftguard/internal/clientdata"
	"github.com/meletis/driftguard/internal/database"
	"github.com/meletis/driftguard/internal/domain"
	"github.com/meletis/driftguard/internal/modules/universe"
)

func setupCacheRepo(t *testing.T) (*clientdata.Repository, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test_cgcache_*.db")
	require.NoError(t, err)
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{
		Path:    tmpPath,
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	cleanup := func() {
		_ = db.Close()
		_ = os.Remove(tmpPath)
	}

	return clientdata.NewRepository(db.Conn()), cleanup
}

func TestGetPrices(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("ids"), "weth")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"weth":{"usd":3000.5},"wrapped-bitcoin":{"usd":60000}}`))
	}))
	defer server.Close()

	client := NewClient("", universe.New(), nil, zerolog.Nop())
	client.SetBaseURL(server.URL)

	prices, err := client.GetPrices([]string{"WETH", "WBTC"})
	require.NoError(t, err)

	assert.Equal(t, 3000.5, prices["WETH"])
	assert.Equal(t, 60000.0, prices["WBTC"])
	assert.Equal(t, 1, requests)
}

func TestGetPrices_MissingSymbolIsZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"weth":{"usd":3000}}`))
	}))
	defer server.Close()

	client := NewClient("", universe.New(), nil, zerolog.Nop())
	client.SetBaseURL(server.URL)

	prices, err := client.GetPrices([]string{"WETH", "WBTC"})
	require.NoError(t, err)

	assert.Equal(t, 3000.0, prices["WETH"])
	assert.Zero(t, prices["WBTC"])
}

func TestGetPrices_CacheFirstSkipsAPI(t *testing.T) {
	repo, cleanup := setupCacheRepo(t)
	defer cleanup()

	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte(`{"weth":{"usd":3000}}`))
	}))
	defer server.Close()

	client := NewClient("", universe.New(), repo, zerolog.Nop())
	client.SetBaseURL(server.URL)

	first, err := client.GetPrices([]string{"WETH"})
	require.NoError(t, err)
	assert.Equal(t, 3000.0, first["WETH"])
	assert.Equal(t, 1, requests)

	// Second call is served from the fresh cache
	second, err := client.GetPrices([]string{"WETH"})
	require.NoError(t, err)
	assert.Equal(t, 3000.0, second["WETH"])
	assert.Equal(t, 1, requests)
}

func TestGetPrices_StaleFallbackOnAPIFailure(t *testing.T) {
	repo, cleanup := setupCacheRepo(t)
	defer cleanup()

	// Seed an already-expired cached price
	require.NoError(t, repo.Store("coingecko_prices", "WETH", cachedPrice{Price: 2800}, -time.Minute))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("", universe.New(), repo, zerolog.Nop())
	client.SetBaseURL(server.URL)

	prices, err := client.GetPrices([]string{"WETH", "WBTC"})
	require.NoError(t, err)

	// Stale data beats no data; a never-cached symbol stays at zero
	assert.Equal(t, 2800.0, prices["WETH"])
	assert.Zero(t, prices["WBTC"])
}

func TestGetMarketMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/markets", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		_, _ = w.Write([]byte(`[
			{
				"id": "dogwifhat",
				"market_cap": 2500000000,
				"total_volume": 400000000,
				"price_change_percentage_24h": -12.5,
				"price_change_percentage_7d_in_currency": 3.2,
				"market_cap_rank": 70,
				"circulating_supply": 998900000,
				"total_supply": 998900000,
				"ath": 4.85,
				"ath_change_percentage": -48.2,
				"atl": 0.15,
				"atl_change_percentage": 1550.0
			}
		]`))
	}))
	defer server.Close()

	client := NewClient("", universe.New(), nil, zerolog.Nop())
	client.SetBaseURL(server.URL)

	metrics, err := client.GetMarketMetrics([]string{"WIF", "WETH"})
	require.NoError(t, err)

	wif, ok := metrics["WIF"]
	require.True(t, ok)
	assert.Equal(t, -12.5, wif.PriceChange24hPct)
	assert.Equal(t, 3.2, wif.PriceChange7dPct)
	assert.Equal(t, 400000000.0, wif.Volume24h)
	assert.Equal(t, 1550.0, wif.ATLChangePct)

	// WETH missing from the response means no metrics entry, not an error
	_, ok = metrics["WETH"]
	assert.False(t, ok)
}

func TestGetMarketMetrics_ErrorWithNothingRecoverable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("", universe.New(), nil, zerolog.Nop())
	client.SetBaseURL(server.URL)

	_, err := client.GetMarketMetrics([]string{"WIF"})
	assert.Error(t, err)
}

func TestGetMarketMetrics_StaleFallbackOnAPIFailure(t *testing.T) {
	repo, cleanup := setupCacheRepo(t)
	defer cleanup()

	client := NewClient("", universe.New(), repo, zerolog.Nop())

	// First call populates the cache
	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"dogwifhat","total_volume":400000000,"price_change_percentage_24h":-12.5}]`))
	}))
	client.SetBaseURL(okServer.URL)
	_, err := client.GetMarketMetrics([]string{"WIF"})
	require.NoError(t, err)
	okServer.Close()

	// Force the cached row to be stale, then break the API
	require.NoError(t, repo.Store("coingecko_markets", "WIF",
		domain.MarketMetrics{Volume24h: 400000000, PriceChange24hPct: -12.5}, -time.Minute))

	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer badServer.Close()
	client.SetBaseURL(badServer.URL)

	metrics, err := client.GetMarketMetrics([]string{"WIF"})
	require.NoError(t, err)
	_, ok := metrics["WIF"]
	assert.True(t, ok)
}
