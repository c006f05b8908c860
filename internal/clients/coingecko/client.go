// Package coingecko provides price and market metrics fetching from the
// CoinGecko API, with persistent cache-first behaviour and stale fallback.
package coingecko

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meletis/driftguard/internal/clientdata"
	"github.com/meletis/driftguard/internal/domain"
	"github.com/meletis/driftguard/internal/modules/universe"
	"github.com/rs/zerolog"
)

const (
	pricesTable  = "coingecko_prices"
	marketsTable = "coingecko_markets"
)

// Client for the CoinGecko API.
type Client struct {
	baseURL   string
	apiKey    string
	client    *http.Client
	registry  *universe.Registry
	cacheRepo *clientdata.Repository
	log       zerolog.Logger
}

// NewClient creates a new CoinGecko client.
// apiKey is optional (demo tier works without one).
// cacheRepo is optional - if nil, caching and stale fallback are disabled.
func NewClient(apiKey string, registry *universe.Registry, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   "https://api.coingecko.com/api/v3",
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 10 * time.Second},
		registry:  registry,
		cacheRepo: cacheRepo,
		log:       log.With().Str("client", "coingecko").Logger(),
	}
}

// SetBaseURL overrides the API base URL. Tests point this at a local server.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// GetPrices returns USD prices for the given symbols. Symbols with no
// price available anywhere come back as 0, which downstream treats as
// "unpriceable, skip this cycle" - a partial sheet is never an error.
func (c *Client) GetPrices(symbols []string) (domain.PriceSheet, error) {
	prices := make(domain.PriceSheet, len(symbols))

	// Cache-first: only fetch symbols without a fresh cached price.
	var missing []string
	for _, symbol := range symbols {
		if c.cacheRepo != nil {
			var cached cachedPrice
			if ok, err := c.cacheRepo.GetIfFresh(pricesTable, symbol, &cached); err == nil && ok {
				prices[symbol] = cached.Price
				continue
			}
		}
		missing = append(missing, symbol)
	}

	if len(missing) == 0 {
		return prices, nil
	}

	fetched, err := c.fetchPrices(missing)
	if err != nil {
		// API failed - stale cached prices beat no prices.
		c.log.Warn().Err(err).Int("symbols", len(missing)).Msg("Price fetch failed, trying stale cache")
		for _, symbol := range missing {
			prices[symbol] = c.stalePrice(symbol)
		}
		return prices, nil
	}

	for _, symbol := range missing {
		price, ok := fetched[symbol]
		if !ok {
			c.log.Warn().Str("symbol", symbol).Msg("No price data for symbol")
			prices[symbol] = 0
			continue
		}
		prices[symbol] = price
		if c.cacheRepo != nil {
			_ = c.cacheRepo.Store(pricesTable, symbol, cachedPrice{Price: price}, clientdata.TTLPrice)
		}
	}

	return prices, nil
}

// fetchPrices calls /simple/price for the given symbols.
func (c *Client) fetchPrices(symbols []string) (map[string]float64, error) {
	ids, idToSymbol := c.resolveIDs(symbols)
	if len(ids) == 0 {
		return map[string]float64{}, nil
	}

	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currencies", "usd")

	var payload simplePriceResponse
	if err := c.get("/simple/price", params, &payload); err != nil {
		return nil, err
	}

	out := make(map[string]float64)
	for id, currencies := range payload {
		symbol, ok := idToSymbol[id]
		if !ok {
			continue
		}
		if usd, ok := currencies["usd"]; ok {
			out[symbol] = usd
		}
	}
	return out, nil
}

// GetMarketMetrics returns market risk metrics for the given symbols.
// A symbol missing from the response is simply absent from the result,
// which disables volatility/ATL gating for it.
func (c *Client) GetMarketMetrics(symbols []string) (domain.MetricsSet, error) {
	metrics := make(domain.MetricsSet, len(symbols))

	var missing []string
	for _, symbol := range symbols {
		if c.cacheRepo != nil {
			var cached domain.MarketMetrics
			if ok, err := c.cacheRepo.GetIfFresh(marketsTable, symbol, &cached); err == nil && ok {
				metrics[symbol] = cached
				continue
			}
		}
		missing = append(missing, symbol)
	}

	if len(missing) == 0 {
		return metrics, nil
	}

	fetched, err := c.fetchMarkets(missing)
	if err != nil {
		c.log.Warn().Err(err).Int("symbols", len(missing)).Msg("Market metrics fetch failed, trying stale cache")
		for _, symbol := range missing {
			if c.cacheRepo == nil {
				continue
			}
			var cached domain.MarketMetrics
			if ok, cacheErr := c.cacheRepo.Get(marketsTable, symbol, &cached); cacheErr == nil && ok {
				metrics[symbol] = cached
			}
		}
		if len(metrics) == 0 {
			return nil, fmt.Errorf("failed to fetch market metrics: %w", err)
		}
		return metrics, nil
	}

	for symbol, m := range fetched {
		metrics[symbol] = m
		if c.cacheRepo != nil {
			_ = c.cacheRepo.Store(marketsTable, symbol, m, clientdata.TTLMarketMetrics)
		}
	}

	return metrics, nil
}

// fetchMarkets calls /coins/markets for the given symbols.
func (c *Client) fetchMarkets(symbols []string) (domain.MetricsSet, error) {
	ids, idToSymbol := c.resolveIDs(symbols)
	if len(ids) == 0 {
		return domain.MetricsSet{}, nil
	}

	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currency", "usd")
	params.Set("order", "market_cap_desc")
	params.Set("per_page", "250")
	params.Set("page", "1")
	params.Set("sparkline", "false")
	params.Set("price_change_percentage", "24h,7d")

	var rows []marketRow
	if err := c.get("/coins/markets", params, &rows); err != nil {
		return nil, err
	}

	out := make(domain.MetricsSet, len(rows))
	for _, row := range rows {
		symbol, ok := idToSymbol[row.ID]
		if !ok {
			continue
		}
		m := domain.MarketMetrics{
			MarketCap:         row.MarketCap,
			Volume24h:         row.TotalVolume,
			MarketCapRank:     row.MarketCapRank,
			CirculatingSupply: row.CirculatingSupply,
			TotalSupply:       row.TotalSupply,
			ATH:               row.ATH,
			ATHChangePct:      row.ATHChangePct,
			ATL:               row.ATL,
			ATLChangePct:      row.ATLChangePct,
		}
		if row.PriceChange24h != nil {
			m.PriceChange24hPct = *row.PriceChange24h
		}
		if row.PriceChange7d != nil {
			m.PriceChange7dPct = *row.PriceChange7d
		}
		out[symbol] = m
	}
	return out, nil
}

// resolveIDs maps symbols to CoinGecko IDs, dropping unknown symbols.
func (c *Client) resolveIDs(symbols []string) ([]string, map[string]string) {
	ids := make([]string, 0, len(symbols))
	idToSymbol := make(map[string]string, len(symbols))
	for _, symbol := range symbols {
		id, ok := c.registry.CoinGeckoID(symbol)
		if !ok {
			c.log.Warn().Str("symbol", symbol).Msg("No CoinGecko ID for symbol")
			continue
		}
		ids = append(ids, id)
		idToSymbol[id] = symbol
	}
	return ids, idToSymbol
}

// get performs a GET request and decodes the JSON response.
func (c *Client) get(path string, params url.Values, dest interface{}) error {
	if c.apiKey != "" {
		params.Set("x_cg_demo_api_key", c.apiKey)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	resp, err := c.client.Get(reqURL)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// stalePrice returns the last cached price for a symbol, or 0.
func (c *Client) stalePrice(symbol string) float64 {
	if c.cacheRepo == nil {
		return 0
	}
	var cached cachedPrice
	if ok, err := c.cacheRepo.Get(pricesTable, symbol, &cached); err == nil && ok {
		c.log.Warn().Str("symbol", symbol).Float64("price", cached.Price).Msg("Using stale cached price")
		return cached.Price
	}
	return 0
}
