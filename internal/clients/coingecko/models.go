package coingecko

// simplePriceResponse is the /simple/price payload: coin id -> currency -> price.
type simplePriceResponse map[string]map[string]float64

// marketRow is one entry of the /coins/markets payload.
type marketRow struct {
	ID                 string   `json:"id"`
	MarketCap          float64  `json:"market_cap"`
	TotalVolume        float64  `json:"total_volume"`
	PriceChange24h     *float64 `json:"price_change_percentage_24h"`
	PriceChange7d      *float64 `json:"price_change_percentage_7d_in_currency"`
	MarketCapRank      int      `json:"market_cap_rank"`
	CirculatingSupply  float64  `json:"circulating_supply"`
	TotalSupply        float64  `json:"total_supply"`
	ATH                float64  `json:"ath"`
	ATHChangePct       float64  `json:"ath_change_percentage"`
	ATL                float64  `json:"atl"`
	ATLChangePct       float64  `json:"atl_change_percentage"`
}

// cachedPrice is the structure stored in the price cache.
type cachedPrice struct {
	Price float64 `msgpack:"price"`
}
