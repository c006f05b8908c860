package clientdata

import "time"

// TTL constants for different data types.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// TTLPrice - spot prices go stale quickly; a rebalance cycle must not
	// act on prices older than a few minutes.
	TTLPrice = 10 * time.Minute

	// TTLMarketMetrics - volume/volatility/ATL metrics move slower than
	// spot prices and feed risk gating, not order sizing.
	TTLMarketMetrics = 30 * time.Minute
)

// StaleGrace is how long expired cache rows are kept around for the
// stale-on-error fallback before cleanup removes them.
const StaleGrace = 24 * time.Hour
