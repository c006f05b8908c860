// Package trading executes order sequences against the venue and records
// every attempt in the append-only trade ledger.
package trading

import (
	"time"

	"github.com/meletis/driftguard/internal/domain"
)

// Trade is one ledger entry. The ledger is append-only: rows are written
// once per execution attempt, successful or not, and never updated.
type Trade struct {
	ID         int64       `json:"id"`
	UUID       string      `json:"uuid"`
	ExecutedAt time.Time   `json:"executed_at"`
	Symbol     string      `json:"symbol"`
	Side       domain.Side `json:"side"`
	Amount     float64     `json:"amount"`
	Price      float64     `json:"price"`
	Status     string      `json:"status"`
	Reason     string      `json:"reason"`
	TotalValue float64     `json:"total_value"`
}

// ExecutionResult is the per-order outcome of a cycle's execution pass.
type ExecutionResult struct {
	Order  domain.Order `json:"order"`
	Status string       `json:"status"`
	Err    string       `json:"error,omitempty"`
}
