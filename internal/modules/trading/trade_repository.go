package trading

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/meletis/driftguard/internal/domain"
	"github.com/rs/zerolog"
)

// TradeRepository handles trade ledger database operations.
type TradeRepository struct {
	ledgerDB *sql.DB
	log      zerolog.Logger
}

// NewTradeRepository creates a new trade repository.
func NewTradeRepository(ledgerDB *sql.DB, log zerolog.Logger) *TradeRepository {
	return &TradeRepository{
		ledgerDB: ledgerDB,
		log:      log.With().Str("repo", "trade").Logger(),
	}
}

// Create appends a trade record to the ledger.
func (r *TradeRepository) Create(trade Trade) error {
	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		INSERT INTO trades
		(uuid, executed_at, symbol, side, amount, price, status, reason, total_value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.ledgerDB.Exec(query,
		trade.UUID,
		trade.ExecutedAt.UTC().Format(time.RFC3339),
		trade.Symbol,
		string(trade.Side),
		trade.Amount,
		trade.Price,
		trade.Status,
		trade.Reason,
		trade.TotalValue,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}

	r.log.Info().
		Str("symbol", trade.Symbol).
		Str("side", string(trade.Side)).
		Float64("amount", trade.Amount).
		Str("status", trade.Status).
		Msg("Trade recorded")

	return nil
}

// GetRecent returns the most recent trades, newest first.
func (r *TradeRepository) GetRecent(limit int) ([]Trade, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, uuid, executed_at, symbol, side, amount, price, status, reason, total_value
		FROM trades
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.ledgerDB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []Trade
	for rows.Next() {
		var t Trade
		var executedAt, side string
		if err := rows.Scan(&t.ID, &t.UUID, &executedAt, &t.Symbol, &side, &t.Amount, &t.Price, &t.Status, &t.Reason, &t.TotalValue); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		t.Side = domain.Side(side)
		if ts, err := time.Parse(time.RFC3339, executedAt); err == nil {
			t.ExecutedAt = ts
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trades: %w", err)
	}

	return trades, nil
}

// CountBySymbol returns how many ledger entries exist for a symbol.
func (r *TradeRepository) CountBySymbol(symbol string) (int, error) {
	var count int
	err := r.ledgerDB.QueryRow("SELECT COUNT(*) FROM trades WHERE symbol = ?", symbol).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return count, nil
}
