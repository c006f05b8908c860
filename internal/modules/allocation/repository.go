// Package allocation manages the persisted target portfolio weights.
package allocation

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/meletis/driftguard/internal/domain"
	"github.com/rs/zerolog"
)

// defaultTargets is the built-in portfolio used when no targets have been
// configured yet: 30% meme coins, 40% majors, 20% DeFi, 10% L2/gaming.
var defaultTargets = domain.TargetWeights{
	"WIF": 0.10, "BONK": 0.08, "BOME": 0.06, "POPCAT": 0.03, "MYRO": 0.03,
	"WETH": 0.15, "WBTC": 0.10, "USDC": 0.10, "LINK": 0.05,
	"UNI": 0.08, "AAVE": 0.06, "COMP": 0.06,
	"MATIC": 0.05, "AXS": 0.03, "SAND": 0.02,
}

// Repository handles allocation target database operations against config.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new allocation repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "allocation").Logger(),
	}
}

// GetAll returns the target weights. An empty table is seeded with the
// built-in default portfolio first, so a fresh install rebalances toward
// something sensible.
func (r *Repository) GetAll() (domain.TargetWeights, error) {
	targets, err := r.read()
	if err != nil {
		return nil, err
	}

	if len(targets) == 0 {
		r.log.Info().Msg("No allocation targets configured, seeding defaults")
		if err := r.SetAll(defaultTargets); err != nil {
			return nil, fmt.Errorf("failed to seed default targets: %w", err)
		}
		return r.read()
	}

	return targets, nil
}

func (r *Repository) read() (domain.TargetWeights, error) {
	rows, err := r.db.Query("SELECT symbol, weight FROM allocation_targets")
	if err != nil {
		return nil, fmt.Errorf("failed to query allocation targets: %w", err)
	}
	defer rows.Close()

	targets := make(domain.TargetWeights)
	for rows.Next() {
		var symbol string
		var weight float64
		if err := rows.Scan(&symbol, &weight); err != nil {
			return nil, fmt.Errorf("failed to scan allocation target: %w", err)
		}
		targets[symbol] = weight
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate allocation targets: %w", err)
	}

	return targets, nil
}

// SetAll replaces the target set atomically.
func (r *Repository) SetAll(targets domain.TargetWeights) error {
	for symbol, weight := range targets {
		if weight < 0 {
			return fmt.Errorf("negative weight for %s: %f", symbol, weight)
		}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM allocation_targets"); err != nil {
		return fmt.Errorf("failed to clear allocation targets: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for symbol, weight := range targets {
		if _, err := tx.Exec(
			"INSERT INTO allocation_targets (symbol, weight, updated_at) VALUES (?, ?, ?)",
			symbol, weight, now,
		); err != nil {
			return fmt.Errorf("failed to insert allocation target %s: %w", symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit allocation targets: %w", err)
	}

	r.log.Info().Int("count", len(targets)).Msg("Updated allocation targets")
	return nil
}
