package risk

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository persists risk state to risk.db so cooldowns and daily loss
// accumulators survive process restarts.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new risk state repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "risk").Logger(),
	}
}

// SaveTrigger upserts the last trigger timestamp for a symbol.
func (r *Repository) SaveTrigger(symbol string, at time.Time) error {
	_, err := r.db.Exec(
		"INSERT OR REPLACE INTO stop_loss_triggers (symbol, triggered_at) VALUES (?, ?)",
		symbol, at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		r.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to persist stop-loss trigger")
		return fmt.Errorf("failed to save stop-loss trigger: %w", err)
	}
	return nil
}

// SaveDailyLoss upserts the accumulated loss fraction for (day, symbol).
func (r *Repository) SaveDailyLoss(day, symbol string, lossFraction float64) error {
	_, err := r.db.Exec(
		"INSERT OR REPLACE INTO daily_losses (day, symbol, loss_fraction) VALUES (?, ?, ?)",
		day, symbol, lossFraction,
	)
	if err != nil {
		r.log.Error().Err(err).Str("symbol", symbol).Str("day", day).Msg("Failed to persist daily loss")
		return fmt.Errorf("failed to save daily loss: %w", err)
	}
	return nil
}

// Load restores the full persisted risk history.
func (r *Repository) Load() (map[string]time.Time, map[string]map[string]float64, error) {
	triggers := make(map[string]time.Time)

	rows, err := r.db.Query("SELECT symbol, triggered_at FROM stop_loss_triggers")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load stop-loss triggers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var symbol, triggeredAt string
		if err := rows.Scan(&symbol, &triggeredAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan stop-loss trigger: %w", err)
		}
		t, err := time.Parse(time.RFC3339, triggeredAt)
		if err != nil {
			r.log.Warn().Str("symbol", symbol).Str("value", triggeredAt).Msg("Skipping unparseable trigger timestamp")
			continue
		}
		triggers[symbol] = t
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate stop-loss triggers: %w", err)
	}

	dailyLosses := make(map[string]map[string]float64)

	lossRows, err := r.db.Query("SELECT day, symbol, loss_fraction FROM daily_losses")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load daily losses: %w", err)
	}
	defer lossRows.Close()

	for lossRows.Next() {
		var day, symbol string
		var loss float64
		if err := lossRows.Scan(&day, &symbol, &loss); err != nil {
			return nil, nil, fmt.Errorf("failed to scan daily loss: %w", err)
		}
		if dailyLosses[day] == nil {
			dailyLosses[day] = make(map[string]float64)
		}
		dailyLosses[day][symbol] = loss
	}
	if err := lossRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate daily losses: %w", err)
	}

	return triggers, dailyLosses, nil
}

// RestoreState loads persisted history into a new State with write-through
// persistence attached.
func (r *Repository) RestoreState() (*State, error) {
	triggers, dailyLosses, err := r.Load()
	if err != nil {
		return nil, err
	}

	state := NewStateFromHistory(triggers, dailyLosses)
	state.AttachRepository(r)

	r.log.Info().
		Int("triggers", len(triggers)).
		Int("days", len(dailyLosses)).
		Msg("Restored risk state")

	return state, nil
}

// DeleteBefore removes daily loss rows older than the cutoff day.
// Cooldown rows are tiny and kept forever.
func (r *Repository) DeleteBefore(cutoffDay string) (int64, error) {
	res, err := r.db.Exec("DELETE FROM daily_losses WHERE day < ?", cutoffDay)
	if err != nil {
		return 0, fmt.Errorf("failed to prune daily losses: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
