package scheduler

import (
	"time"

	"github.com/meletis/driftguard/internal/clientdata"
	"github.com/meletis/driftguard/internal/modules/risk"
	"github.com/rs/zerolog"
)

// riskHistoryRetention is how long triggered stop-loss days are kept.
// Cooldown and daily caps only look back 24 hours, so a week is plenty.
const riskHistoryRetention = 7 * 24 * time.Hour

// MaintenanceJob prunes expired cache rows and old risk history.
// All steps are non-critical, failures are logged and skipped.
type MaintenanceJob struct {
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
	riskRepo  *risk.Repository
}

// NewMaintenanceJob creates a new maintenance job
func NewMaintenanceJob(cacheRepo *clientdata.Repository, riskRepo *risk.Repository, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		log:       log.With().Str("job", "maintenance").Logger(),
		cacheRepo: cacheRepo,
		riskRepo:  riskRepo,
	}
}

// Name returns the job name
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Run executes the maintenance pass
func (j *MaintenanceJob) Run() error {
	j.pruneCache()
	j.pruneRiskHistory()
	return nil
}

func (j *MaintenanceJob) pruneCache() {
	if j.cacheRepo == nil {
		return
	}

	for _, table := range clientdata.AllTables {
		deleted, err := j.cacheRepo.DeleteExpired(table, clientdata.StaleGrace)
		if err != nil {
			j.log.Error().Err(err).Str("table", table).Msg("Cache cleanup failed")
			continue
		}
		if deleted > 0 {
			j.log.Debug().Str("table", table).Int64("deleted", deleted).Msg("Expired cache rows removed")
		}
	}
}

func (j *MaintenanceJob) pruneRiskHistory() {
	if j.riskRepo == nil {
		return
	}

	cutoff := time.Now().Add(-riskHistoryRetention).Format(risk.DayKeyFormat)
	deleted, err := j.riskRepo.DeleteBefore(cutoff)
	if err != nil {
		j.log.Error().Err(err).Msg("Risk history cleanup failed")
		return
	}
	if deleted > 0 {
		j.log.Debug().Int64("deleted", deleted).Msg("Old risk history removed")
	}
}
