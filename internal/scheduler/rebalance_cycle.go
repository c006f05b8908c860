package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/meletis/driftguard/internal/modules/rebalancing"
	"github.com/rs/zerolog"
)

// RebalanceCycleJob runs one full rebalancing cycle: snapshot, risk
// gating, order building, sequenced execution. Concurrent runs are
// skipped, not queued.
type RebalanceCycleJob struct {
	log     zerolog.Logger
	service *rebalancing.Service
	mu      sync.Mutex
	running bool
}

// NewRebalanceCycleJob creates a new rebalance cycle job
func NewRebalanceCycleJob(service *rebalancing.Service, log zerolog.Logger) *RebalanceCycleJob {
	return &RebalanceCycleJob{
		log:     log.With().Str("job", "rebalance_cycle").Logger(),
		service: service,
	}
}

// Name returns the job name
func (j *RebalanceCycleJob) Name() string {
	return "rebalance_cycle"
}

// Run executes the rebalance cycle
func (j *RebalanceCycleJob) Run() error {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		j.log.Warn().Msg("Rebalance cycle already running, skipping")
		return nil
	}
	j.running = true
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		j.running = false
		j.mu.Unlock()
	}()

	j.log.Info().Msg("Starting rebalance cycle")
	startTime := time.Now()

	result, err := j.service.Run()
	if err != nil {
		return fmt.Errorf("rebalance cycle failed: %w", err)
	}

	succeeded := 0
	for _, res := range result.Results {
		if res.Err == "" {
			succeeded++
		}
	}

	j.log.Info().
		Int("orders", len(result.Orders)).
		Int("succeeded", succeeded).
		Dur("duration", time.Since(startTime)).
		Msg("Rebalance cycle completed")

	return nil
}
