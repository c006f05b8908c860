package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/meletis/driftguard/internal/domain"
	"github.com/meletis/driftguard/internal/modules/rebalancing"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "driftguard",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleSystemStatus handles system status requests
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPct, memPct := s.systemStats()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := map[string]interface{}{
		"status":         "running",
		"uptime_seconds": int64(time.Since(s.startupTime).Seconds()),
		"cpu_percent":    cpuPct,
		"memory_percent": memPct,
		"process": map[string]interface{}{
			"alloc_mb":   m.Alloc / 1024 / 1024,
			"sys_mb":     m.Sys / 1024 / 1024,
			"num_gc":     m.NumGC,
			"goroutines": runtime.NumGoroutine(),
		},
	}

	s.writeJSON(w, http.StatusOK, response)
}

// systemStats returns CPU and RAM usage percentages.
// CPU sampling uses 100ms so the status endpoint stays responsive.
func (s *Server) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// handleGetAllocation returns the current target weights
func (s *Server) handleGetAllocation(w http.ResponseWriter, r *http.Request) {
	targets, err := s.allocation.GetAll()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load allocation targets")
		s.writeError(w, http.StatusInternalServerError, "failed to load allocation targets")
		return
	}

	s.writeJSON(w, http.StatusOK, targets)
}

// handleSetAllocation replaces the target weights
func (s *Server) handleSetAllocation(w http.ResponseWriter, r *http.Request) {
	var targets domain.TargetWeights
	if err := json.NewDecoder(r.Body).Decode(&targets); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid allocation payload")
		return
	}
	if len(targets) == 0 {
		s.writeError(w, http.StatusBadRequest, "allocation must not be empty")
		return
	}

	if err := s.allocation.SetAll(targets); err != nil {
		s.log.Error().Err(err).Msg("Failed to store allocation targets")
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.log.Info().Int("symbols", len(targets)).Msg("Allocation targets updated")
	s.writeJSON(w, http.StatusOK, targets)
}

// handlePortfolioAnalysis returns drift and risk metrics per position
func (s *Server) handlePortfolioAnalysis(w http.ResponseWriter, r *http.Request) {
	snap, err := s.rebalancing.Snapshot()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to build portfolio snapshot")
		s.writeError(w, http.StatusBadGateway, "failed to build portfolio snapshot")
		return
	}

	s.writeJSON(w, http.StatusOK, s.portfolio.Analyze(snap))
}

// handleRebalancePreview builds orders without executing anything
func (s *Server) handleRebalancePreview(w http.ResponseWriter, r *http.Request) {
	result, err := s.rebalancing.Preview()
	if err != nil {
		s.writeCycleError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleRebalanceRun executes a full rebalance cycle
func (s *Server) handleRebalanceRun(w http.ResponseWriter, r *http.Request) {
	result, err := s.rebalancing.Run()
	if err != nil {
		s.writeCycleError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleGetTrades returns recent ledger entries, newest first
func (s *Server) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	trades, err := s.trades.GetRecent(limit)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load trades")
		s.writeError(w, http.StatusInternalServerError, "failed to load trades")
		return
	}

	s.writeJSON(w, http.StatusOK, trades)
}

// handleRiskState returns stop-loss triggers and accumulated daily losses
func (s *Server) handleRiskState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.riskState.View())
}

// writeCycleError maps rebalance cycle failures to HTTP statuses
func (s *Server) writeCycleError(w http.ResponseWriter, err error) {
	if errors.Is(err, rebalancing.ErrInsufficientFunds) {
		s.writeError(w, http.StatusConflict, err.Error())
		return
	}

	s.log.Error().Err(err).Msg("Rebalance cycle failed")
	s.writeError(w, http.StatusBadGateway, err.Error())
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
