package risk

import (
	"sync"
	"time"
)

// DayKeyFormat is the calendar-date key used for daily loss accumulation.
const DayKeyFormat = "2006-01-02"

// State is the long-lived mutable risk history. It must outlive a single
// rebalance cycle: cooldowns and daily caps are meaningless otherwise.
// All access is serialized through the mutex so a manual trigger racing a
// scheduled cycle cannot corrupt the history.
type State struct {
	mu           sync.Mutex
	lastTriggers map[string]time.Time          // symbol -> last stop-loss trigger
	dailyLosses  map[string]map[string]float64 // day -> symbol -> accumulated loss fraction
	repo         *Repository                   // Optional write-through persistence
}

// NewState creates an empty risk state.
func NewState() *State {
	return &State{
		lastTriggers: make(map[string]time.Time),
		dailyLosses:  make(map[string]map[string]float64),
	}
}

// NewStateFromHistory creates a state pre-populated with arbitrary history.
// Used by tests and by restore-at-startup.
func NewStateFromHistory(triggers map[string]time.Time, dailyLosses map[string]map[string]float64) *State {
	s := NewState()
	for sym, t := range triggers {
		s.lastTriggers[sym] = t
	}
	for day, losses := range dailyLosses {
		m := make(map[string]float64, len(losses))
		for sym, loss := range losses {
			m[sym] = loss
		}
		s.dailyLosses[day] = m
	}
	return s
}

// AttachRepository enables write-through persistence of every mutation.
func (s *State) AttachRepository(repo *Repository) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repo = repo
}

// LastTrigger returns the last stop-loss trigger time for a symbol.
// The zero time means the symbol never triggered.
func (s *State) LastTrigger(symbol string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTriggers[symbol]
}

// DailyLoss returns the accumulated loss fraction for (day, symbol).
func (s *State) DailyLoss(day time.Time, symbol string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	losses, ok := s.dailyLosses[day.Format(DayKeyFormat)]
	if !ok {
		return 0
	}
	return losses[symbol]
}

// RecordTrigger records a stop-loss trigger: the trigger timestamp and the
// loss fraction added to the day's accumulator. The accumulator is only
// ever compared against the daily cap, never clamped to it.
func (s *State) RecordTrigger(symbol string, at time.Time, lossFraction float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastTriggers[symbol] = at

	day := at.Format(DayKeyFormat)
	if s.dailyLosses[day] == nil {
		s.dailyLosses[day] = make(map[string]float64)
	}
	s.dailyLosses[day][symbol] += lossFraction

	if s.repo != nil {
		// Persistence failures must not block the risk decision; the
		// in-memory state is authoritative for the running process.
		_ = s.repo.SaveTrigger(symbol, at)
		_ = s.repo.SaveDailyLoss(day, symbol, s.dailyLosses[day][symbol])
	}
}

// Snapshot is a read-only view of the risk state for reporting.
type Snapshot struct {
	LastTriggers map[string]time.Time          `json:"last_triggers"`
	DailyLosses  map[string]map[string]float64 `json:"daily_losses"`
}

// View returns a deep copy of the current state.
func (s *State) View() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		LastTriggers: make(map[string]time.Time, len(s.lastTriggers)),
		DailyLosses:  make(map[string]map[string]float64, len(s.dailyLosses)),
	}
	for sym, t := range s.lastTriggers {
		snap.LastTriggers[sym] = t
	}
	for day, losses := range s.dailyLosses {
		m := make(map[string]float64, len(losses))
		for sym, loss := range losses {
			m[sym] = loss
		}
		snap.DailyLosses[day] = m
	}
	return snap
}
