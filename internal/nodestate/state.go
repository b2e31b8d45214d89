// Package nodestate owns the mutable state shared between the sampling
// pipeline and the command channel: the adaptive noise baseline, the wildlife
// detection counter and the emergency flag. All access goes through one
// mutex so a reset is atomic across all three values.
package nodestate

import (
	"sync"
	"time"
)

// Snapshot is a consistent read of the node state, used by the command
// channel STATUS reply and by telemetry record construction.
type Snapshot struct {
	BaselineNoise      float64
	WildlifeDetections int64
	EmergencyMode      bool
	Uptime             time.Duration
}

// State holds the process-wide mutable counters of the node.
type State struct {
	mu                 sync.Mutex
	baselineNoise      float64 // 0 means uncalibrated
	wildlifeDetections int64
	emergencyMode      bool
	startedAt          time.Time
}

// New returns a fresh State with an uncalibrated baseline.
func New() *State {
	return &State{startedAt: time.Now()}
}

// Baseline returns the current ambient noise baseline. Zero means the
// baseline has not been seeded yet.
func (s *State) Baseline() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baselineNoise
}

// UpdateBaseline applies the exponential smoothing rule to the baseline.
// An uncalibrated baseline is seeded with the first nonzero level; after
// that the baseline is b*(1-smoothing) + level*smoothing. The updated value
// is returned so the caller reads the baseline that already reflects the
// current cycle's level.
func (s *State) UpdateBaseline(level, smoothing float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.baselineNoise == 0 {
		if level > 0 {
			s.baselineNoise = level
		}
		return s.baselineNoise
	}
	s.baselineNoise = s.baselineNoise*(1-smoothing) + level*smoothing
	if s.baselineNoise < 0 {
		s.baselineNoise = 0
	}
	return s.baselineNoise
}

// IncrementWildlife adds one wildlife detection and returns the new count.
func (s *State) IncrementWildlife() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wildlifeDetections++
	return s.wildlifeDetections
}

// WildlifeDetections returns the lifetime detection count since the last
// reset.
func (s *State) WildlifeDetections() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wildlifeDetections
}

// SetEmergency sets the emergency flag and reports whether the value
// changed, so entry actions run only on the NORMAL to EMERGENCY transition.
func (s *State) SetEmergency(active bool) (changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed = s.emergencyMode != active
	s.emergencyMode = active
	return changed
}

// EmergencyActive returns the current emergency flag.
func (s *State) EmergencyActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emergencyMode
}

// Reset clears the wildlife counter, the emergency flag and the baseline in
// one atomic step, returning the baseline to its uncalibrated state.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wildlifeDetections = 0
	s.emergencyMode = false
	s.baselineNoise = 0
}

// Snapshot returns a consistent view of all counters.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		BaselineNoise:      s.baselineNoise,
		WildlifeDetections: s.wildlifeDetections,
		EmergencyMode:      s.emergencyMode,
		Uptime:             time.Since(s.startedAt),
	}
}
