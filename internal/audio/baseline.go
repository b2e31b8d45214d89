package audio

import (
	"github.com/tphakala/ecosentinel-go/internal/nodestate"
)

// BaselineTracker maintains the exponentially-weighted ambient noise
// estimate in the shared node state. It must run strictly before the
// classifier and assessor consume the baseline, so the value used for
// decisions in a cycle already reflects that cycle's own level.
type BaselineTracker struct {
	state     *nodestate.State
	smoothing float64
}

// NewBaselineTracker creates a tracker with the given smoothing factor, the
// weight of the newest level. The configured default is 0.01.
func NewBaselineTracker(state *nodestate.State, smoothing float64) *BaselineTracker {
	return &BaselineTracker{state: state, smoothing: smoothing}
}

// Update feeds one cycle's amplitude level into the baseline and returns the
// updated baseline for use within the same cycle. An uncalibrated baseline
// is seeded with the first nonzero level.
func (t *BaselineTracker) Update(level float64) float64 {
	return t.state.UpdateBaseline(level, t.smoothing)
}
