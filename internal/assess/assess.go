// Package assess evaluates each cycle's readings against the fixed policy
// thresholds and produces the threat verdict and ecosystem summary.
package assess

import (
	"github.com/tphakala/ecosentinel-go/internal/audio"
	"github.com/tphakala/ecosentinel-go/internal/nodestate"
	"github.com/tphakala/ecosentinel-go/internal/sensor"
)

// Threat reason strings reported to the collector.
const (
	ReasonExtremeTemperature = "extreme temperature"
	ReasonExtremeHumidity    = "extreme humidity"
	ReasonAbnormalNoise      = "abnormal noise"
)

// Ecosystem health labels, evaluated in priority order.
const (
	HealthExcellent = "excellent"
	HealthGood      = "good"
	HealthStressed  = "stressed"
)

// Policy thresholds. Fixed by the monitoring policy, not configuration.
const (
	tempMinC           = -10.0
	tempMaxC           = 40.0
	humidityMinPct     = 20.0
	humidityMaxPct     = 90.0
	noiseThreatRatio   = 5.0
	wildlifeFreqLowHz  = 1000.0
	wildlifeFreqHighHz = 10000.0
	wildlifeLevelRatio = 1.5
)

// Verdict is the per-cycle result of threat assessment.
type Verdict struct {
	Threat            bool
	Reasons           []string
	WildlifeDetected  bool
	BiodiversityScore float64
	EcosystemHealth   string
}

// Assessor evaluates readings against policy thresholds. The only side
// effect is the wildlife counter increment in the shared node state, at most
// once per cycle.
type Assessor struct {
	state *nodestate.State
}

// New creates an Assessor backed by the shared node state.
func New(state *nodestate.State) *Assessor {
	return &Assessor{state: state}
}

// Assess evaluates one cycle. Invalid scalar readings are excluded from
// every threshold check, never treated as zero. The baseline argument must
// be the value already updated for this cycle.
func (a *Assessor) Assess(frame sensor.Frame, features audio.Features, baseline float64) Verdict {
	var v Verdict

	// Wildlife detection increments the lifetime counter.
	if features.DominantFrequency > wildlifeFreqLowHz &&
		features.DominantFrequency < wildlifeFreqHighHz &&
		features.Level > baseline*wildlifeLevelRatio {
		v.WildlifeDetected = true
		a.state.IncrementWildlife()
	}
	detections := a.state.WildlifeDetections()

	// Threat checks are independent; any one marks the cycle a threat.
	if frame.Temperature.Valid && (frame.Temperature.Value < tempMinC || frame.Temperature.Value > tempMaxC) {
		v.Reasons = append(v.Reasons, ReasonExtremeTemperature)
	}
	if features.Level > baseline*noiseThreatRatio {
		v.Reasons = append(v.Reasons, ReasonAbnormalNoise)
	}
	if frame.Humidity.Valid && (frame.Humidity.Value < humidityMinPct || frame.Humidity.Value > humidityMaxPct) {
		v.Reasons = append(v.Reasons, ReasonExtremeHumidity)
	}
	v.Threat = len(v.Reasons) > 0

	v.BiodiversityScore = biodiversityScore(detections)
	v.EcosystemHealth = ecosystemHealth(frame, detections)
	return v
}

// biodiversityScore accumulates over the node's lifetime until an explicit
// reset: base 0.5 plus 0.1 per detection, clamped to [0,1]. Reaches exactly
// 1.0 at detection count 5 and saturates there.
func biodiversityScore(detections int64) float64 {
	score := 0.5 + float64(detections)*0.1
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// ecosystemHealth evaluates the labels in priority order. A reading that is
// unavailable cannot satisfy a band, so persistent sensor failure degrades
// the label to stressed rather than guessing.
func ecosystemHealth(frame sensor.Frame, detections int64) string {
	t, h := frame.Temperature, frame.Humidity
	if t.Valid && h.Valid &&
		t.Value > 15 && t.Value < 30 &&
		h.Value > 40 && h.Value < 70 &&
		detections > 0 {
		return HealthExcellent
	}
	if t.Valid && h.Valid &&
		t.Value > 10 && t.Value < 35 &&
		h.Value > 30 && h.Value < 80 {
		return HealthGood
	}
	return HealthStressed
}

// AirQualityIndex derives the coarse AQI reported in the environmental
// block: base 50, +20 for temperature above 35, +15 for humidity above 80,
// +10 for humidity below 30, capped at 500. Invalid readings contribute
// nothing.
func AirQualityIndex(frame sensor.Frame) int {
	aqi := 50
	if frame.Temperature.Valid && frame.Temperature.Value > 35 {
		aqi += 20
	}
	if frame.Humidity.Valid {
		if frame.Humidity.Value > 80 {
			aqi += 15
		}
		if frame.Humidity.Value < 30 {
			aqi += 10
		}
	}
	if aqi > 500 {
		aqi = 500
	}
	return aqi
}

// Advisories returns human-readable site recommendations for the current
// readings. When nothing is triggered a single all-clear entry is returned.
func Advisories(frame sensor.Frame) []string {
	var out []string
	if frame.Temperature.Valid {
		if frame.Temperature.Value > 35 {
			out = append(out, "Temperature is elevated - consider shade structures or cooling measures")
		}
		if frame.Temperature.Value < 5 {
			out = append(out, "Temperature is low - monitor for frost damage and wildlife stress")
		}
	}
	if frame.Humidity.Valid {
		if frame.Humidity.Value < 30 {
			out = append(out, "Low humidity detected - increase moisture retention measures")
		}
		if frame.Humidity.Value > 85 {
			out = append(out, "High humidity may promote fungal growth - ensure proper ventilation")
		}
	}
	if len(out) == 0 {
		out = append(out, "Environmental conditions are within optimal ranges - maintain current practices")
	}
	return out
}
