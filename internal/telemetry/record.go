// Package telemetry builds the per-cycle telemetry record and transmits it
// to the collector over the primary and emergency HTTP channels.
package telemetry

import (
	"github.com/google/uuid"

	"github.com/tphakala/ecosentinel-go/internal/assess"
	"github.com/tphakala/ecosentinel-go/internal/audio"
	"github.com/tphakala/ecosentinel-go/internal/classify"
	"github.com/tphakala/ecosentinel-go/internal/conf"
	"github.com/tphakala/ecosentinel-go/internal/sensor"
)

// Threat levels reported in the conservation block.
const (
	ThreatLevelHigh = "high"
	ThreatLevelLow  = "low"
)

// Location describes the deployment site.
type Location struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Altitude         float64 `json:"altitude"`
	Ecosystem        string  `json:"ecosystem"`
	ProtectionStatus string  `json:"protection_status"`
}

// Environmental carries the scalar readings. Unavailable readings are null,
// never zero.
type Environmental struct {
	TemperatureC    *float64 `json:"temperature_c"`
	HumidityPct     *float64 `json:"humidity_pct"`
	Vibration       int      `json:"vibration"`
	AirQualityIndex int      `json:"air_quality_index"`
}

// Audio carries the acoustic features of the cycle.
type Audio struct {
	Level               float64 `json:"level"`
	DominantFrequencyHz float64 `json:"dominant_frequency_hz"`
	Pattern             string  `json:"pattern"`
	BaselineNoise       float64 `json:"baseline_noise"`
	BaselineDeviation   float64 `json:"baseline_deviation"`
	WildlifeDetected    bool    `json:"wildlife_detected"`
}

// Conservation carries the assessment summary.
type Conservation struct {
	ThreatLevel       string   `json:"threat_level"`
	ThreatReasons     []string `json:"threat_reasons,omitempty"`
	BiodiversityScore float64  `json:"biodiversity_score"`
	EcosystemHealth   string   `json:"ecosystem_health"`
}

// Record is one cycle's telemetry payload.
type Record struct {
	DeviceID      string        `json:"device_id"`
	RecordID      string        `json:"record_id"`
	TimestampMs   int64         `json:"timestamp_ms"`
	Location      Location      `json:"location"`
	Environmental Environmental `json:"environmental"`
	Audio         Audio         `json:"audio"`
	Conservation  Conservation  `json:"conservation"`
	Emergency     bool          `json:"emergency"`
	Advisories    []string      `json:"advisories"`
	RawSamples    []int16       `json:"raw_samples"`
}

// CycleInput collects everything one cycle produced for record construction.
type CycleInput struct {
	Frame     sensor.Frame
	Features  audio.Features
	Pattern   classify.Label
	Verdict   assess.Verdict
	Baseline  float64
	Emergency bool
	Samples   []int16
}

// NewRecord builds a record with a fresh uuid record ID. Raw samples are
// truncated to the configured limit and copied so the caller's buffer can be
// reused next cycle.
func NewRecord(node *conf.NodeSettings, in *CycleInput) *Record {
	threatLevel := ThreatLevelLow
	if in.Verdict.Threat {
		threatLevel = ThreatLevelHigh
	}

	// deviation is the difference above the ambient reference; with an
	// uncalibrated (zero) baseline the full level is the deviation
	deviation := in.Features.Level - in.Baseline

	limit := conf.RawSampleLimit
	if len(in.Samples) < limit {
		limit = len(in.Samples)
	}
	raw := make([]int16, limit)
	copy(raw, in.Samples[:limit])

	return &Record{
		DeviceID:    node.DeviceID,
		RecordID:    uuid.New().String(),
		TimestampMs: in.Frame.TimestampMs,
		Location: Location{
			Latitude:         node.Latitude,
			Longitude:        node.Longitude,
			Altitude:         node.Altitude,
			Ecosystem:        node.Ecosystem,
			ProtectionStatus: node.ProtectionStatus,
		},
		Environmental: Environmental{
			TemperatureC:    optional(in.Frame.Temperature),
			HumidityPct:     optional(in.Frame.Humidity),
			Vibration:       in.Frame.Vibration,
			AirQualityIndex: assess.AirQualityIndex(in.Frame),
		},
		Audio: Audio{
			Level:               in.Features.Level,
			DominantFrequencyHz: in.Features.DominantFrequency,
			Pattern:             string(in.Pattern),
			BaselineNoise:       in.Baseline,
			BaselineDeviation:   deviation,
			WildlifeDetected:    in.Verdict.WildlifeDetected,
		},
		Conservation: Conservation{
			ThreatLevel:       threatLevel,
			ThreatReasons:     in.Verdict.Reasons,
			BiodiversityScore: in.Verdict.BiodiversityScore,
			EcosystemHealth:   in.Verdict.EcosystemHealth,
		},
		Emergency:  in.Emergency,
		Advisories: assess.Advisories(in.Frame),
		RawSamples: raw,
	}
}

func optional(r sensor.Reading) *float64 {
	if !r.Valid {
		return nil
	}
	v := r.Value
	return &v
}
