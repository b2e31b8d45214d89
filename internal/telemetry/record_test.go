package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/ecosentinel-go/internal/assess"
	"github.com/tphakala/ecosentinel-go/internal/audio"
	"github.com/tphakala/ecosentinel-go/internal/classify"
	"github.com/tphakala/ecosentinel-go/internal/conf"
	"github.com/tphakala/ecosentinel-go/internal/sensor"
)

func testNode() *conf.NodeSettings {
	return &conf.NodeSettings{
		DeviceID:         "eco-node-01",
		Latitude:         61.4978,
		Longitude:        23.7610,
		Altitude:         120,
		Ecosystem:        "temperate-forest",
		ProtectionStatus: "protected",
	}
}

func testInput() *CycleInput {
	samples := make([]int16, 1024)
	for i := range samples {
		samples[i] = int16(i)
	}
	return &CycleInput{
		Frame: sensor.Frame{
			Temperature: sensor.Value(22),
			Humidity:    sensor.Value(55),
			Vibration:   3,
			TimestampMs: 1700000000000,
		},
		Features: audio.Features{Level: 150, DominantFrequency: 3000},
		Pattern:  classify.BirdSong,
		Verdict: assess.Verdict{
			Threat:            false,
			WildlifeDetected:  true,
			BiodiversityScore: 0.6,
			EcosystemHealth:   assess.HealthExcellent,
		},
		Baseline: 100,
		Samples:  samples,
	}
}

func TestNewRecordFields(t *testing.T) {
	r := NewRecord(testNode(), testInput())

	assert.Equal(t, "eco-node-01", r.DeviceID)
	assert.NotEmpty(t, r.RecordID)
	assert.Equal(t, int64(1700000000000), r.TimestampMs)
	assert.Equal(t, "temperate-forest", r.Location.Ecosystem)
	assert.Equal(t, "bird_song", r.Audio.Pattern)
	assert.Equal(t, ThreatLevelLow, r.Conservation.ThreatLevel)
	assert.InDelta(t, 50.0, r.Audio.BaselineDeviation, 1e-9, "deviation is level minus baseline")
	assert.Equal(t, 50, r.Environmental.AirQualityIndex)
	assert.Equal(t, []string{"Environmental conditions are within optimal ranges - maintain current practices"}, r.Advisories)
}

func TestNewRecordTruncatesRawSamples(t *testing.T) {
	r := NewRecord(testNode(), testInput())
	assert.Len(t, r.RawSamples, conf.RawSampleLimit)
	assert.Equal(t, int16(0), r.RawSamples[0])
	assert.Equal(t, int16(conf.RawSampleLimit-1), r.RawSamples[conf.RawSampleLimit-1])

	short := testInput()
	short.Samples = []int16{1, 2, 3}
	r = NewRecord(testNode(), short)
	assert.Equal(t, []int16{1, 2, 3}, r.RawSamples)
}

func TestNewRecordThreatLevelHigh(t *testing.T) {
	in := testInput()
	in.Verdict.Threat = true
	in.Verdict.Reasons = []string{assess.ReasonAbnormalNoise}

	r := NewRecord(testNode(), in)
	assert.Equal(t, ThreatLevelHigh, r.Conservation.ThreatLevel)
	assert.Equal(t, []string{assess.ReasonAbnormalNoise}, r.Conservation.ThreatReasons)
}

func TestNewRecordUnavailableReadingsAreNull(t *testing.T) {
	in := testInput()
	in.Frame.Temperature = sensor.Unavailable()
	in.Frame.Humidity = sensor.Unavailable()

	r := NewRecord(testNode(), in)
	assert.Nil(t, r.Environmental.TemperatureC)
	assert.Nil(t, r.Environmental.HumidityPct)
}

func TestNewRecordUncalibratedBaseline(t *testing.T) {
	in := testInput()
	in.Baseline = 0

	// with no ambient reference yet, the whole level is the deviation
	r := NewRecord(testNode(), in)
	assert.InDelta(t, in.Features.Level, r.Audio.BaselineDeviation, 1e-9)
}
