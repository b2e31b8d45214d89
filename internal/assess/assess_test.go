package assess

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/ecosentinel-go/internal/audio"
	"github.com/tphakala/ecosentinel-go/internal/nodestate"
	"github.com/tphakala/ecosentinel-go/internal/sensor"
)

func frame(temp, humidity float64) sensor.Frame {
	return sensor.Frame{
		Temperature: sensor.Value(temp),
		Humidity:    sensor.Value(humidity),
	}
}

func TestExtremeTemperatureIsThreat(t *testing.T) {
	a := New(nodestate.New())
	baseline := 100.0
	v := a.Assess(frame(45, 50), audio.Features{Level: baseline}, baseline)

	assert.True(t, v.Threat)
	assert.Contains(t, v.Reasons, ReasonExtremeTemperature)
	assert.NotContains(t, v.Reasons, ReasonAbnormalNoise)
	assert.Equal(t, HealthStressed, v.EcosystemHealth)
}

func TestColdAndHumidityThreats(t *testing.T) {
	a := New(nodestate.New())
	v := a.Assess(frame(-15, 95), audio.Features{}, 100)
	assert.True(t, v.Threat)
	assert.Contains(t, v.Reasons, ReasonExtremeTemperature)
	assert.Contains(t, v.Reasons, ReasonExtremeHumidity)
}

func TestAbnormalNoiseThreat(t *testing.T) {
	a := New(nodestate.New())
	v := a.Assess(frame(22, 55), audio.Features{Level: 501}, 100)
	assert.True(t, v.Threat)
	assert.Equal(t, []string{ReasonAbnormalNoise}, v.Reasons)
}

func TestNoThreatInsideBands(t *testing.T) {
	a := New(nodestate.New())
	v := a.Assess(frame(22, 55), audio.Features{Level: 100}, 100)
	assert.False(t, v.Threat)
	assert.Empty(t, v.Reasons)
}

func TestInvalidReadingsAreExcluded(t *testing.T) {
	a := New(nodestate.New())
	f := sensor.Frame{
		Temperature: sensor.Unavailable(),
		Humidity:    sensor.Unavailable(),
	}
	v := a.Assess(f, audio.Features{Level: 100}, 100)
	assert.False(t, v.Threat, "unavailable readings must not trip thresholds")
	assert.Equal(t, HealthStressed, v.EcosystemHealth)
}

func TestWildlifeDetectionIncrementsCounterOncePerCycle(t *testing.T) {
	state := nodestate.New()
	a := New(state)

	features := audio.Features{Level: 200, DominantFrequency: 3000}
	v := a.Assess(frame(22, 55), features, 100)
	assert.True(t, v.WildlifeDetected)
	assert.Equal(t, int64(1), state.WildlifeDetections())

	// frequency outside the wildlife band: no increment
	v = a.Assess(frame(22, 55), audio.Features{Level: 200, DominantFrequency: 500}, 100)
	assert.False(t, v.WildlifeDetected)
	assert.Equal(t, int64(1), state.WildlifeDetections())

	// level too close to baseline: no increment
	v = a.Assess(frame(22, 55), audio.Features{Level: 120, DominantFrequency: 3000}, 100)
	assert.False(t, v.WildlifeDetected)
	assert.Equal(t, int64(1), state.WildlifeDetections())
}

func TestEcosystemHealthExcellentNeedsWildlife(t *testing.T) {
	state := nodestate.New()
	a := New(state)

	v := a.Assess(frame(22, 55), audio.Features{Level: 100}, 100)
	assert.Equal(t, HealthGood, v.EcosystemHealth)

	state.IncrementWildlife()
	v = a.Assess(frame(22, 55), audio.Features{Level: 100}, 100)
	assert.Equal(t, HealthExcellent, v.EcosystemHealth)
}

func TestEcosystemHealthPriorityOrder(t *testing.T) {
	state := nodestate.New()
	state.IncrementWildlife()
	a := New(state)

	// inside the good band but outside the excellent band
	v := a.Assess(frame(12, 75), audio.Features{Level: 100}, 100)
	assert.Equal(t, HealthGood, v.EcosystemHealth)

	v = a.Assess(frame(5, 95), audio.Features{Level: 100}, 100)
	assert.Equal(t, HealthStressed, v.EcosystemHealth)
}

func TestBiodiversityScoreSaturatesAtFiveDetections(t *testing.T) {
	state := nodestate.New()
	a := New(state)

	v := a.Assess(frame(22, 55), audio.Features{Level: 100}, 100)
	assert.InDelta(t, 0.5, v.BiodiversityScore, 1e-9)

	for i := 1; i <= 10; i++ {
		state.Reset()
		for range i {
			state.IncrementWildlife()
		}
		v = a.Assess(frame(22, 55), audio.Features{Level: 100}, 100)
		want := 0.5 + 0.1*float64(i)
		if want > 1.0 {
			want = 1.0
		}
		assert.InDelta(t, want, v.BiodiversityScore, 1e-9, "detections=%d", i)
	}

	// exactly five detections reach the full score
	state.Reset()
	for range 5 {
		state.IncrementWildlife()
	}
	v = a.Assess(frame(22, 55), audio.Features{Level: 100}, 100)
	assert.Equal(t, 1.0, v.BiodiversityScore)

	// the score accumulates over the node lifetime, not per cycle; this is
	// intentional and only an explicit reset clears it
	state.Reset()
	v = a.Assess(frame(22, 55), audio.Features{Level: 100}, 100)
	assert.InDelta(t, 0.5, v.BiodiversityScore, 1e-9)
}

func TestAirQualityIndex(t *testing.T) {
	assert.Equal(t, 50, AirQualityIndex(frame(22, 55)))
	assert.Equal(t, 70, AirQualityIndex(frame(36, 55)))
	assert.Equal(t, 65, AirQualityIndex(frame(22, 85)))
	assert.Equal(t, 60, AirQualityIndex(frame(22, 25)))
	assert.Equal(t, 80, AirQualityIndex(frame(40, 85)))

	unavailable := sensor.Frame{Temperature: sensor.Unavailable(), Humidity: sensor.Unavailable()}
	assert.Equal(t, 50, AirQualityIndex(unavailable))
}

func TestAdvisories(t *testing.T) {
	assert.Equal(t,
		[]string{"Environmental conditions are within optimal ranges - maintain current practices"},
		Advisories(frame(22, 55)))

	out := Advisories(frame(40, 90))
	assert.Len(t, out, 2)

	out = Advisories(frame(2, 20))
	assert.Len(t, out, 2)
}
