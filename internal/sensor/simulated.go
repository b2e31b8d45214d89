// simulated.go: synthesized sensor source used when no hardware is attached.
package sensor

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/tphakala/ecosentinel-go/internal/conf"
)

// SimulatedSource synthesizes realistic sensor frames and audio buffers for
// a configured scenario. Scenario value ranges follow the reference test
// simulator: "normal" follows a diurnal temperature curve, "optimal" stays
// inside the comfort band, "stress" and "extreme" push readings outside the
// policy thresholds.
type SimulatedSource struct {
	mu           sync.Mutex
	rng          *rand.Rand
	scenario     string
	sampleRate   int
	bufferLength int
}

// NewSimulatedSource creates a simulated source for the configured scenario.
// A zero seed selects a time-based seed.
func NewSimulatedSource(settings *conf.Settings) *SimulatedSource {
	seed := settings.Sensor.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SimulatedSource{
		rng:          rand.New(rand.NewSource(seed)),
		scenario:     settings.Sensor.Scenario,
		sampleRate:   settings.Sensor.SampleRate,
		bufferLength: settings.Sensor.BufferLength,
	}
}

// Sample synthesizes one frame and one audio buffer.
func (s *SimulatedSource) Sample(ctx context.Context) (Frame, []int16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Frame{}, nil, err
	}

	var temperature, humidity, level float64
	var vibration int

	switch s.scenario {
	case "optimal":
		temperature = 22.0 + s.rng.Float64()*2 - 1
		humidity = 65.0 + s.rng.Float64()*10 - 5
		level = 100 + s.rng.Float64()*200
		vibration = 5 + s.rng.Intn(10)
	case "stress":
		temperature = pick(s.rng, 45.0, -5.0) + s.rng.Float64()*4 - 2
		humidity = pick(s.rng, 15.0, 95.0) + s.rng.Float64()*10 - 5
		level = 800 + s.rng.Float64()*200
		vibration = 150 + s.rng.Intn(50)
	case "extreme":
		temperature = pick(s.rng, 50.0, -15.0)
		humidity = pick(s.rng, 5.0, 98.0)
		level = 900 + s.rng.Float64()*100
		vibration = 180 + s.rng.Intn(20)
	default: // normal
		hour := float64(time.Now().Hour())
		temperature = 20 + 8*math.Sin((hour-6)*math.Pi/12) + s.rng.Float64()*6 - 3
		humidity = clampF(70-(temperature-20)*1.5+s.rng.Float64()*30-15, 10, 95)
		level = 50 + s.rng.Float64()*550
		vibration = 5 + s.rng.Intn(45)
		if s.rng.Float64() < 0.1 {
			vibration += 20 + s.rng.Intn(80)
		}
	}

	frame := Frame{
		Temperature: Value(temperature),
		Humidity:    Value(clampF(humidity, 0, 100)),
		Vibration:   vibration,
		TimestampMs: MonotonicMs(),
	}

	return frame, s.synthesizeAudio(level), nil
}

// Close implements Source.
func (s *SimulatedSource) Close() error {
	return nil
}

// synthesizeAudio fills a buffer with noise around the target mean absolute
// level and occasionally plants a dominant peak in a wildlife frequency
// band so the classifier sees plausible patterns.
func (s *SimulatedSource) synthesizeAudio(level float64) []int16 {
	buf := make([]int16, s.bufferLength)
	amp := level * 2 // uniform noise in [-amp, amp] has mean |x| of amp/2
	if amp > 32000 {
		amp = 32000
	}
	for i := range buf {
		buf[i] = int16(s.rng.Float64()*2*amp - amp)
	}

	// roughly one cycle in three carries a dominant call
	if s.rng.Float64() < 0.35 {
		var freq float64
		if s.rng.Float64() < 0.5 {
			freq = 2500 + s.rng.Float64()*4000 // songbird band
		} else {
			freq = 200 + s.rng.Float64()*600 // mammal band
		}
		idx := int(freq * 2 * float64(s.bufferLength) / float64(s.sampleRate))
		if idx >= 0 && idx < s.bufferLength {
			peak := amp*4 + 1000
			if peak > 32767 {
				peak = 32767
			}
			buf[idx] = int16(peak)
		}
	}

	return buf
}

func pick(rng *rand.Rand, a, b float64) float64 {
	if rng.Float64() < 0.5 {
		return a
	}
	return b
}

func clampF(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
