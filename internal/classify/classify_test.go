package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/ecosentinel-go/internal/audio"
)

func feat(level, freq float64) audio.Features {
	return audio.Features{Level: level, DominantFrequency: freq}
}

func TestClassifyDecisionTable(t *testing.T) {
	tests := []struct {
		name     string
		features audio.Features
		baseline float64
		want     Label
	}{
		{"songbird band", feat(50, 3000), 100, BirdSong},
		{"mammal band", feat(50, 500), 100, MammalCall},
		{"loud low rumble", feat(500, 50), 100, Disturbance},
		{"quiet low rumble", feat(120, 50), 100, Ambient},
		{"band edges are exclusive low", feat(50, 2000), 100, Ambient},
		{"band edges are exclusive high", feat(50, 8000), 100, Ambient},
		{"mammal edge exclusive", feat(50, 1000), 100, Ambient},
		{"very high frequency", feat(50, 12000), 100, Ambient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.features, tt.baseline))
		})
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// 3000 Hz always wins over the disturbance rule even when the
	// amplitude exceeds baseline*3
	got := Classify(feat(10000, 3000), 100)
	assert.Equal(t, BirdSong, got)

	// mammal band beats disturbance too
	got = Classify(feat(10000, 500), 100)
	assert.Equal(t, MammalCall, got)
}

func TestClassifyUncalibratedBaseline(t *testing.T) {
	// with a zero baseline any nonzero level is a disturbance unless a
	// wildlife band matched first
	assert.Equal(t, Disturbance, Classify(feat(1, 0), 0))
	assert.Equal(t, Ambient, Classify(feat(0, 0), 0))
}
