// Package classify maps one cycle's audio features and baseline deviation
// into a closed set of pattern labels.
package classify

import (
	"github.com/tphakala/ecosentinel-go/internal/audio"
)

// Label is a coarse classification of one audio cycle's dominant
// characteristics.
type Label string

const (
	BirdSong    Label = "bird_song"
	MammalCall  Label = "mammal_call"
	Disturbance Label = "disturbance"
	Ambient     Label = "ambient"
)

// Frequency bands and amplitude ratios of the decision table. Calibrated
// against the peak-index frequency proxy, not a spectral transform.
const (
	birdBandLowHz    = 2000.0
	birdBandHighHz   = 8000.0
	mammalBandLowHz  = 100.0
	mammalBandHighHz = 1000.0
	disturbanceRatio = 3.0
)

// Classify evaluates the decision table in fixed order, first match wins:
//
//	1. dominant frequency in (2000, 8000) Hz -> bird_song
//	2. dominant frequency in (100, 1000) Hz  -> mammal_call
//	3. level > baseline*3                    -> disturbance
//	4. otherwise                             -> ambient
//
// The priority order is part of the contract: a 3000 Hz cycle is bird_song
// even when its amplitude would also qualify as a disturbance.
func Classify(features audio.Features, baseline float64) Label {
	freq := features.DominantFrequency

	switch {
	case freq > birdBandLowHz && freq < birdBandHighHz:
		return BirdSong
	case freq > mammalBandLowHz && freq < mammalBandHighHz:
		return MammalCall
	case features.Level > baseline*disturbanceRatio:
		return Disturbance
	default:
		return Ambient
	}
}
