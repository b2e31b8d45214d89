// Package audio derives per-cycle features from a raw audio buffer and
// maintains the adaptive ambient noise baseline.
package audio

// HistogramBins is the number of equal-width bins in the energy histogram.
const HistogramBins = 10

// Features are the derived audio measurements for one cycle. Immutable.
type Features struct {
	// Level is the mean of absolute sample values over the buffer.
	Level float64
	// DominantFrequency is a coarse peak-index estimate in Hz. It is NOT a
	// spectral transform: the index of the single largest-magnitude sample
	// is mapped linearly via index*sampleRate/(2*N). The approximation
	// trades accuracy for constrained-device compute, and all downstream
	// thresholds are calibrated against its output scale.
	DominantFrequency float64
	// EnergyHistogram accumulates the sum of absolute sample values in ten
	// equal-width bins over the buffer's index range. Not consumed by the
	// current classifier; computed for parity with the collector format.
	EnergyHistogram [HistogramBins]float64
}

// ExtractFeatures computes the features of one audio buffer. Pure function
// of the buffer and the sample rate.
func ExtractFeatures(buf []int16, sampleRate int) Features {
	var f Features
	n := len(buf)
	if n == 0 {
		return f
	}

	var sum float64
	maxAbs := -1.0
	maxIdx := 0
	binWidth := (n + HistogramBins - 1) / HistogramBins

	for i, s := range buf {
		a := float64(s)
		if a < 0 {
			a = -a
		}
		sum += a
		if a > maxAbs {
			maxAbs = a
			maxIdx = i
		}
		bin := i / binWidth
		if bin >= HistogramBins {
			bin = HistogramBins - 1
		}
		f.EnergyHistogram[bin] += a
	}

	f.Level = sum / float64(n)
	f.DominantFrequency = float64(maxIdx) * float64(sampleRate) / (2 * float64(n))
	return f
}
