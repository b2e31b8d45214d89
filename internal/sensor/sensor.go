// Package sensor acquires per-cycle sensor frames and audio buffers from
// the underlying hardware, or synthesizes them when running simulated.
package sensor

import (
	"context"
	"time"
)

// Reading is a scalar sensor value with an availability flag. A failed
// hardware read yields an invalid Reading which downstream threshold logic
// must exclude, never treat as zero.
type Reading struct {
	Value float64
	Valid bool
}

// Value returns a valid reading.
func Value(v float64) Reading {
	return Reading{Value: v, Valid: true}
}

// Unavailable returns an invalid reading for a failed hardware read.
func Unavailable() Reading {
	return Reading{}
}

// Frame is one sampling cycle's scalar readings. Immutable after creation,
// owned by the pipeline for the duration of one cycle.
type Frame struct {
	Temperature Reading // degrees Celsius
	Humidity    Reading // percent relative humidity
	Vibration   int     // raw amplitude
	TimestampMs int64   // monotonic milliseconds since node start
}

// Source produces one Frame and one fixed-length audio buffer per
// invocation. Sample must not block longer than the configured read timeout;
// scalar read failures are reported in the Frame, not as an error. The audio
// buffer is consumed and discarded within the cycle.
type Source interface {
	Sample(ctx context.Context) (Frame, []int16, error)
	Close() error
}

var nodeStart = time.Now()

// MonotonicMs returns milliseconds elapsed since node start.
func MonotonicMs() int64 {
	return time.Since(nodeStart).Milliseconds()
}
