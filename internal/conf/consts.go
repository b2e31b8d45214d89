// conf/consts.go hard-coded constants of the node
package conf

const (
	// SampleRate is the default audio sample rate in Hz.
	SampleRate = 16000

	// NumChannels is the number of audio channels captured.
	NumChannels = 1

	// BitDepth is the audio bit depth.
	BitDepth = 16

	// BufferLength is the default number of samples per audio buffer.
	BufferLength = 1024

	// DefaultBaselineSmoothing is the weight given to the newest amplitude
	// level when updating the ambient noise baseline. The retained weight is
	// 1 - DefaultBaselineSmoothing, which yields a time constant of roughly
	// 100 cycles.
	DefaultBaselineSmoothing = 0.01

	// RawSampleLimit is the number of leading audio samples included in each
	// telemetry record for downstream inspection.
	RawSampleLimit = 200
)
