// soundcard.go: malgo-backed audio capture feeding a ring buffer, with
// scalar readings delegated to an external probe.
package sensor

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/smallnest/ringbuffer"

	"github.com/tphakala/ecosentinel-go/internal/conf"
	"github.com/tphakala/ecosentinel-go/internal/errors"
	"github.com/tphakala/ecosentinel-go/internal/logging"
)

// ScalarProbe reads the scalar environment sensors. Implementations must
// return Unavailable readings for failed hardware reads instead of errors so
// a single dead sensor does not stop the cycle.
type ScalarProbe func() (temperature, humidity Reading, vibration int)

// SoundcardSource captures audio from a soundcard through malgo. The device
// callback writes PCM into a ring buffer; Sample drains one fixed-length
// frame per cycle. Scalar readings come from the injected probe.
type SoundcardSource struct {
	malgoCtx     *malgo.AllocatedContext
	device       *malgo.Device
	rb           *ringbuffer.RingBuffer
	probe        ScalarProbe
	bufferLength int
	readTimeout  time.Duration
	log          *slog.Logger
}

// NewSoundcardSource initializes the capture device and starts streaming
// into the ring buffer.
func NewSoundcardSource(settings *conf.Settings, probe ScalarProbe) (*SoundcardSource, error) {
	var backend malgo.Backend
	switch runtime.GOOS {
	case "linux":
		backend = malgo.BackendAlsa
	case "windows":
		backend = malgo.BackendWasapi
	case "darwin":
		backend = malgo.BackendCoreaudio
	}

	log := logging.ForService("sensor")
	if log == nil {
		log = slog.Default()
	}

	malgoCtx, err := malgo.InitContext([]malgo.Backend{backend}, malgo.ContextConfig{}, func(message string) {
		if settings.Debug {
			log.Debug("malgo", "message", message)
		}
	})
	if err != nil {
		return nil, errors.New(fmt.Errorf("audio context init failed: %w", err)).
			Component("sensor").
			Category(errors.CategoryAudioSource).
			Build()
	}

	s := &SoundcardSource{
		malgoCtx: malgoCtx,
		// hold roughly two seconds of 16-bit mono PCM
		rb:           ringbuffer.New(settings.Sensor.SampleRate * 2 * 2),
		probe:        probe,
		bufferLength: settings.Sensor.BufferLength,
		readTimeout:  time.Duration(settings.Sensor.ReadTimeout) * time.Second,
		log:          log,
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = conf.NumChannels
	deviceConfig.SampleRate = uint32(settings.Sensor.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, pInput []byte, frameCount uint32) {
			if _, err := s.rb.Write(pInput); err != nil {
				// buffer full: drop the oldest data and retry once
				s.rb.Reset()
				_, _ = s.rb.Write(pInput)
			}
		},
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		_ = malgoCtx.Uninit()
		return nil, errors.New(fmt.Errorf("capture device init failed: %w", err)).
			Component("sensor").
			Category(errors.CategoryAudioSource).
			Context("source", settings.Sensor.Source).
			Build()
	}
	s.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = malgoCtx.Uninit()
		return nil, errors.New(fmt.Errorf("capture device start failed: %w", err)).
			Component("sensor").
			Category(errors.CategoryAudioSource).
			Build()
	}

	log.Info("soundcard capture started", "sample_rate", settings.Sensor.SampleRate)
	return s, nil
}

// Sample reads one audio frame from the ring buffer and probes the scalar
// sensors. It waits at most the configured read timeout for enough PCM data;
// on timeout it returns whatever partial frame is available, zero-padded.
func (s *SoundcardSource) Sample(ctx context.Context) (Frame, []int16, error) {
	temperature, humidity := Unavailable(), Unavailable()
	vibration := 0
	if s.probe != nil {
		temperature, humidity, vibration = s.probe()
	}
	frame := Frame{
		Temperature: temperature,
		Humidity:    humidity,
		Vibration:   vibration,
		TimestampMs: MonotonicMs(),
	}

	want := s.bufferLength * 2 // bytes of S16 mono PCM
	deadline := time.Now().Add(s.readTimeout)
	for s.rb.Length() < want && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return frame, nil, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}

	avail := s.rb.Length()
	if avail > want {
		avail = want
	}
	raw := make([]byte, avail)
	if avail > 0 {
		if _, err := s.rb.Read(raw); err != nil {
			s.log.Warn("audio ring buffer read failed", "error", err)
			return frame, make([]int16, s.bufferLength), nil
		}
	}

	buf := make([]int16, s.bufferLength)
	for i := 0; i+1 < len(raw) && i/2 < len(buf); i += 2 {
		buf[i/2] = int16(binary.LittleEndian.Uint16(raw[i:]))
	}
	return frame, buf, nil
}

// Close stops the capture device and releases the audio context.
func (s *SoundcardSource) Close() error {
	if s.device != nil {
		s.device.Uninit()
	}
	if s.malgoCtx != nil {
		return s.malgoCtx.Uninit()
	}
	return nil
}
