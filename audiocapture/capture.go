// Package audiocapture provides microphone and system-audio (loopback) capture.
package audiocapture

import (
	"encoding/binary"
	"errors"
	"math"
	"runtime"
)

// ErrRunning is returned when Start is called on a capturer that is already running.
var ErrRunning = errors.New("audiocapture: already running")

// ErrUnsupported is returned when the requested mode is not available on this platform.
var ErrUnsupported = errors.New("audiocapture: mode not supported on this platform")

// Mode selects the capture source.
type Mode int

const (
	// ModeMicrophone captures the default input device.
	ModeMicrophone Mode = iota
	// ModeLoopback captures the system output mix routed back as an input.
	ModeLoopback
)

func (m Mode) String() string {
	if m == ModeLoopback {
		return "loopback"
	}
	return "microphone"
}

// AudioHandler receives mono float32 samples in the range [-1, 1].
// It is called from the audio thread and must not block.
type AudioHandler func(samples []float32)

// Capturer is a single capture handle. A stopped Capturer may be started again,
// but callers wanting a fresh device should create a new one with New.
type Capturer interface {
	Start(handler AudioHandler) error
	Stop() error
}

// Config holds configuration for a capturer.
type Config struct {
	Mode       Mode
	SampleRate int // default 48000 (WebRTC Opus standard)
	Channels   int // device channels, downmixed to mono before delivery
}

// DefaultConfig returns the default microphone configuration.
func DefaultConfig() Config {
	return Config{
		Mode:       ModeMicrophone,
		SampleRate: 48000,
		Channels:   1,
	}
}

// LoopbackSupported reports whether ModeLoopback can be used on this platform.
// Only the WASAPI backend exposes a loopback device.
func LoopbackSupported() bool {
	return runtime.GOOS == "windows"
}

func (c *Config) applyDefaults() {
	if c.SampleRate <= 0 {
		c.SampleRate = 48000
	}
	if c.Channels <= 0 {
		c.Channels = 1
	}
}

// decodeF32 converts interleaved little-endian float32 frames to mono samples.
func decodeF32(data []byte, channels int) []float32 {
	if channels <= 0 {
		channels = 1
	}
	frameBytes := 4 * channels
	frames := len(data) / frameBytes
	if frames == 0 {
		return nil
	}

	out := make([]float32, frames)
	for i := range frames {
		var sum float32
		for ch := range channels {
			off := i*frameBytes + ch*4
			sum += math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
		}
		out[i] = sum / float32(channels)
	}
	return out
}
