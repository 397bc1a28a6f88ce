package capture

import (
	"context"
	"log/slog"
	"sync"

	"go.ghostframe.dev/ghostframe/audiocapture"
)

// Loopback captures the system output mix in-process.
type Loopback struct {
	sink audiocapture.AudioHandler

	// Overridable for tests.
	supported   func() bool
	newCapturer func(audiocapture.Config) (audiocapture.Capturer, error)

	mu  sync.Mutex
	cap audiocapture.Capturer
}

// NewLoopback creates a loopback backend that forwards samples to sink.
// A nil sink discards samples.
func NewLoopback(sink audiocapture.AudioHandler) *Loopback {
	if sink == nil {
		sink = func([]float32) {}
	}
	return &Loopback{
		sink:        sink,
		supported:   audiocapture.LoopbackSupported,
		newCapturer: audiocapture.New,
	}
}

func (l *Loopback) Kind() Kind { return KindLoopback }

// IsSupported reports whether the platform exposes a loopback device.
func (l *Loopback) IsSupported() bool { return l.supported() }

func (l *Loopback) Start(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cap != nil {
		return nil
	}

	cfg := audiocapture.DefaultConfig()
	cfg.Mode = audiocapture.ModeLoopback
	cfg.Channels = 2

	c, err := l.newCapturer(cfg)
	if err != nil {
		return err
	}
	if err := c.Start(l.sink); err != nil {
		return err
	}

	l.cap = c
	slog.Info("loopback capture started")
	return nil
}

func (l *Loopback) Stop(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cap == nil {
		return nil
	}

	err := l.cap.Stop()
	l.cap = nil

	slog.Info("loopback capture stopped")
	return err
}

func (l *Loopback) IsActive() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cap != nil
}
