package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.ghostframe.dev/ghostframe/audiocapture"
	"go.ghostframe.dev/ghostframe/screenshot"
)

// emitFunc publishes an event to the frontend.
type emitFunc func(name string, data any)

// sampleStream numbers audio buffers and forwards them as EventAudioSamples.
type sampleStream struct {
	emit   emitFunc
	source string
	seq    atomic.Int64
}

func (s *sampleStream) send(samples []float32) {
	n := s.seq.Add(1)
	s.emit(EventAudioSamples, AudioSamples{
		Samples:   samples,
		Source:    s.source,
		Timestamp: time.Now().UnixMilli(),
		Seq:       n,
	})
	if n%100 == 0 {
		slog.Debug("streamed audio samples", "source", s.source, "count", n, "samples", len(samples))
	}
}

// CaptureAdapter performs the host side of delegated capture: microphone
// audio, the transcription switch and screenshots.
type CaptureAdapter struct {
	mu           sync.Mutex
	capture      audiocapture.Capturer
	stopChan     chan struct{}
	transcribing bool

	emit        emitFunc
	newCapturer func(audiocapture.Config) (audiocapture.Capturer, error)
	shoot       func(context.Context) (string, error)
}

// NewCaptureAdapter creates an adapter that publishes through emit.
func NewCaptureAdapter(emit emitFunc) *CaptureAdapter {
	return &CaptureAdapter{
		emit:        emit,
		newCapturer: audiocapture.New,
		shoot:       screenshot.Capture,
	}
}

// StartAudio begins microphone capture and streams samples to the frontend.
func (ca *CaptureAdapter) StartAudio(context.Context) error {
	ca.mu.Lock()
	defer ca.mu.Unlock()

	if ca.capture != nil {
		return audiocapture.ErrRunning
	}

	cap, err := ca.newCapturer(audiocapture.DefaultConfig())
	if err != nil {
		return fmt.Errorf("create audio capture: %w", err)
	}

	stop := make(chan struct{})
	stream := &sampleStream{emit: ca.emit, source: audiocapture.ModeMicrophone.String()}
	if err := cap.Start(func(samples []float32) {
		select {
		case <-stop:
			return
		default:
		}
		stream.send(samples)
	}); err != nil {
		return fmt.Errorf("start audio capture: %w", err)
	}

	ca.capture = cap
	ca.stopChan = stop
	slog.Info("microphone capture started")
	return nil
}

// StopAudio stops microphone capture. Stopping while idle is a no-op.
func (ca *CaptureAdapter) StopAudio(context.Context) error {
	ca.mu.Lock()
	defer ca.mu.Unlock()

	if ca.capture == nil {
		return nil
	}

	close(ca.stopChan)
	ca.stopChan = nil

	err := ca.capture.Stop()
	ca.capture = nil

	slog.Info("microphone capture stopped")
	return err
}

// EnableTranscription tells the transcription service whether to consume the
// sample stream.
func (ca *CaptureAdapter) EnableTranscription(_ context.Context, enabled bool) error {
	ca.mu.Lock()
	changed := ca.transcribing != enabled
	ca.transcribing = enabled
	ca.mu.Unlock()

	if changed {
		ca.emit(EventTranscription, enabled)
		slog.Debug("transcription switched", "enabled", enabled)
	}
	return nil
}

// Transcribing reports the last EnableTranscription value.
func (ca *CaptureAdapter) Transcribing() bool {
	ca.mu.Lock()
	defer ca.mu.Unlock()
	return ca.transcribing
}

// TakeScreenshot captures the screen and announces the image path.
func (ca *CaptureAdapter) TakeScreenshot(ctx context.Context) error {
	path, err := ca.shoot(ctx)
	if err != nil {
		if errors.Is(err, screenshot.ErrPermission) {
			slog.Warn("screen recording permission missing")
		}
		return fmt.Errorf("capture screenshot: %w", err)
	}
	ca.emit(EventScreenshotCaptured, Screenshot{Path: path, Timestamp: time.Now().UnixMilli()})
	return nil
}
