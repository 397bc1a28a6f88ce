package audiocapture

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gen2brain/malgo"
)

// capturer captures through miniaudio. Every Start allocates a new context
// and device, and Stop releases both.
type capturer struct {
	cfg Config

	mu     sync.Mutex
	ctx    *malgo.AllocatedContext
	device *malgo.Device
}

// New creates a Capturer for the given configuration.
func New(cfg Config) (Capturer, error) {
	cfg.applyDefaults()
	if cfg.Mode == ModeLoopback && !LoopbackSupported() {
		return nil, ErrUnsupported
	}
	return &capturer{cfg: cfg}, nil
}

func (c *capturer) Start(handler AudioHandler) error {
	if handler == nil {
		return errors.New("audiocapture: nil handler")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		return ErrRunning
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("init audio context: %w", err)
	}

	deviceType := malgo.Capture
	if c.cfg.Mode == ModeLoopback {
		deviceType = malgo.Loopback
	}

	deviceConfig := malgo.DefaultDeviceConfig(deviceType)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = uint32(c.cfg.Channels)
	deviceConfig.SampleRate = uint32(c.cfg.SampleRate)

	channels := c.cfg.Channels
	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			if samples := decodeF32(input, channels); len(samples) > 0 {
				handler(samples)
			}
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		freeContext(ctx)
		return fmt.Errorf("init %s device: %w", c.cfg.Mode, err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		freeContext(ctx)
		return fmt.Errorf("start %s device: %w", c.cfg.Mode, err)
	}

	c.ctx = ctx
	c.device = device
	slog.Debug("audio device started", "mode", c.cfg.Mode, "sampleRate", c.cfg.SampleRate)
	return nil
}

func (c *capturer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return nil
	}

	err := c.device.Stop()
	c.device.Uninit()
	freeContext(c.ctx)

	c.device = nil
	c.ctx = nil
	if err != nil {
		return fmt.Errorf("stop %s device: %w", c.cfg.Mode, err)
	}
	return nil
}

func freeContext(ctx *malgo.AllocatedContext) {
	if err := ctx.Uninit(); err != nil {
		slog.Warn("uninit audio context", "error", err)
	}
	ctx.Free()
}
