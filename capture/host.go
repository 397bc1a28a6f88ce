package capture

import (
	"context"
	"sync"

	"go.ghostframe.dev/ghostframe/host"
)

// Host delegates capture to the host process.
type Host struct {
	cmd host.Capture

	mu     sync.Mutex
	active bool
}

// NewHost creates a host-delegated backend issuing commands through cmd.
func NewHost(cmd host.Capture) *Host {
	return &Host{cmd: cmd}
}

func (h *Host) Kind() Kind { return KindHost }

func (h *Host) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.active {
		return nil
	}
	if err := h.cmd.StartAudio(ctx); err != nil {
		return err
	}
	h.active = true
	return nil
}

// Stop asks the host to release capture. The backend is marked inactive even
// when the host reports a failure, so a session can always be ended locally.
func (h *Host) Stop(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.active {
		return nil
	}
	h.active = false
	return h.cmd.StopAudio(ctx)
}

func (h *Host) IsActive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}
