package capture

import (
	"context"
	"log/slog"
)

// Acquisition implements the fallback policy. Each call to Acquire builds
// fresh backend handles, so no handle outlives the session it was made for.
//
// Acquisition does not guard against a previous session's backend still
// running; callers must stop it first.
type Acquisition struct {
	newLoopback func() LoopbackBackend
	newHost     func() Backend
}

// NewAcquisition creates an Acquisition from backend factories.
// newLoopback may be nil, in which case only the host tier is tried.
func NewAcquisition(newLoopback func() LoopbackBackend, newHost func() Backend) *Acquisition {
	return &Acquisition{newLoopback: newLoopback, newHost: newHost}
}

// Acquire starts exactly one backend and returns it.
//
//  1. loopback, if its probe reports support
//  2. host, if loopback was unsupported or failed to start
//
// When both fail the error is an *ExhaustedError.
func (a *Acquisition) Acquire(ctx context.Context) (Backend, error) {
	loopErr := ErrUnsupported

	if a.newLoopback != nil {
		lb := a.newLoopback()
		if lb.IsSupported() {
			err := lb.Start(ctx)
			if err == nil {
				return lb, nil
			}
			loopErr = &StartError{Backend: KindLoopback, Err: err}
			slog.Warn("loopback capture failed, falling back to host", "error", err)

			if lb.IsActive() {
				if err := lb.Stop(ctx); err != nil {
					slog.Warn("release failed loopback capture", "error", err)
				}
			}
		} else {
			slog.Debug("loopback capture unsupported, using host capture")
		}
	}

	hb := a.newHost()
	if err := hb.Start(ctx); err != nil {
		return nil, &ExhaustedError{
			Loopback: loopErr,
			Host:     &StartError{Backend: KindHost, Err: err},
		}
	}
	return hb, nil
}
