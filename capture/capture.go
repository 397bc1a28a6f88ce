// Package capture acquires exactly one audio source per recording session,
// preferring loopback capture and falling back to host-delegated capture.
package capture

import (
	"context"
	"errors"
	"fmt"
)

// Kind identifies a capture backend variant.
type Kind string

const (
	KindLoopback Kind = "loopback"
	KindHost     Kind = "host"
)

// Backend is one capture variant.
//
// Start on an already active backend returns nil without starting twice.
// Stop on an inactive backend is a no-op.
type Backend interface {
	Kind() Kind
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsActive() bool
}

// LoopbackBackend is a Backend with a side-effect-free capability probe.
type LoopbackBackend interface {
	Backend
	IsSupported() bool
}

// ErrUnsupported means the loopback probe failed and start was not attempted.
var ErrUnsupported = errors.New("capture: loopback capture not supported")

// ErrAlreadyActive is reserved for backends that cannot no-op a second Start.
// The backends in this package never return it.
var ErrAlreadyActive = errors.New("capture: backend already active")

// StartError means a backend was attempted and rejected the start.
type StartError struct {
	Backend Kind
	Err     error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("capture: start %s: %v", e.Backend, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// ExhaustedError means every tier failed. Loopback is ErrUnsupported when the
// loopback tier was skipped, otherwise the *StartError it returned.
type ExhaustedError struct {
	Loopback error
	Host     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("capture: no audio source available (loopback: %v; host: %v)", e.Loopback, e.Host)
}

func (e *ExhaustedError) Unwrap() []error {
	var errs []error
	if e.Loopback != nil {
		errs = append(errs, e.Loopback)
	}
	if e.Host != nil {
		errs = append(errs, e.Host)
	}
	return errs
}
