package session

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery is returned by SubmitQuery for blank input.
	ErrEmptyQuery = errors.New("session: query is empty")

	// ErrNoCredential is returned by SubmitQuery when no API key is configured.
	ErrNoCredential = errors.New("session: no API key configured")

	// ErrBusy is returned by ToggleRecording while a start or stop is in flight.
	ErrBusy = errors.New("session: recording transition in progress")

	// ErrClosed is returned by intents issued after Close.
	ErrClosed = errors.New("session: controller closed")

	errAutomationUnavailable = errors.New("automation not available")
)

// HostError reports a rejected host command.
type HostError struct {
	Op  string
	Err error
}

func (e *HostError) Error() string {
	return fmt.Sprintf("session: host %s: %v", e.Op, e.Err)
}

func (e *HostError) Unwrap() error { return e.Err }

func hostErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &HostError{Op: op, Err: err}
}

// safely runs fn, converting a panic into an error so teardown can continue.
func safely(step string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", step, r)
		}
	}()
	if err := fn(); err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	return nil
}
