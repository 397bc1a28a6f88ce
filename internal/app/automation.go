package app

import (
	"context"
	"log/slog"
)

// AutomationForwarder asks the frontend to begin a browser automation session.
type AutomationForwarder struct {
	emit emitFunc
}

// NewAutomationForwarder creates a forwarder that publishes through emit.
func NewAutomationForwarder(emit emitFunc) *AutomationForwarder {
	return &AutomationForwarder{emit: emit}
}

// StartSession implements host.Automation.
func (f *AutomationForwarder) StartSession(context.Context) error {
	f.emit(EventAutomationStart, nil)
	slog.Info("automation session requested")
	return nil
}
