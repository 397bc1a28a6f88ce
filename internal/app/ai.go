package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"go.ghostframe.dev/ghostframe/config"
)

// errNotInitialized is returned by SendMessage before a usable Initialize.
var errNotInitialized = errors.New("ai session not initialized")

// AIForwarder hands queries to the provider session running in the frontend.
// Answers return asynchronously as update-response and ai-response events.
type AIForwarder struct {
	mu   sync.Mutex
	cfg  *config.AIConfig
	emit emitFunc
}

// NewAIForwarder creates a forwarder that publishes through emit.
func NewAIForwarder(emit emitFunc) *AIForwarder {
	return &AIForwarder{emit: emit}
}

// Initialize (re)configures the provider session. A config without an API key
// tears the session down.
func (f *AIForwarder) Initialize(_ context.Context, cfg config.AIConfig) error {
	f.mu.Lock()
	if cfg.APIKey == "" {
		f.cfg = nil
	} else {
		f.cfg = &cfg
	}
	f.mu.Unlock()

	f.emit(EventAIInitialize, cfg)
	slog.Info("ai session initialized", "provider", cfg.Provider, "ready", cfg.APIKey != "")
	return nil
}

// SendMessage forwards text to the provider session.
func (f *AIForwarder) SendMessage(_ context.Context, text string) error {
	f.mu.Lock()
	ready := f.cfg != nil
	f.mu.Unlock()

	if !ready {
		return errNotInitialized
	}
	f.emit(EventAISendMessage, AIRequest{Text: text})
	return nil
}
