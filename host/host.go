// Package host defines the commands the session core issues to the host
// process and the names of the events the host sends back.
package host

import (
	"context"

	"go.ghostframe.dev/ghostframe/config"
	"go.ghostframe.dev/ghostframe/internal/types"
)

// Inbound event names.
const (
	EventClickThroughToggled      = "click-through-toggled"      // bool
	EventContentProtectionToggled = "content-protection-toggled" // bool
	EventTranscriptionUpdate      = "transcription-update"       // string
	EventAIResponse               = "ai-response"                // types.AIResponse
	EventUpdateResponse           = "update-response"            // cumulative string
)

// Capture is host-delegated audio capture and screenshots.
type Capture interface {
	StartAudio(ctx context.Context) error
	StopAudio(ctx context.Context) error
	EnableTranscription(ctx context.Context, enabled bool) error
	TakeScreenshot(ctx context.Context) error
}

// AI forwards queries to the AI collaborator. Answers come back
// asynchronously as EventAIResponse.
type AI interface {
	SendMessage(ctx context.Context, text string) error
	Initialize(ctx context.Context, cfg config.AIConfig) error
}

// Window issues chrome commands. The host echoes the resulting state through
// EventClickThroughToggled and EventContentProtectionToggled.
type Window interface {
	ToggleContentProtection(ctx context.Context) (types.ContentProtectionStatus, error)
	ContentProtectionStatus(ctx context.Context) (types.ContentProtectionStatus, error)
	ToggleVisibility(ctx context.Context) error
	Move(ctx context.Context, dx, dy int) error
}

// Settings persists configuration. Save returns the effective settings,
// which may differ from s by environment overrides that are never persisted.
type Settings interface {
	Save(ctx context.Context, s config.Settings) (config.Settings, error)
}

// Automation drives the host's browser automation mode.
type Automation interface {
	StartSession(ctx context.Context) error
}
