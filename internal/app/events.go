// Package app provides the core application service for Wails bindings.
package app

// Event names for frontend communication. The inbound host events the
// session listens to live in package host.
const (
	EventStateChanged       = "state-changed"
	EventAudioSamples       = "audio-samples"
	EventTranscription      = "transcription-enabled"
	EventScreenshotCaptured = "screenshot-captured"
	EventAIInitialize       = "ai-initialize"
	EventAISendMessage      = "ai-send-message"
	EventHotkeyStatus       = "hotkey-status"
	EventAutomationStart    = "automation-start"
	EventSettingsChanged    = "settings-changed"
)

// AudioSamples is a typed event for audio data emission.
// Fields ordered by size for optimal memory layout.
type AudioSamples struct {
	Samples   []float32 `json:"samples"`   // 24 bytes (slice header)
	Source    string    `json:"source"`    // 16 bytes
	Timestamp int64     `json:"timestamp"` // 8 bytes
	Seq       int64     `json:"seq"`       // 8 bytes
}

// Screenshot announces a captured screen image on disk.
type Screenshot struct {
	Path      string `json:"path"`
	Timestamp int64  `json:"timestamp"`
}

// AIRequest is the payload of EventAISendMessage.
type AIRequest struct {
	Text string `json:"text"`
}
