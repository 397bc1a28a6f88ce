// Package types provides shared type definitions for the application.
package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Message is one entry of the conversation log. Messages are immutable
// once appended; the log is append-only and insertion order is display order.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message stamped with a fresh ID and the given time.
func NewMessage(role Role, content string, now time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: now,
	}
}

// ChromeState mirrors the window-level toggles owned by the host process.
type ChromeState struct {
	ClickThrough     bool `json:"clickThrough"`
	ContentProtected bool `json:"contentProtected"`
}

// Status is the recording state of a session.
type Status int

const (
	StatusIdle Status = iota
	StatusAcquiring
	StatusRecording
	StatusStopping
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusAcquiring:
		return "acquiring"
	case StatusRecording:
		return "recording"
	case StatusStopping:
		return "stopping"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText encodes the status by name so the frontend receives "recording"
// rather than an integer.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ServerContent carries provider metadata attached to an AI response.
type ServerContent struct {
	GenerationComplete bool `json:"generationComplete"`
}

// AIResponse is the payload of the terminal "ai-response" host event.
type AIResponse struct {
	Success       bool           `json:"success"`
	Text          string         `json:"text"`
	Error         string         `json:"error,omitempty"`
	ServerContent *ServerContent `json:"serverContent,omitempty"`
}

// TextUpdate is the numbered form of the "transcription-update" and
// "update-response" payloads; a plain string is also accepted. The host
// event transport does not preserve emit order, so the emitter numbers each
// update. Seq restarts with every recording session for transcripts and with
// every response for streaming text. Zero means unnumbered.
type TextUpdate struct {
	Text string `json:"text"`
	Seq  uint64 `json:"seq,omitempty"`
}

// ContentProtectionStatus is returned by the host's content protection commands.
type ContentProtectionStatus struct {
	Enabled bool `json:"enabled"`
}

// Snapshot is the render state handed to the view layer.
type Snapshot struct {
	Version    uint64      `json:"version"` // increases with every state change
	SessionID  string      `json:"sessionId,omitempty"`
	Status     Status      `json:"status"`
	Recording  bool        `json:"recording"`
	Elapsed    string      `json:"elapsed"` // MM:SS
	Seconds    int64       `json:"seconds"`
	Transcript string      `json:"transcript"`
	Streaming  string      `json:"streaming,omitempty"` // cumulative AI text of the in-flight response
	Backend    string      `json:"backend,omitempty"`
	Messages   []Message   `json:"messages"`
	Chrome     ChromeState `json:"chrome"`
}

// FormatElapsed renders seconds as MM:SS. Minutes keep counting past 99.
func FormatElapsed(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
