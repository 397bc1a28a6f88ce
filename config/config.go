// Package config handles application settings.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	appName          = "ghostframe"
	settingsFileName = "settings.json"
)

// Provider selects the AI backend the host talks to.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
	ProviderClaude Provider = "claude"
)

// ProfileType selects between the built-in and user-supplied instructions.
type ProfileType string

const (
	ProfileDefault ProfileType = "default"
	ProfileCustom  ProfileType = "custom"
)

// DefaultInstructions is the system prompt used by the default profile.
const DefaultInstructions = "You are a helpful assistant. Analyze the screen and answer the user's question concisely."

// DefaultScreenshotInterval is the automatic screenshot period in milliseconds.
const DefaultScreenshotInterval = 5000

// Settings represents the user-facing configuration.
type Settings struct {
	Provider           Provider    `json:"provider"`
	APIKey             string      `json:"apiKey"`
	ScreenshotInterval int         `json:"screenshotInterval"` // milliseconds
	CustomInstructions string      `json:"customInstructions"`
	ProfileType        ProfileType `json:"profileType"`
}

// AIConfig is what the AI collaborator needs to (re)configure itself.
type AIConfig struct {
	Provider     Provider `json:"provider"`
	APIKey       string   `json:"apiKey"`
	CustomPrompt string   `json:"customPrompt"`
}

// Default returns the settings used when nothing has been configured.
func Default() Settings {
	return Settings{
		Provider:           ProviderGemini,
		ScreenshotInterval: DefaultScreenshotInterval,
		CustomInstructions: DefaultInstructions,
		ProfileType:        ProfileDefault,
	}
}

// ApplyDefaults fills zero fields.
func (s *Settings) ApplyDefaults() {
	if s.Provider == "" {
		s.Provider = ProviderGemini
	}
	if s.ScreenshotInterval == 0 {
		s.ScreenshotInterval = DefaultScreenshotInterval
	}
	if s.ProfileType == "" {
		s.ProfileType = ProfileDefault
	}
	if s.CustomInstructions == "" {
		s.CustomInstructions = DefaultInstructions
	}
}

// Validate reports the first invalid field.
func (s Settings) Validate() error {
	switch s.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderClaude:
	default:
		return fmt.Errorf("unknown provider: %q", s.Provider)
	}
	switch s.ProfileType {
	case ProfileDefault, ProfileCustom:
	default:
		return fmt.Errorf("unknown profile type: %q", s.ProfileType)
	}
	if s.ScreenshotInterval < 0 {
		return fmt.Errorf("screenshot interval must not be negative")
	}
	return nil
}

// HasCredential reports whether an API key is configured.
func (s Settings) HasCredential() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

// AIConfig derives the AI collaborator configuration.
func (s Settings) AIConfig() AIConfig {
	prompt := DefaultInstructions
	if s.ProfileType == ProfileCustom && strings.TrimSpace(s.CustomInstructions) != "" {
		prompt = s.CustomInstructions
	}
	return AIConfig{
		Provider:     s.Provider,
		APIKey:       strings.TrimSpace(s.APIKey),
		CustomPrompt: prompt,
	}
}

// Load reads settings from the user config directory.
// Returns defaults if the file doesn't exist. Environment overrides are not
// applied; see WithEnv.
func Load() (Settings, error) {
	path, err := Path()
	if err != nil {
		return Settings{}, fmt.Errorf("get settings path: %w", err)
	}
	return LoadFile(path)
}

// LoadFile reads settings from path. A missing file yields defaults.
func LoadFile(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("unmarshal settings: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// SaveFile writes s to path as indented JSON, creating parent directories.
func SaveFile(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Path returns the settings file location.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, settingsFileName), nil
}

// WithEnv returns s with GHOSTFRAME_* environment overrides applied. The
// result is for use, never for saving: persisting it would copy an
// environment-only API key into the settings file.
func (s Settings) WithEnv() Settings {
	out := s
	applyEnv(&out)
	out.ApplyDefaults()
	if err := out.Validate(); err != nil {
		slog.Warn("ignore invalid environment overrides", "error", err)
		return s
	}
	return out
}

func applyEnv(s *Settings) {
	if v := os.Getenv("GHOSTFRAME_PROVIDER"); v != "" {
		s.Provider = Provider(strings.ToLower(v))
	}
	if v := os.Getenv("GHOSTFRAME_API_KEY"); v != "" {
		s.APIKey = v
	}
	if v := os.Getenv("GHOSTFRAME_SCREENSHOT_INTERVAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("ignore screenshot interval override", "value", v, "error", err)
		} else {
			s.ScreenshotInterval = n
		}
	}
}

// LogLevel returns the level named by GHOSTFRAME_LOG_LEVEL, defaulting to info.
func LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv("GHOSTFRAME_LOG_LEVEL"))); err != nil {
		return slog.LevelInfo
	}
	return level
}
