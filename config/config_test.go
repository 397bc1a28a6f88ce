package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	t.Setenv("GHOSTFRAME_API_KEY", "")
	t.Setenv("GHOSTFRAME_PROVIDER", "")

	s, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
	assert.False(t, s.HasCredential())
}

func TestLoadFileWithEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	data := `{"provider":"openai","apiKey":"sk-file","profileType":"custom","customInstructions":"Be brief."}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	t.Setenv("GHOSTFRAME_API_KEY", "sk-env")
	t.Setenv("GHOSTFRAME_PROVIDER", "CLAUDE")
	t.Setenv("GHOSTFRAME_SCREENSHOT_INTERVAL", "abc")

	file, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-file", file.APIKey, "the file is read without overrides")
	assert.Equal(t, ProviderOpenAI, file.Provider)

	s := file.WithEnv()
	assert.Equal(t, ProviderClaude, s.Provider)
	assert.Equal(t, "sk-env", s.APIKey)
	assert.Equal(t, DefaultScreenshotInterval, s.ScreenshotInterval)
	assert.Equal(t, "Be brief.", s.AIConfig().CustomPrompt)
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"provider":"bard"}`), 0644))
	t.Setenv("GHOSTFRAME_PROVIDER", "")

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "unknown provider")

	require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))
	_, err = LoadFile(path)
	assert.ErrorContains(t, err, "unmarshal settings")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(*Settings) {}, false},
		{"bad provider", func(s *Settings) { s.Provider = "x" }, true},
		{"bad profile", func(s *Settings) { s.ProfileType = "x" }, true},
		{"negative interval", func(s *Settings) { s.ScreenshotInterval = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			assert.Equal(t, tt.wantErr, s.Validate() != nil)
		})
	}
}

func TestAIConfig(t *testing.T) {
	s := Default()
	s.APIKey = "  sk-123 "
	s.CustomInstructions = "ignored for default profile"

	cfg := s.AIConfig()
	assert.Equal(t, "sk-123", cfg.APIKey)
	assert.Equal(t, DefaultInstructions, cfg.CustomPrompt)

	s.ProfileType = ProfileCustom
	s.CustomInstructions = "   "
	assert.Equal(t, DefaultInstructions, s.AIConfig().CustomPrompt, "blank custom prompt falls back")
}

func TestStoreSave(t *testing.T) {
	st := NewStore(Settings{})
	assert.Equal(t, Default(), st.Get())

	var saved []Settings
	st.OnSave(func(s Settings) { saved = append(saved, s) })

	next := Default()
	next.APIKey = "sk-1"
	_, err := st.Save(context.Background(), next)
	require.NoError(t, err)
	assert.Equal(t, "sk-1", st.Get().APIKey)
	require.Len(t, saved, 1)

	bad := Default()
	bad.Provider = "nope"
	_, err = st.Save(context.Background(), bad)
	assert.Error(t, err)
	assert.Equal(t, "sk-1", st.Get().APIKey, "failed save must not change settings")
	assert.Len(t, saved, 1)
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	st := NewFileStore(path, Default())

	next := Default()
	next.APIKey = "sk-file"
	next.ProfileType = ProfileCustom
	next.CustomInstructions = "Be brief."
	_, err := st.Save(context.Background(), next)
	require.NoError(t, err)

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, next, loaded)
}

func TestEnvironmentKeyIsNeverPersisted(t *testing.T) {
	t.Setenv("GHOSTFRAME_API_KEY", "sk-env")
	t.Setenv("GHOSTFRAME_PROVIDER", "")
	path := filepath.Join(t.TempDir(), "settings.json")
	st := NewFileStore(path, Default())

	assert.Empty(t, st.Get().APIKey, "the frontend never sees the environment key")
	assert.Equal(t, "sk-env", st.Effective().APIKey)

	// The frontend round-trips what it was given.
	effective, err := st.Save(context.Background(), st.Get())
	require.NoError(t, err)
	assert.Equal(t, "sk-env", effective.APIKey)

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Empty(t, loaded.APIKey)
}

func TestWithEnvIgnoresInvalidOverrides(t *testing.T) {
	t.Setenv("GHOSTFRAME_PROVIDER", "bard")
	t.Setenv("GHOSTFRAME_API_KEY", "")

	s := Default()
	s.Provider = ProviderOpenAI
	assert.Equal(t, ProviderOpenAI, s.WithEnv().Provider)
}

func TestLogLevel(t *testing.T) {
	t.Setenv("GHOSTFRAME_LOG_LEVEL", "debug")
	assert.Equal(t, slog.LevelDebug, LogLevel())

	t.Setenv("GHOSTFRAME_LOG_LEVEL", "")
	assert.Equal(t, slog.LevelInfo, LogLevel())
}
