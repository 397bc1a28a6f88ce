package config

import (
	"context"
	"sync"
)

// Store keeps the active settings for the lifetime of the process and
// implements the host's settings.save command.
//
// The store holds settings as persisted. Environment overrides are layered
// on by Effective and never reach Get or the settings file.
type Store struct {
	mu       sync.RWMutex
	settings Settings
	path     string // empty keeps settings in memory only
	onSave   []func(Settings)
}

// NewStore creates an in-memory Store seeded with s.
func NewStore(s Settings) *Store {
	s.ApplyDefaults()
	return &Store{settings: s}
}

// NewFileStore creates a Store seeded with s that writes every save to path.
func NewFileStore(path string, s Settings) *Store {
	st := NewStore(s)
	st.path = path
	return st
}

// Get returns the persisted settings.
func (st *Store) Get() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.settings
}

// Effective returns the persisted settings with environment overrides.
func (st *Store) Effective() Settings {
	return st.Get().WithEnv()
}

// Save validates, stores and notifies observers with s. It returns the
// effective settings, s with environment overrides applied.
func (st *Store) Save(_ context.Context, s Settings) (Settings, error) {
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	st.mu.Lock()
	if st.path != "" {
		if err := SaveFile(st.path, s); err != nil {
			st.mu.Unlock()
			return Settings{}, err
		}
	}
	st.settings = s
	observers := st.onSave
	st.mu.Unlock()

	for _, fn := range observers {
		fn(s)
	}
	return s.WithEnv(), nil
}

// OnSave registers a callback invoked with the persisted settings after every
// successful Save.
func (st *Store) OnSave(fn func(Settings)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.onSave = append(st.onSave, fn)
}
