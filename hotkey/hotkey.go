// Package hotkey provides global keyboard shortcuts for the overlay.
package hotkey

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"

	hook "github.com/robotn/gohook"
)

// MoveStep is the distance in pixels a move shortcut shifts the overlay.
const MoveStep = 20

// ErrRunning is returned by Start when the manager is already listening.
var ErrRunning = errors.New("hotkey: already running")

// Binding maps a key chord to an action.
type Binding struct {
	Name   string
	Keys   []string // gohook key names, e.g. {"up", "ctrl"}
	Action func()
}

// Chord returns the normalised chord, independent of key order.
func (b Binding) Chord() string {
	keys := make([]string, len(b.Keys))
	for i, k := range b.Keys {
		keys[i] = strings.ToLower(k)
	}
	slices.Sort(keys)
	return strings.Join(keys, "+")
}

// Actions are the callbacks wired to the default shortcuts. Nil actions are
// left unbound.
type Actions struct {
	ToggleVisibility func()
	TakeScreenshot   func()
	Move             func(dx, dy int)
}

// Modifier returns the platform's primary shortcut modifier.
func Modifier() string {
	if runtime.GOOS == "darwin" {
		return "cmd"
	}
	return "ctrl"
}

// DefaultBindings returns the overlay shortcuts for modifier:
//
//	modifier+\      toggle visibility
//	modifier+enter  take screenshot
//	modifier+arrow  move the overlay by MoveStep
func DefaultBindings(modifier string, a Actions) []Binding {
	var out []Binding
	if a.ToggleVisibility != nil {
		out = append(out, Binding{Name: "toggle-visibility", Keys: []string{"\\", modifier}, Action: a.ToggleVisibility})
	}
	if a.TakeScreenshot != nil {
		out = append(out, Binding{Name: "take-screenshot", Keys: []string{"enter", modifier}, Action: a.TakeScreenshot})
	}
	if a.Move != nil {
		moves := []struct {
			key    string
			dx, dy int
		}{
			{"up", 0, -MoveStep},
			{"down", 0, MoveStep},
			{"left", -MoveStep, 0},
			{"right", MoveStep, 0},
		}
		for _, mv := range moves {
			dx, dy := mv.dx, mv.dy
			out = append(out, Binding{
				Name:   "move-" + mv.key,
				Keys:   []string{mv.key, modifier},
				Action: func() { a.Move(dx, dy) },
			})
		}
	}
	return out
}

// Validate reports empty chords, missing actions and chords bound twice.
func Validate(bindings []Binding) error {
	seen := make(map[string]string, len(bindings))
	var errs []error
	for _, b := range bindings {
		if len(b.Keys) == 0 {
			errs = append(errs, fmt.Errorf("binding %q has no keys", b.Name))
			continue
		}
		if b.Action == nil {
			errs = append(errs, fmt.Errorf("binding %q has no action", b.Name))
		}
		chord := b.Chord()
		if prev, ok := seen[chord]; ok {
			errs = append(errs, fmt.Errorf("chord %s bound to both %q and %q", chord, prev, b.Name))
			continue
		}
		seen[chord] = b.Name
	}
	return errors.Join(errs...)
}

// Manager registers bindings with the global keyboard hook.
// gohook keeps process-wide state, so only one Manager should run at a time.
type Manager struct {
	mu       sync.Mutex
	bindings []Binding
	running  bool
	done     chan struct{}
	log      *slog.Logger
}

// NewManager creates a Manager for bindings.
func NewManager(logger *slog.Logger, bindings ...Binding) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		bindings: bindings,
		log:      logger.With("component", "hotkey"),
	}
}

// Start registers every binding and begins listening in the background.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrRunning
	}
	if err := Validate(m.bindings); err != nil {
		return fmt.Errorf("invalid hotkeys: %w", err)
	}

	for _, b := range m.bindings {
		hook.Register(hook.KeyDown, b.Keys, m.dispatch(b))
		m.log.Debug("hotkey registered", "name", b.Name, "chord", b.Chord())
	}

	events := hook.Start()
	m.done = make(chan struct{})
	m.running = true
	go func(done chan struct{}) {
		defer close(done)
		<-hook.Process(events)
	}(m.done)

	m.log.Info("hotkeys started", "count", len(m.bindings))
	return nil
}

// Stop ends the hook and waits for the listener to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	done := m.done
	m.mu.Unlock()

	hook.End()
	<-done
	m.log.Info("hotkeys stopped")
}

// dispatch runs the action off the hook thread so a slow action never stalls
// key processing.
func (m *Manager) dispatch(b Binding) func(hook.Event) {
	return func(hook.Event) {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					m.log.Error("hotkey action panicked", "name", b.Name, "panic", r)
				}
			}()
			b.Action()
		}()
	}
}
