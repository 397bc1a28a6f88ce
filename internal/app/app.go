package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wailsapp/wails/v3/pkg/application"

	"go.ghostframe.dev/ghostframe/audiocapture"
	"go.ghostframe.dev/ghostframe/bridge"
	"go.ghostframe.dev/ghostframe/capture"
	"go.ghostframe.dev/ghostframe/config"
	"go.ghostframe.dev/ghostframe/history"
	"go.ghostframe.dev/ghostframe/hotkey"
	"go.ghostframe.dev/ghostframe/internal/types"
	"go.ghostframe.dev/ghostframe/session"
)

// historyLimit caps how many journaled messages GetHistory returns by default.
const historyLimit = 200

// Service provides application functionality bound to Wails.
// This struct focuses on orchestration; session logic lives in package session.
type Service struct {
	store   *config.Store
	journal *history.Journal
	hotkey  *hotkey.Manager

	// UI references - set via Init
	app    *application.App
	window application.Window

	serial     *bridge.Serial
	events     *bridge.Bridge
	controller *session.Controller
	capture    *CaptureAdapter
	win        *WindowAdapter
	ai         *AIForwarder

	// Version info (set by caller)
	version string
}

// New creates a new Service. Call Init() after Wails app is created.
func New(version string) *Service {
	return &Service{version: version}
}

// GetVersion returns the application version.
func (s *Service) GetVersion() string {
	return s.version
}

// Init wires the session controller to the Wails app and window.
// Must be called after Wails application is created.
func (s *Service) Init(app *application.App, window application.Window) {
	s.app = app
	s.window = window

	settings, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		settings = config.Default()
	}
	if path, err := config.Path(); err != nil {
		slog.Error("get settings path", "error", err)
		s.store = config.NewStore(settings)
	} else {
		s.store = config.NewFileStore(path, settings)
	}

	s.setupHistory()

	s.serial = bridge.NewSerial(bridge.NewWailsTransport(app))
	s.events = bridge.New(s.serial)
	s.capture = NewCaptureAdapter(s.emit)
	s.win = NewWindowAdapter(window, s.emit, true)
	s.ai = NewAIForwarder(s.emit)
	watchSettings(s.store, s.emit)

	acquisition := capture.NewAcquisition(
		func() capture.LoopbackBackend {
			stream := &sampleStream{emit: s.emit, source: audiocapture.ModeLoopback.String()}
			return capture.NewLoopback(stream.send)
		},
		func() capture.Backend { return capture.NewHost(s.capture) },
	)

	opts := session.Options{
		Acquirer:        acquisition,
		Events:          s.events,
		Capture:         s.capture,
		AI:              s.ai,
		Window:          s.win,
		Settings:        s.store,
		Automation:      NewAutomationForwarder(s.emit),
		InitialSettings: s.store.Effective(),
		Logger:          slog.Default().With("component", "session"),
	}
	if s.journal != nil {
		opts.Journal = s.journal
	}
	s.controller = session.New(opts)
	s.controller.OnChange(func(snap types.Snapshot) { s.emit(EventStateChanged, snap) })

	ctx := context.Background()
	if err := s.controller.Start(ctx); err != nil {
		slog.Error("start session controller", "error", err)
	}
	if err := s.ai.Initialize(ctx, s.store.Effective().AIConfig()); err != nil {
		slog.Error("initialize ai", "error", err)
	}

	s.setupHotkey()
}

// Shutdown cleans up resources.
func (s *Service) Shutdown() {
	if s.hotkey != nil {
		s.hotkey.Stop()
	}
	if s.controller != nil {
		if err := s.controller.Close(context.Background()); err != nil {
			slog.Error("close session", "error", err)
		}
	}
	if s.serial != nil {
		s.serial.Close()
	}
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			slog.Error("close history", "error", err)
		}
	}
}

func (s *Service) setupHistory() {
	configDir, err := os.UserConfigDir()
	if err != nil {
		slog.Error("get config dir for history", "error", err)
		return
	}

	path := filepath.Join(configDir, "ghostframe", "history")
	j, err := history.Open(path, slog.Default())
	if err != nil {
		slog.Error("open history", "path", path, "error", err)
		return
	}
	s.journal = j
	slog.Info("history opened", "path", path)
}

func (s *Service) setupHotkey() {
	bindings := hotkey.DefaultBindings(hotkey.Modifier(), hotkey.Actions{
		ToggleVisibility: func() { s.logErr("toggle visibility", s.ToggleVisibility()) },
		TakeScreenshot:   func() { s.logErr("take screenshot", s.TakeScreenshot()) },
		Move:             func(dx, dy int) { s.logErr("move window", s.MoveWindow(dx, dy)) },
	})
	s.hotkey = hotkey.NewManager(slog.Default(), bindings...)

	if err := s.hotkey.Start(); err != nil {
		slog.Error("start hotkey", "error", err)
		s.emit(EventHotkeyStatus, false)
		return
	}
	s.emit(EventHotkeyStatus, true)
}

// watchSettings announces every saved settings value to the frontend.
// Environment overrides are not part of it.
func watchSettings(st *config.Store, emit emitFunc) {
	st.OnSave(func(settings config.Settings) {
		emit(EventSettingsChanged, settings)
	})
}

// emit is a safe wrapper around app.Event.Emit
func (s *Service) emit(name string, data any) {
	if s.app != nil {
		s.app.Event.Emit(name, data)
	}
}

func (s *Service) logErr(op string, err error) {
	if err != nil {
		slog.Warn(op, "error", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Session
// ─────────────────────────────────────────────────────────────────────────────

// ToggleRecording starts or stops a recording session.
func (s *Service) ToggleRecording() error {
	return s.controller.ToggleRecording(context.Background())
}

// SubmitQuery sends a question to the AI collaborator.
func (s *Service) SubmitQuery(text string) error {
	return s.controller.SubmitQuery(context.Background(), text)
}

// GetState returns the current render state.
func (s *Service) GetState() types.Snapshot {
	return s.controller.Snapshot()
}

// GetHistory returns up to limit journaled messages, oldest first.
func (s *Service) GetHistory(limit int) ([]types.Message, error) {
	if s.journal == nil {
		return []types.Message{}, nil
	}
	if limit <= 0 {
		limit = historyLimit
	}
	msgs, err := s.journal.List(limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return msgs, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Window
// ─────────────────────────────────────────────────────────────────────────────

// ToggleContentProtection flips screen-capture exclusion of the overlay.
func (s *Service) ToggleContentProtection() error {
	return s.controller.ToggleContentProtection(context.Background())
}

// ToggleClickThrough flips whether clicks pass through the overlay.
func (s *Service) ToggleClickThrough() error {
	return s.win.ToggleClickThrough(context.Background())
}

// ToggleVisibility shows or hides the overlay.
func (s *Service) ToggleVisibility() error {
	return s.controller.ToggleVisibility(context.Background())
}

// MoveWindow shifts the overlay by (dx, dy) pixels.
func (s *Service) MoveWindow(dx, dy int) error {
	return s.controller.MoveWindow(context.Background(), dx, dy)
}

// TakeScreenshot captures the screen for the AI collaborator.
func (s *Service) TakeScreenshot() error {
	return s.controller.TakeScreenshot(context.Background())
}

// StartAutomation asks the frontend to begin a browser automation session.
func (s *Service) StartAutomation() error {
	return s.controller.StartAutomation(context.Background())
}

// ─────────────────────────────────────────────────────────────────────────────
// Settings
// ─────────────────────────────────────────────────────────────────────────────

// GetSettings returns the saved settings. Environment overrides are applied
// in the process only and never reach the frontend.
func (s *Service) GetSettings() config.Settings {
	return s.store.Get()
}

// SaveSettings persists settings and re-initialises the AI collaborator.
func (s *Service) SaveSettings(settings config.Settings) error {
	return s.controller.Configure(context.Background(), settings)
}
