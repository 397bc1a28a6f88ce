// Package session coordinates one overlay's recording sessions: audio
// acquisition, live transcription, the message log and the chrome mirror.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"go.ghostframe.dev/ghostframe/bridge"
	"go.ghostframe.dev/ghostframe/capture"
	"go.ghostframe.dev/ghostframe/config"
	"go.ghostframe.dev/ghostframe/host"
	"go.ghostframe.dev/ghostframe/internal/types"
)

// Diagnostic message bodies appended to the log.
const (
	noCredentialMessage = "**AI Error:** No API key configured. Add your API key in Settings to ask questions."
	aiErrorPrefix       = "**AI Error:** "
	captureErrorPrefix  = "**Audio Capture Failed:** "
)

// Acquirer starts one capture backend per session.
type Acquirer interface {
	Acquire(ctx context.Context) (capture.Backend, error)
}

// Subscriber is the subscribe/unsubscribe half of the event bridge.
type Subscriber interface {
	Subscribe(name string, h bridge.Handler)
	Unsubscribe(name string, h bridge.Handler)
}

// Journal records appended messages. Optional.
type Journal interface {
	Append(m types.Message) error
}

// Options configures a Controller. Acquirer, Events, Capture, AI and Window
// are required.
type Options struct {
	Acquirer   Acquirer
	Events     Subscriber
	Capture    host.Capture
	AI         host.AI
	Window     host.Window
	Settings   host.Settings   // optional; Configure skips persistence when nil
	Journal    Journal         // optional
	Automation host.Automation // optional

	InitialSettings config.Settings
	Logger          *slog.Logger
	Ticker          TickerFunc       // default: time.NewTicker
	Now             func() time.Time // default: time.Now
}

type subscription struct {
	name    string
	handler bridge.Handler
}

// Controller owns recording state, the elapsed clock, the transcript, the
// message log and the chrome mirror.
//
// Every transition happens under mu. Host calls run outside the lock; while
// they are in flight the status is Acquiring or Stopping, which rejects
// further toggles.
type Controller struct {
	acq      Acquirer
	events   Subscriber
	capture  host.Capture
	ai       host.AI
	window   host.Window
	settings host.Settings
	journal  Journal
	auto     host.Automation
	log      *slog.Logger
	ticker   TickerFunc
	now      func() time.Time

	// lifeMu serialises Start and Close so subscriptions never outlive Close.
	lifeMu sync.Mutex

	// notifyMu orders observer delivery; delivered is the last version sent.
	notifyMu  sync.Mutex
	delivered uint64

	mu         sync.Mutex
	version    uint64 // bumped on every state change
	started    bool
	closed     bool
	status     types.Status
	gen        uint64 // bumped per session and on Close; stale work compares against it
	sessionID  string
	elapsed    int64
	transcript string
	streaming  string
	backend    capture.Backend
	clock      *clock
	messages   []types.Message
	chrome     types.ChromeState
	cfg        config.Settings
	subs       []subscription
	observers  []func(types.Snapshot)

	// last accepted sequence numbers of the numbered text streams, under mu
	transcriptSeq uint64
	streamingSeq  uint64
}

// New creates a Controller. Call Start to attach it to the host events.
func New(opts Options) *Controller {
	c := &Controller{
		acq:      opts.Acquirer,
		events:   opts.Events,
		capture:  opts.Capture,
		ai:       opts.AI,
		window:   opts.Window,
		settings: opts.Settings,
		journal:  opts.Journal,
		auto:     opts.Automation,
		log:      opts.Logger,
		ticker:   opts.Ticker,
		now:      opts.Now,
		cfg:      opts.InitialSettings,
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.ticker == nil {
		c.ticker = systemTicker
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// OnChange registers fn to receive a snapshot after every state change.
// Deliveries are serialised and never go back in version; a burst of changes
// may be coalesced into one snapshot. fn runs outside the state lock and may
// read Snapshot, but must not issue intents synchronously.
func (c *Controller) OnChange(fn func(types.Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Start subscribes to the host events and mirrors the initial content
// protection status. Calling Start again is a no-op.
func (c *Controller) Start(ctx context.Context) error {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.subs = []subscription{
		{host.EventClickThroughToggled, bridge.Func(c.onClickThrough)},
		{host.EventContentProtectionToggled, bridge.Func(c.onContentProtection)},
		{host.EventTranscriptionUpdate, bridge.Func(c.onTranscription)},
		{host.EventAIResponse, bridge.Func(c.onAIResponse)},
		{host.EventUpdateResponse, bridge.Func(c.onUpdateResponse)},
	}
	subs := slices.Clone(c.subs)
	c.mu.Unlock()

	for _, s := range subs {
		c.events.Subscribe(s.name, s.handler)
	}

	status, err := c.window.ContentProtectionStatus(ctx)
	if err != nil {
		c.log.Warn("load content protection status", "error", err)
		return nil
	}
	c.update(func() bool {
		c.chrome.ContentProtected = status.Enabled
		return true
	})
	return nil
}

// Close tears the controller down: it unsubscribes every handler, stops the
// clock and releases any active capture backend. All steps run even if an
// earlier one fails; the failures are joined.
func (c *Controller) Close(ctx context.Context) error {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.gen++
	subs := c.subs
	clk := c.clock
	backend := c.backend
	c.subs = nil
	c.clock = nil
	c.backend = nil
	c.resetLocked()
	c.mu.Unlock()

	var errs []error
	for _, s := range subs {
		errs = append(errs, safely("unsubscribe "+s.name, func() error {
			c.events.Unsubscribe(s.name, s.handler)
			return nil
		}))
	}
	if clk != nil {
		errs = append(errs, safely("stop clock", func() error {
			clk.stop()
			return nil
		}))
	}
	if backend != nil {
		errs = append(errs, safely("stop capture", func() error {
			return c.releaseBackend(ctx, backend)
		}))
	}

	c.notify()
	err := errors.Join(errs...)
	if err != nil {
		c.log.Error("session teardown", "error", err)
	}
	return err
}

// ToggleRecording starts a session when idle and stops it when recording.
// While a start or stop is in flight it returns ErrBusy and does nothing.
func (c *Controller) ToggleRecording(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	switch c.status {
	case types.StatusIdle:
		c.status = types.StatusAcquiring
		c.version++
		c.gen++
		gen := c.gen
		c.sessionID = uuid.NewString()
		c.mu.Unlock()
		c.notify()
		return c.startSession(ctx, gen)

	case types.StatusRecording:
		c.status = types.StatusStopping
		c.version++
		clk := c.clock
		backend := c.backend
		c.clock = nil
		c.backend = nil
		c.mu.Unlock()
		if clk != nil {
			clk.stop()
		}
		c.notify()
		return c.stopSession(ctx, backend)

	default:
		status := c.status
		c.mu.Unlock()
		c.log.Debug("ignore recording toggle", "status", status)
		return ErrBusy
	}
}

func (c *Controller) startSession(ctx context.Context, gen uint64) error {
	backend, err := c.acq.Acquire(ctx)
	if err != nil {
		c.log.Error("acquire audio", "error", err)
		c.update(func() bool {
			if c.gen != gen {
				return false
			}
			c.resetLocked()
			c.appendLocked(types.RoleAI, captureErrorPrefix+describeCaptureError(err))
			return true
		})
		return err
	}

	c.mu.Lock()
	if c.closed || c.gen != gen {
		c.mu.Unlock()
		c.log.Info("session closed during acquisition, releasing capture", "backend", backend.Kind())
		if err := backend.Stop(ctx); err != nil {
			c.log.Warn("release capture", "backend", backend.Kind(), "error", err)
		}
		return ErrClosed
	}
	c.status = types.StatusRecording
	c.version++
	c.backend = backend
	c.elapsed = 0
	c.clock = startClock(c.ticker, c.now(), func(seconds int64) { c.tick(gen, seconds) })
	sessionID := c.sessionID
	c.mu.Unlock()
	c.notify()

	c.log.Info("recording started", "session", sessionID, "backend", backend.Kind())

	if err := c.capture.EnableTranscription(ctx, true); err != nil {
		c.log.Warn("enable transcription", "session", sessionID, "error", err)
	}
	return nil
}

func (c *Controller) stopSession(ctx context.Context, backend capture.Backend) error {
	var errs []error
	if backend != nil {
		if err := c.releaseBackend(ctx, backend); err != nil {
			errs = append(errs, err)
		}
	}

	c.update(func() bool {
		if c.closed {
			return false
		}
		c.log.Info("recording stopped", "session", c.sessionID, "elapsed", types.FormatElapsed(c.elapsed))
		c.resetLocked()
		return true
	})

	err := errors.Join(errs...)
	if err != nil {
		c.log.Error("stop recording", "error", err)
	}
	return err
}

// releaseBackend stops backend if it is still active and disables live
// transcription. Both steps always run.
func (c *Controller) releaseBackend(ctx context.Context, backend capture.Backend) error {
	var errs []error
	if backend.IsActive() {
		if err := backend.Stop(ctx); err != nil {
			errs = append(errs, hostErr("stop "+string(backend.Kind())+" capture", err))
		}
	}
	if err := c.capture.EnableTranscription(ctx, false); err != nil {
		errs = append(errs, hostErr("enableTranscription", err))
	}
	return errors.Join(errs...)
}

// tick advances the elapsed counter. Ticks from a previous session, or
// arriving after stop, are ignored.
func (c *Controller) tick(gen uint64, seconds int64) {
	c.update(func() bool {
		if c.gen != gen || c.status != types.StatusRecording || seconds <= c.elapsed {
			return false
		}
		c.elapsed = seconds
		return true
	})
}

// resetLocked returns the session fields to Idle.
func (c *Controller) resetLocked() {
	c.version++
	c.status = types.StatusIdle
	c.sessionID = ""
	c.elapsed = 0
	c.transcript = ""
	c.transcriptSeq = 0
	if c.closed {
		c.streaming = ""
	}
}

// SubmitQuery appends text as a user message and forwards it to the AI
// collaborator. Without a credential an error message is appended instead and
// nothing is sent. A failed send appends an error message; the user message
// stays.
func (c *Controller) SubmitQuery(ctx context.Context, text string) error {
	if isBlank(text) {
		return ErrEmptyQuery
	}
	query := strings.TrimSpace(text)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !c.cfg.HasCredential() {
		c.appendLocked(types.RoleAI, noCredentialMessage)
		c.mu.Unlock()
		c.notify()
		return ErrNoCredential
	}
	c.appendLocked(types.RoleUser, query)
	c.mu.Unlock()
	c.notify()

	if err := c.ai.SendMessage(ctx, query); err != nil {
		c.log.Error("send message", "error", err)
		c.update(func() bool {
			if c.closed {
				return false
			}
			c.appendLocked(types.RoleAI, aiErrorPrefix+"failed to send message: "+err.Error())
			return true
		})
		return hostErr("ai.sendMessage", err)
	}
	return nil
}

// Configure saves s through the host and re-initialises the AI collaborator
// with the effective settings the host reports back.
func (c *Controller) Configure(ctx context.Context, s config.Settings) error {
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	if c.settings != nil {
		effective, err := c.settings.Save(ctx, s)
		if err != nil {
			return hostErr("settings.save", err)
		}
		s = effective
	}

	c.mu.Lock()
	c.cfg = s
	c.mu.Unlock()

	if err := c.ai.Initialize(ctx, s.AIConfig()); err != nil {
		return hostErr("ai.initialize", err)
	}
	c.log.Info("ai configured", "provider", s.Provider, "credential", s.HasCredential())
	return nil
}

// ToggleContentProtection asks the host to flip content protection. The
// mirrored state changes only when the host echoes the result.
func (c *Controller) ToggleContentProtection(ctx context.Context) error {
	status, err := c.window.ToggleContentProtection(ctx)
	if err != nil {
		c.log.Error("toggle content protection", "error", err)
		return hostErr("window.toggleContentProtection", err)
	}
	c.log.Debug("content protection toggle requested", "reported", status.Enabled)
	return nil
}

// ToggleVisibility asks the host to show or hide the overlay.
func (c *Controller) ToggleVisibility(ctx context.Context) error {
	if err := c.window.ToggleVisibility(ctx); err != nil {
		c.log.Error("toggle visibility", "error", err)
		return hostErr("window.toggleVisibility", err)
	}
	return nil
}

// MoveWindow asks the host to move the overlay by (dx, dy) pixels.
func (c *Controller) MoveWindow(ctx context.Context, dx, dy int) error {
	if err := c.window.Move(ctx, dx, dy); err != nil {
		c.log.Error("move window", "dx", dx, "dy", dy, "error", err)
		return hostErr("window.move", err)
	}
	return nil
}

// TakeScreenshot asks the host to capture the screen.
func (c *Controller) TakeScreenshot(ctx context.Context) error {
	if err := c.capture.TakeScreenshot(ctx); err != nil {
		c.log.Error("take screenshot", "error", err)
		return hostErr("capture.takeScreenshot", err)
	}
	return nil
}

// StartAutomation asks the host to begin a browser automation session.
func (c *Controller) StartAutomation(ctx context.Context) error {
	if c.auto == nil {
		return hostErr("automation.startSession", errAutomationUnavailable)
	}
	if err := c.auto.StartSession(ctx); err != nil {
		c.log.Error("start automation", "error", err)
		return hostErr("automation.startSession", err)
	}
	return nil
}

// Snapshot returns a copy of the render state.
func (c *Controller) Snapshot() types.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() types.Snapshot {
	s := types.Snapshot{
		Version:    c.version,
		SessionID:  c.sessionID,
		Status:     c.status,
		Recording:  c.status == types.StatusRecording,
		Elapsed:    types.FormatElapsed(c.elapsed),
		Seconds:    c.elapsed,
		Transcript: c.transcript,
		Streaming:  c.streaming,
		Messages:   slices.Clone(c.messages),
		Chrome:     c.chrome,
	}
	if s.Messages == nil {
		s.Messages = []types.Message{}
	}
	if c.backend != nil {
		s.Backend = string(c.backend.Kind())
	}
	return s
}

// ─────────────────────────────────────────────────────────────────────────────
// Host events
// ─────────────────────────────────────────────────────────────────────────────

func (c *Controller) onClickThrough(e bridge.Event) {
	enabled, err := bridge.Decode[bool](e.Data)
	if err != nil {
		c.log.Warn("decode event", "event", e.Name, "error", err)
		return
	}
	c.update(func() bool {
		c.chrome.ClickThrough = enabled
		return true
	})
}

func (c *Controller) onContentProtection(e bridge.Event) {
	enabled, err := bridge.Decode[bool](e.Data)
	if err != nil {
		c.log.Warn("decode event", "event", e.Name, "error", err)
		return
	}
	c.update(func() bool {
		c.chrome.ContentProtected = enabled
		return true
	})
}

// onTranscription replaces the transcript; it is a live cursor, not a log.
func (c *Controller) onTranscription(e bridge.Event) {
	u, err := decodeText(e.Data)
	if err != nil {
		c.log.Warn("decode event", "event", e.Name, "error", err)
		return
	}
	c.update(func() bool {
		if c.status != types.StatusRecording || !advance(&c.transcriptSeq, u.Seq) {
			return false
		}
		c.transcript = u.Text
		return true
	})
}

// onAIResponse appends the terminal response in arrival order. Responses carry
// no request id, so concurrent queries are not matched to their answers.
func (c *Controller) onAIResponse(e bridge.Event) {
	resp, err := bridge.Decode[types.AIResponse](e.Data)
	if err != nil {
		c.log.Warn("decode event", "event", e.Name, "error", err)
		return
	}
	if resp.ServerContent != nil && resp.ServerContent.GenerationComplete {
		c.log.Debug("ai response generation complete")
	}

	content := resp.Text
	if !resp.Success {
		content = aiErrorPrefix + resp.Error
	}
	c.update(func() bool {
		c.streaming = ""
		c.streamingSeq = 0
		c.appendLocked(types.RoleAI, content)
		return true
	})
}

func (c *Controller) onUpdateResponse(e bridge.Event) {
	u, err := decodeText(e.Data)
	if err != nil {
		c.log.Warn("decode event", "event", e.Name, "error", err)
		return
	}
	c.update(func() bool {
		if !advance(&c.streamingSeq, u.Seq) {
			return false
		}
		c.streaming = u.Text
		return true
	})
}

// decodeText accepts a plain string or a numbered TextUpdate.
func decodeText(data any) (types.TextUpdate, error) {
	if text, err := bridge.Decode[string](data); err == nil {
		return types.TextUpdate{Text: text}, nil
	}
	return bridge.Decode[types.TextUpdate](data)
}

// advance records seq as the latest of its stream. It reports false for a
// numbered update that is not newer than the last one; unnumbered updates
// always pass.
func advance(last *uint64, seq uint64) bool {
	if seq == 0 {
		return true
	}
	if seq <= *last {
		return false
	}
	*last = seq
	return true
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// update runs fn under the lock and notifies observers if fn reports a
// change. Nothing is applied after Close.
func (c *Controller) update(fn func() bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	changed := fn()
	if changed {
		c.version++
	}
	c.mu.Unlock()

	if changed {
		c.notify()
	}
}

// appendLocked appends a message and records it in the journal. The journal
// write happens under the lock so its order matches the log.
func (c *Controller) appendLocked(role types.Role, content string) {
	m := types.NewMessage(role, content, c.now())
	c.messages = append(c.messages, m)
	c.version++

	if c.journal != nil {
		if err := c.journal.Append(m); err != nil {
			c.log.Warn("journal message", "id", m.ID, "error", err)
		}
	}
}

// notify hands the current snapshot to every observer. The snapshot is taken
// after notifyMu is held, so observers see versions in increasing order and a
// notify whose change was already delivered by a later caller is skipped.
func (c *Controller) notify() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.version <= c.delivered {
		c.mu.Unlock()
		return
	}
	c.delivered = c.version
	observers := c.observers
	snap := c.snapshotLocked()
	c.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

func describeCaptureError(err error) string {
	var ex *capture.ExhaustedError
	if errors.As(err, &ex) {
		var se *capture.StartError
		if errors.As(ex.Loopback, &se) {
			return fmt.Sprintf("system audio capture failed (%v) and host capture failed (%v)", se.Err, errors.Unwrap(ex.Host))
		}
		return fmt.Sprintf("host capture failed (%v)", errors.Unwrap(ex.Host))
	}
	return err.Error()
}
