package app

import (
	"context"
	"errors"
	"sync"

	"github.com/wailsapp/wails/v3/pkg/application"

	"go.ghostframe.dev/ghostframe/host"
	"go.ghostframe.dev/ghostframe/internal/types"
)

var errNoWindow = errors.New("window not initialized")

// windowOps is the slice of the window API the adapter drives.
type windowOps struct {
	show                 func()
	hide                 func()
	visible              func() bool
	position             func() (int, int)
	setPosition          func(x, y int)
	setContentProtection func(bool)
	setIgnoreMouse       func(bool)
}

func opsFor(w application.Window) *windowOps {
	if w == nil {
		return nil
	}
	return &windowOps{
		show:                 func() { w.Show() },
		hide:                 func() { w.Hide() },
		visible:              w.IsVisible,
		position:             w.Position,
		setPosition:          w.SetPosition,
		setContentProtection: func(on bool) { w.SetContentProtection(on) },
		setIgnoreMouse:       func(on bool) { w.SetIgnoreMouseEvents(on) },
	}
}

// WindowAdapter executes chrome commands against the overlay window and
// echoes the results as host events.
type WindowAdapter struct {
	mu           sync.Mutex
	ops          *windowOps
	emit         emitFunc
	protected    bool
	clickThrough bool
}

// NewWindowAdapter creates an adapter for w and applies initialProtection.
func NewWindowAdapter(w application.Window, emit emitFunc, initialProtection bool) *WindowAdapter {
	return newWindowAdapter(opsFor(w), emit, initialProtection)
}

func newWindowAdapter(ops *windowOps, emit emitFunc, initialProtection bool) *WindowAdapter {
	wa := &WindowAdapter{ops: ops, emit: emit}
	if ops != nil {
		ops.setContentProtection(initialProtection)
		wa.protected = initialProtection
	}
	return wa
}

// ToggleContentProtection flips whether the overlay is excluded from screen
// capture.
func (wa *WindowAdapter) ToggleContentProtection(context.Context) (types.ContentProtectionStatus, error) {
	wa.mu.Lock()
	if wa.ops == nil {
		wa.mu.Unlock()
		return types.ContentProtectionStatus{}, errNoWindow
	}
	wa.protected = !wa.protected
	enabled := wa.protected
	wa.ops.setContentProtection(enabled)
	wa.mu.Unlock()

	wa.emit(host.EventContentProtectionToggled, enabled)
	return types.ContentProtectionStatus{Enabled: enabled}, nil
}

// ContentProtectionStatus reports the current content protection state.
func (wa *WindowAdapter) ContentProtectionStatus(context.Context) (types.ContentProtectionStatus, error) {
	wa.mu.Lock()
	defer wa.mu.Unlock()
	return types.ContentProtectionStatus{Enabled: wa.protected}, nil
}

// ToggleClickThrough flips whether mouse events pass through the overlay.
func (wa *WindowAdapter) ToggleClickThrough(context.Context) error {
	wa.mu.Lock()
	if wa.ops == nil {
		wa.mu.Unlock()
		return errNoWindow
	}
	wa.clickThrough = !wa.clickThrough
	enabled := wa.clickThrough
	wa.ops.setIgnoreMouse(enabled)
	wa.mu.Unlock()

	wa.emit(host.EventClickThroughToggled, enabled)
	return nil
}

// ToggleVisibility shows a hidden overlay and hides a visible one.
func (wa *WindowAdapter) ToggleVisibility(context.Context) error {
	wa.mu.Lock()
	defer wa.mu.Unlock()
	if wa.ops == nil {
		return errNoWindow
	}
	if wa.ops.visible() {
		wa.ops.hide()
	} else {
		wa.ops.show()
	}
	return nil
}

// Move shifts the overlay by (dx, dy) pixels.
func (wa *WindowAdapter) Move(_ context.Context, dx, dy int) error {
	wa.mu.Lock()
	defer wa.mu.Unlock()
	if wa.ops == nil {
		return errNoWindow
	}
	x, y := wa.ops.position()
	wa.ops.setPosition(x+dx, y+dy)
	return nil
}
