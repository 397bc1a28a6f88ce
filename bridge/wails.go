package bridge

import (
	"github.com/wailsapp/wails/v3/pkg/application"
)

// WailsTransport carries host events over the Wails event manager, so events
// emitted by either the frontend or Go code reach the bridge.
//
// Wails runs every listener call on its own goroutine. Wrap the transport in
// a Serial to keep handlers from overlapping.
type WailsTransport struct {
	app *application.App
}

// NewWailsTransport creates a transport bound to app.
func NewWailsTransport(app *application.App) *WailsTransport {
	return &WailsTransport{app: app}
}

// Listen implements Transport.
func (w *WailsTransport) Listen(name string, deliver func(any)) func() {
	return w.app.Event.On(name, func(e *application.CustomEvent) {
		deliver(e.Data)
	})
}
