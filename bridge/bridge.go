// Package bridge adapts a name-keyed host event stream to typed in-process
// handlers.
package bridge

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Event is a single host notification.
type Event struct {
	Name string
	Data any
}

// Handler receives events. Handlers are identified by interface equality, so
// implementations must be comparable; use Func to wrap a plain function.
type Handler interface {
	HandleEvent(Event)
}

type funcHandler struct {
	fn func(Event)
}

func (h *funcHandler) HandleEvent(e Event) { h.fn(e) }

// Func wraps fn in a Handler with a stable identity. Keep the returned value
// to unsubscribe later.
func Func(fn func(Event)) Handler {
	return &funcHandler{fn: fn}
}

// Transport is the underlying multi-listener channel, e.g. the Wails event
// manager or an in-process Bus.
type Transport interface {
	// Listen attaches deliver to name and returns a function that detaches it.
	Listen(name string, deliver func(data any)) (cancel func())
}

type topic struct {
	handlers []Handler
	cancel   func()
}

// Bridge multiplexes one transport listener per event name onto an ordered
// list of handlers. Events with no handler are dropped; nothing is buffered.
type Bridge struct {
	transport Transport

	mu     sync.Mutex
	topics map[string]*topic
}

// New creates a Bridge over t.
func New(t Transport) *Bridge {
	return &Bridge{
		transport: t,
		topics:    make(map[string]*topic),
	}
}

// Subscribe registers h for name. Registering the same handler twice for the
// same name is a no-op.
func (b *Bridge) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[name]
	if !ok {
		t = &topic{}
		t.cancel = b.transport.Listen(name, func(data any) {
			b.dispatch(Event{Name: name, Data: data})
		})
		b.topics[name] = t
	}

	if slices.Contains(t.handlers, h) {
		return
	}
	t.handlers = append(t.handlers, h)
}

// Unsubscribe removes h from name. Unknown handlers are ignored. The
// transport listener is detached once the last handler is gone.
func (b *Bridge) Unsubscribe(name string, h Handler) {
	b.mu.Lock()
	t, ok := b.topics[name]
	if !ok {
		b.mu.Unlock()
		return
	}

	t.handlers = slices.DeleteFunc(t.handlers, func(x Handler) bool { return x == h })
	var cancel func()
	if len(t.handlers) == 0 {
		cancel = t.cancel
		delete(b.topics, name)
	}
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Handlers returns the number of handlers registered for name.
func (b *Bridge) Handlers(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.topics[name]; ok {
		return len(t.handlers)
	}
	return 0
}

// dispatch invokes the handlers for e in registration order.
func (b *Bridge) dispatch(e Event) {
	b.mu.Lock()
	t, ok := b.topics[e.Name]
	if !ok {
		b.mu.Unlock()
		return
	}
	handlers := slices.Clone(t.handlers)
	b.mu.Unlock()

	for _, h := range handlers {
		invoke(h, e)
	}
}

func invoke(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked", "event", e.Name, "panic", fmt.Sprint(r))
		}
	}()
	h.HandleEvent(e)
}
