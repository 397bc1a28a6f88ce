package bridge

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
)

// Bus is an in-process Transport. Emit delivers synchronously on the calling
// goroutine, in listener registration order.
type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]*listener
}

type listener struct {
	deliver func(any)
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[string][]*listener)}
}

// Listen implements Transport.
func (b *Bus) Listen(name string, deliver func(any)) func() {
	l := &listener{deliver: deliver}

	b.mu.Lock()
	b.listeners[name] = append(b.listeners[name], l)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.listeners[name] = slices.DeleteFunc(b.listeners[name], func(x *listener) bool { return x == l })
			if len(b.listeners[name]) == 0 {
				delete(b.listeners, name)
			}
		})
	}
}

// Emit delivers data to every listener of name. Without listeners the event
// is dropped.
func (b *Bus) Emit(name string, data any) {
	b.mu.RLock()
	ls := slices.Clone(b.listeners[name])
	b.mu.RUnlock()

	for _, l := range ls {
		l.deliver(data)
	}
}

// Listeners returns the number of transport listeners attached to name.
func (b *Bus) Listeners(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[name])
}

// Decode converts an event payload into T. Payloads emitted from Go arrive
// typed; payloads from the frontend arrive as decoded JSON, and a
// single-element argument list is unwrapped.
func Decode[T any](data any) (T, error) {
	var out T

	if v, ok := data.(T); ok {
		return v, nil
	}
	if args, ok := data.([]any); ok && len(args) == 1 {
		data = args[0]
		if v, ok := data.(T); ok {
			return v, nil
		}
	}
	if data == nil {
		return out, fmt.Errorf("decode %T: empty payload", out)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return out, fmt.Errorf("decode %T: %w", out, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %T: %w", out, err)
	}
	return out, nil
}
