package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recorder(log *[]string, tag string) Handler {
	return Func(func(e Event) {
		*log = append(*log, tag+":"+e.Data.(string))
	})
}

func TestDeliveryInRegistrationOrder(t *testing.T) {
	bus := NewBus()
	b := New(bus)

	var log []string
	b.Subscribe("x", recorder(&log, "a"))
	b.Subscribe("x", recorder(&log, "b"))
	b.Subscribe("x", recorder(&log, "c"))

	bus.Emit("x", "1")
	bus.Emit("x", "2")

	assert.Equal(t, []string{"a:1", "b:1", "c:1", "a:2", "b:2", "c:2"}, log)
	assert.Equal(t, 1, bus.Listeners("x"), "one transport listener per name")
}

func TestDuplicateSubscribeIsIdempotent(t *testing.T) {
	bus := NewBus()
	b := New(bus)

	var log []string
	h := recorder(&log, "h")
	b.Subscribe("x", h)
	b.Subscribe("x", h)

	bus.Emit("x", "1")
	assert.Equal(t, []string{"h:1"}, log)
	assert.Equal(t, 1, b.Handlers("x"))

	b.Unsubscribe("x", h)
	bus.Emit("x", "2")
	assert.Equal(t, []string{"h:1"}, log, "a single unsubscribe removes the handler")
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()
	b := New(bus)

	var log []string
	a := recorder(&log, "a")
	c := recorder(&log, "c")
	b.Subscribe("x", a)
	b.Subscribe("x", c)

	b.Unsubscribe("x", a)
	bus.Emit("x", "1")
	assert.Equal(t, []string{"c:1"}, log)

	b.Unsubscribe("x", c)
	assert.Zero(t, bus.Listeners("x"), "transport listener detached with last handler")
	assert.Zero(t, b.Handlers("x"))

	// Unknown name and handler are no-ops.
	b.Unsubscribe("x", c)
	b.Unsubscribe("missing", Func(func(Event) {}))
}

func TestEventsWithoutHandlersAreDropped(t *testing.T) {
	bus := NewBus()
	b := New(bus)

	bus.Emit("x", "early")

	var log []string
	b.Subscribe("x", recorder(&log, "late"))
	assert.Empty(t, log, "no buffering for late subscribers")

	bus.Emit("x", "now")
	assert.Equal(t, []string{"late:now"}, log)
}

func TestNamesAreIndependent(t *testing.T) {
	bus := NewBus()
	b := New(bus)

	var log []string
	b.Subscribe("x", recorder(&log, "x"))
	b.Subscribe("y", recorder(&log, "y"))

	bus.Emit("y", "1")
	assert.Equal(t, []string{"y:1"}, log)
}

func TestPanickingHandlerDoesNotStopDelivery(t *testing.T) {
	bus := NewBus()
	b := New(bus)

	var log []string
	b.Subscribe("x", Func(func(Event) { panic("boom") }))
	b.Subscribe("x", recorder(&log, "after"))

	require.NotPanics(t, func() { bus.Emit("x", "1") })
	assert.Equal(t, []string{"after:1"}, log)
}

func TestHandlerMayUnsubscribeDuringDispatch(t *testing.T) {
	bus := NewBus()
	b := New(bus)

	calls := 0
	var self Handler
	self = Func(func(Event) {
		calls++
		b.Unsubscribe("x", self)
	})
	b.Subscribe("x", self)

	bus.Emit("x", nil)
	bus.Emit("x", nil)
	assert.Equal(t, 1, calls)
}

func TestDecode(t *testing.T) {
	type payload struct {
		Success bool   `json:"success"`
		Text    string `json:"text"`
	}

	s, err := Decode[string]("hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	on, err := Decode[bool]([]any{true})
	require.NoError(t, err)
	assert.True(t, on)

	p, err := Decode[payload](map[string]any{"success": true, "text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, payload{Success: true, Text: "hi"}, p)

	p, err = Decode[payload]([]any{map[string]any{"text": "wrapped"}})
	require.NoError(t, err)
	assert.Equal(t, "wrapped", p.Text)

	_, err = Decode[bool]("yes")
	assert.Error(t, err)

	_, err = Decode[string](nil)
	assert.Error(t, err)
}
