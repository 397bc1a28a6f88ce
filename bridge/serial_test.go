package bridge

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialRunsHandlersOneAtATime(t *testing.T) {
	bus := NewBus()
	serial := NewSerial(bus)
	b := New(serial)

	const emitters, perEmitter = 8, 50
	var (
		inFlight, maxInFlight atomic.Int32
		mu                    sync.Mutex
		got                   = make(map[int][]int)
	)
	b.Subscribe("x", Func(func(e Event) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		var g, i int
		_, err := fmt.Sscanf(e.Data.(string), "%d:%d", &g, &i)
		assert.NoError(t, err)
		mu.Lock()
		got[g] = append(got[g], i)
		mu.Unlock()
	}))

	var wg sync.WaitGroup
	for g := range emitters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perEmitter {
				bus.Emit("x", fmt.Sprintf("%d:%d", g, i))
			}
		}()
	}
	wg.Wait()
	serial.Close()

	assert.Equal(t, int32(1), maxInFlight.Load(), "handlers never overlap")
	require.Len(t, got, emitters)
	for g, seq := range got {
		require.Len(t, seq, perEmitter, "emitter %d", g)
		for i, v := range seq {
			assert.Equal(t, i, v, "emitter %d out of order", g)
		}
	}
}

func TestSerialDropsAfterClose(t *testing.T) {
	bus := NewBus()
	serial := NewSerial(bus)
	b := New(serial)

	var log []string
	b.Subscribe("x", recorder(&log, "h"))
	bus.Emit("x", "before")
	serial.Close()
	serial.Close()
	bus.Emit("x", "after")

	assert.Equal(t, []string{"h:before"}, log)
}
