package session

import (
	"sync"
	"time"
)

// TickerFunc starts a repeating ticker and returns its channel and a stop
// function. Tick values must carry a monotonic reading.
type TickerFunc func(d time.Duration) (ticks <-chan time.Time, stop func())

func systemTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// clock drives the elapsed-time counter of one recording session.
type clock struct {
	stopTicker func()
	done       chan struct{}
	once       sync.Once
}

// startClock calls onTick with whole seconds since start for every tick until
// stopped. Seconds are derived from the tick time rather than counted, so
// dropped ticks under throttling do not cause drift.
func startClock(ticker TickerFunc, start time.Time, onTick func(seconds int64)) *clock {
	ticks, stop := ticker(time.Second)
	c := &clock{stopTicker: stop, done: make(chan struct{})}

	go func() {
		for {
			select {
			case <-c.done:
				return
			case now, ok := <-ticks:
				if !ok {
					return
				}
				onTick(int64(now.Sub(start) / time.Second))
			}
		}
	}()
	return c
}

// stop cancels the clock. Safe to call more than once.
func (c *clock) stop() {
	c.once.Do(func() {
		c.stopTicker()
		close(c.done)
	})
}
