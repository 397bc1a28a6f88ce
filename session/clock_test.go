package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockDerivesSecondsFromTickTime(t *testing.T) {
	ticker := newManualTicker()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	got := make(chan int64, 8)

	c := startClock(ticker.start, start, func(s int64) { got <- s })

	tests := []struct {
		at   time.Duration
		want int64
	}{
		{900 * time.Millisecond, 0},
		{time.Second, 1},
		{2*time.Second + 999*time.Millisecond, 2},
		{61 * time.Second, 61},
	}
	for _, tt := range tests {
		require.True(t, ticker.fire(start.Add(tt.at)))
		assert.Equal(t, tt.want, <-got, "tick at %v", tt.at)
	}

	c.stop()
	c.stop()
	assert.False(t, ticker.fire(start.Add(time.Hour)))
}

func TestClockExitsWhenTickerCloses(t *testing.T) {
	ch := make(chan time.Time)
	done := make(chan struct{})
	ticker := func(time.Duration) (<-chan time.Time, func()) { return ch, func() {} }

	c := startClock(ticker, time.Now(), func(int64) {})
	close(ch)
	go func() {
		c.stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop blocked after ticker closed")
	}
}
