package bridge

import (
	"sync"
)

// Serial wraps a transport whose listeners may run concurrently, such as the
// Wails event manager, so that deliveries run one at a time on a single
// dispatcher goroutine in the order the transport handed them over.
//
// Serial cannot restore an order the transport has already lost; it only
// guarantees that handlers never overlap and see events in arrival order.
type Serial struct {
	transport Transport

	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

// NewSerial starts the dispatcher for t. Call Close to stop it.
func NewSerial(t Transport) *Serial {
	s := &Serial{
		transport: t,
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	go s.run()
	return s
}

// Listen implements Transport.
func (s *Serial) Listen(name string, deliver func(any)) func() {
	return s.transport.Listen(name, func(data any) {
		s.enqueue(func() { deliver(data) })
	})
}

// Close drains queued deliveries and stops the dispatcher. Deliveries that
// arrive afterwards are dropped.
func (s *Serial) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.signal()
	<-s.done
}

func (s *Serial) enqueue(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
	s.signal()
}

func (s *Serial) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Serial) run() {
	defer close(s.done)
	for range s.wake {
		for {
			s.mu.Lock()
			if len(s.queue) == 0 {
				closed := s.closed
				s.mu.Unlock()
				if closed {
					return
				}
				break
			}
			fn := s.queue[0]
			s.queue[0] = nil
			s.queue = s.queue[1:]
			s.mu.Unlock()

			fn()
		}
	}
}
