package sequencer

import "sync"

// subscriber is one fan-out destination of engine events.
type subscriber struct {
	ch       chan Event
	done     chan struct{}
	doneOnce sync.Once
	mu       sync.Mutex
	closed   bool
}

func newSubscriber(buffer int) *subscriber {
	return &subscriber{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}
}

// trySend delivers ev without blocking; slow subscribers miss it.
func (s *subscriber) trySend(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

// send blocks until ev is delivered, the subscriber leaves, or either
// cancel or stop closes.
func (s *subscriber) send(ev Event, cancel, stop <-chan struct{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	select {
	case s.ch <- ev:
		return true
	case <-s.done:
		return false
	case <-cancel:
		return false
	case <-stop:
		return false
	}
}

// close releases a blocked send, then closes the channel.
func (s *subscriber) close() {
	s.doneOnce.Do(func() { close(s.done) })

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
