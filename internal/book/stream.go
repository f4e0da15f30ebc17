// internal/book/stream.go
package book

import "sync"

const subscriberBuffer = 16

// StockStream fans stock events out to in-process subscribers. Delivery is
// fire-and-forget: a subscriber whose buffer is full misses events rather
// than blocking publishers.
type StockStream struct {
	mu     sync.Mutex
	subs   map[chan StockEvent]struct{}
	closed bool
}

func NewStockStream() *StockStream {
	return &StockStream{subs: make(map[chan StockEvent]struct{})}
}

// Publish delivers an event to every subscriber that has buffer room.
func (s *StockStream) Publish(e StockEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for ch := range s.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called to release the subscription.
func (s *StockStream) Subscribe() (<-chan StockEvent, func()) {
	ch := make(chan StockEvent, subscriberBuffer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Close tears the stream down with the service, closing all subscriber
// channels.
func (s *StockStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
}
