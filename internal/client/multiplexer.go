package client

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Producer feeds events into a Multiplexer until it has nothing more to
// say or ctx is done.
type Producer func(ctx context.Context, emit func(Event)) error

// Multiplexer merges events from any number of producers into one ordered
// stream for a single consumer. The queue is unbounded, so Emit never blocks
// and each producer's events keep their emission order.
type Multiplexer struct {
	mu     sync.Mutex
	queue  []Event
	closed bool
	ready  chan struct{}
	group  errgroup.Group
}

// NewMultiplexer creates an empty Multiplexer.
func NewMultiplexer() *Multiplexer {
	return &Multiplexer{ready: make(chan struct{}, 1)}
}

// Go runs p on its own goroutine. A producer that fails closes the
// multiplexer, so the consumer drains what is queued and stops; the error
// is reported by Wait.
func (m *Multiplexer) Go(ctx context.Context, p Producer) {
	m.group.Go(func() error {
		if err := p(ctx, m.Emit); err != nil {
			m.Close()
			return err
		}
		return nil
	})
}

// Wait blocks until every producer started with Go has returned and
// reports the first error among them.
func (m *Multiplexer) Wait() error {
	return m.group.Wait()
}

// Emit appends ev to the queue. Events emitted after Close are dropped.
func (m *Multiplexer) Emit(ev Event) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.queue = append(m.queue, ev)
	m.mu.Unlock()
	m.signal()
}

// Next blocks until an event is available and removes it from the queue.
// It returns ErrClosed once the multiplexer is closed and drained.
func (m *Multiplexer) Next(ctx context.Context) (Event, error) {
	for {
		m.mu.Lock()
		if len(m.queue) > 0 {
			ev := m.queue[0]
			m.queue[0] = nil
			m.queue = m.queue[1:]
			m.mu.Unlock()
			return ev, nil
		}
		closed := m.closed
		m.mu.Unlock()

		if closed {
			return nil, ErrClosed
		}

		select {
		case <-m.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Len returns the number of queued events.
func (m *Multiplexer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Close stops accepting events. Queued events can still be drained.
func (m *Multiplexer) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.signal()
}

func (m *Multiplexer) signal() {
	select {
	case m.ready <- struct{}{}:
	default:
	}
}
