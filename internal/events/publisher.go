package events

import (
	"context"
	"sync"
	"time"
)

// Store is the sink a Publisher appends to. Implementations: in-memory (tests
// and single-node deployments) and the postgres outbox relayed to Kafka.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByTopic(ctx context.Context, topic Topic) ([]Event, error)
}

// Publisher fans committed ledger events into a Store, synchronously by
// default or through a buffered channel with WithAsyncBuffer. Close drains
// the buffer before returning.
type Publisher struct {
	store Store

	inbox  chan Event
	wg     sync.WaitGroup
	closed sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to asynchronous mode with the given
// channel capacity.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan Event, size)
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event. In async mode a full buffer falls back to a
// synchronous append rather than dropping the event.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		return p.store.Append(ctx, event)
	}
}

// List returns stored events for a topic, oldest first.
func (p *Publisher) List(ctx context.Context, topic Topic) ([]Event, error) {
	return p.store.ListByTopic(ctx, topic)
}

// Close stops the background appender after flushing buffered events.
func (p *Publisher) Close() {
	p.closed.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.inbox {
		// Best effort: a failed append must not wedge the drain loop.
		_ = p.store.Append(context.Background(), event)
	}
}
