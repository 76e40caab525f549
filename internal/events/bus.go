package events

import (
	"context"
	"reflect"
	"sync"

	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
)

// Bus fans orchestrator and workspace notifications out to in-process
// observers such as the NATS forwarder.
//
// Publish waits until every matching subscriber has taken the event, so a
// stalled observer holds the publisher back until its context expires.
// Nothing is retained for subscribers that arrive later.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscription
	nextID uint64
	closed bool
}

// subscription is the type-erased side of one Subscribe call.
type subscription struct {
	kind  reflect.Type
	offer func(ctx context.Context, evt Event) error
	stop  func()
}

func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]*subscription)}
}

// Subscribe returns a channel receiving every published event that is a T.
// Subscribing to Event receives everything. The returned func unsubscribes
// and closes the channel; Close does the same for all subscriptions.
func Subscribe[T Event](b *Bus, buffer int) (<-chan T, func()) {
	ch := make(chan T, buffer)
	done := make(chan struct{})

	// sendMu keeps the channel open while an offer is in flight.
	var sendMu sync.Mutex
	var stopOnce sync.Once
	stop := func() {
		stopOnce.Do(func() {
			close(done)
			sendMu.Lock()
			close(ch)
			sendMu.Unlock()
		})
	}

	sub := &subscription{
		kind: reflect.TypeFor[T](),
		offer: func(ctx context.Context, evt Event) error {
			v, ok := evt.(T)
			if !ok {
				return nil
			}
			sendMu.Lock()
			defer sendMu.Unlock()
			select {
			case <-done:
				return nil
			default:
			}
			select {
			case ch <- v:
				return nil
			case <-done:
				return nil
			case <-ctx.Done():
				return ferrors.WrapError(ctx.Err(), ferrors.CategoryRuntime, "event publish canceled").
					WithContext("event", evt.EventName()).
					WithContext("subscriber", reflect.TypeFor[T]().String()).
					Build()
			}
		},
		stop: stop,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		stop()
		return ch, func() {}
	}
	b.nextID++
	id := b.nextID
	b.subs[id] = sub
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		stop()
	}
}

// SubscriberCount returns the number of live subscriptions made for exactly T.
func SubscriberCount[T Event](b *Bus) int {
	if b == nil {
		return 0
	}
	kind := reflect.TypeFor[T]()

	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, s := range b.subs {
		if s.kind == kind {
			n++
		}
	}
	return n
}

// Publish delivers evt to every subscriber whose type it satisfies.
func (b *Bus) Publish(ctx context.Context, evt Event) error {
	if evt == nil {
		return ferrors.ValidationError("event cannot be nil").Build()
	}
	if ctx == nil {
		return ferrors.ValidationError("context cannot be nil").Build()
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ferrors.RuntimeError("event bus is closed").
			WithContext("event", evt.EventName()).Build()
	}
	targets := make([]*subscription, 0, len(b.subs))
	for _, s := range b.subs {
		targets = append(targets, s)
	}
	b.mu.RUnlock()

	for _, s := range targets {
		if err := s.offer(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}

// Close shuts the bus down and closes every subscription channel. Later
// publishes fail and later subscriptions receive an already closed channel.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := b.subs
	b.subs = make(map[uint64]*subscription)
	b.mu.Unlock()

	for _, s := range subs {
		s.stop()
	}
}
