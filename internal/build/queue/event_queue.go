// Package queue holds the multi-producer single-consumer queue that carries
// build events from the stream workers to the consumer.
package queue

import "sync"

// EventQueue is an unbounded FIFO safe for any number of producers and one
// draining consumer. Push never blocks on the consumer.
type EventQueue[T any] struct {
	mu     sync.Mutex
	items  []T
	pushed uint64
}

// NewEventQueue returns an empty queue.
func NewEventQueue[T any]() *EventQueue[T] {
	return &EventQueue[T]{}
}

// Push appends an item.
func (q *EventQueue[T]) Push(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, item)
	q.pushed++
}

// Drain removes and returns everything queued, oldest first. It returns an
// empty slice immediately when nothing is queued.
func (q *EventQueue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return []T{}
	}
	out := q.items
	q.items = nil
	return out
}

// Len is the number of items waiting.
func (q *EventQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Pushed is the number of items ever pushed.
func (q *EventQueue[T]) Pushed() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pushed
}
