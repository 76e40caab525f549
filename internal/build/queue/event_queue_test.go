package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueue_DrainOrder(t *testing.T) {
	q := NewEventQueue[int]()
	assert.Empty(t, q.Drain())

	q.Push(1)
	q.Push(2)
	q.Push(3)
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, []int{1, 2, 3}, q.Drain())
	assert.Empty(t, q.Drain())
	assert.Equal(t, uint64(3), q.Pushed())
}

func TestEventQueue_ConcurrentProducers(t *testing.T) {
	q := NewEventQueue[[2]int]()
	const producers, perProducer = 4, 500

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				q.Push([2]int{p, i})
			}
		}()
	}

	var got [][2]int
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for finished := false; !finished; {
		select {
		case <-done:
			finished = true
		case <-time.After(time.Millisecond):
		}
		got = append(got, q.Drain()...)
	}
	got = append(got, q.Drain()...)

	require.Len(t, got, producers*perProducer)
	next := make([]int, producers)
	for _, item := range got {
		// Per producer order is preserved.
		require.Equal(t, next[item[0]], item[1])
		next[item[0]]++
	}
}

func TestEventQueue_DrainHandsOverOwnership(t *testing.T) {
	q := NewEventQueue[string]()
	q.Push("a")
	first := q.Drain()
	q.Push("b")

	// A later push must not show up in a slice already handed out.
	assert.Equal(t, []string{"a"}, first)
	assert.Equal(t, []string{"b"}, q.Drain())
	assert.Equal(t, uint64(2), q.Pushed())
	assert.Zero(t, q.Len())
}
