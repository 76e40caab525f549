package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case got := <-ch:
		return got
	case <-time.After(250 * time.Millisecond):
		t.Fatal("timed out waiting for event")
	}
	var zero T
	return zero
}

func TestBus_PublishSubscribe(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ch, unsubscribe := Subscribe[BuildStateChanged](b, 1)
	defer unsubscribe()

	require.NoError(t, b.Publish(context.Background(), BuildStateChanged{SessionID: "s1", From: "idle", To: "running"}))

	got := receive(t, ch)
	require.Equal(t, "s1", got.SessionID)
	require.Equal(t, "running", got.To)
}

func TestBus_InterfaceSubscriptionReceivesAllEvents(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ch, unsubscribe := Subscribe[Event](b, 2)
	defer unsubscribe()

	require.NoError(t, b.Publish(context.Background(), SolutionReloaded{Path: "a.sln", Projects: 2}))
	require.NoError(t, b.Publish(context.Background(), BuildStateChanged{SessionID: "s1", To: "running"}))

	require.Equal(t, "solution.reloaded", receive(t, ch).EventName())
	require.Equal(t, "build.state", receive(t, ch).EventName())
}

func TestBus_ConcreteSubscriptionFiltersOtherTypes(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ch, unsubscribe := Subscribe[SolutionReloaded](b, 1)
	defer unsubscribe()

	require.NoError(t, b.Publish(context.Background(), BuildStateChanged{To: "failed"}))
	select {
	case evt := <-ch:
		t.Fatalf("unexpected event %v", evt)
	default:
	}
	require.Equal(t, 1, SubscriberCount[SolutionReloaded](b))
	require.Equal(t, 0, SubscriberCount[BuildStateChanged](b))
}

func TestBus_PublishBackpressure(t *testing.T) {
	b := NewBus()
	defer b.Close()

	_, unsubscribe := Subscribe[BuildStateChanged](b, 0) // unbuffered; no receiver => blocks
	defer unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := b.Publish(ctx, BuildStateChanged{To: "running"})
	require.Error(t, err)

	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	require.Equal(t, ferrors.CategoryRuntime, classified.Category())
}

func TestBus_Close(t *testing.T) {
	b := NewBus()

	ch, _ := Subscribe[BuildStateChanged](b, 1)
	b.Close()

	// Channel must be closed on bus close.
	_, ok := <-ch
	require.False(t, ok)

	err := b.Publish(context.Background(), BuildStateChanged{})
	require.Error(t, err)

	late, _ := Subscribe[BuildStateChanged](b, 1)
	_, ok = <-late
	require.False(t, ok)
}

func TestBus_UnsubscribeReleasesBlockedPublish(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ch, unsubscribe := Subscribe[BuildStateChanged](b, 0)

	published := make(chan error, 1)
	go func() {
		published <- b.Publish(context.Background(), BuildStateChanged{To: "running"})
	}()

	time.Sleep(20 * time.Millisecond)
	unsubscribe()

	select {
	case err := <-published:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("publish stayed blocked after unsubscribe")
	}
	_, ok := <-ch
	require.False(t, ok)
	require.Equal(t, 0, SubscriberCount[BuildStateChanged](b))

	// Unsubscribing twice is harmless.
	unsubscribe()
}

func TestBus_InterfaceSubscriptionCountedSeparately(t *testing.T) {
	b := NewBus()
	defer b.Close()

	_, unsubAll := Subscribe[Event](b, 1)
	defer unsubAll()
	_, unsubState := Subscribe[BuildStateChanged](b, 1)
	defer unsubState()

	require.Equal(t, 1, SubscriberCount[Event](b))
	require.Equal(t, 1, SubscriberCount[BuildStateChanged](b))
	require.Equal(t, 0, SubscriberCount[SolutionReloaded](b))
}
