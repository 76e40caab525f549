package forward

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/solvent/internal/buildevent"
)

type fakeSource struct {
	mu      sync.Mutex
	session string
	next    string
	queued  []buildevent.Event
	notify  chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{session: "s1", notify: make(chan struct{}, 1)}
}

func (s *fakeSource) push(evts ...buildevent.Event) {
	s.mu.Lock()
	s.queued = append(s.queued, evts...)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// PollBatch switches to a new session right after draining, the way a
// build started between two polls would.
func (s *fakeSource) PollBatch() (string, []buildevent.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, out := s.session, s.queued
	s.queued = nil
	if s.next != "" {
		s.session, s.next = s.next, ""
	}
	return id, out
}

func (s *fakeSource) Notify() <-chan struct{} { return s.notify }

type sessionRecorder struct {
	mu       sync.Mutex
	sessions []string
}

func (r *sessionRecorder) ForwardEvents(sessionID string, _ []buildevent.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, sessionID)
	return nil
}

func TestPump_FlushTagsBatchWithDrainedSession(t *testing.T) {
	src := newFakeSource()
	src.next = "s2"
	rec := &sessionRecorder{}
	p := NewPump(src, nil, rec)

	src.push(buildevent.Raw("tail of s1"))
	p.Flush()
	src.push(buildevent.Raw("head of s2"))
	p.Flush()
	p.Flush()

	assert.Equal(t, []string{"s1", "s2"}, rec.sessions)
}

func TestPump_FansOutToSinks(t *testing.T) {
	src := newFakeSource()
	backlog := NewBacklog(0)
	pub := &recordingPublisher{}
	p := NewPump(src, nil, backlog, NewNATSForwarder(pub, "solvent"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	src.push(buildevent.Raw("one"), buildevent.Raw("two"))
	require.Eventually(t, func() bool { return len(pub.messages()) == 2 }, 2*time.Second, 5*time.Millisecond)

	src.push(buildevent.Raw("three"))
	cancel()
	<-done

	var got []string
	for _, e := range backlog.Drain() {
		got = append(got, e.Message())
	}
	assert.Equal(t, []string{"one", "two", "three"}, got)
	assert.Equal(t, "s1", pub.messages()[0].Header.Get(HeaderSession))
}

func TestBacklog_DropsOldest(t *testing.T) {
	b := NewBacklog(2)
	require.NoError(t, b.ForwardEvents("s", []buildevent.Event{buildevent.Raw("a"), buildevent.Raw("b"), buildevent.Raw("c")}))

	evts := b.Drain()
	require.Len(t, evts, 2)
	assert.Equal(t, "b", evts[0].Message())
	assert.Equal(t, "c", evts[1].Message())
	assert.Equal(t, uint64(1), b.Dropped())

	assert.NotNil(t, b.Drain())
	assert.Empty(t, b.Drain())
}
