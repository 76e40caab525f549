package forward

import (
	"context"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/solvent/internal/buildevent"
	"git.home.luguber.info/inful/solvent/internal/logfields"
)

// EventSource is the draining side of the orchestrator.
type EventSource interface {
	PollBatch() (sessionID string, evts []buildevent.Event)
	Notify() <-chan struct{}
}

// EventSink receives drained events. Sinks must not retain the slice.
type EventSink interface {
	ForwardEvents(sessionID string, evts []buildevent.Event) error
}

// Pump is the single consumer of an orchestrator's event queue. Every batch
// it drains is handed to each sink in order.
type Pump struct {
	source EventSource
	sinks  []EventSink
	logger *slog.Logger
}

// NewPump creates a pump feeding sinks.
func NewPump(source EventSource, logger *slog.Logger, sinks ...EventSink) *Pump {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pump{source: source, sinks: sinks, logger: logger}
}

// Run drains on every notification until ctx is done, then drains once more.
func (p *Pump) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.Flush()
			return
		case <-p.source.Notify():
			p.Flush()
		}
	}
}

// Flush drains whatever is queued right now.
func (p *Pump) Flush() {
	sessionID, evts := p.source.PollBatch()
	if len(evts) == 0 {
		return
	}
	for _, sink := range p.sinks {
		if err := sink.ForwardEvents(sessionID, evts); err != nil {
			p.logger.Warn("Build events not forwarded", logfields.SessionID(sessionID), logfields.Error(err))
		}
	}
}

// Backlog holds drained events until an HTTP client collects them. When it
// is full the oldest events are dropped.
type Backlog struct {
	mu      sync.Mutex
	limit   int
	events  []buildevent.Event
	dropped uint64
}

// NewBacklog creates a backlog holding at most limit events.
func NewBacklog(limit int) *Backlog {
	if limit <= 0 {
		limit = 10000
	}
	return &Backlog{limit: limit}
}

// ForwardEvents appends evts.
func (b *Backlog) ForwardEvents(_ string, evts []buildevent.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, evts...)
	if over := len(b.events) - b.limit; over > 0 {
		b.dropped += uint64(over)
		b.events = append([]buildevent.Event(nil), b.events[over:]...)
	}
	return nil
}

// Drain returns and clears the held events. It never returns nil.
func (b *Backlog) Drain() []buildevent.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.events
	b.events = nil
	if out == nil {
		return []buildevent.Event{}
	}
	return out
}

// Dropped reports how many events were discarded because the backlog was full.
func (b *Backlog) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
