package forward

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/solvent/internal/buildevent"
	"git.home.luguber.info/inful/solvent/internal/events"
	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
	"git.home.luguber.info/inful/solvent/internal/logfields"
)

// Message headers set on every forwarded build event.
const (
	HeaderSession = "Solvent-Session"
	HeaderStream  = "Solvent-Stream"
	HeaderType    = "Solvent-Type"
)

// Publisher is the part of *nats.Conn the forwarder needs.
type Publisher interface {
	PublishMsg(m *nats.Msg) error
}

// NATSForwarder publishes build events on <subject>.events, state changes
// on <subject>.state and solution reloads on <subject>.solution.
type NATSForwarder struct {
	pub     Publisher
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

// Option configures a NATSForwarder.
type Option func(*NATSForwarder)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *NATSForwarder) {
		if l != nil {
			f.logger = l
		}
	}
}

// Connect dials the NATS server at url.
func Connect(url, subject string, opts ...Option) (*NATSForwarder, error) {
	if url == "" {
		return nil, ferrors.ConfigError("forward.nats_url is required").Build()
	}
	conn, err := nats.Connect(url,
		nats.Name("solvent"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to connect to NATS").
			Retryable().
			WithContext("url", url).Build()
	}
	f := NewNATSForwarder(conn, subject, opts...)
	f.conn = conn
	f.logger.Info("NATS forwarder connected", slog.String("url", url), logfields.Subject(subject))
	return f, nil
}

// NewNATSForwarder wraps an existing publisher.
func NewNATSForwarder(pub Publisher, subject string, opts ...Option) *NATSForwarder {
	f := &NATSForwarder{pub: pub, subject: subject, logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// EventsSubject is the subject build events are published on.
func (f *NATSForwarder) EventsSubject() string { return f.subject + ".events" }

// StateSubject is the subject state changes are published on.
func (f *NATSForwarder) StateSubject() string { return f.subject + ".state" }

// SolutionSubject is the subject solution reloads are published on.
func (f *NATSForwarder) SolutionSubject() string { return f.subject + ".solution" }

// ForwardEvents publishes each event as one message in the wire encoding.
// Every event is attempted; the first failure is returned.
func (f *NATSForwarder) ForwardEvents(sessionID string, evts []buildevent.Event) error {
	var first error
	for _, e := range evts {
		data, err := buildevent.Encode(e)
		if err == nil {
			msg := nats.NewMsg(f.EventsSubject())
			msg.Data = data
			msg.Header.Set(HeaderSession, sessionID)
			msg.Header.Set(HeaderStream, e.Stream().String())
			msg.Header.Set(HeaderType, e.Type().String())
			err = f.pub.PublishMsg(msg)
		}
		if err != nil && first == nil {
			first = ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to forward build event").
				WithContext("subject", f.EventsSubject()).Build()
		}
	}
	if len(evts) > 0 {
		f.logger.Debug("Forwarded build events", logfields.Count(len(evts)), logfields.SessionID(sessionID))
	}
	return first
}

// ForwardState publishes one state change as JSON.
func (f *NATSForwarder) ForwardState(evt events.BuildStateChanged) error {
	return f.publishJSON(f.StateSubject(), evt.SessionID, evt)
}

// ForwardSolution publishes one solution reload as JSON.
func (f *NATSForwarder) ForwardSolution(evt events.SolutionReloaded) error {
	return f.publishJSON(f.SolutionSubject(), "", evt)
}

func (f *NATSForwarder) publishJSON(subject, sessionID string, evt events.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal notification").
			WithContext("event", evt.EventName()).Build()
	}
	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set(HeaderType, evt.EventName())
	if sessionID != "" {
		msg.Header.Set(HeaderSession, sessionID)
	}
	if err := f.pub.PublishMsg(msg); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to forward notification").
			WithContext("subject", subject).
			WithContext("event", evt.EventName()).Build()
	}
	return nil
}

// Run forwards bus notifications until ctx is done or the bus closes.
func (f *NATSForwarder) Run(ctx context.Context, bus *events.Bus) {
	ch, unsubscribe := events.Subscribe[events.Event](bus, 16)
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			var err error
			switch e := evt.(type) {
			case events.BuildStateChanged:
				err = f.ForwardState(e)
			case events.SolutionReloaded:
				err = f.ForwardSolution(e)
			default:
				continue
			}
			if err != nil {
				f.logger.Warn("Notification not forwarded", slog.String("event", evt.EventName()), logfields.Error(err))
			}
		}
	}
}

// Close drains and closes the connection opened by Connect.
func (f *NATSForwarder) Close() {
	if f.conn == nil {
		return
	}
	if err := f.conn.Drain(); err != nil {
		f.logger.Warn("NATS drain failed", logfields.Error(err))
		f.conn.Close()
	}
}
