package buildevent

import (
	"fmt"
	"maps"
	"strings"
)

// Well-known field names of the structured encoding.
const (
	FieldType       = "type"
	FieldMessage    = "message"
	FieldImportance = "importance"
	FieldTimestamp  = "timestamp"
)

// Event is one build lifecycle event. It is immutable once created.
type Event struct {
	typ        Type
	importance Importance
	fields     map[string]string
	stream     Stream
}

// New creates an event from a type and its fields. importance is only kept
// for BuildMessage events.
func New(t Type, importance Importance, fields map[string]string) Event {
	if t != TypeBuildMessage {
		importance = ImportanceNone
	} else if importance == ImportanceNone {
		importance = ImportanceHigh
	}
	f := make(map[string]string, len(fields)+1)
	maps.Copy(f, fields)
	f[FieldType] = t.String()
	if t == TypeBuildMessage {
		f[FieldImportance] = importance.String()
	}
	return Event{typ: t, importance: importance, fields: f}
}

// Raw wraps unstructured text as a RawMessage event.
func Raw(text string) Event {
	return New(TypeRawMessage, ImportanceNone, map[string]string{
		FieldTimestamp: "n/a",
		FieldMessage:   text,
	})
}

func (e Event) Type() Type             { return e.typ }
func (e Event) Importance() Importance { return e.importance }
func (e Event) Stream() Stream         { return e.stream }

// Field returns a named field.
func (e Event) Field(name string) (string, bool) {
	v, ok := e.fields[name]
	return v, ok
}

// Fields returns a copy of every field.
func (e Event) Fields() map[string]string {
	return maps.Clone(e.fields)
}

// Message is the full message text.
func (e Event) Message() string { return e.fields[FieldMessage] }

// Timestamp is the timestamp as reported by the build tool.
func (e Event) Timestamp() string { return e.fields[FieldTimestamp] }

// ShortMessage is the message up to its first line break.
func (e Event) ShortMessage() string {
	msg := e.Message()
	if i := strings.IndexAny(msg, "\r\n"); i >= 0 {
		return msg[:i]
	}
	return msg
}

// Render formats the event as a single console line.
func (e Event) Render() string {
	return fmt.Sprintf("%-16s| %s", e.typ.Label(), e.ShortMessage())
}

// withStream returns a copy tagged with the channel it was read from.
func (e Event) withStream(s Stream) Event {
	e.stream = s
	return e
}
