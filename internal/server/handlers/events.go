package handlers

import (
	"net/http"
	"strconv"

	"git.home.luguber.info/inful/solvent/internal/buildevent"
	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
	"git.home.luguber.info/inful/solvent/internal/server/responses"
)

// EventHandlers serves drained build events.
type EventHandlers struct {
	buffer  EventBuffer
	adapter *ferrors.HTTPErrorAdapter
}

// NewEventHandlers creates event handlers.
func NewEventHandlers(buffer EventBuffer, adapter *ferrors.HTTPErrorAdapter) *EventHandlers {
	return &EventHandlers{buffer: buffer, adapter: adapter}
}

// HandleEvents drains the buffered events. Query parameters errors,
// warnings and messages (booleans) and min_importance narrow the result;
// without them every event is returned. Events filtered out are discarded.
func (h *EventHandlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	filter, filtered, err := parseFilter(r)
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	evts := h.buffer.Drain()
	if filtered {
		evts = filter.Apply(evts)
	}
	resp := responses.EventsResponse{Events: evts, Count: len(evts), Dropped: h.buffer.Dropped()}
	if err := writeJSONPretty(w, r, http.StatusOK, resp); err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
	}
}

func parseFilter(r *http.Request) (buildevent.Filter, bool, error) {
	q := r.URL.Query()
	f := buildevent.Filter{ShowErrors: true, ShowWarnings: true, ShowMessages: true, MinImportance: buildevent.ImportanceNone}
	filtered := false

	flags := []struct {
		name string
		dst  *bool
	}{
		{"errors", &f.ShowErrors},
		{"warnings", &f.ShowWarnings},
		{"messages", &f.ShowMessages},
	}
	for _, flag := range flags {
		raw := q.Get(flag.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, false, ferrors.ValidationError("invalid boolean query parameter").
				WithContext("param", flag.name).
				WithContext("value", raw).Build()
		}
		*flag.dst = v
		filtered = true
	}
	if raw := q.Get("min_importance"); raw != "" {
		f.MinImportance = buildevent.ParseImportance(raw)
		filtered = true
	}
	return f, filtered, nil
}
