package buildevent

// Filter decides which events a console shows. Lifecycle events are always
// shown.
type Filter struct {
	ShowErrors    bool
	ShowWarnings  bool
	ShowMessages  bool
	MinImportance Importance
}

// DefaultFilter shows errors, warnings and high importance messages.
func DefaultFilter() Filter {
	return Filter{
		ShowErrors:    true,
		ShowWarnings:  true,
		ShowMessages:  true,
		MinImportance: ImportanceHigh,
	}
}

// Allows reports whether the event passes the filter.
func (f Filter) Allows(e Event) bool {
	switch e.Type() {
	case TypeBuildError:
		return f.ShowErrors
	case TypeBuildWarning:
		return f.ShowWarnings
	case TypeBuildMessage:
		return f.ShowMessages && e.Importance() >= f.MinImportance
	default:
		return true
	}
}

// Apply returns the events that pass the filter, in order.
func (f Filter) Apply(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if f.Allows(e) {
			out = append(out, e)
		}
	}
	return out
}
