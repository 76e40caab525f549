package buildevent

import "git.home.luguber.info/inful/solvent/internal/foundation/normalization"

// Type is the closed set of build event kinds.
type Type int

const (
	TypeUnknown Type = iota
	TypeRawMessage
	TypeBuildStarted
	TypeBuildFinished
	TypeProjectStarted
	TypeProjectFinished
	TypeTargetStarted
	TypeTargetFinished
	TypeTaskStarted
	TypeTaskFinished
	TypeBuildMessage
	TypeBuildWarning
	TypeBuildError
)

var typeNames = [...]string{
	TypeUnknown:         "Unknown",
	TypeRawMessage:      "RawMessage",
	TypeBuildStarted:    "BuildStarted",
	TypeBuildFinished:   "BuildFinished",
	TypeProjectStarted:  "ProjectStarted",
	TypeProjectFinished: "ProjectFinished",
	TypeTargetStarted:   "TargetStarted",
	TypeTargetFinished:  "TargetFinished",
	TypeTaskStarted:     "TaskStarted",
	TypeTaskFinished:    "TaskFinished",
	TypeBuildMessage:    "BuildMessage",
	TypeBuildWarning:    "BuildWarning",
	TypeBuildError:      "BuildError",
}

var typeLabels = [...]string{
	TypeUnknown:         "Unknown",
	TypeRawMessage:      "Message",
	TypeBuildStarted:    "Build Started",
	TypeBuildFinished:   "Build Finished",
	TypeProjectStarted:  "Project Started",
	TypeProjectFinished: "Project Finished",
	TypeTargetStarted:   "Target Started",
	TypeTargetFinished:  "Target Finished",
	TypeTaskStarted:     "Task Started",
	TypeTaskFinished:    "Task Finished",
	TypeBuildMessage:    "Message",
	TypeBuildWarning:    "Warning",
	TypeBuildError:      "ERROR",
}

// String returns the wire name of the type.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return typeNames[TypeUnknown]
	}
	return typeNames[t]
}

// Label returns the human readable name used when rendering a log line.
func (t Type) Label() string {
	if t < 0 || int(t) >= len(typeLabels) {
		return typeLabels[TypeUnknown]
	}
	return typeLabels[t]
}

var typeNormalizer = func() *normalization.Normalizer[Type] {
	values := make(map[string]Type, len(typeNames)-1)
	for t := TypeRawMessage; t <= TypeBuildError; t++ {
		values[typeNames[t]] = t
	}
	return normalization.NewNormalizer(values, TypeUnknown)
}()

// ParseType resolves a wire type name, case-insensitively. Unknown names
// return TypeUnknown and false.
func ParseType(raw string) (Type, bool) {
	return typeNormalizer.Lookup(raw)
}

// Types lists every known type except TypeUnknown.
func Types() []Type {
	out := make([]Type, 0, len(typeNames)-1)
	for t := TypeRawMessage; t <= TypeBuildError; t++ {
		out = append(out, t)
	}
	return out
}

// Importance orders BuildMessage events.
type Importance int

const (
	ImportanceNone Importance = iota
	ImportanceLow
	ImportanceMedium
	ImportanceHigh
)

func (i Importance) String() string {
	switch i {
	case ImportanceLow:
		return "Low"
	case ImportanceMedium:
		return "Medium"
	case ImportanceHigh:
		return "High"
	default:
		return ""
	}
}

var importanceNormalizer = normalization.NewNormalizer(map[string]Importance{
	"Low":    ImportanceLow,
	"Medium": ImportanceMedium,
	"High":   ImportanceHigh,
}, ImportanceHigh)

// ParseImportance maps a wire importance; absent or unknown values are High.
func ParseImportance(raw string) Importance {
	return importanceNormalizer.Normalize(raw)
}

// Stream names the output channel an event was read from.
type Stream int

const (
	StreamStdout Stream = iota
	StreamStderr
)

func (s Stream) String() string {
	switch s {
	case StreamStdout:
		return "stdout"
	case StreamStderr:
		return "stderr"
	default:
		return "unknown"
	}
}
