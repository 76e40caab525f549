package solution

import "git.home.luguber.info/inful/solvent/internal/foundation/normalization"

// ProjectKind is the semantic category resolved from a project type id.
type ProjectKind string

const (
	// KindGeneric covers solution folders and other non-buildable entries.
	KindGeneric ProjectKind = "generic"
	// KindNative covers native-code projects with a manifest on disk.
	KindNative ProjectKind = "native"
)

// Well-known project type ids.
const (
	TypeIDGeneric = "{2150E333-8FDC-42A3-9474-1A3956D46DE8}"
	TypeIDNative  = "{8BC9CEB8-8B4A-11D0-8D11-00A0C91BC942}"
)

var kindNormalizer = normalization.NewNormalizer(map[string]ProjectKind{
	TypeIDGeneric: KindGeneric,
	TypeIDNative:  KindNative,
}, KindNative)

// ResolveKind maps a type id to its kind. Unknown ids resolve to KindNative
// and report known=false so the caller can emit a diagnostic.
func ResolveKind(typeID string) (kind ProjectKind, known bool) {
	if k, ok := kindNormalizer.Lookup(typeID); ok {
		return k, true
	}
	return kindNormalizer.Default(), false
}
