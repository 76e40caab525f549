package solution

import (
	"slices"
	"sort"
	"sync"

	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
	"git.home.luguber.info/inful/solvent/internal/foundation/normalization"
)

// Axis selects one of the two solution variant dimensions.
type Axis string

const (
	AxisConfiguration Axis = "configuration"
	AxisPlatform      Axis = "platform"
)

var axisNormalizer = normalization.NewNormalizer(map[string]Axis{
	"configuration": AxisConfiguration,
	"config":        AxisConfiguration,
	"platform":      AxisPlatform,
}, "")

// ParseAxis resolves a user supplied axis name.
func ParseAxis(raw string) (Axis, error) {
	return axisNormalizer.NormalizeWithError(raw)
}

// ProjectConfigEntry is the per project mapping for one solution variant.
type ProjectConfigEntry struct {
	ProjectID     string
	Configuration string // solution configuration
	Platform      string // solution platform

	// ActiveCfg mapping. Empty when the solution never declared one.
	LocalConfiguration string
	LocalPlatform      string
	HasActiveCfg       bool

	Builds bool
}

type entryKey struct {
	project, configuration, platform string
}

// ConfigMatrix holds the ordered solution configurations and platforms and
// the lazily created per project entries.
//
// Entries are written only while a solution loads. The selected axis values
// are the one piece of state mutated afterwards and are guarded by a mutex.
type ConfigMatrix struct {
	configurations []string
	platforms      []string
	entries        map[entryKey]*ProjectConfigEntry

	mu       sync.RWMutex
	selected map[Axis]int
}

// NewConfigMatrix returns an empty matrix.
func NewConfigMatrix() *ConfigMatrix {
	return &ConfigMatrix{
		entries:  make(map[entryKey]*ProjectConfigEntry),
		selected: map[Axis]int{AxisConfiguration: 0, AxisPlatform: 0},
	}
}

// AddVariant records a solution configuration and platform, keeping first-seen
// order and dropping duplicates.
func (m *ConfigMatrix) AddVariant(configuration, platform string) {
	if configuration != "" && !slices.Contains(m.configurations, configuration) {
		m.configurations = append(m.configurations, configuration)
	}
	if platform != "" && !slices.Contains(m.platforms, platform) {
		m.platforms = append(m.platforms, platform)
	}
}

// Configurations returns the solution configurations in declaration order.
func (m *ConfigMatrix) Configurations() []string { return slices.Clone(m.configurations) }

// Platforms returns the solution platforms in declaration order.
func (m *ConfigMatrix) Platforms() []string { return slices.Clone(m.platforms) }

// Values returns the values of one axis.
func (m *ConfigMatrix) Values(axis Axis) []string {
	if axis == AxisPlatform {
		return m.Platforms()
	}
	return m.Configurations()
}

// GetOrCreate returns the entry for the triple, creating it on first use.
// Repeated calls return the same pointer.
func (m *ConfigMatrix) GetOrCreate(projectID, configuration, platform string) *ProjectConfigEntry {
	key := entryKey{canonicalID(projectID), configuration, platform}
	if e, ok := m.entries[key]; ok {
		return e
	}
	e := &ProjectConfigEntry{ProjectID: projectID, Configuration: configuration, Platform: platform}
	m.entries[key] = e
	return e
}

// Lookup returns the entry for the triple without creating it.
func (m *ConfigMatrix) Lookup(projectID, configuration, platform string) (*ProjectConfigEntry, bool) {
	e, ok := m.entries[entryKey{canonicalID(projectID), configuration, platform}]
	return e, ok
}

// SetActiveCfg records the project local variant for an entry.
func (m *ConfigMatrix) SetActiveCfg(e *ProjectConfigEntry, configuration, platform string) {
	e.LocalConfiguration = configuration
	e.LocalPlatform = platform
	e.HasActiveCfg = true
}

// MarkBuilds flags the entry as participating in the build.
func (m *ConfigMatrix) MarkBuilds(e *ProjectConfigEntry) {
	e.Builds = true
}

// Entries returns every entry ordered by project, configuration and platform.
func (m *ConfigMatrix) Entries() []ProjectConfigEntry {
	out := make([]ProjectConfigEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ProjectID != b.ProjectID {
			return a.ProjectID < b.ProjectID
		}
		if a.Configuration != b.Configuration {
			return a.Configuration < b.Configuration
		}
		return a.Platform < b.Platform
	})
	return out
}

// Selected returns the currently chosen value of an axis, or "" when the
// solution declared none.
func (m *ConfigMatrix) Selected(axis Axis) string {
	values := m.axisValues(axis)
	m.mu.RLock()
	idx := m.selected[axis]
	m.mu.RUnlock()
	if idx < 0 || idx >= len(values) {
		return ""
	}
	return values[idx]
}

// Selection returns both selected values under one lock.
func (m *ConfigMatrix) Selection() (configuration, platform string) {
	m.mu.RLock()
	ci, pi := m.selected[AxisConfiguration], m.selected[AxisPlatform]
	m.mu.RUnlock()
	if ci < len(m.configurations) {
		configuration = m.configurations[ci]
	}
	if pi < len(m.platforms) {
		platform = m.platforms[pi]
	}
	return configuration, platform
}

// Toggle advances an axis to its next value, wrapping around.
func (m *ConfigMatrix) Toggle(axis Axis) string {
	values := m.axisValues(axis)
	if len(values) == 0 {
		return ""
	}
	m.mu.Lock()
	idx := (m.selected[axis] + 1) % len(values)
	m.selected[axis] = idx
	m.mu.Unlock()
	return values[idx]
}

// Select chooses an axis value by name.
func (m *ConfigMatrix) Select(axis Axis, value string) error {
	values := m.axisValues(axis)
	idx := slices.Index(values, value)
	if idx < 0 {
		return ferrors.ValidationError("unknown axis value").
			WithContext("axis", string(axis)).
			WithContext("value", value).
			WithContext("valid", values).
			Build()
	}
	m.mu.Lock()
	m.selected[axis] = idx
	m.mu.Unlock()
	return nil
}

// BuildsSelected reports whether a project participates in the build under
// the currently selected variant.
func (m *ConfigMatrix) BuildsSelected(projectID string) bool {
	configuration, platform := m.Selection()
	e, ok := m.Lookup(projectID, configuration, platform)
	return ok && e.Builds
}

func (m *ConfigMatrix) axisValues(axis Axis) []string {
	if axis == AxisPlatform {
		return m.platforms
	}
	return m.configurations
}
