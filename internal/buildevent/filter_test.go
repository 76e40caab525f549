package buildevent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	low := New(TypeBuildMessage, ImportanceLow, nil)
	high := New(TypeBuildMessage, ImportanceHigh, nil)
	warn := New(TypeBuildWarning, ImportanceNone, nil)
	fail := New(TypeBuildError, ImportanceNone, nil)
	start := New(TypeProjectStarted, ImportanceNone, nil)
	raw := Raw("text")

	all := []Event{low, high, warn, fail, start, raw}

	f := DefaultFilter()
	assert.Equal(t, []Event{high, warn, fail, start, raw}, f.Apply(all))

	f.MinImportance = ImportanceLow
	assert.Len(t, f.Apply(all), 6)

	quiet := Filter{ShowErrors: true, MinImportance: ImportanceLow}
	assert.Equal(t, []Event{fail, start, raw}, quiet.Apply(all))
}
