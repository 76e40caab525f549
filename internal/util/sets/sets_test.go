package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := New("Filter", "ProjectReference")
	assert.True(t, s.Has("Filter"))
	assert.False(t, s.Has("ClCompile"))

	assert.True(t, s.Add("ClCompile"))
	assert.False(t, s.Add("ClCompile"))
	assert.Len(t, s, 3)

	s.Delete("Filter")
	assert.False(t, s.Has("Filter"))
}

func TestSet_Pointers(t *testing.T) {
	type node struct{ name string }
	a, b := &node{"a"}, &node{"a"}
	s := New[*node]()
	s.Add(a)
	assert.True(t, s.Has(a))
	assert.False(t, s.Has(b))
}
