package solution

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayName(t *testing.T) {
	s, err := Load(sampleFixture(t))
	require.NoError(t, err)

	core, app, libs := s.Projects[0], s.Projects[1], s.Projects[2]

	// Debug|Win32 is selected by default.
	assert.Equal(t, "[core] (Debug|Win32)", DisplayName(core.Root))
	assert.Equal(t, "[app] (won't build)", DisplayName(app.Root))
	assert.Equal(t, "[libs]", DisplayName(libs.Root))
	assert.Equal(t, "[sample.sln]", s.DisplayName())

	require.NoError(t, s.Matrix.Select(AxisConfiguration, "Release"))
	assert.Equal(t, "[core] (won't build)", DisplayName(core.Root))
	assert.Equal(t, "[app] (Release|Win32)", DisplayName(app.Root))

	impl := core.Root.Children[0].Children[1].Children[0]
	assert.Equal(t, "impl.cpp", DisplayName(impl))
	assert.Equal(t, filepath.Join(core.AbsoluteDir(), "detail", "impl.cpp"), OpenPath(impl))
	assert.Empty(t, OpenPath(core.Root))
}

func TestRenderTree(t *testing.T) {
	s, err := Load(sampleFixture(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.RenderTree(&buf))

	expected := `[sample.sln]
  Config  :Debug
  Platform:Win32
  [app] (won't build)
    main.cpp
    readme.txt
  [libs]
    [core] (Debug|Win32)
      Source Files
        core.cpp
        detail
          impl.cpp
        other.cpp
      core.h
`
	assert.Equal(t, expected, buf.String())
}

func TestFileIndex(t *testing.T) {
	s, err := Load(sampleFixture(t))
	require.NoError(t, err)

	refs := s.FileIndex()
	require.Len(t, refs, 6)
	assert.Equal(t, "core", refs[0].Project)
	assert.Equal(t, "core.cpp", refs[0].Path)
	assert.Equal(t, 1, refs[4].ProjectIndex)
	assert.Equal(t, "main.cpp", refs[4].Path)

	abs, ok := s.LookupFile(1, 1)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(s.Projects[1].AbsoluteDir(), "readme.txt"), abs)

	_, ok = s.LookupFile(2, 0)
	assert.False(t, ok)
}
