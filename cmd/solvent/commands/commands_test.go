package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/solvent/internal/buildevent"
	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
	"git.home.luguber.info/inful/solvent/internal/testutil"
)

const testSolution = "Microsoft Visual Studio Solution File, Format Version 12.00\r\n" +
	"Project(\"{8BC9CEB8-8B4A-11D0-8D11-00A0C91BC942}\") = \"core\", \"core\\core.vcxproj\", \"{11111111-1111-1111-1111-111111111111}\"\r\n" +
	"EndProject\r\n" +
	"Global\r\n" +
	"\tGlobalSection(SolutionConfigurationPlatforms) = preSolution\r\n" +
	"\t\tDebug|x64 = Debug|x64\r\n" +
	"\t\tRelease|x64 = Release|x64\r\n" +
	"\tEndGlobalSection\r\n" +
	"EndGlobal\r\n"

const testProject = `<?xml version="1.0" encoding="utf-8"?>
<Project xmlns="http://schemas.microsoft.com/developer/msbuild/2003">
  <ItemGroup>
    <ClCompile Include="main.cpp" />
    <ClInclude Include="main.h" />
  </ItemGroup>
</Project>
`

// fixture writes a solution and an empty configuration file into a temp dir.
func fixture(t *testing.T) (dir, sln, cfg string) {
	t.Helper()
	dir = t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"core/core.vcxproj": testProject,
		"app.sln":           testSolution,
		"solvent.yaml":      "log:\n  level: warn\n",
	})
	return dir, filepath.Join(dir, "app.sln"), filepath.Join(dir, "solvent.yaml")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Name("solvent"), kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	var out bytes.Buffer
	err = kctx.Run(&Global{Out: &out}, cli)
	return out.String(), err
}

func TestTreeCommand(t *testing.T) {
	_, sln, cfg := fixture(t)

	out, err := run(t, "-c", cfg, "tree", sln)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "[app.sln]\n"), out)
	assert.Contains(t, out, "Config  :Debug")
	assert.Contains(t, out, "Platform:x64")
	assert.Contains(t, out, "main.cpp")
}

func TestTreeCommand_SelectionFlags(t *testing.T) {
	_, sln, cfg := fixture(t)

	out, err := run(t, "-c", cfg, "tree", sln, "-C", "Release")
	require.NoError(t, err)
	assert.Contains(t, out, "Config  :Release")
}

func TestTreeCommand_MissingSolution(t *testing.T) {
	dir, _, cfg := fixture(t)

	_, err := run(t, "-c", cfg, "tree", filepath.Join(dir, "missing.sln"))
	require.Error(t, err)
}

func TestFilesCommand(t *testing.T) {
	dir, sln, cfg := fixture(t)

	out, err := run(t, "-c", cfg, "files", sln)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "0:0\tcore\tmain.cpp", lines[0])
	assert.Equal(t, "0:1\tcore\tmain.h", lines[1])

	out, err = run(t, "-c", cfg, "files", sln, "--open", "0:1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "core", "main.h"), strings.TrimSpace(out))
}

func TestFilesCommand_UnknownID(t *testing.T) {
	_, sln, cfg := fixture(t)

	for _, id := range []string{"3:0", "0:9", "nonsense"} {
		_, err := run(t, "-c", cfg, "files", sln, "--open", id)
		require.Error(t, err, id)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound), id)
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solvent.yaml")

	out, err := run(t, "-c", path, "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)
	testutil.NewFileAssertions(t, dir).
		AssertFileExists("solvent.yaml").
		AssertFileContains("solvent.yaml", "tool: msbuild")

	_, err = run(t, "-c", path, "init")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

	_, err = run(t, "-c", path, "init", "--force")
	require.NoError(t, err)
}

func TestConfigErrors(t *testing.T) {
	dir, sln, _ := fixture(t)

	_, err := run(t, "-c", filepath.Join(dir, "absent.yaml"), "tree", sln)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("build:\n  stop_grace: soon\n"), 0o600))
	_, err = run(t, "-c", bad, "tree", sln)
	require.Error(t, err)
}

func TestOutputFlags_Filter(t *testing.T) {
	f := OutputFlags{NoWarnings: true, Importance: "low"}.filter()
	assert.True(t, f.ShowErrors)
	assert.False(t, f.ShowWarnings)
	assert.True(t, f.ShowMessages)
	assert.Equal(t, buildevent.ImportanceLow, f.MinImportance)
}
