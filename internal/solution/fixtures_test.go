package solution

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleSolution = "\ufeff\r\n" + `Microsoft Visual Studio Solution File, Format Version 12.00
# Visual Studio 2013
Project("{8BC9CEB8-8B4A-11D0-8D11-00A0C91BC942}") = "core", "src\core\core.vcxproj", "{11111111-1111-1111-1111-111111111111}"
EndProject
Project("{8BC9CEB8-8B4A-11D0-8D11-00A0C91BC942}") = "app", "src\app\app.vcxproj", "{22222222-2222-2222-2222-222222222222}"
	ProjectSection(ProjectDependencies) = postProject
		{11111111-1111-1111-1111-111111111111} = {11111111-1111-1111-1111-111111111111}
	EndProjectSection
EndProject
Project("{2150E333-8FDC-42A3-9474-1A3956D46DE8}") = "libs", "libs", "{33333333-3333-3333-3333-333333333333}"
EndProject
Global
	GlobalSection(SolutionConfigurationPlatforms) = preSolution
		Debug|Win32 = Debug|Win32
		Debug|x64 = Debug|x64
		Release|Win32 = Release|Win32
		Release|x64 = Release|x64
	EndGlobalSection
	GlobalSection(ProjectConfigurationPlatforms) = postSolution
		{11111111-1111-1111-1111-111111111111}.Debug|Win32.ActiveCfg = Debug|Win32
		{11111111-1111-1111-1111-111111111111}.Debug|Win32.Build.0 = Debug|Win32
		{11111111-1111-1111-1111-111111111111}.Debug|x64.ActiveCfg = Debug|x64
		{11111111-1111-1111-1111-111111111111}.Debug|x64.Build.0 = Debug|x64
		{11111111-1111-1111-1111-111111111111}.Release|Win32.ActiveCfg = Release|Win32
		{11111111-1111-1111-1111-111111111111}.Release|x64.ActiveCfg = Release|x64
		{22222222-2222-2222-2222-222222222222}.Debug|Win32.ActiveCfg = Debug|Win32
		{22222222-2222-2222-2222-222222222222}.Release|Win32.ActiveCfg = Release|Win32
		{22222222-2222-2222-2222-222222222222}.Release|Win32.Build.0 = Release|Win32
		{99999999-9999-9999-9999-999999999999}.Debug|Win32.Build.0 = Debug|Win32
	EndGlobalSection
	GlobalSection(SolutionProperties) = preSolution
		HideSolutionNode = FALSE
	EndGlobalSection
	GlobalSection(NestedProjects) = preSolution
		{11111111-1111-1111-1111-111111111111} = {33333333-3333-3333-3333-333333333333}
	EndGlobalSection
EndGlobal
`

const coreFilters = `<?xml version="1.0" encoding="utf-8"?>
<Project ToolsVersion="4.0" xmlns="http://schemas.microsoft.com/developer/msbuild/2003">
  <ItemGroup>
    <Filter Include="Source Files">
      <UniqueIdentifier>{4FC737F1-C7A5-4376-A066-2A32D752A2FF}</UniqueIdentifier>
    </Filter>
    <Filter Include="Source Files\detail">
      <UniqueIdentifier>{93995380-89BD-4b04-88EB-625FBE52EBFB}</UniqueIdentifier>
    </Filter>
  </ItemGroup>
  <ItemGroup>
    <ClCompile Include="core.cpp">
      <Filter>Source Files</Filter>
    </ClCompile>
    <ClCompile Include="detail\impl.cpp">
      <Filter>Source Files\detail</Filter>
    </ClCompile>
    <ClCompile Include="other.cpp">
      <Filter>Source Files</Filter>
    </ClCompile>
  </ItemGroup>
  <ItemGroup>
    <ClInclude Include="core.h" />
  </ItemGroup>
</Project>
`

const appProject = `<?xml version="1.0" encoding="utf-8"?>
<Project DefaultTargets="Build" ToolsVersion="12.0" xmlns="http://schemas.microsoft.com/developer/msbuild/2003">
  <ItemGroup Label="ProjectConfigurations">
    <ProjectConfiguration Include="Debug|Win32">
      <Configuration>Debug</Configuration>
      <Platform>Win32</Platform>
    </ProjectConfiguration>
  </ItemGroup>
  <ItemGroup>
    <ClCompile Include="main.cpp" />
    <None Include="readme.txt" />
    <ProjectReference Include="..\core\core.vcxproj" />
  </ItemGroup>
</Project>
`

// writeFixture lays out a solution tree under a temp dir and returns the
// solution path.
func writeFixture(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	return filepath.Join(root, "sample.sln")
}

func sampleFixture(t *testing.T) string {
	t.Helper()
	return writeFixture(t, map[string]string{
		"sample.sln":                    sampleSolution,
		"src/core/core.vcxproj.filters": coreFilters,
		"src/core/core.vcxproj":         appProject,
		"src/app/app.vcxproj":           appProject,
	})
}

// minimalSolution builds a solution text from project lines and extra
// global sections.
func minimalSolution(projects []string, sections ...string) string {
	var b strings.Builder
	b.WriteString("Microsoft Visual Studio Solution File, Format Version 12.00\n")
	for _, p := range projects {
		b.WriteString(p)
		b.WriteString("\nEndProject\n")
	}
	b.WriteString("Global\n")
	for _, s := range sections {
		b.WriteString(s)
		b.WriteString("\n")
	}
	b.WriteString("EndGlobal\n")
	return b.String()
}

func folderProject(name, id string) string {
	return `Project("{2150E333-8FDC-42A3-9474-1A3956D46DE8}") = "` + name + `", "` + name + `", "` + id + `"`
}
