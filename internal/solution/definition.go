package solution

import (
	"path/filepath"
	"strings"
)

// ProjectDefinition is the identity record of one project as declared in the
// solution file. It is never mutated after a load.
type ProjectDefinition struct {
	TypeID   string
	Kind     ProjectKind
	Name     string
	Path     string // relative to the solution directory, as written
	ID       string
	ParentID string // empty when the project is not nested
}

// FileName returns the base name of the project path.
func (d ProjectDefinition) FileName() string {
	return filepath.Base(nativePath(d.Path))
}

// AbsolutePath joins the project path with the solution directory.
func (d ProjectDefinition) AbsolutePath(solutionDir string) string {
	p := nativePath(d.Path)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(solutionDir, p)
}

// AbsoluteDir is the directory holding the project manifest.
func (d ProjectDefinition) AbsoluteDir(solutionDir string) string {
	return filepath.Dir(d.AbsolutePath(solutionDir))
}

// nativePath converts the backslash separators used by solution and project
// files into the host separator.
func nativePath(p string) string {
	return filepath.FromSlash(strings.ReplaceAll(p, `\`, "/"))
}

// canonicalID is the map key form of a project id.
func canonicalID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
