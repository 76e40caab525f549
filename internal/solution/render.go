package solution

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// nodeBehavior is the per kind behaviour of a tree node.
type nodeBehavior struct {
	displayName func(*Node) string
	// openPath is the absolute file to open on activation, or "".
	openPath func(*Node) string
}

var nodeBehaviors = map[NodeKind]nodeBehavior{
	NodeFolder: {
		displayName: func(n *Node) string { return n.Name },
		openPath:    func(*Node) string { return "" },
	},
	NodeFile: {
		displayName: func(n *Node) string { return filepath.Base(n.Path) },
		openPath: func(n *Node) string {
			if n.project == nil || n.project.solution == nil {
				return n.Path
			}
			return filepath.Join(n.project.AbsoluteDir(), n.Path)
		},
	},
	NodeProjectRoot: {
		displayName: projectDisplayName,
		openPath:    func(*Node) string { return "" },
	},
}

func behaviorFor(n *Node) nodeBehavior {
	if b, ok := nodeBehaviors[n.Kind]; ok {
		return b
	}
	return nodeBehaviors[NodeFolder]
}

// DisplayName renders the label of a node.
func DisplayName(n *Node) string {
	return behaviorFor(n).displayName(n)
}

// OpenPath returns the absolute path a node opens, or "" for nodes that do
// not correspond to a file.
func OpenPath(n *Node) string {
	return behaviorFor(n).openPath(n)
}

func projectDisplayName(n *Node) string {
	p := n.project
	if p == nil {
		return "[" + n.Name + "]"
	}
	if p.Kind == KindGeneric {
		return fmt.Sprintf("[%s]", p.Name)
	}
	m := p.solution.Matrix
	configuration, platform := m.Selection()
	if e, ok := m.Lookup(p.ID, configuration, platform); ok && e.Builds {
		return fmt.Sprintf("[%s] (%s|%s)", p.Name, e.LocalConfiguration, e.LocalPlatform)
	}
	return fmt.Sprintf("[%s] (won't build)", p.Name)
}

// DisplayName renders the label of the solution row.
func (s *Solution) DisplayName() string {
	return "[" + s.FileName() + "]"
}

// RenderTree writes the solution header, the two option rows and the
// indented project forest with each project's files.
func (s *Solution) RenderTree(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.DisplayName())
	fmt.Fprintf(&b, "  Config  :%s\n", s.Matrix.Selected(AxisConfiguration))
	fmt.Fprintf(&b, "  Platform:%s\n", s.Matrix.Selected(AxisPlatform))

	s.WalkProjects(func(p *Project, depth int) {
		indent := strings.Repeat("  ", depth+1)
		p.Root.Walk(func(n *Node, d int) bool {
			fmt.Fprintf(&b, "%s%s%s\n", indent, strings.Repeat("  ", d), DisplayName(n))
			return true
		})
	})

	_, err := io.WriteString(w, b.String())
	return err
}

// FileRef locates one file of the solution.
type FileRef struct {
	ProjectIndex int
	FileIndex    int
	Project      string
	Path         string // relative to the project directory
	AbsolutePath string
}

// FileIndex lists every file of every project in declaration order.
func (s *Solution) FileIndex() []FileRef {
	var refs []FileRef
	for pi, p := range s.Projects {
		for fi, f := range p.Files {
			refs = append(refs, FileRef{
				ProjectIndex: pi,
				FileIndex:    fi,
				Project:      p.Name,
				Path:         f.Path,
				AbsolutePath: OpenPath(f),
			})
		}
	}
	return refs
}

// LookupFile resolves a FileRef id back to the absolute path of the file.
func (s *Solution) LookupFile(projectIndex, fileIndex int) (string, bool) {
	if projectIndex < 0 || projectIndex >= len(s.Projects) {
		return "", false
	}
	files := s.Projects[projectIndex].Files
	if fileIndex < 0 || fileIndex >= len(files) {
		return "", false
	}
	return OpenPath(files[fileIndex]), true
}
