package solution

import "path/filepath"

// NodeKind tags the variant held by a Node.
type NodeKind int

const (
	NodeFolder NodeKind = iota
	NodeFile
	NodeProjectRoot
)

func (k NodeKind) String() string {
	switch k {
	case NodeFolder:
		return "folder"
	case NodeFile:
		return "file"
	case NodeProjectRoot:
		return "project"
	default:
		return "unknown"
	}
}

// Node is one entry of a project file tree. Folders and project roots carry
// ordered children; files carry a path relative to the project directory.
type Node struct {
	Kind     NodeKind
	Name     string
	Path     string
	Children []*Node

	project *Project
}

// Project returns the project owning the tree this node belongs to.
func (n *Node) Project() *Project { return n.project }

// child returns the folder named name, creating it at the end of the
// children when it does not exist yet.
func (n *Node) child(name string) *Node {
	for _, c := range n.Children {
		if c.Kind == NodeFolder && c.Name == name {
			return c
		}
	}
	f := &Node{Kind: NodeFolder, Name: name, project: n.project}
	n.Children = append(n.Children, f)
	return f
}

func (n *Node) addFile(path string) *Node {
	p := nativePath(path)
	f := &Node{Kind: NodeFile, Name: filepath.Base(p), Path: p, project: n.project}
	n.Children = append(n.Children, f)
	return f
}

// Walk visits n and its descendants depth first in child order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}
