package browser

import "strings"

// Node is one directory in the navigation chain. Nodes are immutable and only
// point at their parent.
type Node struct {
	path   string
	name   string
	parent *Node
}

// Root returns a chain start for an absolute path. An empty name displays the path.
func Root(path, name string) *Node {
	if name == "" {
		name = path
	}
	return &Node{path: path, name: name}
}

// Child returns the node for the sub-directory name below n.
func (n *Node) Child(name string) *Node {
	return &Node{
		path:   strings.TrimSuffix(n.path, "/") + "/" + name,
		name:   name,
		parent: n,
	}
}

// Path returns the directory's absolute path.
func (n *Node) Path() string { return n.path }

// Name returns the display name.
func (n *Node) Name() string { return n.name }

// Parent returns the node this one was entered from, nil at a root.
func (n *Node) Parent() *Node { return n.parent }

// IsRoot reports whether n starts a chain.
func (n *Node) IsRoot() bool { return n.parent == nil }

// Depth counts the ancestors of n.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Breadcrumb joins the display names from the root down to n.
func (n *Node) Breadcrumb(sep string) string {
	var names []string
	for p := n; p != nil; p = p.parent {
		names = append(names, p.name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, sep)
}
