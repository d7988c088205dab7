// Package nodegraph builds the explicit navigation graph over the
// section tree: one node per section plus a root node, each carrying
// parent, sibling and child linkage by name. Names are derived from
// section identifiers, adjusted only where the output format cannot
// carry them verbatim, and are unique graph-wide.
package nodegraph

import (
	"fmt"
	"strings"

	"github.com/dgallion1/rfc2texi/internal/docmodel"
)

// RootName is the reserved name of the root node.
const RootName = "Top"

// Node is one vertex of the navigation graph.
type Node struct {
	Name  string
	Title string

	// Parent, Prev and Next are node names; empty at boundaries.
	Parent string
	Prev   string
	Next   string

	// Children lists child node names in document order.
	Children []string

	// Section is the underlying section; nil for the root node.
	Section *docmodel.Section
}

// Graph is the complete node graph. Nodes holds the root first, then
// every section node in document pre-order; that order is also the
// rendering order.
type Graph struct {
	Root      *Node
	Nodes     []*Node
	byName    map[string]*Node
	bySection map[string]*Node
}

// Lookup finds a node by name.
func (g *Graph) Lookup(name string) (*Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// NodeForSection finds the node built for the given section
// identifier.
func (g *Graph) NodeForSection(id string) (*Node, bool) {
	n, ok := g.bySection[id]
	return n, ok
}

// Len returns the node count including the root.
func (g *Graph) Len() int { return len(g.Nodes) }

// Build constructs the graph for a document. Every section yields
// exactly one node; the root node adopts the top-level sections as
// its children and carries the document title.
func Build(doc *docmodel.Document) *Graph {
	g := &Graph{
		byName:    make(map[string]*Node),
		bySection: make(map[string]*Node),
	}

	g.Root = &Node{Name: RootName, Title: doc.Title}
	g.byName[RootName] = g.Root
	g.Nodes = append(g.Nodes, g.Root)

	var add func(sec *docmodel.Section, parent *Node)
	add = func(sec *docmodel.Section, parent *Node) {
		n := &Node{
			Name:    g.uniqueName(sec.ID),
			Title:   sec.Heading(),
			Parent:  parent.Name,
			Section: sec,
		}
		g.byName[n.Name] = n
		g.bySection[sec.ID] = n
		g.Nodes = append(g.Nodes, n)
		parent.Children = append(parent.Children, n.Name)
		for _, c := range sec.Children {
			add(c, n)
		}
	}
	for _, sec := range doc.Sections {
		add(sec, g.Root)
	}

	// Sibling linkage runs within each child list.
	for _, n := range g.Nodes {
		for i, name := range n.Children {
			child := g.byName[name]
			if i > 0 {
				child.Prev = n.Children[i-1]
			}
			if i < len(n.Children)-1 {
				child.Next = n.Children[i+1]
			}
		}
	}
	return g
}

// uniqueName derives a graph-wide unique node name from a section
// identifier. The root name is reserved in any casing.
func (g *Graph) uniqueName(id string) string {
	base := sanitizeName(id)
	if strings.EqualFold(base, RootName) {
		base += "-node"
	}
	name := base
	for i := 2; ; i++ {
		if _, taken := g.byName[name]; !taken {
			return name
		}
		name = fmt.Sprintf("%s-%d", base, i)
	}
}

// sanitizeName rewrites characters the output format reserves in node
// names.
func sanitizeName(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch r {
		case ',', ':', '(', ')', '@', '{', '}', '\n', '\t':
			b.WriteByte('-')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "node"
	}
	return out
}

// Check verifies graph consistency: unique names, mutual sibling
// linkage, parent and child agreement, and the one-to-one mapping
// between sections and non-root nodes. Rendering runs it before
// emitting any output.
func (g *Graph) Check() error {
	if g.Root == nil || len(g.Nodes) == 0 || g.Nodes[0] != g.Root {
		return fmt.Errorf("root node missing or out of place")
	}
	if g.Root.Parent != "" || g.Root.Prev != "" || g.Root.Next != "" {
		return fmt.Errorf("root node %q must not carry linkage pointers", g.Root.Name)
	}
	if len(g.Nodes) != len(g.byName) {
		return fmt.Errorf("node count %d does not match name index %d", len(g.Nodes), len(g.byName))
	}
	if len(g.Nodes) != len(g.bySection)+1 {
		return fmt.Errorf("node count %d does not match section count %d", len(g.Nodes), len(g.bySection))
	}
	for _, n := range g.Nodes {
		if n != g.Root {
			if n.Section == nil {
				return fmt.Errorf("node %q has no section", n.Name)
			}
			if got, ok := g.bySection[n.Section.ID]; !ok || got != n {
				return fmt.Errorf("node %q not indexed by its section %q", n.Name, n.Section.ID)
			}
			parent, ok := g.byName[n.Parent]
			if !ok {
				return fmt.Errorf("node %q parent %q does not exist", n.Name, n.Parent)
			}
			if !containsOnce(parent.Children, n.Name) {
				return fmt.Errorf("node %q missing from children of %q", n.Name, n.Parent)
			}
		}
		if n.Next != "" {
			next, ok := g.byName[n.Next]
			if !ok {
				return fmt.Errorf("node %q next %q does not exist", n.Name, n.Next)
			}
			if next.Prev != n.Name {
				return fmt.Errorf("sibling linkage broken between %q and %q", n.Name, n.Next)
			}
		}
		if n.Prev != "" {
			prev, ok := g.byName[n.Prev]
			if !ok {
				return fmt.Errorf("node %q prev %q does not exist", n.Name, n.Prev)
			}
			if prev.Next != n.Name {
				return fmt.Errorf("sibling linkage broken between %q and %q", n.Prev, n.Name)
			}
		}
		for _, c := range n.Children {
			child, ok := g.byName[c]
			if !ok {
				return fmt.Errorf("node %q child %q does not exist", n.Name, c)
			}
			if child.Parent != n.Name {
				return fmt.Errorf("node %q does not point back to parent %q", c, n.Name)
			}
		}
	}
	return nil
}

func containsOnce(names []string, name string) bool {
	count := 0
	for _, n := range names {
		if n == name {
			count++
		}
	}
	return count == 1
}
