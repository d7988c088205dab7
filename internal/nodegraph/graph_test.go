package nodegraph

import (
	"strings"
	"testing"

	"github.com/dgallion1/rfc2texi/internal/docmodel"
	"github.com/dgallion1/rfc2texi/internal/markup"
)

func build(t *testing.T, src string) *Graph {
	t.Helper()
	root, err := markup.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	doc, err := docmodel.Build(root)
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	return Build(doc)
}

const threeSections = `<rfc><front><title>T</title></front><middle>
<section anchor="a"><name>A</name>
  <section anchor="a1"><name>A1</name></section>
  <section anchor="a2"><name>A2</name></section>
</section>
<section anchor="b"><name>B</name></section>
<section anchor="c"><name>C</name></section>
</middle></rfc>`

func TestBuild_Linkage(t *testing.T) {
	g := build(t, threeSections)

	if err := g.Check(); err != nil {
		t.Fatalf("check: %v", err)
	}

	b, ok := g.Lookup("b")
	if !ok {
		t.Fatal("expected node b")
	}
	if b.Prev != "a" || b.Next != "c" || b.Parent != RootName {
		t.Errorf("unexpected linkage for b: prev=%q next=%q parent=%q", b.Prev, b.Next, b.Parent)
	}

	a, _ := g.Lookup("a")
	if a.Prev != "" {
		t.Errorf("expected first sibling to have no prev, got %q", a.Prev)
	}
	c, _ := g.Lookup("c")
	if c.Next != "" {
		t.Errorf("expected last sibling to have no next, got %q", c.Next)
	}

	a1, _ := g.Lookup("a1")
	if a1.Parent != "a" || a1.Prev != "" || a1.Next != "a2" {
		t.Errorf("unexpected linkage for a1: %+v", a1)
	}

	if len(g.Root.Children) != 3 {
		t.Errorf("expected 3 root children, got %v", g.Root.Children)
	}
}

func TestBuild_RootNode(t *testing.T) {
	g := build(t, threeSections)
	if g.Root.Name != RootName {
		t.Errorf("expected root name %q, got %q", RootName, g.Root.Name)
	}
	if g.Root.Title != "T" {
		t.Errorf("expected root title %q, got %q", "T", g.Root.Title)
	}
	if g.Root.Parent != "" || g.Root.Prev != "" || g.Root.Next != "" {
		t.Error("expected root pointers to be empty")
	}
	if g.Root.Section != nil {
		t.Error("expected root to carry no section")
	}
}

func TestBuild_OrderIsPreOrder(t *testing.T) {
	g := build(t, threeSections)
	var names []string
	for _, n := range g.Nodes {
		names = append(names, n.Name)
	}
	want := []string{"Top", "a", "a1", "a2", "b", "c"}
	if len(names) != len(want) {
		t.Fatalf("expected %d nodes, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("node %d: expected %q, got %q", i, want[i], names[i])
		}
	}
}

func TestBuild_SectionNodeBijection(t *testing.T) {
	g := build(t, threeSections)
	seen := map[string]bool{}
	for _, n := range g.Nodes[1:] {
		if n.Section == nil {
			t.Fatalf("node %q has no section", n.Name)
		}
		if seen[n.Section.ID] {
			t.Errorf("section %q mapped twice", n.Section.ID)
		}
		seen[n.Section.ID] = true
		got, ok := g.NodeForSection(n.Section.ID)
		if !ok || got != n {
			t.Errorf("NodeForSection(%q) did not return the node", n.Section.ID)
		}
	}
	if len(seen) != 5 {
		t.Errorf("expected 5 sections mapped, got %d", len(seen))
	}
}

func TestBuild_NameSanitization(t *testing.T) {
	g := build(t, `<rfc><front><title>T</title></front><middle>
<section anchor="a,b:c"><name>Odd</name></section>
</middle></rfc>`)
	n := g.Nodes[1]
	if strings.ContainsAny(n.Name, ",:()") {
		t.Errorf("expected reserved characters rewritten, got %q", n.Name)
	}
	if _, ok := g.NodeForSection("a,b:c"); !ok {
		t.Error("expected section lookup by original identifier")
	}
	if err := g.Check(); err != nil {
		t.Errorf("check: %v", err)
	}
}

func TestBuild_ReservedRootName(t *testing.T) {
	g := build(t, `<rfc><front><title>T</title></front><middle>
<section anchor="top"><name>Not The Root</name></section>
</middle></rfc>`)
	n := g.Nodes[1]
	if strings.EqualFold(n.Name, RootName) {
		t.Errorf("section node must not take the root name, got %q", n.Name)
	}
	if err := g.Check(); err != nil {
		t.Errorf("check: %v", err)
	}
}

func TestBuild_CollidingSanitizedNames(t *testing.T) {
	g := build(t, `<rfc><front><title>T</title></front><middle>
<section anchor="x:y"><name>One</name></section>
<section anchor="x,y"><name>Two</name></section>
</middle></rfc>`)
	if g.Nodes[1].Name == g.Nodes[2].Name {
		t.Errorf("expected unique names, both got %q", g.Nodes[1].Name)
	}
	if err := g.Check(); err != nil {
		t.Errorf("check: %v", err)
	}
}

func TestBuild_DeepNestingMenus(t *testing.T) {
	g := build(t, `<rfc><front><title>T</title></front><middle>
<section anchor="l0"><name>L0</name>
  <section anchor="l1"><name>L1</name>
    <section anchor="l2"><name>L2</name>
      <section anchor="l3"><name>L3</name></section>
    </section>
  </section>
</section>
</middle></rfc>`)

	l3, ok := g.Lookup("l3")
	if !ok {
		t.Fatal("expected node l3")
	}
	if got := l3.Section.Path(); len(got) != 4 {
		t.Errorf("expected ancestor path of length 4, got %v", got)
	}

	// Each menu lists direct children only: the deepest section never
	// appears in its great-grandparent's menu.
	l0, _ := g.Lookup("l0")
	if len(l0.Children) != 1 || l0.Children[0] != "l1" {
		t.Errorf("expected l0 menu to list l1 only, got %v", l0.Children)
	}
	l1, _ := g.Lookup("l1")
	if len(l1.Children) != 1 || l1.Children[0] != "l2" {
		t.Errorf("expected l1 menu to list l2 only, got %v", l1.Children)
	}
}

func TestCheck_DetectsBrokenSiblingLinkage(t *testing.T) {
	g := build(t, threeSections)
	b, _ := g.Lookup("b")
	b.Next = "a1" // a1.Prev is "", so the back link is broken
	if err := g.Check(); err == nil {
		t.Error("expected check to fail on broken sibling linkage")
	}
}

func TestCheck_DetectsDanglingChild(t *testing.T) {
	g := build(t, threeSections)
	g.Root.Children = append(g.Root.Children, "phantom")
	if err := g.Check(); err == nil {
		t.Error("expected check to fail on dangling child")
	}
}

func TestCheck_DetectsMissingParent(t *testing.T) {
	g := build(t, threeSections)
	a1, _ := g.Lookup("a1")
	a1.Parent = "nope"
	if err := g.Check(); err == nil {
		t.Error("expected check to fail on missing parent")
	}
}

func TestBuild_EmptyDocument(t *testing.T) {
	g := build(t, `<rfc><front><title>Empty</title></front><middle/></rfc>`)
	if g.Len() != 1 {
		t.Fatalf("expected only the root node, got %d", g.Len())
	}
	if err := g.Check(); err != nil {
		t.Errorf("check: %v", err)
	}
}
