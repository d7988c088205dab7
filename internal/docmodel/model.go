// Package docmodel turns the markup syntax tree into the semantic
// document model: a strict tree of sections holding ordered content
// blocks, plus a registry of every cross-reference target declared in
// the document. Later stages consume the model and never reach back
// into raw markup.
package docmodel

import (
	"strings"

	"github.com/dgallion1/rfc2texi/internal/report"
)

// Document is the semantic model of one specification document.
type Document struct {
	// Title is the document title from the front matter.
	Title string

	// DocID is the series identity when the document declares one,
	// such as "RFC 9126" or a draft name. Empty when unknown.
	DocID string

	// Abstract holds the front-matter abstract blocks, if any.
	Abstract []Block

	// Sections are the top-level sections in document order: main
	// matter first, then appendices.
	Sections []*Section

	// Anchors registers every declared cross-reference target.
	Anchors *Registry
}

// Section is one node in the section tree. Depth is positional: a
// top-level section has depth 0 and each nesting level adds one,
// regardless of how the source spells its heading.
type Section struct {
	// ID uniquely identifies the section within the document. It is
	// the declared anchor when one exists, otherwise a synthesized
	// slug of the title.
	ID string

	// Declared reports whether ID came from the source. Only declared
	// identifiers are valid cross-reference targets.
	Declared bool

	Title string

	// Number is the rendered section number: "3", "2.1", "A", "A.2".
	// Empty for unnumbered sections.
	Number string

	Depth    int
	Parent   *Section
	Blocks   []Block
	Children []*Section
	Line     int

	// Unnumbered is set when the source excludes the section from
	// numbering.
	Unnumbered bool
}

// Heading returns the display heading: the number, when present,
// followed by the title.
func (s *Section) Heading() string {
	if s.Number == "" {
		return s.Title
	}
	if s.Title == "" {
		return s.Number
	}
	return s.Number + ". " + s.Title
}

// Path returns the chain of section identifiers from the top-level
// ancestor down to s, inclusive.
func (s *Section) Path() []string {
	var rev []string
	for cur := s; cur != nil; cur = cur.Parent {
		rev = append(rev, cur.ID)
	}
	out := make([]string, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		out = append(out, rev[i])
	}
	return out
}

// Block is one unit of section content. The closed set of
// implementations is *Paragraph, *Artwork, *Figure, *Table and *List.
type Block interface {
	isBlock()
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Inlines []Inline
	Line    int
}

func (*Paragraph) isBlock() {}

// Artwork is preformatted text reproduced byte for byte.
type Artwork struct {
	Text string
	// Type carries the source's type or language tag, when present.
	Type string
	// Source marks program source listings as opposed to diagrams.
	Source bool
	Line   int
}

func (*Artwork) isBlock() {}

// Figure groups blocks, usually artwork, under an optional caption.
type Figure struct {
	Name   string
	Blocks []Block
	Line   int
}

func (*Figure) isBlock() {}

// Table is tabular content with an optional single header row.
type Table struct {
	Name   string
	Header []Cell // nil when the table has no header row
	Rows   [][]Cell
	Line   int
}

func (*Table) isBlock() {}

// Cell is one table cell.
type Cell struct {
	Inlines []Inline
}

// Columns returns the widest row length across header and body.
func (t *Table) Columns() int {
	n := len(t.Header)
	for _, row := range t.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// ListKind selects the list rendering style.
type ListKind int

const (
	ListBullet ListKind = iota
	ListNumbered
	ListDefinition
)

// List is a bulleted, numbered or definition list.
type List struct {
	Kind  ListKind
	Items []ListItem
	Line  int
}

func (*List) isBlock() {}

// ListItem is one list entry. Term is set for definition lists only.
type ListItem struct {
	Term   []Inline
	Blocks []Block
}

// Inline is one unit of paragraph content. The closed set of
// implementations is Text, *Emphasis, Literal and *Ref.
type Inline interface {
	isInline()
}

// Text is plain character data.
type Text struct {
	Value string
}

func (Text) isInline() {}

// Emphasis wraps inline content in light or strong emphasis.
type Emphasis struct {
	Inlines []Inline
	Strong  bool
}

func (*Emphasis) isInline() {}

// Literal is verbatim inline text such as code spans and protocol
// keywords.
type Literal struct {
	Value string
}

func (Literal) isInline() {}

// Ref is a cross-reference to an identifier declared elsewhere in the
// document. Inlines holds the author-supplied display content and may
// be empty.
type Ref struct {
	Target  string
	Inlines []Inline
	Line    int
}

func (*Ref) isInline() {}

// InlineText flattens inline content to plain text, dropping styling.
func InlineText(ins []Inline) string {
	var b strings.Builder
	writeInlineText(&b, ins)
	return b.String()
}

func writeInlineText(b *strings.Builder, ins []Inline) {
	for _, in := range ins {
		switch v := in.(type) {
		case Text:
			b.WriteString(v.Value)
		case Literal:
			b.WriteString(v.Value)
		case *Emphasis:
			writeInlineText(b, v.Inlines)
		case *Ref:
			writeInlineText(b, v.Inlines)
		}
	}
}

// AnchorKind classifies what an anchor points at.
type AnchorKind string

const (
	AnchorSection AnchorKind = "section"
	AnchorFigure  AnchorKind = "figure"
	AnchorTable   AnchorKind = "table"
	AnchorBlock   AnchorKind = "block"
)

// Anchor is one declared cross-reference target.
type Anchor struct {
	ID   string
	Kind AnchorKind
	// Section is the enclosing section; for section anchors it is the
	// section itself.
	Section *Section
	// Label is the target's own display name when it has one, such as
	// a figure caption.
	Label string
	Line  int
}

// Registry maps declared identifiers to their targets. Registration
// of a duplicate identifier is a fatal error.
type Registry struct {
	anchors map[string]*Anchor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{anchors: make(map[string]*Anchor)}
}

// Register records one anchor. A second registration of the same
// identifier fails with a DuplicateAnchor error.
func (r *Registry) Register(a *Anchor) error {
	if prev, ok := r.anchors[a.ID]; ok {
		return report.Errorf(report.DuplicateAnchor, a.Line,
			"anchor %q already declared at line %d", a.ID, prev.Line)
	}
	r.anchors[a.ID] = a
	return nil
}

// Lookup resolves an identifier by exact match. No normalization or
// aliasing is applied.
func (r *Registry) Lookup(id string) (*Anchor, bool) {
	a, ok := r.anchors[id]
	return a, ok
}

// Has reports whether the identifier is declared.
func (r *Registry) Has(id string) bool {
	_, ok := r.anchors[id]
	return ok
}

// Len returns the number of declared anchors.
func (r *Registry) Len() int { return len(r.anchors) }
