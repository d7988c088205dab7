// Package texinfo serializes the node graph into Texinfo source. The
// output is deterministic: no timestamps, no environment data, and
// every traversal follows the graph's document order. Rendering is all
// or nothing; on any failure no bytes are returned.
package texinfo

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dgallion1/rfc2texi/internal/docmodel"
	"github.com/dgallion1/rfc2texi/internal/nodegraph"
	"github.com/dgallion1/rfc2texi/internal/report"
	"github.com/dgallion1/rfc2texi/internal/xref"
)

// DefaultDirCategory groups converted documents in the Info directory.
const DefaultDirCategory = "RFC and Internet-Draft Specifications"

// Options control document framing.
type Options struct {
	// InfoName is the compiled file base name, as in rfc9126.info.
	InfoName string
	// DocID overrides the document's declared identity in titles and
	// directory entries.
	DocID string
	// DirCategory is the @dircategory heading. Empty selects the
	// default.
	DirCategory string
}

// Render serializes the whole document. The graph is verified first;
// an inconsistent graph or a dangling reference target yields a
// RenderFailure and no output.
func Render(doc *docmodel.Document, g *nodegraph.Graph, res *xref.Resolution, opts Options) ([]byte, error) {
	if err := g.Check(); err != nil {
		return nil, report.Errorf(report.RenderFailure, 0, "node graph inconsistent: %v", err)
	}

	r := &renderer{g: g, res: res}

	infoName := opts.InfoName
	if infoName == "" {
		infoName = "document"
	}
	docID := opts.DocID
	if docID == "" {
		docID = doc.DocID
	}
	category := opts.DirCategory
	if category == "" {
		category = DefaultDirCategory
	}

	r.header(doc, infoName, docID, category)
	for _, n := range g.Nodes {
		r.node(doc, n, docID)
	}
	r.writeln("@bye")

	if r.err != nil {
		return nil, r.err
	}
	return r.buf.Bytes(), nil
}

type renderer struct {
	buf bytes.Buffer
	g   *nodegraph.Graph
	res *xref.Resolution
	err error
}

func (r *renderer) writeln(s string) {
	r.buf.WriteString(s)
	r.buf.WriteByte('\n')
}

func (r *renderer) writef(format string, args ...any) {
	fmt.Fprintf(&r.buf, format, args...)
}

func (r *renderer) fail(format string, args ...any) {
	if r.err == nil {
		r.err = report.Errorf(report.RenderFailure, 0, format, args...)
	}
}

func fullTitle(doc *docmodel.Document, docID string) string {
	switch {
	case docID != "" && doc.Title != "":
		return docID + ": " + doc.Title
	case doc.Title != "":
		return doc.Title
	case docID != "":
		return docID
	default:
		return "Untitled"
	}
}

func (r *renderer) header(doc *docmodel.Document, infoName, docID, category string) {
	title := fullTitle(doc, docID)

	r.writeln(`\input texinfo   @c -*-texinfo-*-`)
	r.writeln("@c %**start of header")
	r.writef("@setfilename %s.info\n", infoName)
	r.writef("@settitle %s\n", escape(title))
	r.writeln("@documentencoding UTF-8")
	r.writeln("@paragraphindent none")
	r.writeln("@c %**end of header")
	r.writeln("")

	label := docID
	if label == "" {
		label = infoName
	}
	r.writef("@dircategory %s\n", escape(category))
	r.writeln("@direntry")
	r.writef("* %s: (%s).  %s.\n", escape(label), infoName, escape(doc.Title))
	r.writeln("@end direntry")
	r.writeln("")
}

func (r *renderer) node(doc *docmodel.Document, n *nodegraph.Node, docID string) {
	if n == r.g.Root {
		r.writef("@node %s\n", n.Name)
		r.writef("@top %s\n", escape(fullTitle(doc, docID)))
		r.writeln("")
		r.blocks(doc.Abstract)
		r.menu(n)
		return
	}

	r.writef("@node %s, %s, %s, %s\n", n.Name, n.Next, n.Prev, n.Parent)
	r.writef("%s %s\n", headingCommand(n.Section.Depth), escape(n.Title))
	r.writeln("")
	r.blocks(n.Section.Blocks)
	r.menu(n)
}

// headingCommand maps positional depth to a sectioning command. The
// document carries its own section numbers, so the unnumbered family
// keeps the output from being numbered twice. Depth clamps at the
// deepest command.
func headingCommand(depth int) string {
	switch depth {
	case 0:
		return "@unnumbered"
	case 1:
		return "@unnumberedsec"
	case 2:
		return "@unnumberedsubsec"
	default:
		return "@unnumberedsubsubsec"
	}
}

func (r *renderer) menu(n *nodegraph.Node) {
	if len(n.Children) == 0 {
		return
	}
	r.writeln("@menu")
	for _, name := range n.Children {
		child, ok := r.g.Lookup(name)
		if !ok {
			r.fail("menu entry %q missing from graph", name)
			continue
		}
		r.writef("* %s:: %s\n", name, escape(child.Title))
	}
	r.writeln("@end menu")
	r.writeln("")
}

func (r *renderer) blocks(blocks []docmodel.Block) {
	for _, b := range blocks {
		r.block(b)
	}
}

func (r *renderer) block(b docmodel.Block) {
	switch v := b.(type) {
	case *docmodel.Paragraph:
		lines := fill(r.tokens(v.Inlines), fillWidth)
		if len(lines) == 0 {
			return
		}
		for _, line := range lines {
			r.writeln(line)
		}
		r.writeln("")
	case *docmodel.Artwork:
		r.artwork(v)
	case *docmodel.Figure:
		r.blocks(v.Blocks)
		if v.Name != "" {
			r.writef("Figure: %s\n\n", escape(v.Name))
		}
	case *docmodel.Table:
		r.table(v)
	case *docmodel.List:
		r.list(v)
	}
}

func (r *renderer) artwork(a *docmodel.Artwork) {
	// Verbatim regions cannot carry their own terminator; such content
	// falls back to an escaped example block.
	if strings.Contains(a.Text, "@end verbatim") {
		r.writeln("@example")
		for _, line := range strings.Split(strings.TrimSuffix(a.Text, "\n"), "\n") {
			r.writeln(escape(line))
		}
		r.writeln("@end example")
		r.writeln("")
		return
	}
	r.writeln("@verbatim")
	r.buf.WriteString(a.Text)
	if !strings.HasSuffix(a.Text, "\n") {
		r.buf.WriteByte('\n')
	}
	r.writeln("@end verbatim")
	r.writeln("")
}

func (r *renderer) table(t *docmodel.Table) {
	cols := t.Columns()
	if cols == 0 {
		return
	}
	fracs := make([]string, cols)
	for i := range fracs {
		fracs[i] = fmt.Sprintf("%.2f", 1.0/float64(cols))
	}
	r.writef("@multitable @columnfractions %s\n", strings.Join(fracs, " "))
	if t.Header != nil {
		r.writef("@headitem %s\n", r.rowCells(t.Header, cols))
	}
	for _, row := range t.Rows {
		r.writef("@item %s\n", r.rowCells(row, cols))
	}
	r.writeln("@end multitable")
	r.writeln("")
	if t.Name != "" {
		r.writef("Table: %s\n\n", escape(t.Name))
	}
}

func (r *renderer) rowCells(cells []docmodel.Cell, cols int) string {
	parts := make([]string, cols)
	for i := 0; i < cols && i < len(cells); i++ {
		parts[i] = r.flat(cells[i].Inlines)
	}
	return strings.Join(parts, " @tab ")
}

func (r *renderer) list(l *docmodel.List) {
	switch l.Kind {
	case docmodel.ListNumbered:
		r.writeln("@enumerate")
		for _, item := range l.Items {
			r.writeln("@item")
			r.blocks(item.Blocks)
		}
		r.writeln("@end enumerate")
	case docmodel.ListDefinition:
		r.writeln("@table @asis")
		for _, item := range l.Items {
			r.writef("@item %s\n", r.flat(item.Term))
			r.blocks(item.Blocks)
		}
		r.writeln("@end table")
	default:
		r.writeln("@itemize @bullet")
		for _, item := range l.Items {
			r.writeln("@item")
			r.blocks(item.Blocks)
		}
		r.writeln("@end itemize")
	}
	r.writeln("")
}

func (r *renderer) tokens(ins []docmodel.Inline) []token {
	ts := &tokenStream{}
	r.inlineTokens(ts, ins)
	return ts.toks
}

// flat renders inline content onto a single line, for table cells,
// definition terms and command arguments.
func (r *renderer) flat(ins []docmodel.Inline) string {
	ts := &tokenStream{}
	r.inlineTokens(ts, ins)
	return ts.flat()
}

func (r *renderer) inlineTokens(ts *tokenStream, ins []docmodel.Inline) {
	for _, in := range ins {
		switch v := in.(type) {
		case docmodel.Text:
			ts.addText(escape(v.Value))
		case docmodel.Literal:
			ts.addAtom("@code{" + escape(collapse(v.Value)) + "}")
		case *docmodel.Emphasis:
			cmd := "@emph"
			if v.Strong {
				cmd = "@strong"
			}
			ts.addAtom(cmd + "{" + r.flat(v.Inlines) + "}")
		case *docmodel.Ref:
			ts.addAtom(r.refCommand(v))
		}
	}
}

// refCommand renders one cross-reference. Resolved references become
// @ref commands pointing at the target's node; unresolved ones render
// as a plain text marker so the surrounding prose keeps flowing.
func (r *renderer) refCommand(ref *docmodel.Ref) string {
	link, ok := r.res.ForRef(ref)
	if !ok {
		r.fail("reference %q has no resolution entry", ref.Target)
		return ""
	}
	if !link.Resolved {
		return escape("[unresolved: " + ref.Target + "]")
	}

	nodeName := nodegraph.RootName
	if link.SectionID != "" {
		n, ok := r.g.NodeForSection(link.SectionID)
		if !ok {
			r.fail("section %q missing from node graph", link.SectionID)
			return ""
		}
		nodeName = n.Name
	}

	label := refArg(link.Label)
	if label == "" || label == nodeName {
		return "@ref{" + nodeName + "}"
	}
	return "@ref{" + nodeName + ", , " + label + "}"
}

// refArg escapes a display label for use inside @ref arguments, where
// a bare comma would split the argument list.
func refArg(s string) string {
	return strings.ReplaceAll(escape(s), ",", "@comma{}")
}

func escape(s string) string {
	if !strings.ContainsAny(s, "@{}") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '@':
			b.WriteString("@@")
		case '{':
			b.WriteString("@{")
		case '}':
			b.WriteString("@}")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
