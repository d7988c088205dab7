package parser

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	gparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/rfc2texi/internal/docmodel"
	"github.com/dgallion1/rfc2texi/internal/report"
)

// MarkdownParser handles markdown drafts using goldmark. Heading
// levels define the section tree; `{#id}` heading attributes declare
// anchors and `[text](#id)` links become cross-references.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*docmodel.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.Table),
		goldmark.WithParserOptions(gparser.WithAttribute()),
	)
	root := md.Parser().Parse(text.NewReader(src))

	doc := &docmodel.Document{
		Title:   strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)),
		Anchors: docmodel.NewRegistry(),
	}
	b := &mdBuilder{src: src, doc: doc}

	// Walk the AST and build the section tree from heading levels,
	// tracking the current nesting with a stack. Depth is positional:
	// it counts enclosing sections, not the heading level.
	type stackEntry struct {
		sec   *docmodel.Section
		level int
	}
	var stack []stackEntry

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			// Pop the stack until the top is a shallower heading.
			for len(stack) > 0 && stack[len(stack)-1].level >= h.Level {
				stack = stack[:len(stack)-1]
			}
			sec := &docmodel.Section{
				Title: string(h.Text(src)),
				Depth: len(stack),
			}
			if id := headingID(h); id != "" {
				sec.ID = id
				sec.Declared = true
				err := doc.Anchors.Register(&docmodel.Anchor{
					ID:      id,
					Kind:    docmodel.AnchorSection,
					Section: sec,
				})
				if err != nil {
					return nil, err
				}
			}
			if len(stack) == 0 {
				doc.Sections = append(doc.Sections, sec)
			} else {
				parent := stack[len(stack)-1].sec
				sec.Parent = parent
				parent.Children = append(parent.Children, sec)
			}
			stack = append(stack, stackEntry{sec: sec, level: h.Level})
			continue
		}

		blocks, err := b.block(n)
		if err != nil {
			return nil, err
		}
		if len(stack) == 0 {
			// Content before the first heading becomes front matter.
			doc.Abstract = append(doc.Abstract, blocks...)
		} else {
			cur := stack[len(stack)-1].sec
			cur.Blocks = append(cur.Blocks, blocks...)
		}
	}

	docmodel.AssignIDs(doc)
	docmodel.NumberSections(doc, len(doc.Sections))
	return doc, nil
}

type mdBuilder struct {
	src []byte
	doc *docmodel.Document
}

func (b *mdBuilder) block(n ast.Node) ([]docmodel.Block, error) {
	switch node := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		inlines := b.inlines(n)
		if len(inlines) == 0 {
			return nil, nil
		}
		return []docmodel.Block{&docmodel.Paragraph{Inlines: inlines}}, nil

	case *ast.FencedCodeBlock:
		art := &docmodel.Artwork{Text: b.blockLines(node)}
		if lang := node.Language(b.src); lang != nil {
			art.Type = string(lang)
			art.Source = true
		}
		return []docmodel.Block{art}, nil

	case *ast.CodeBlock:
		return []docmodel.Block{&docmodel.Artwork{Text: b.blockLines(node)}}, nil

	case *ast.List:
		return b.list(node)

	case *east.Table:
		return b.table(node)

	case *ast.Blockquote:
		var out []docmodel.Block
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			blocks, err := b.block(c)
			if err != nil {
				return nil, err
			}
			out = append(out, blocks...)
		}
		return out, nil

	case *ast.ThematicBreak, *ast.HTMLBlock:
		return nil, nil

	default:
		return nil, report.Errorf(report.UnsupportedStructure, 0,
			"unsupported markdown block %s", n.Kind())
	}
}

func (b *mdBuilder) list(node *ast.List) ([]docmodel.Block, error) {
	kind := docmodel.ListBullet
	if node.IsOrdered() {
		kind = docmodel.ListNumbered
	}
	l := &docmodel.List{Kind: kind}
	for item := node.FirstChild(); item != nil; item = item.NextSibling() {
		var li docmodel.ListItem
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			blocks, err := b.block(c)
			if err != nil {
				return nil, err
			}
			li.Blocks = append(li.Blocks, blocks...)
		}
		l.Items = append(l.Items, li)
	}
	return []docmodel.Block{l}, nil
}

func (b *mdBuilder) table(node *east.Table) ([]docmodel.Block, error) {
	tbl := &docmodel.Table{}
	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []docmodel.Cell
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, docmodel.Cell{Inlines: b.inlines(cell)})
		}
		if _, ok := row.(*east.TableHeader); ok {
			tbl.Header = cells
			continue
		}
		tbl.Rows = append(tbl.Rows, cells)
	}
	return []docmodel.Block{tbl}, nil
}

func (b *mdBuilder) inlines(parent ast.Node) []docmodel.Inline {
	var out []docmodel.Inline
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, b.inline(c)...)
	}
	return out
}

func (b *mdBuilder) inline(n ast.Node) []docmodel.Inline {
	switch node := n.(type) {
	case *ast.Text:
		val := string(node.Segment.Value(b.src))
		if node.SoftLineBreak() || node.HardLineBreak() {
			val += " "
		}
		if val == "" {
			return nil
		}
		return []docmodel.Inline{docmodel.Text{Value: val}}

	case *ast.String:
		return []docmodel.Inline{docmodel.Text{Value: string(node.Value)}}

	case *ast.CodeSpan:
		return []docmodel.Inline{docmodel.Literal{Value: string(node.Text(b.src))}}

	case *ast.Emphasis:
		return []docmodel.Inline{&docmodel.Emphasis{
			Inlines: b.inlines(node),
			Strong:  node.Level >= 2,
		}}

	case *ast.Link:
		dest := string(node.Destination)
		if strings.HasPrefix(dest, "#") {
			return []docmodel.Inline{&docmodel.Ref{
				Target:  strings.TrimPrefix(dest, "#"),
				Inlines: b.inlines(node),
			}}
		}
		label := docmodel.InlineText(b.inlines(node))
		switch {
		case label != "" && dest != "":
			return []docmodel.Inline{docmodel.Text{Value: label + " (" + dest + ")"}}
		case dest != "":
			return []docmodel.Inline{docmodel.Text{Value: dest}}
		default:
			return []docmodel.Inline{docmodel.Text{Value: label}}
		}

	case *ast.AutoLink:
		return []docmodel.Inline{docmodel.Text{Value: string(node.URL(b.src))}}

	case *ast.RawHTML:
		return nil

	default:
		// Flatten unknown wrappers to their inline content.
		return b.inlines(n)
	}
}

// blockLines collects the raw source lines of a block node.
func (b *mdBuilder) blockLines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(b.src))
	}
	return buf.String()
}

func headingID(h *ast.Heading) string {
	v, ok := h.AttributeString("id")
	if !ok {
		return ""
	}
	switch id := v.(type) {
	case []byte:
		return string(id)
	case string:
		return id
	}
	return ""
}
