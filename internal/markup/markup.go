// Package markup reads schema-based markup into a lossless syntax
// tree. The reader validates well-formedness only; vocabulary checks
// and modeling policy belong to later stages. Character data is kept
// byte for byte, including whitespace, so preformatted regions survive
// the round trip to rendered output.
package markup

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"

	"golang.org/x/net/html/charset"

	"github.com/dgallion1/rfc2texi/internal/report"
)

// Attr is one attribute in declaration order.
type Attr struct {
	Name  string
	Value string
}

// Node is a member of an element's ordered child list. The two
// implementations are *Element and Text.
type Node interface {
	isNode()
}

// Text is a run of character data exactly as it appeared in the
// source, entities expanded.
type Text struct {
	Value string
}

func (Text) isNode() {}

// Element is one markup element: tag name, attributes in declaration
// order, and an ordered list of mixed children.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []Node
	Line     int // 1-based line of the start tag
}

func (*Element) isNode() {}

// Attr returns the value of the named attribute, or "" when absent.
func (e *Element) Attr(name string) string {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// HasAttr reports whether the named attribute is present, even with an
// empty value.
func (e *Element) HasAttr(name string) bool {
	for _, a := range e.Attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Elements returns the element children in order, skipping text.
func (e *Element) Elements() []*Element {
	var out []*Element
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// Find returns the first child element with the given name, or nil.
func (e *Element) Find(name string) *Element {
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok && el.Name == name {
			return el
		}
	}
	return nil
}

// Text returns the concatenated character data of the whole subtree,
// in document order.
func (e *Element) Text() string {
	var b bytes.Buffer
	e.writeText(&b)
	return b.String()
}

func (e *Element) writeText(b *bytes.Buffer) {
	for _, c := range e.Children {
		switch n := c.(type) {
		case Text:
			b.WriteString(n.Value)
		case *Element:
			n.writeText(b)
		}
	}
}

// Parse reads the full source and returns the root element.
// Malformed input yields a *report.Error with code MalformedInput.
func Parse(r io.Reader) (*Element, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, report.Errorf(report.MalformedInput, 0, "read source: %v", err)
	}
	return ParseBytes(src)
}

// ParseBytes parses an in-memory document.
func ParseBytes(src []byte) (*Element, error) {
	p := &parser{src: src, line: 1}
	d := xml.NewDecoder(bytes.NewReader(src))
	d.CharsetReader = charset.NewReaderLabel

	var (
		root       *Element
		rootClosed bool
		stack      []*Element
	)

	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, malformed(err, p.lineAt(d.InputOffset()))
		}

		switch t := tok.(type) {
		case xml.StartElement:
			line := p.lineAt(d.InputOffset())
			if rootClosed {
				return nil, report.Errorf(report.MalformedInput, line,
					"unexpected element <%s> after document element", t.Name.Local)
			}
			el := &Element{Name: t.Name.Local, Line: line}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, report.Errorf(report.MalformedInput, line,
						"multiple document elements: <%s> and <%s>", root.Name, t.Name.Local)
				}
				root = el
			} else {
				top := stack[len(stack)-1]
				top.Children = append(top.Children, el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			// The decoder guarantees matching end tags in strict mode.
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				rootClosed = true
			}

		case xml.CharData:
			if len(stack) == 0 {
				if !isSpace(t) {
					return nil, report.Errorf(report.MalformedInput, p.lineAt(d.InputOffset()),
						"character data outside document element")
				}
				continue
			}
			top := stack[len(stack)-1]
			if n := len(top.Children); n > 0 {
				if prev, ok := top.Children[n-1].(Text); ok {
					top.Children[n-1] = Text{Value: prev.Value + string(t)}
					continue
				}
			}
			top.Children = append(top.Children, Text{Value: string(t)})

		case xml.Comment, xml.ProcInst, xml.Directive:
			// Not part of the document content.
		}
	}

	if root == nil {
		return nil, report.Errorf(report.MalformedInput, 0, "no document element found")
	}
	if !rootClosed {
		return nil, report.Errorf(report.MalformedInput, p.lineAt(int64(len(src))),
			"unexpected end of input inside <%s>", stack[len(stack)-1].Name)
	}
	return root, nil
}

// parser tracks line numbers incrementally; decoder offsets are
// monotonic, so each call scans only new bytes.
type parser struct {
	src    []byte
	offset int64
	line   int
}

func (p *parser) lineAt(offset int64) int {
	if offset > int64(len(p.src)) {
		offset = int64(len(p.src))
	}
	if offset > p.offset {
		p.line += bytes.Count(p.src[p.offset:offset], []byte{'\n'})
		p.offset = offset
	}
	return p.line
}

func malformed(err error, line int) error {
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		return report.Errorf(report.MalformedInput, syn.Line, "%s", syn.Msg)
	}
	return report.Errorf(report.MalformedInput, line, "%v", err)
}

func isSpace(b []byte) bool {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\n', '\r':
		default:
			return false
		}
	}
	return true
}
