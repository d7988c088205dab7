package docmodel

import (
	"strings"

	"github.com/dgallion1/rfc2texi/internal/markup"
	"github.com/dgallion1/rfc2texi/internal/report"
)

// blockNames are the element names recognized as section content.
// Anything else at block position is an unsupported structure.
var blockNames = map[string]bool{
	"t":          true,
	"figure":     true,
	"artwork":    true,
	"sourcecode": true,
	"table":      true,
	"ul":         true,
	"ol":         true,
	"dl":         true,
	"list":       true,
	"blockquote": true,
	"aside":      true,
}

// Build maps the markup tree of an <rfc> document onto the semantic
// model. Vocabulary both from the current schema and from the legacy
// one is accepted where the two coexist in published documents.
func Build(root *markup.Element) (*Document, error) {
	if root.Name != "rfc" {
		return nil, report.Errorf(report.UnsupportedStructure, root.Line,
			"unsupported document element <%s>, expected <rfc>", root.Name)
	}

	b := &builder{doc: &Document{Anchors: NewRegistry()}}

	if front := root.Find("front"); front != nil {
		if err := b.front(root, front); err != nil {
			return nil, err
		}
	}

	var backStart int
	if middle := root.Find("middle"); middle != nil {
		if err := b.sectionContainer(middle); err != nil {
			return nil, err
		}
	}
	backStart = len(b.doc.Sections)
	if back := root.Find("back"); back != nil {
		if err := b.sectionContainer(back); err != nil {
			return nil, err
		}
	}

	AssignIDs(b.doc)
	NumberSections(b.doc, backStart)
	return b.doc, nil
}

type builder struct {
	doc *Document
}

func (b *builder) front(root, front *markup.Element) error {
	if title := front.Find("title"); title != nil {
		b.doc.Title = collapseSpace(title.Text())
	}

	// Document identity: the number attribute wins, then the draft
	// name, then the series declaration.
	switch {
	case root.Attr("number") != "":
		b.doc.DocID = "RFC " + root.Attr("number")
	case root.Attr("docName") != "":
		b.doc.DocID = root.Attr("docName")
	default:
		for _, el := range front.Elements() {
			if el.Name == "seriesInfo" && el.Attr("name") == "RFC" && el.Attr("value") != "" {
				b.doc.DocID = "RFC " + el.Attr("value")
				break
			}
		}
	}

	if abstract := front.Find("abstract"); abstract != nil {
		blocks, err := b.blocks(abstract, nil)
		if err != nil {
			return err
		}
		b.doc.Abstract = blocks
	}
	return nil
}

func (b *builder) sectionContainer(el *markup.Element) error {
	for _, c := range el.Children {
		switch n := c.(type) {
		case markup.Text:
			if !isBlank(n.Value) {
				return report.Errorf(report.UnsupportedStructure, el.Line,
					"unexpected text content in <%s>", el.Name)
			}
		case *markup.Element:
			switch n.Name {
			case "section":
				sec, err := b.section(n, 0, nil)
				if err != nil {
					return err
				}
				b.doc.Sections = append(b.doc.Sections, sec)
			case "references", "displayreference":
				// Bibliography structures carry no section content.
			default:
				return report.Errorf(report.UnsupportedStructure, n.Line,
					"unexpected element <%s> in <%s>", n.Name, el.Name)
			}
		}
	}
	return nil
}

func (b *builder) section(el *markup.Element, depth int, parent *Section) (*Section, error) {
	sec := &Section{Depth: depth, Parent: parent, Line: el.Line}

	if a := el.Attr("anchor"); a != "" {
		sec.ID = a
		sec.Declared = true
		err := b.doc.Anchors.Register(&Anchor{
			ID:      a,
			Kind:    AnchorSection,
			Section: sec,
			Line:    el.Line,
		})
		if err != nil {
			return nil, err
		}
	}

	if name := el.Find("name"); name != nil {
		sec.Title = collapseSpace(name.Text())
	} else if t := el.Attr("title"); t != "" {
		sec.Title = collapseSpace(t)
	}
	if el.Attr("numbered") == "false" {
		sec.Unnumbered = true
	}

	for _, c := range el.Children {
		switch n := c.(type) {
		case markup.Text:
			if !isBlank(n.Value) {
				return nil, report.Errorf(report.UnsupportedStructure, el.Line,
					"unexpected text content in <section>")
			}
		case *markup.Element:
			switch {
			case n.Name == "name":
				// Already consumed as the title.
			case n.Name == "section":
				child, err := b.section(n, depth+1, sec)
				if err != nil {
					return nil, err
				}
				sec.Children = append(sec.Children, child)
			default:
				blocks, err := b.block(n, sec)
				if err != nil {
					return nil, err
				}
				sec.Blocks = append(sec.Blocks, blocks...)
			}
		}
	}
	return sec, nil
}

// blocks builds the block children of a container element.
func (b *builder) blocks(el *markup.Element, sec *Section) ([]Block, error) {
	var out []Block
	for _, c := range el.Children {
		switch n := c.(type) {
		case markup.Text:
			if !isBlank(n.Value) {
				return nil, report.Errorf(report.UnsupportedStructure, el.Line,
					"unexpected text content in <%s>", el.Name)
			}
		case *markup.Element:
			blocks, err := b.block(n, sec)
			if err != nil {
				return nil, err
			}
			out = append(out, blocks...)
		}
	}
	return out, nil
}

// block dispatches one block element to its builder rule. Container
// elements that only group content are spliced, so a single element
// may yield several blocks.
func (b *builder) block(el *markup.Element, sec *Section) ([]Block, error) {
	switch el.Name {
	case "t":
		if err := b.registerAnchor(el, AnchorBlock, sec, ""); err != nil {
			return nil, err
		}
		return b.paragraph(el, sec)

	case "artwork", "sourcecode":
		if err := b.registerAnchor(el, AnchorBlock, sec, ""); err != nil {
			return nil, err
		}
		art := &Artwork{
			Text:   el.Text(),
			Type:   el.Attr("type"),
			Source: el.Name == "sourcecode",
			Line:   el.Line,
		}
		return []Block{art}, nil

	case "figure":
		return b.figure(el, sec)

	case "table":
		return b.table(el, sec)

	case "ul", "ol":
		kind := ListBullet
		if el.Name == "ol" {
			kind = ListNumbered
		}
		return b.itemList(el, sec, kind)

	case "dl":
		return b.definitionList(el, sec)

	case "list":
		return b.legacyList(el, sec)

	case "blockquote", "aside":
		// Grouping only; the contained blocks stand on their own.
		return b.blocks(el, sec)

	default:
		return nil, &report.Error{
			Code:    report.UnsupportedStructure,
			Message: "unsupported block element <" + el.Name + ">",
			Line:    el.Line,
			Section: sectionLabel(sec),
		}
	}
}

// paragraph builds a <t> element. In the legacy schema lists live
// inside <t>, so a paragraph splits around any embedded <list> into
// text runs and list blocks.
func (b *builder) paragraph(el *markup.Element, sec *Section) ([]Block, error) {
	var (
		out []Block
		run []markup.Node
	)
	flush := func() {
		inlines := b.inlines(run)
		run = nil
		if !hasInlineContent(inlines) {
			return
		}
		out = append(out, &Paragraph{Inlines: inlines, Line: el.Line})
	}
	for _, c := range el.Children {
		if e, ok := c.(*markup.Element); ok && e.Name == "list" {
			flush()
			blocks, err := b.legacyList(e, sec)
			if err != nil {
				return nil, err
			}
			out = append(out, blocks...)
			continue
		}
		run = append(run, c)
	}
	flush()
	return out, nil
}

func (b *builder) figure(el *markup.Element, sec *Section) ([]Block, error) {
	fig := &Figure{Line: el.Line}
	if name := el.Find("name"); name != nil {
		fig.Name = collapseSpace(name.Text())
	}
	if err := b.registerAnchor(el, AnchorFigure, sec, fig.Name); err != nil {
		return nil, err
	}
	for _, c := range el.Elements() {
		switch c.Name {
		case "name":
		case "preamble", "postamble":
			fig.Blocks = append(fig.Blocks, &Paragraph{Inlines: b.inlines(c.Children), Line: c.Line})
		default:
			blocks, err := b.block(c, sec)
			if err != nil {
				return nil, err
			}
			fig.Blocks = append(fig.Blocks, blocks...)
		}
	}
	return []Block{fig}, nil
}

func (b *builder) table(el *markup.Element, sec *Section) ([]Block, error) {
	tbl := &Table{Line: el.Line}
	if name := el.Find("name"); name != nil {
		tbl.Name = collapseSpace(name.Text())
	}
	if err := b.registerAnchor(el, AnchorTable, sec, tbl.Name); err != nil {
		return nil, err
	}

	addRows := func(trs []*markup.Element) {
		for _, tr := range trs {
			var row []Cell
			for _, cell := range tr.Elements() {
				if cell.Name == "td" || cell.Name == "th" {
					row = append(row, Cell{Inlines: b.inlines(cell.Children)})
				}
			}
			tbl.Rows = append(tbl.Rows, row)
		}
	}

	for _, c := range el.Elements() {
		switch c.Name {
		case "name":
		case "thead":
			for i, tr := range rowsOf(c) {
				if i == 0 && tbl.Header == nil {
					var row []Cell
					for _, cell := range tr.Elements() {
						if cell.Name == "td" || cell.Name == "th" {
							row = append(row, Cell{Inlines: b.inlines(cell.Children)})
						}
					}
					tbl.Header = row
					continue
				}
				addRows([]*markup.Element{tr})
			}
		case "tbody", "tfoot":
			addRows(rowsOf(c))
		case "tr":
			addRows([]*markup.Element{c})
		default:
			return nil, report.Errorf(report.UnsupportedStructure, c.Line,
				"unexpected element <%s> in <table>", c.Name)
		}
	}
	return []Block{tbl}, nil
}

func rowsOf(el *markup.Element) []*markup.Element {
	var out []*markup.Element
	for _, c := range el.Elements() {
		if c.Name == "tr" {
			out = append(out, c)
		}
	}
	return out
}

func (b *builder) itemList(el *markup.Element, sec *Section, kind ListKind) ([]Block, error) {
	list := &List{Kind: kind, Line: el.Line}
	for _, li := range el.Elements() {
		if li.Name != "li" {
			return nil, report.Errorf(report.UnsupportedStructure, li.Line,
				"unexpected element <%s> in <%s>", li.Name, el.Name)
		}
		if err := b.registerAnchor(li, AnchorBlock, sec, ""); err != nil {
			return nil, err
		}
		item, err := b.listItem(li, sec)
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
	}
	return []Block{list}, nil
}

// listItem builds <li> content, which is either bare inline content or
// a sequence of nested blocks.
func (b *builder) listItem(li *markup.Element, sec *Section) (ListItem, error) {
	if hasBlockChild(li) {
		blocks, err := b.blocks(li, sec)
		if err != nil {
			return ListItem{}, err
		}
		return ListItem{Blocks: blocks}, nil
	}
	return ListItem{Blocks: []Block{&Paragraph{Inlines: b.inlines(li.Children), Line: li.Line}}}, nil
}

func (b *builder) definitionList(el *markup.Element, sec *Section) ([]Block, error) {
	list := &List{Kind: ListDefinition, Line: el.Line}
	var cur *ListItem
	flush := func() {
		if cur != nil {
			list.Items = append(list.Items, *cur)
			cur = nil
		}
	}
	for _, c := range el.Elements() {
		switch c.Name {
		case "dt":
			flush()
			if err := b.registerAnchor(c, AnchorBlock, sec, collapseSpace(c.Text())); err != nil {
				return nil, err
			}
			cur = &ListItem{Term: b.inlines(c.Children)}
		case "dd":
			if cur == nil {
				cur = &ListItem{}
			}
			item, err := b.listItem(c, sec)
			if err != nil {
				return nil, err
			}
			cur.Blocks = append(cur.Blocks, item.Blocks...)
			flush()
		default:
			return nil, report.Errorf(report.UnsupportedStructure, c.Line,
				"unexpected element <%s> in <dl>", c.Name)
		}
	}
	flush()
	return []Block{list}, nil
}

// legacyList maps the old <list style=...> form onto the modern list
// kinds.
func (b *builder) legacyList(el *markup.Element, sec *Section) ([]Block, error) {
	style := el.Attr("style")
	kind := ListBullet
	switch style {
	case "numbers", "letters":
		kind = ListNumbered
	case "hanging":
		kind = ListDefinition
	}
	list := &List{Kind: kind, Line: el.Line}
	for _, t := range el.Elements() {
		if t.Name != "t" {
			return nil, report.Errorf(report.UnsupportedStructure, t.Line,
				"unexpected element <%s> in <list>", t.Name)
		}
		item := ListItem{
			Blocks: []Block{&Paragraph{Inlines: b.inlines(t.Children), Line: t.Line}},
		}
		if kind == ListDefinition {
			item.Term = []Inline{Text{Value: t.Attr("hangText")}}
		}
		list.Items = append(list.Items, item)
	}
	return []Block{list}, nil
}

// inlines builds inline content from mixed children. Unrecognized
// elements degrade to their flattened text so unusual styling never
// aborts a conversion.
func (b *builder) inlines(children []markup.Node) []Inline {
	var out []Inline
	for _, c := range children {
		switch n := c.(type) {
		case markup.Text:
			if n.Value != "" {
				out = append(out, Text{Value: n.Value})
			}
		case *markup.Element:
			if in, ok := b.inline(n); ok {
				out = append(out, in)
			}
		}
	}
	return out
}

func (b *builder) inline(el *markup.Element) (Inline, bool) {
	switch el.Name {
	case "xref", "relref":
		return &Ref{Target: el.Attr("target"), Inlines: b.inlines(el.Children), Line: el.Line}, true
	case "em", "i":
		return &Emphasis{Inlines: b.inlines(el.Children)}, true
	case "strong", "b":
		return &Emphasis{Inlines: b.inlines(el.Children), Strong: true}, true
	case "tt", "code", "bcp14":
		return Literal{Value: el.Text()}, true
	case "spanx":
		switch el.Attr("style") {
		case "emph":
			return &Emphasis{Inlines: b.inlines(el.Children)}, true
		case "strong":
			return &Emphasis{Inlines: b.inlines(el.Children), Strong: true}, true
		default:
			return Literal{Value: el.Text()}, true
		}
	case "eref":
		label := collapseSpace(el.Text())
		target := el.Attr("target")
		switch {
		case label != "" && target != "":
			return Text{Value: label + " (" + target + ")"}, true
		case target != "":
			return Text{Value: target}, true
		default:
			return Text{Value: label}, true
		}
	case "cref", "iref":
		// Editorial comments and index markers produce no output.
		return nil, false
	case "br":
		return Text{Value: " "}, true
	default:
		if txt := el.Text(); txt != "" {
			return Text{Value: txt}, true
		}
		return nil, false
	}
}

func (b *builder) registerAnchor(el *markup.Element, kind AnchorKind, sec *Section, label string) error {
	a := el.Attr("anchor")
	if a == "" {
		return nil
	}
	return b.doc.Anchors.Register(&Anchor{
		ID:      a,
		Kind:    kind,
		Section: sec,
		Label:   label,
		Line:    el.Line,
	})
}

// hasInlineContent reports whether the inlines carry anything beyond
// blank text.
func hasInlineContent(ins []Inline) bool {
	for _, in := range ins {
		if t, ok := in.(Text); ok {
			if strings.TrimSpace(t.Value) != "" {
				return true
			}
			continue
		}
		return true
	}
	return false
}

func hasBlockChild(el *markup.Element) bool {
	for _, c := range el.Elements() {
		if blockNames[c.Name] {
			return true
		}
	}
	return false
}

func sectionLabel(sec *Section) string {
	if sec == nil {
		return ""
	}
	if sec.ID != "" {
		return sec.ID
	}
	return sec.Title
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
