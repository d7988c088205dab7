package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/rfc2texi/internal/docmodel"
)

func TestMarkdownParser_HeadingHierarchy(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

Subsection A1 content.

## Section B

Section B content.
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "doc" {
		t.Errorf("expected title %q, got %q", "doc", doc.Title)
	}

	// Top level: one h1 ("Title").
	if len(doc.Sections) != 1 {
		t.Fatalf("expected 1 top-level section, got %d", len(doc.Sections))
	}
	h1 := doc.Sections[0]
	if h1.Title != "Title" {
		t.Errorf("expected h1 title %q, got %q", "Title", h1.Title)
	}
	if h1.Depth != 0 {
		t.Errorf("expected depth 0, got %d", h1.Depth)
	}
	if len(h1.Blocks) != 1 {
		t.Fatalf("expected 1 block under h1, got %d", len(h1.Blocks))
	}
	intro := h1.Blocks[0].(*docmodel.Paragraph)
	if got := docmodel.InlineText(intro.Inlines); got != "Intro text." {
		t.Errorf("expected intro paragraph, got %q", got)
	}

	// h1 has two h2 children.
	if len(h1.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(h1.Children))
	}
	secA := h1.Children[0]
	if secA.Title != "Section A" || secA.Depth != 1 {
		t.Errorf("unexpected section A: title=%q depth=%d", secA.Title, secA.Depth)
	}
	if len(secA.Children) != 1 || secA.Children[0].Title != "Subsection A1" {
		t.Errorf("unexpected children of section A: %+v", secA.Children)
	}
	if secA.Children[0].Depth != 2 {
		t.Errorf("expected subsection depth 2, got %d", secA.Children[0].Depth)
	}
}

func TestMarkdownParser_SkippedHeadingLevelIsPositional(t *testing.T) {
	input := "# Top\n\n#### Deep\n\ncontent\n"
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	deep := doc.Sections[0].Children[0]
	if deep.Title != "Deep" {
		t.Fatalf("expected nested section, got %+v", deep)
	}
	// One enclosing section means depth 1, regardless of the h4 level.
	if deep.Depth != 1 {
		t.Errorf("expected positional depth 1, got %d", deep.Depth)
	}
}

func TestMarkdownParser_HeadingAnchorsAndLinks(t *testing.T) {
	input := `# Overview {#overview}

See [the details](#details).

# Details {#details}

Body.
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !doc.Anchors.Has("overview") || !doc.Anchors.Has("details") {
		t.Fatal("expected heading anchors to be registered")
	}
	if doc.Sections[0].ID != "overview" || !doc.Sections[0].Declared {
		t.Errorf("unexpected first section identity: %+v", doc.Sections[0])
	}

	para := doc.Sections[0].Blocks[0].(*docmodel.Paragraph)
	var ref *docmodel.Ref
	for _, in := range para.Inlines {
		if r, ok := in.(*docmodel.Ref); ok {
			ref = r
		}
	}
	if ref == nil {
		t.Fatal("expected a cross-reference from the link")
	}
	if ref.Target != "details" {
		t.Errorf("expected target %q, got %q", "details", ref.Target)
	}
	if got := docmodel.InlineText(ref.Inlines); got != "the details" {
		t.Errorf("expected display %q, got %q", "the details", got)
	}
}

func TestMarkdownParser_ExternalLinkBecomesText(t *testing.T) {
	input := "# A\n\nsee [site](https://example.com) now\n"
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	para := doc.Sections[0].Blocks[0].(*docmodel.Paragraph)
	got := docmodel.InlineText(para.Inlines)
	if !strings.Contains(got, "site (https://example.com)") {
		t.Errorf("expected external link flattened, got %q", got)
	}
}

func TestMarkdownParser_FencedCode(t *testing.T) {
	input := "# A\n\n```go\nfunc main() {\n\tprintln(\"hi\")\n}\n```\n"
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	art := doc.Sections[0].Blocks[0].(*docmodel.Artwork)
	want := "func main() {\n\tprintln(\"hi\")\n}\n"
	if art.Text != want {
		t.Errorf("expected code %q, got %q", want, art.Text)
	}
	if art.Type != "go" || !art.Source {
		t.Errorf("expected go source listing, got type=%q source=%v", art.Type, art.Source)
	}
}

func TestMarkdownParser_Table(t *testing.T) {
	input := `# A

| Code | Meaning |
|------|---------|
| 200  | OK      |
| 404  | Missing |
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tbl := doc.Sections[0].Blocks[0].(*docmodel.Table)
	if len(tbl.Header) != 2 {
		t.Fatalf("expected 2 header cells, got %d", len(tbl.Header))
	}
	if got := docmodel.InlineText(tbl.Header[0].Inlines); got != "Code" {
		t.Errorf("expected header %q, got %q", "Code", got)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tbl.Rows))
	}
	if got := docmodel.InlineText(tbl.Rows[1][1].Inlines); got != "Missing" {
		t.Errorf("expected cell %q, got %q", "Missing", got)
	}
}

func TestMarkdownParser_Lists(t *testing.T) {
	input := "# A\n\n- first\n- second\n\n1. one\n2. two\n"
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	blocks := doc.Sections[0].Blocks
	if len(blocks) != 2 {
		t.Fatalf("expected 2 lists, got %d blocks", len(blocks))
	}
	bullets := blocks[0].(*docmodel.List)
	if bullets.Kind != docmodel.ListBullet || len(bullets.Items) != 2 {
		t.Errorf("unexpected bullet list: %+v", bullets)
	}
	numbered := blocks[1].(*docmodel.List)
	if numbered.Kind != docmodel.ListNumbered || len(numbered.Items) != 2 {
		t.Errorf("unexpected numbered list: %+v", numbered)
	}
	item := bullets.Items[0].Blocks[0].(*docmodel.Paragraph)
	if got := docmodel.InlineText(item.Inlines); got != "first" {
		t.Errorf("expected item text %q, got %q", "first", got)
	}
}

func TestMarkdownParser_PreambleBecomesAbstract(t *testing.T) {
	input := "Lead paragraph before any heading.\n\n# A\n\nbody\n"
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Abstract) != 1 {
		t.Fatalf("expected 1 abstract block, got %d", len(doc.Abstract))
	}
	para := doc.Abstract[0].(*docmodel.Paragraph)
	if got := docmodel.InlineText(para.Inlines); got != "Lead paragraph before any heading." {
		t.Errorf("unexpected abstract %q", got)
	}
}

func TestMarkdownParser_SectionNumbering(t *testing.T) {
	input := "# One\n\n## One One\n\n# Two\n"
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Sections[0].Number != "1" {
		t.Errorf("expected number 1, got %q", doc.Sections[0].Number)
	}
	if doc.Sections[0].Children[0].Number != "1.1" {
		t.Errorf("expected number 1.1, got %q", doc.Sections[0].Children[0].Number)
	}
	if doc.Sections[1].Number != "2" {
		t.Errorf("expected number 2, got %q", doc.Sections[1].Number)
	}
}

func TestMarkdownParser_DuplicateAnchor(t *testing.T) {
	input := "# A {#same}\n\n# B {#same}\n"
	p := &MarkdownParser{}
	_, err := p.Parse(strings.NewReader(input), "doc.md")
	if err == nil {
		t.Fatal("expected duplicate anchor error")
	}
}
