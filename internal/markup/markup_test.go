package markup

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/rfc2texi/internal/report"
)

func TestParse_Basic(t *testing.T) {
	input := `<rfc number="9999"><front><title>Test Document</title></front></rfc>`
	root, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root.Name != "rfc" {
		t.Errorf("expected root <rfc>, got <%s>", root.Name)
	}
	if got := root.Attr("number"); got != "9999" {
		t.Errorf("expected number attr %q, got %q", "9999", got)
	}
	front := root.Find("front")
	if front == nil {
		t.Fatal("expected <front> child")
	}
	title := front.Find("title")
	if title == nil {
		t.Fatal("expected <title> child")
	}
	if got := title.Text(); got != "Test Document" {
		t.Errorf("expected title text %q, got %q", "Test Document", got)
	}
}

func TestParse_AttributeOrder(t *testing.T) {
	input := `<section anchor="intro" numbered="true" toc="include"/>`
	root, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Attr{
		{Name: "anchor", Value: "intro"},
		{Name: "numbered", Value: "true"},
		{Name: "toc", Value: "include"},
	}
	if len(root.Attrs) != len(want) {
		t.Fatalf("expected %d attrs, got %d", len(want), len(root.Attrs))
	}
	for i, w := range want {
		if root.Attrs[i] != w {
			t.Errorf("attr %d: expected %+v, got %+v", i, w, root.Attrs[i])
		}
	}
}

func TestParse_MixedChildren(t *testing.T) {
	input := `<t>before <em>styled</em> after</t>`
	root, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(root.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(root.Children))
	}
	first, ok := root.Children[0].(Text)
	if !ok || first.Value != "before " {
		t.Errorf("expected leading text %q, got %#v", "before ", root.Children[0])
	}
	mid, ok := root.Children[1].(*Element)
	if !ok || mid.Name != "em" {
		t.Fatalf("expected <em> element, got %#v", root.Children[1])
	}
	last, ok := root.Children[2].(Text)
	if !ok || last.Value != " after" {
		t.Errorf("expected trailing text %q, got %#v", " after", root.Children[2])
	}
}

func TestParse_PreservesWhitespace(t *testing.T) {
	art := "  +----+\n  |box |\n  +----+\n"
	input := "<figure><artwork>" + art + "</artwork></figure>"
	root, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := root.Find("artwork").Text()
	if got != art {
		t.Errorf("whitespace not preserved:\nexpected %q\ngot      %q", art, got)
	}
}

func TestParse_EntityExpansion(t *testing.T) {
	input := `<t>a &lt; b &amp; c &#x41;</t>`
	root, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "a < b & c A"
	if got := root.Text(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestParse_SkipsCommentsAndPIs(t *testing.T) {
	input := `<?xml version="1.0"?><!-- head --><rfc><!-- inner --><middle/></rfc>`
	root, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(root.Children))
	}
	if root.Elements()[0].Name != "middle" {
		t.Errorf("expected <middle>, got <%s>", root.Elements()[0].Name)
	}
}

func TestParse_LineNumbers(t *testing.T) {
	input := "<rfc>\n<middle>\n<section>\n</section>\n</middle>\n</rfc>"
	root, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	middle := root.Find("middle")
	if middle.Line != 2 {
		t.Errorf("expected <middle> on line 2, got %d", middle.Line)
	}
	section := middle.Find("section")
	if section.Line != 3 {
		t.Errorf("expected <section> on line 3, got %d", section.Line)
	}
}

func TestParse_MalformedMismatchedTags(t *testing.T) {
	input := "<rfc>\n<middle>\n</rfc>"
	_, err := Parse(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected error for mismatched tags")
	}
	var conv *report.Error
	if !errors.As(err, &conv) {
		t.Fatalf("expected *report.Error, got %T", err)
	}
	if conv.Code != report.MalformedInput {
		t.Errorf("expected code %q, got %q", report.MalformedInput, conv.Code)
	}
	if conv.Line == 0 {
		t.Error("expected a source line on the error")
	}
}

func TestParse_MalformedTruncated(t *testing.T) {
	_, err := Parse(strings.NewReader(`<rfc><middle>`))
	if err == nil {
		t.Fatal("expected error for truncated input")
	}
	var conv *report.Error
	if !errors.As(err, &conv) {
		t.Fatalf("expected *report.Error, got %T", err)
	}
	if conv.Code != report.MalformedInput {
		t.Errorf("expected code %q, got %q", report.MalformedInput, conv.Code)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	if err == nil {
		t.Fatal("expected error for empty input")
	}
	var conv *report.Error
	if !errors.As(err, &conv) {
		t.Fatalf("expected *report.Error, got %T", err)
	}
	if conv.Code != report.MalformedInput {
		t.Errorf("expected code %q, got %q", report.MalformedInput, conv.Code)
	}
}

func TestParse_ContentAfterRoot(t *testing.T) {
	_, err := Parse(strings.NewReader("<rfc/><rfc/>"))
	if err == nil {
		t.Fatal("expected error for second document element")
	}
}

func TestParse_WhitespaceAroundRoot(t *testing.T) {
	input := "\n  <rfc/>\n  \n"
	root, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root.Name != "rfc" {
		t.Errorf("expected root <rfc>, got <%s>", root.Name)
	}
}

func TestElement_Helpers(t *testing.T) {
	input := `<tr><td>a</td><td>b</td><th>c</th></tr>`
	root, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(root.Elements()); got != 3 {
		t.Errorf("expected 3 element children, got %d", got)
	}
	if root.Find("th") == nil {
		t.Error("expected to find <th>")
	}
	if root.Find("tbody") != nil {
		t.Error("expected nil for absent child")
	}
	if root.HasAttr("align") {
		t.Error("expected no align attr")
	}
}
