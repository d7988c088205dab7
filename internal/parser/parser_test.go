package parser

import (
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     string
		wantErr  bool
	}{
		{"rfc9126.xml", "*parser.XMLParser", false},
		{"draft.md", "*parser.MarkdownParser", false},
		{"draft.MARKDOWN", "*parser.MarkdownParser", false},
		{"notes.txt", "", true},
		{"report.pdf", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			p, err := ForFile(tt.filename)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.filename)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var got string
			switch p.(type) {
			case *XMLParser:
				got = "*parser.XMLParser"
			case *MarkdownParser:
				got = "*parser.MarkdownParser"
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestForFormat(t *testing.T) {
	if _, err := ForFormat(FormatXML); err != nil {
		t.Errorf("unexpected error for xml: %v", err)
	}
	if _, err := ForFormat(FormatMarkdown); err != nil {
		t.Errorf("unexpected error for markdown: %v", err)
	}
	if p, err := ForFormat(""); err != nil {
		t.Errorf("unexpected error for empty format: %v", err)
	} else if _, ok := p.(*XMLParser); !ok {
		t.Errorf("expected XML parser for empty format, got %T", p)
	}
	if _, err := ForFormat("docbook"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("a.xml") || !IsSupportedExtension("b.md") {
		t.Error("expected xml and md to be supported")
	}
	if IsSupportedExtension("c.pdf") || IsSupportedExtension("d") {
		t.Error("expected pdf and extensionless to be unsupported")
	}
}

func TestXMLParser_EndToEnd(t *testing.T) {
	input := `<rfc number="2"><front><title>T</title></front><middle>
<section anchor="a"><name>A</name><t>hello</t></section>
</middle></rfc>`
	p := &XMLParser{}
	doc, err := p.Parse(strings.NewReader(input), "rfc2.xml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.DocID != "RFC 2" {
		t.Errorf("expected doc ID %q, got %q", "RFC 2", doc.DocID)
	}
	if len(doc.Sections) != 1 || doc.Sections[0].ID != "a" {
		t.Errorf("unexpected sections: %+v", doc.Sections)
	}
}
