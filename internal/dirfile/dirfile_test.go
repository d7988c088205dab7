package dirfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerate_Layout(t *testing.T) {
	got := string(Generate([]Entry{
		{InfoName: "rfc9126", DocID: "RFC 9126", Title: "OAuth 2.0 Pushed Authorization Requests"},
	}, ""))

	want := strings.Join([]string{
		"This is the file .../info/dir, which contains the",
		"topmost node of the Info hierarchy, called (dir)Top.",
		"",
		"\x1f",
		"File: dir,\tNode: Top\tThis is the top of the INFO tree",
		"",
		"* Menu:",
		"",
		"RFC and Internet-Draft Specifications",
		"* RFC 9126: (rfc9126).  OAuth 2.0 Pushed Authorization Requests.",
		"",
	}, "\n")

	if got != want {
		t.Errorf("unexpected dir file:\n%q\nwant:\n%q", got, want)
	}
}

func TestGenerate_SortsByDocID(t *testing.T) {
	out := string(Generate([]Entry{
		{InfoName: "rfc9396", DocID: "RFC 9396", Title: "Rich Authorization Requests"},
		{InfoName: "rfc6749", DocID: "RFC 6749", Title: "The OAuth 2.0 Authorization Framework"},
	}, ""))

	first := strings.Index(out, "RFC 6749")
	second := strings.Index(out, "RFC 9396")
	if first < 0 || second < 0 {
		t.Fatalf("missing entries in:\n%s", out)
	}
	if first > second {
		t.Error("expected entries sorted by document identity")
	}
}

func TestGenerate_LabelFallsBackToInfoName(t *testing.T) {
	out := string(Generate([]Entry{
		{InfoName: "draft-ietf-oauth-par-10.info", Title: "Pushed Authorization Requests"},
	}, ""))
	want := "* draft-ietf-oauth-par-10: (draft-ietf-oauth-par-10).  Pushed Authorization Requests."
	if !strings.Contains(out, want) {
		t.Errorf("expected line %q in:\n%s", want, out)
	}
}

func TestGenerate_CustomCategory(t *testing.T) {
	out := string(Generate(nil, "Protocol Documents"))
	if !strings.Contains(out, "\nProtocol Documents") {
		t.Errorf("expected custom category in:\n%s", out)
	}
	if strings.Contains(out, "RFC and Internet-Draft") {
		t.Error("default category should be absent")
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	entries := []Entry{{InfoName: "rfc8259", DocID: "RFC 8259", Title: "JSON"}}

	path, err := WriteFile(dir, entries, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "dir" {
		t.Errorf("expected file named dir, got %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read dir file: %v", err)
	}
	if string(data) != string(Generate(entries, "")) {
		t.Error("file content does not match generated content")
	}
}
