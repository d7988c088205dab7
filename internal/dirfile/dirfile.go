// Package dirfile generates the Emacs Info directory menu listing the
// converted documents, in the format the standalone info reader and
// Emacs both understand.
package dirfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgallion1/rfc2texi/internal/texinfo"
)

// Entry is one document in the directory menu.
type Entry struct {
	// InfoName is the compiled Info file's base name, such as
	// "rfc9126". A trailing .info extension is tolerated.
	InfoName string

	// DocID is the menu label, such as "RFC 9126". Empty falls back
	// to InfoName.
	DocID string

	// Title is the document title shown after the link.
	Title string
}

// Generate renders the dir file content. Entries are sorted by their
// document identity so regeneration is stable regardless of
// conversion order.
func Generate(entries []Entry, category string) []byte {
	if category == "" {
		category = texinfo.DefaultDirCategory
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].DocID < sorted[j].DocID })

	lines := []string{
		"This is the file .../info/dir, which contains the",
		"topmost node of the Info hierarchy, called (dir)Top.",
		"",
		"\x1f",
		"File: dir,\tNode: Top\tThis is the top of the INFO tree",
		"",
		"* Menu:",
		"",
		category,
	}
	for _, e := range sorted {
		name := strings.TrimSuffix(e.InfoName, ".info")
		label := e.DocID
		if label == "" {
			label = name
		}
		lines = append(lines, fmt.Sprintf("* %s: (%s).  %s.", label, name, e.Title))
	}
	lines = append(lines, "")

	return []byte(strings.Join(lines, "\n"))
}

// Write renders the dir file content to w.
func Write(w io.Writer, entries []Entry, category string) error {
	_, err := w.Write(Generate(entries, category))
	return err
}

// WriteFile writes the dir file into dir under the conventional name
// and returns its path.
func WriteFile(dir string, entries []Entry, category string) (string, error) {
	path := filepath.Join(dir, "dir")
	if err := os.WriteFile(path, Generate(entries, category), 0o644); err != nil {
		return "", fmt.Errorf("write dir file: %w", err)
	}
	return path, nil
}
