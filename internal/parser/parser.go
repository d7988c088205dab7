// Package parser selects a front end for a source document and
// produces the semantic model. The schema markup front end handles
// published specification XML; the markdown front end covers drafts
// authored in markdown before submission.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/rfc2texi/internal/docmodel"
)

// Format names a supported source format.
type Format string

const (
	FormatXML      Format = "xml"
	FormatMarkdown Format = "markdown"
)

// Parser converts raw document bytes into a document model.
type Parser interface {
	Parse(r io.Reader, filename string) (*docmodel.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".xml":      true,
	".md":       true,
	".markdown": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xml":
		return &XMLParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// ForFormat returns the parser for an explicitly named format. The
// empty format selects the schema markup front end.
func ForFormat(f Format) (Parser, error) {
	switch f {
	case FormatXML, "":
		return &XMLParser{}, nil
	case FormatMarkdown:
		return &MarkdownParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", f)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
