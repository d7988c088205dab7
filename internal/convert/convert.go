// Package convert runs the whole conversion pipeline for a single
// document: parse, model, resolve, graph, render. A conversion either
// yields complete output plus a diagnostic report, or fails with a
// typed error and yields nothing.
package convert

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dgallion1/rfc2texi/internal/docmodel"
	"github.com/dgallion1/rfc2texi/internal/nodegraph"
	"github.com/dgallion1/rfc2texi/internal/parser"
	"github.com/dgallion1/rfc2texi/internal/report"
	"github.com/dgallion1/rfc2texi/internal/texinfo"
	"github.com/dgallion1/rfc2texi/internal/xref"
)

// Options select the front end and conversion policy.
type Options struct {
	// Format names the source format explicitly. When empty the
	// filename hint decides, falling back to XML.
	Format parser.Format

	// FilenameHint is the source's file name, used for front end
	// selection and output naming. May be empty.
	FilenameHint string

	// UnresolvedFatal promotes unresolved references from diagnostics
	// to failures.
	UnresolvedFatal bool

	// DirCategory overrides the Info directory category.
	DirCategory string
}

// Result is a completed conversion.
type Result struct {
	// Texinfo is the rendered output.
	Texinfo []byte

	// Title and DocID identify the document.
	Title string
	DocID string

	// InfoName is the base name for the compiled Info file and
	// directory entries, such as "rfc9126".
	InfoName string

	// Report lists the recoverable diagnostics, in traversal order.
	Report *report.Report
}

// Convert runs the pipeline over in-memory source text.
func Convert(src []byte, opts Options) (*Result, error) {
	p, err := pick(opts)
	if err != nil {
		return nil, err
	}

	doc, err := p.Parse(bytes.NewReader(src), opts.FilenameHint)
	if err != nil {
		return nil, err
	}

	res, rep := xref.Resolve(doc)
	if opts.UnresolvedFatal && !rep.Empty() {
		d := rep.Diagnostics[0]
		return nil, &report.Error{Code: d.Code, Message: d.Message, Line: d.Line, Section: d.Section}
	}

	docID := doc.DocID
	if docID == "" {
		docID = docIDFromHint(opts.FilenameHint)
	}
	infoName := infoNameFor(docID, doc.Title, opts.FilenameHint)

	g := nodegraph.Build(doc)
	out, err := texinfo.Render(doc, g, res, texinfo.Options{
		InfoName:    infoName,
		DocID:       docID,
		DirCategory: opts.DirCategory,
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Texinfo:  out,
		Title:    doc.Title,
		DocID:    docID,
		InfoName: infoName,
		Report:   rep,
	}, nil
}

func pick(opts Options) (parser.Parser, error) {
	if opts.Format != "" {
		return parser.ForFormat(opts.Format)
	}
	if opts.FilenameHint != "" {
		if p, err := parser.ForFile(opts.FilenameHint); err == nil {
			return p, nil
		}
	}
	return parser.ForFormat(parser.FormatXML)
}

var rfcBase = regexp.MustCompile(`^rfc(\d+)$`)

// docIDFromHint recovers a series identity from file names like
// rfc9126.xml when the document does not declare one.
func docIDFromHint(hint string) string {
	if hint == "" {
		return ""
	}
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(hint), filepath.Ext(hint)))
	if m := rfcBase.FindStringSubmatch(base); m != nil {
		return "RFC " + m[1]
	}
	return ""
}

var rfcID = regexp.MustCompile(`^RFC (\d+)$`)

func infoNameFor(docID, title, hint string) string {
	if hint != "" {
		base := strings.TrimSuffix(filepath.Base(hint), filepath.Ext(hint))
		if base != "" {
			return sanitizeInfoName(base)
		}
	}
	if docID != "" {
		if m := rfcID.FindStringSubmatch(docID); m != nil {
			return "rfc" + m[1]
		}
		return sanitizeInfoName(docID)
	}
	if title != "" {
		return sanitizeInfoName(title)
	}
	return "document"
}

// sanitizeInfoName keeps file-name-safe characters and lowercases the
// rest, so dir entries and @setfilename stay portable.
func sanitizeInfoName(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_':
			b.WriteRune(r)
			lastDash = false
		case r == '-':
			b.WriteByte('-')
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "document"
	}
	return out
}
