// Package xref resolves cross-references against the anchor registry.
// Resolution walks the document in traversal order, so the resolved
// link list and the diagnostic order are reproducible run to run.
// Unresolved references are recoverable: each one is recorded as a
// diagnostic and rendering continues.
package xref

import (
	"strings"

	"github.com/dgallion1/rfc2texi/internal/docmodel"
	"github.com/dgallion1/rfc2texi/internal/report"
)

// Link is the resolution of one cross-reference.
type Link struct {
	// Target is the identifier exactly as written in the source.
	Target string

	Resolved bool

	// Kind classifies the resolved target. Unset when unresolved.
	Kind docmodel.AnchorKind

	// SectionID names the section whose graph node carries the
	// target. Empty when the target lives in the front matter.
	SectionID string

	// Path is the chain of section identifiers from the top-level
	// ancestor down to the target's section, inclusive.
	Path []string

	// Label is the display text: author-supplied content first, then
	// the target's own name, then the target section title, then the
	// identifier itself.
	Label string
}

// Resolution holds every link in document traversal order and indexes
// them by the reference they resolve.
type Resolution struct {
	Links []Link
	byRef map[*docmodel.Ref]int
}

// ForRef returns the link resolved for the given reference.
func (r *Resolution) ForRef(ref *docmodel.Ref) (Link, bool) {
	i, ok := r.byRef[ref]
	if !ok {
		return Link{}, false
	}
	return r.Links[i], true
}

// Resolve visits every reference in the document. It never fails:
// unresolved targets become diagnostics on the returned report.
func Resolve(doc *docmodel.Document) (*Resolution, *report.Report) {
	r := &resolver{
		doc: doc,
		res: &Resolution{byRef: make(map[*docmodel.Ref]int)},
		rep: report.New(),
	}
	r.blocks(doc.Abstract, nil)
	for _, s := range doc.Sections {
		r.section(s)
	}
	return r.res, r.rep
}

type resolver struct {
	doc *docmodel.Document
	res *Resolution
	rep *report.Report
}

func (r *resolver) section(s *docmodel.Section) {
	r.blocks(s.Blocks, s)
	for _, c := range s.Children {
		r.section(c)
	}
}

func (r *resolver) blocks(blocks []docmodel.Block, sec *docmodel.Section) {
	for _, b := range blocks {
		switch v := b.(type) {
		case *docmodel.Paragraph:
			r.inlines(v.Inlines, sec)
		case *docmodel.Figure:
			r.blocks(v.Blocks, sec)
		case *docmodel.Table:
			for _, cell := range v.Header {
				r.inlines(cell.Inlines, sec)
			}
			for _, row := range v.Rows {
				for _, cell := range row {
					r.inlines(cell.Inlines, sec)
				}
			}
		case *docmodel.List:
			for _, item := range v.Items {
				r.inlines(item.Term, sec)
				r.blocks(item.Blocks, sec)
			}
		case *docmodel.Artwork:
			// Verbatim content holds no references.
		}
	}
}

func (r *resolver) inlines(ins []docmodel.Inline, sec *docmodel.Section) {
	for _, in := range ins {
		switch v := in.(type) {
		case *docmodel.Emphasis:
			r.inlines(v.Inlines, sec)
		case *docmodel.Ref:
			r.ref(v, sec)
		}
	}
}

func (r *resolver) ref(ref *docmodel.Ref, sec *docmodel.Section) {
	r.inlines(ref.Inlines, sec)

	link := Link{Target: ref.Target}
	switch {
	case ref.Target == "":
		r.rep.Addf(report.UnresolvedReference, secID(sec), ref.Line,
			"reference with empty target")
		link.Label = fallbackLabel(ref)
	default:
		a, ok := r.doc.Anchors.Lookup(ref.Target)
		if !ok {
			r.rep.Addf(report.UnresolvedReference, secID(sec), ref.Line,
				"reference to undefined anchor %q", ref.Target)
			link.Label = fallbackLabel(ref)
			break
		}
		link.Resolved = true
		link.Kind = a.Kind
		if a.Section != nil {
			link.SectionID = a.Section.ID
			link.Path = a.Section.Path()
		}
		link.Label = displayLabel(ref, a)
	}

	r.res.byRef[ref] = len(r.res.Links)
	r.res.Links = append(r.res.Links, link)
}

func displayLabel(ref *docmodel.Ref, a *docmodel.Anchor) string {
	if t := collapse(docmodel.InlineText(ref.Inlines)); t != "" {
		return t
	}
	if a.Label != "" {
		return a.Label
	}
	if a.Kind == docmodel.AnchorSection && a.Section != nil && a.Section.Title != "" {
		return a.Section.Title
	}
	return a.ID
}

func fallbackLabel(ref *docmodel.Ref) string {
	if t := collapse(docmodel.InlineText(ref.Inlines)); t != "" {
		return t
	}
	return ref.Target
}

func secID(sec *docmodel.Section) string {
	if sec == nil {
		return ""
	}
	return sec.ID
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
