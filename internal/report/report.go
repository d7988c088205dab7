// Package report defines the conversion error taxonomy and the
// diagnostic report that accompanies every successful conversion.
//
// Failures come in two severities. Fatal conditions abort the
// conversion and surface as *Error values; no output is produced.
// Recoverable conditions are recorded as Diagnostic values on a
// Report, in the order the converter encountered them, and the
// conversion still yields output.
package report

import (
	"fmt"
	"strings"
)

// Code identifies a class of conversion failure.
type Code string

const (
	// MalformedInput indicates the source text could not be parsed at
	// all: broken nesting, unterminated constructs, encoding errors.
	MalformedInput Code = "malformed-input"

	// UnsupportedStructure indicates well-formed input using a
	// construct the converter does not recognize.
	UnsupportedStructure Code = "unsupported-structure"

	// DuplicateAnchor indicates two elements declared the same
	// cross-reference identifier.
	DuplicateAnchor Code = "duplicate-anchor"

	// UnresolvedReference indicates a cross-reference whose target
	// identifier is not declared anywhere in the document. Recoverable.
	UnresolvedReference Code = "unresolved-reference"

	// RenderFailure indicates an internal invariant violation while
	// serializing output, such as a node missing from the graph.
	RenderFailure Code = "render-failure"
)

// Error is a fatal conversion failure. When a converter returns an
// *Error the caller must discard any partially written output.
type Error struct {
	Code    Code
	Message string
	Line    int    // 1-based source line, 0 when unknown
	Section string // identifier of the enclosing section, blank when unknown
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Section != "" {
		fmt.Fprintf(&b, " in section %q", e.Section)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	return b.String()
}

// Errorf builds a fatal *Error with a formatted message.
func Errorf(code Code, line int, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Line: line}
}

// Diagnostic is one recoverable finding. The conversion that produced
// it still succeeded.
type Diagnostic struct {
	Code    Code   `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
	Line    int    `json:"line,omitempty" yaml:"line,omitempty"`
	Section string `json:"section,omitempty" yaml:"section,omitempty"`
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", d.Code, d.Message)
	if d.Section != "" {
		fmt.Fprintf(&b, " in section %q", d.Section)
	}
	if d.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", d.Line)
	}
	return b.String()
}

// Report accumulates recoverable diagnostics during a conversion.
// Diagnostics appear in document traversal order, so two runs over the
// same input produce identical reports.
type Report struct {
	Diagnostics []Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

// New returns an empty report.
func New() *Report {
	return &Report{Diagnostics: []Diagnostic{}}
}

// Add appends one diagnostic.
func (r *Report) Add(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
}

// Addf appends a diagnostic with a formatted message.
func (r *Report) Addf(code Code, section string, line int, format string, args ...any) {
	r.Add(Diagnostic{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Section: section,
	})
}

// Empty reports whether no diagnostics were recorded.
func (r *Report) Empty() bool { return len(r.Diagnostics) == 0 }

// Len returns the number of recorded diagnostics.
func (r *Report) Len() int { return len(r.Diagnostics) }

// Messages returns the rendered form of every diagnostic, in order.
func (r *Report) Messages() []string {
	out := make([]string, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		out = append(out, d.String())
	}
	return out
}
