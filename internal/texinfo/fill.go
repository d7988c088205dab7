package texinfo

import "strings"

// fillWidth is the target line width for flowed paragraph text.
const fillWidth = 72

// token is one unbreakable unit of paragraph output. Markup commands
// travel as single tokens so a line break never lands inside their
// braces.
type token struct {
	text string
	// spaceBefore records whether source whitespace separated this
	// token from its predecessor. Only such gaps are break points.
	spaceBefore bool
}

// tokenStream accumulates tokens from mixed inline content, tracking
// pending whitespace between units.
type tokenStream struct {
	toks    []token
	pending bool
}

// addText splits plain text into word tokens, folding whitespace runs
// into single break points.
func (ts *tokenStream) addText(s string) {
	start := -1
	for i, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if start >= 0 {
				ts.push(s[start:i])
				start = -1
			}
			ts.pending = true
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		ts.push(s[start:])
	}
}

// addAtom appends one unbreakable token, typically a complete markup
// command.
func (ts *tokenStream) addAtom(s string) {
	if s == "" {
		return
	}
	ts.push(s)
}

func (ts *tokenStream) push(s string) {
	ts.toks = append(ts.toks, token{text: s, spaceBefore: ts.pending})
	ts.pending = false
}

// flat joins the tokens into a single line, one space per break point.
func (ts *tokenStream) flat() string {
	var b strings.Builder
	for i, t := range ts.toks {
		if i > 0 && t.spaceBefore {
			b.WriteByte(' ')
		}
		b.WriteString(t.text)
	}
	return b.String()
}

// fill lays the tokens out greedily into lines no wider than width,
// breaking only at recorded break points. A token longer than the
// width overflows its line rather than being split.
func fill(toks []token, width int) []string {
	var (
		lines []string
		cur   strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
		}
	}
	for _, t := range toks {
		switch {
		case cur.Len() == 0:
			cur.WriteString(t.text)
		case !t.spaceBefore:
			cur.WriteString(t.text)
		case cur.Len()+1+len(t.text) > width:
			flush()
			cur.WriteString(t.text)
		default:
			cur.WriteByte(' ')
			cur.WriteString(t.text)
		}
	}
	flush()
	return lines
}
