package docmodel

import (
	"strconv"
	"strings"
)

// AssignIDs gives every section without a declared anchor a
// synthesized identifier: a slug of the title, made unique against
// all declared anchors and previously synthesized identifiers.
// Synthesized identifiers name graph nodes but never resolve
// cross-references.
func AssignIDs(doc *Document) {
	used := make(map[string]bool, doc.Anchors.Len())
	walkSections(doc.Sections, func(s *Section) {
		if s.ID != "" {
			used[s.ID] = true
		}
	})
	for id := range doc.Anchors.anchors {
		used[id] = true
	}

	walkSections(doc.Sections, func(s *Section) {
		if s.ID != "" {
			return
		}
		base := slugify(s.Title)
		id := base
		for n := 2; used[id]; n++ {
			id = base + "-" + strconv.Itoa(n)
		}
		used[id] = true
		s.ID = id
	})
}

// NumberSections assigns display numbers in document order. Sections
// from appendixFrom onward are appendices and number by letter.
// Unnumbered sections and the descendants of unnumbered sections stay
// unnumbered.
func NumberSections(doc *Document, appendixFrom int) {
	if appendixFrom > len(doc.Sections) {
		appendixFrom = len(doc.Sections)
	}
	n := 0
	for _, s := range doc.Sections[:appendixFrom] {
		if s.Unnumbered {
			continue
		}
		n++
		s.Number = strconv.Itoa(n)
		numberChildren(s)
	}
	n = 0
	for _, s := range doc.Sections[appendixFrom:] {
		if s.Unnumbered {
			continue
		}
		n++
		s.Number = appendixLetter(n)
		numberChildren(s)
	}
}

func numberChildren(parent *Section) {
	if parent.Number == "" {
		return
	}
	n := 0
	for _, c := range parent.Children {
		if c.Unnumbered {
			continue
		}
		n++
		c.Number = parent.Number + "." + strconv.Itoa(n)
		numberChildren(c)
	}
}

// appendixLetter maps 1 to "A", 26 to "Z", 27 to "AA".
func appendixLetter(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

func walkSections(secs []*Section, fn func(*Section)) {
	for _, s := range secs {
		fn(s)
		walkSections(s.Children, fn)
	}
}

// WalkSections visits every section in document order, depth first.
func WalkSections(doc *Document, fn func(*Section)) {
	walkSections(doc.Sections, fn)
}

func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
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
		return "section"
	}
	return out
}
