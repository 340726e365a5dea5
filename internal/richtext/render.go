package richtext

import "strings"

// Span is a run of text sharing one style. Italic and Code are exclusive:
// the innermost of the two wins. Link holds the href of the innermost
// enclosing anchor.
type Span struct {
	Text   string
	Italic bool
	Code   bool
	Link   string
}

func (s Span) sameStyle(o Span) bool {
	return s.Italic == o.Italic && s.Code == o.Code && s.Link == o.Link
}

// Document is a rendered comment body. Paragraph and line breaks are
// carried as newlines inside span text.
type Document struct {
	Spans []Span
}

// PlainText returns the document without styling.
func (d Document) PlainText() string {
	var b strings.Builder
	for _, s := range d.Spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Links returns the distinct hrefs in order of first appearance.
func (d Document) Links() []string {
	var links []string
	seen := make(map[string]bool)
	for _, s := range d.Spans {
		if s.Link == "" || seen[s.Link] {
			continue
		}
		seen[s.Link] = true
		links = append(links, s.Link)
	}
	return links
}

type styleFrame struct {
	tag  string
	href string
}

type renderer struct {
	doc     Document
	stack   []styleFrame
	pending int // newlines owed before the next text
}

// Render folds walked nodes into styled spans.
//
// An opening p starts a new paragraph unless nothing has been written yet.
// A closing pre ends its line unless nothing follows it.
func Render(nodes []Node) Document {
	var r renderer
	for _, n := range nodes {
		switch n := n.(type) {
		case Text:
			r.text(n.Text)
		case ElementOpen:
			r.open(n)
		case ElementClose:
			r.close(n.Tag)
		}
	}
	return r.doc
}

func (r *renderer) open(el ElementOpen) {
	switch el.Tag {
	case "p":
		r.breakLine(2)
	case "br":
		r.breakLine(1)
	case "em":
		r.stack = append(r.stack, styleFrame{tag: "i"})
	case "a", "i", "code":
		r.stack = append(r.stack, styleFrame{tag: el.Tag, href: el.Href})
	}
}

func (r *renderer) close(tag string) {
	switch tag {
	case "pre":
		r.breakLine(1)
		return
	case "em":
		tag = "i"
	case "a", "i", "code":
	default:
		return
	}
	// Pop the innermost matching frame; stray closers are ignored.
	for i := len(r.stack) - 1; i >= 0; i-- {
		if r.stack[i].tag == tag {
			r.stack = append(r.stack[:i], r.stack[i+1:]...)
			return
		}
	}
}

func (r *renderer) breakLine(n int) {
	if len(r.doc.Spans) == 0 {
		return
	}
	r.pending = max(r.pending, n)
}

func (r *renderer) text(s string) {
	if s == "" {
		return
	}
	if r.pending > 0 {
		owed := r.pending - trailingNewlines(r.doc.Spans)
		if owed > 0 {
			r.write(Span{Text: strings.Repeat("\n", owed)})
		}
		r.pending = 0
	}
	r.write(r.style(s))
}

func (r *renderer) style(s string) Span {
	span := Span{Text: s}
	styled := false
	for i := len(r.stack) - 1; i >= 0; i-- {
		f := r.stack[i]
		switch {
		case f.tag == "a" && span.Link == "":
			span.Link = f.href
		case f.tag == "i" && !styled:
			span.Italic, styled = true, true
		case f.tag == "code" && !styled:
			span.Code, styled = true, true
		}
	}
	return span
}

// write appends s, merging it into the last span when the styles match.
func (r *renderer) write(s Span) {
	if n := len(r.doc.Spans); n > 0 && r.doc.Spans[n-1].sameStyle(s) {
		r.doc.Spans[n-1].Text += s.Text
		return
	}
	r.doc.Spans = append(r.doc.Spans, s)
}

func trailingNewlines(spans []Span) int {
	n := 0
	for i := len(spans) - 1; i >= 0; i-- {
		t := spans[i].Text
		for j := len(t) - 1; j >= 0; j-- {
			if t[j] != '\n' {
				return n
			}
			n++
		}
	}
	return n
}
