// Package richtext turns Hacker News comment HTML into styled text.
//
// The pipeline has three independent steps: Sanitize reduces the body to a
// small allow-list, Walk flattens it into open/text/close nodes in document
// order, and Render folds those nodes through a style stack into spans.
// Nothing here depends on a UI toolkit.
package richtext

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var policy = newPolicy()

// newPolicy allows the handful of tags HN emits in comment bodies.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "pre", "code", "i", "em", "b", "strong")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(false)
	return p
}

// Sanitize strips everything outside the comment allow-list.
// Safe for concurrent use.
func Sanitize(raw string) string {
	return policy.Sanitize(raw)
}

// Node is one step of a document-order walk: Text, ElementOpen or ElementClose.
type Node interface {
	node()
}

// Text is a run of character data with entities decoded.
type Text struct {
	Text string
}

// ElementOpen marks the start of an element. Href is set for anchors.
type ElementOpen struct {
	Tag  string
	Href string
}

// ElementClose marks the end of an element.
type ElementClose struct {
	Tag string
}

func (Text) node()         {}
func (ElementOpen) node()  {}
func (ElementClose) node() {}

// Walk tokenizes an HTML fragment into nodes in document order. Self-closing
// and void elements yield an open immediately followed by a close.
func Walk(fragment string) []Node {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var nodes []Node

	for {
		switch z.Next() {
		case html.ErrorToken:
			return nodes

		case html.TextToken:
			nodes = append(nodes, Text{Text: string(z.Text())})

		case html.StartTagToken:
			open := openTag(z)
			nodes = append(nodes, open)
			if isVoid(open.Tag) {
				nodes = append(nodes, ElementClose{Tag: open.Tag})
			}

		case html.SelfClosingTagToken:
			open := openTag(z)
			nodes = append(nodes, open, ElementClose{Tag: open.Tag})

		case html.EndTagToken:
			name, _ := z.TagName()
			nodes = append(nodes, ElementClose{Tag: string(name)})
		}
	}
}

func openTag(z *html.Tokenizer) ElementOpen {
	name, more := z.TagName()
	el := ElementOpen{Tag: string(name)}
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		if string(key) == "href" {
			el.Href = string(val)
		}
	}
	return el
}

func isVoid(tag string) bool {
	switch tag {
	case "br", "hr", "img", "wbr":
		return true
	}
	return false
}

// Parse sanitizes, walks and renders a comment body.
func Parse(raw string) Document {
	return Render(Walk(Sanitize(raw)))
}
