package generator

import (
	"html"
	"strings"
)

// The generator builds a small tree of markup nodes first and renders
// it to text in a second pass, keeping indentation and escaping out of
// the structural walk.

type node interface {
	render(b *strings.Builder, depth int)
}

type attr struct {
	key   string
	value string
}

// element is a markup element with ordered attributes. An element
// whose only child is a text node renders on a single line.
type element struct {
	tag      string
	attrs    []attr
	children []node
	void     bool // <img>-style, no closing tag
}

func (e *element) render(b *strings.Builder, depth int) {
	writeIndent(b, depth)
	b.WriteByte('<')
	b.WriteString(e.tag)
	for _, a := range e.attrs {
		b.WriteByte(' ')
		b.WriteString(a.key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.value))
		b.WriteByte('"')
	}
	b.WriteByte('>')

	if e.void {
		b.WriteByte('\n')
		return
	}

	if len(e.children) == 1 {
		if t, ok := e.children[0].(text); ok {
			b.WriteString(html.EscapeString(string(t)))
			b.WriteString("</")
			b.WriteString(e.tag)
			b.WriteString(">\n")
			return
		}
	}

	b.WriteByte('\n')
	for _, child := range e.children {
		child.render(b, depth+1)
	}
	writeIndent(b, depth)
	b.WriteString("</")
	b.WriteString(e.tag)
	b.WriteString(">\n")
}

// text is escaped character data.
type text string

func (t text) render(b *strings.Builder, depth int) {
	writeIndent(b, depth)
	b.WriteString(html.EscapeString(string(t)))
	b.WriteByte('\n')
}

// raw is emitted verbatim; used for the template-engine tokens
// ({{ ... }}, {% ... %}) that must survive unescaped.
type raw string

func (r raw) render(b *strings.Builder, depth int) {
	writeIndent(b, depth)
	b.WriteString(string(r))
	b.WriteByte('\n')
}

// comment renders an HTML comment. Bodies can carry untrusted text
// (e.g. a component type name), so "--" is broken up to keep the body
// from terminating the comment early.
type comment string

func (c comment) render(b *strings.Builder, depth int) {
	writeIndent(b, depth)
	b.WriteString("<!-- ")
	b.WriteString(strings.ReplaceAll(string(c), "--", "- -"))
	b.WriteString(" -->\n")
}

func writeIndent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}
