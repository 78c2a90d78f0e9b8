package sgmlreader

import (
	"fmt"
	"strings"

	"github.com/nrkn/sgmlreader/internal/xmlenc"
	"github.com/nrkn/sgmlreader/node"
)

func (r *Reader) writeStartTag(b *strings.Builder, n *node.Node) {
	b.WriteByte('<')
	b.WriteString(n.Name)
	for i := 0; i < n.AttributeCount(); i++ {
		a := n.Attribute(i)
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteByte('=')
		_ = xmlenc.QuotedString(b, a.EffectiveValue())
	}
	if n.IsEmpty {
		b.WriteString("/>")
	} else {
		b.WriteByte('>')
	}
}

func (r *Reader) writeNode(b *strings.Builder) {
	n := r.event
	switch n.Type {
	case node.Element:
		r.writeStartTag(b, n)
	case node.EndElement:
		b.WriteString("</")
		b.WriteString(n.Name)
		b.WriteByte('>')
	case node.Text, node.Whitespace:
		_ = xmlenc.EscapeText(b, []byte(n.Value), false)
	case node.CDATA:
		b.WriteString("<![CDATA[")
		b.WriteString(n.Value)
		b.WriteString("]]>")
	case node.Comment:
		b.WriteString("<!--")
		_ = xmlenc.EscapeComment(b, []byte(n.Value))
		b.WriteString("-->")
	case node.ProcessingInstruction:
		b.WriteString("<?")
		b.WriteString(n.Name)
		if n.Value != "" {
			b.WriteByte(' ')
			b.WriteString(n.Value)
		}
		b.WriteString("?>")
	case node.DocumentType:
		fmt.Fprintf(b, "<!DOCTYPE %s>", n.Name)
	}
}

// ReadString accumulates consecutive Text/Whitespace/CDATA runs
// starting at the current node, advancing past them, and stops at the
// first node that is none of those (typically the element's
// EndElement) -- the common "just give me this element's text" helper
// built on top of Read.
func (r *Reader) ReadString() (string, error) {
	var b strings.Builder
	for {
		switch r.event.Type {
		case node.Text, node.Whitespace, node.CDATA:
			b.WriteString(r.event.Value)
		default:
			return b.String(), r.err
		}
		if !r.Read() {
			return b.String(), r.err
		}
	}
}

// ReadOuterXml serializes the current node and, for an Element, every
// descendant up to and including its own EndElement, advancing the
// reader past the whole subtree.
func (r *Reader) ReadOuterXml() (string, error) {
	var b strings.Builder
	n := r.event

	if n.Type != node.Element {
		r.writeNode(&b)
		r.Read()
		return b.String(), r.err
	}

	depth := r.elements.Len()
	isEmpty := n.IsEmpty
	r.writeNode(&b)
	if isEmpty {
		r.Read() // the EndElement paired with the empty element
		r.Read()
		return b.String(), r.err
	}

	for r.Read() {
		r.writeNode(&b)
		if r.event.Type == node.EndElement && r.elements.Len() == depth-1 {
			r.Read()
			break
		}
	}
	return b.String(), r.err
}

// ReadInnerXml is ReadOuterXml without the current element's own
// start and end tags.
func (r *Reader) ReadInnerXml() (string, error) {
	var b strings.Builder
	n := r.event
	if n.Type != node.Element || n.IsEmpty {
		if n.Type == node.Element {
			r.Read() // the EndElement paired with the empty element
		}
		r.Read()
		return "", r.err
	}

	depth := r.elements.Len()
	for r.Read() {
		if r.event.Type == node.EndElement && r.elements.Len() == depth-1 {
			r.Read()
			break
		}
		r.writeNode(&b)
	}
	return b.String(), r.err
}
