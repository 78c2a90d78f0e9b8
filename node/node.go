// Package node implements the Open-Element Stack (C6): the node and
// attribute records the reader pushes while walking a document, plus
// the high-water-mark slot-reuse stack described in the data model.
package node

import (
	"strings"

	"github.com/nrkn/sgmlreader/dtd"
)

// Type is the node kind a pull-reader can report.
type Type int

const (
	Element Type = iota
	Document
	DocumentType
	Text
	CDATA
	Comment
	ProcessingInstruction
	Whitespace
	EndElement
	Attr
)

func (t Type) String() string {
	switch t {
	case Element:
		return "Element"
	case Document:
		return "Document"
	case DocumentType:
		return "DocumentType"
	case Text:
		return "Text"
	case CDATA:
		return "CDATA"
	case Comment:
		return "Comment"
	case ProcessingInstruction:
		return "ProcessingInstruction"
	case Whitespace:
		return "Whitespace"
	case EndElement:
		return "EndElement"
	case Attr:
		return "Attribute"
	default:
		return "Unknown"
	}
}

// XmlSpace is the xml:space scope in effect for a node.
type XmlSpace int

const (
	XmlSpaceDefault XmlSpace = iota
	XmlSpacePreserve
)

// Node is one entry on the open-element stack, or a standalone event
// (Text/Comment/PI/...) the reader hands back to the caller. Fields
// mirror the data model: name, type, value, the xml:space/xml:lang
// scope inherited from ancestors, emptiness, a weak DTD binding, a
// dense insertion-ordered attribute table, and the "simulated" flag
// for synthesized wrappers like an injected <html>.
type Node struct {
	Name      string
	Type      Type
	Value     string
	XmlSpace  XmlSpace
	XmlLang   string
	IsEmpty   bool
	Simulated bool
	Decl      *dtd.ElementDecl // weak binding; nil when the name is undeclared

	attrs   []Attribute
	nattr   int
	curAttr int // -1 = positioned on the element itself, else index into attrs[:nattr]
}

func newNode() *Node {
	return &Node{curAttr: -1}
}

// NewScratch allocates a standalone Node for event types the reader
// never pushes onto the open-element stack (Text, Comment, PI,
// Whitespace, CDATA, DocumentType, the synthesized EndElement). The
// reader keeps one and reuses it via Reset across calls to Read.
func NewScratch() *Node {
	return newNode()
}

// Reset is the exported form of reset, for callers (the reader) that
// hold a standalone Node outside any Stack and need to reinitialize
// it in place before reusing it for the next event.
func (n *Node) Reset(name string, typ Type, value string) {
	n.reset(name, typ, value)
}

// reset restores every invariant-bearing field before a reused slot
// becomes visible as "pushed": attribute count zeroed, DTD binding
// cleared, is_empty true.
func (n *Node) reset(name string, typ Type, value string) {
	n.Name = name
	n.Type = typ
	n.Value = value
	n.XmlSpace = XmlSpaceDefault
	n.XmlLang = ""
	n.IsEmpty = true
	n.Simulated = false
	n.Decl = nil
	n.nattr = 0
	n.curAttr = -1
}

// PushAttribute reuses or allocates the next attribute slot in
// insertion order and returns it for the caller to populate.
func (n *Node) PushAttribute(name string) *Attribute {
	if n.nattr < len(n.attrs) {
		a := &n.attrs[n.nattr]
		a.reset(name)
		n.nattr++
		return a
	}
	n.attrs = append(n.attrs, Attribute{Name: name})
	n.nattr++
	return &n.attrs[n.nattr-1]
}

// DropLastAttribute discards the most recently pushed attribute,
// used when a name fails NMTOKEN validation or duplicates an
// already-present attribute.
func (n *Node) DropLastAttribute() {
	if n.nattr > 0 {
		n.nattr--
	}
}

func (n *Node) Attributes() []Attribute { return n.attrs[:n.nattr] }
func (n *Node) AttributeCount() int     { return n.nattr }

func (n *Node) Attribute(i int) *Attribute {
	if i < 0 || i >= n.nattr {
		return nil
	}
	return &n.attrs[i]
}

// AttributeByName performs the linear scan the design notes call out
// as correct (and optimal) for the common case of a handful of
// attributes per element.
func (n *Node) AttributeByName(name string) *Attribute {
	for i := 0; i < n.nattr; i++ {
		if strings.EqualFold(n.attrs[i].Name, name) {
			return &n.attrs[i]
		}
	}
	return nil
}

// CurrentAttribute is the saved reader-state cursor used by
// move_to_attribute/move_to_next_attribute-style navigation; -1 means
// the reader is positioned on the element itself.
func (n *Node) CurrentAttribute() int { return n.curAttr }

func (n *Node) MoveToAttribute(i int) bool {
	if i < 0 || i >= n.nattr {
		return false
	}
	n.curAttr = i
	return true
}

func (n *Node) MoveToElement() { n.curAttr = -1 }

func (n *Node) MoveToNextAttribute() bool {
	if n.curAttr+1 >= n.nattr {
		return false
	}
	n.curAttr++
	return true
}
