package dtd

import "strings"

// ElementDecl is one <!ELEMENT> declaration plus whatever <!ATTLIST>
// declarations target it.
type ElementDecl struct {
	Name            string // upper-cased once on insertion
	StartTagOptional bool
	EndTagOptional   bool
	Content          *ContentModel
	Inclusions       map[string]bool
	Exclusions       map[string]bool

	attrs map[string]*AttDef // lazily attached, keyed by upper-cased name
}

func NewElementDecl(name string, sto, eto bool, content *ContentModel) *ElementDecl {
	return &ElementDecl{
		Name:             strings.ToUpper(name),
		StartTagOptional: sto,
		EndTagOptional:   eto,
		Content:          content,
	}
}

// AddAttribute attaches attr to this element, case-insensitively.
// Duplicate additions (same upper-cased name already present) are
// silently ignored.
func (ed *ElementDecl) AddAttribute(attr *AttDef) {
	if ed.attrs == nil {
		ed.attrs = map[string]*AttDef{}
	}
	key := strings.ToUpper(attr.Name)
	if _, exists := ed.attrs[key]; exists {
		return
	}
	ed.attrs[key] = attr
}

// GetAttribute performs a case-insensitive attribute lookup.
func (ed *ElementDecl) GetAttribute(name string) (*AttDef, bool) {
	if ed.attrs == nil {
		return nil, false
	}
	a, ok := ed.attrs[strings.ToUpper(name)]
	return a, ok
}

// CanContain delegates to the content model, or allows anything when
// none was declared (an undeclared/loosely-declared element, per the
// reader's "ancestor whose DTD type is unknown" stopping rule).
func (ed *ElementDecl) CanContain(childName string) bool {
	if ed.Content == nil {
		return true
	}
	return ed.Content.CanContain(strings.ToUpper(childName))
}

// Excludes reports whether childName is in this element's exclusion
// set (explicitly forbidden regardless of content model).
func (ed *ElementDecl) Excludes(childName string) bool {
	return ed.Exclusions != nil && ed.Exclusions[strings.ToUpper(childName)]
}

// Includes reports whether childName is in this element's inclusion
// set (permitted regardless of content model, e.g. SGML's "+(INCL)").
func (ed *ElementDecl) Includes(childName string) bool {
	return ed.Inclusions != nil && ed.Inclusions[strings.ToUpper(childName)]
}
