package node

import "github.com/nrkn/sgmlreader/dtd"

// Attribute is one name/value pair on a Node. A bare HTML-style
// boolean attribute (e.g. "disabled") gets Value set to its own name
// and Quote 0. Value is nil only when the attribute was never present
// on the start tag at all and the DTD default should be used instead
// (AttDef.DefaultValue).
type Attribute struct {
	Name  string
	Value *string
	Quote rune
	Def   *dtd.AttDef // weak binding; nil when the attribute is undeclared
}

func (a *Attribute) reset(name string) {
	a.Name = name
	a.Value = nil
	a.Quote = 0
	a.Def = nil
}

// EffectiveValue returns the literal value, falling back to the DTD
// default when the start tag left it unset.
func (a *Attribute) EffectiveValue() string {
	if a.Value != nil {
		return *a.Value
	}
	if a.Def != nil {
		return a.Def.DefaultValue
	}
	return ""
}
