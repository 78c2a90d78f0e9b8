package sgmlreader

// AttributeCount is the number of attributes on the current Element
// node (0 for every other node type).
func (r *Reader) AttributeCount() int { return r.event.AttributeCount() }

// GetAttribute looks up an attribute of the current node by name,
// returning its effective value (the literal from the tag, or the
// DTD's declared default when the tag omitted it).
func (r *Reader) GetAttribute(name string) (string, bool) {
	a := r.event.AttributeByName(name)
	if a == nil {
		return "", false
	}
	return a.EffectiveValue(), true
}

// GetAttributeAt returns the i'th attribute of the current node.
func (r *Reader) GetAttributeAt(i int) (name, value string, ok bool) {
	a := r.event.Attribute(i)
	if a == nil {
		return "", "", false
	}
	return a.Name, a.EffectiveValue(), true
}

// MoveToAttribute positions the attribute cursor at index i.
func (r *Reader) MoveToAttribute(i int) bool { return r.event.MoveToAttribute(i) }

// MoveToFirstAttribute positions the attribute cursor at the first
// attribute, reporting false when the current node has none.
func (r *Reader) MoveToFirstAttribute() bool { return r.event.MoveToAttribute(0) }

// MoveToNextAttribute advances the attribute cursor, reporting false
// once it runs past the last attribute.
func (r *Reader) MoveToNextAttribute() bool { return r.event.MoveToNextAttribute() }

// MoveToElement resets the attribute cursor back onto the element
// itself.
func (r *Reader) MoveToElement() { r.event.MoveToElement() }

// AttributeName is the name of the attribute the cursor is
// positioned on, or "" when positioned on the element itself.
func (r *Reader) AttributeName() string {
	if i := r.event.CurrentAttribute(); i >= 0 {
		if a := r.event.Attribute(i); a != nil {
			return a.Name
		}
	}
	return ""
}

// AttributeValue is the effective value of the attribute the cursor
// is positioned on.
func (r *Reader) AttributeValue() string {
	if i := r.event.CurrentAttribute(); i >= 0 {
		if a := r.event.Attribute(i); a != nil {
			return a.EffectiveValue()
		}
	}
	return ""
}
