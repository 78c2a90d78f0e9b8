// Package dtd implements the Content Model and DTD Parser components
// (C4/C5): element/attribute/entity declarations and the containment
// queries the SGML reader consults while auto-closing omitted end
// tags.
package dtd

// GroupType is the connector joining a Group's members.
type GroupType int

const (
	GroupNone GroupType = iota // single member, no connector
	GroupSeq                   // ","
	GroupOr                    // "|"
	GroupAnd                   // "&"
)

// Occurrence is the occurrence indicator trailing a group or member.
type Occurrence int

const (
	OccurRequired  Occurrence = iota // no suffix
	OccurOptional                   // "?"
	OccurOneOrMore                  // "+"
	OccurZeroOrMore                 // "*"
)

// DeclaredContent is the element's declared-content kind; when it is
// anything other than Default the element's Group has no members.
type DeclaredContent int

const (
	DeclaredDefault DeclaredContent = iota
	DeclaredCDATA
	DeclaredRCDATA
	DeclaredEMPTY
	DeclaredANY
)

// Member is one entry in a Group: either a symbol name or a nested
// group. Exactly one of Name/Sub is set; Occurrence applies to
// whichever is set.
type Member struct {
	Name       string
	Sub        *Group
	Occurrence Occurrence
}

// Group is one level of a content model's grammar tree.
type Group struct {
	Parent     *Group
	Members    []Member
	Type       GroupType
	Occurrence Occurrence
	Mixed      bool // #PCDATA is a member of this group
}

// ContentModel is the full content specification for one element.
type ContentModel struct {
	Root            *Group
	DeclaredContent DeclaredContent
}

func NewContentModel() *ContentModel {
	return &ContentModel{Root: &Group{}}
}

// AddMember appends a name member to g.
func (g *Group) AddMember(name string) {
	g.Members = append(g.Members, Member{Name: name})
}

// AddGroupMember appends a nested-group member to g.
func (g *Group) AddGroupMember(sub *Group) {
	sub.Parent = g
	g.Members = append(g.Members, Member{Sub: sub})
}

// SetType sets the connector type. It does not compare t with a
// connector already set; the DTD parser rejects a group whose
// connectors differ before it calls SetType, so within one parsed
// group all non-None connectors are identical.
func (g *Group) SetType(t GroupType) {
	g.Type = t
}

// containsName reports whether name appears anywhere in this group's
// subtree, case-insensitively compared against already-uppercased
// element names.
func (g *Group) containsName(name string) bool {
	if g == nil {
		return false
	}
	for _, m := range g.Members {
		if m.Sub != nil {
			if m.Sub.containsName(name) {
				return true
			}
			continue
		}
		if m.Name == name {
			return true
		}
	}
	return false
}

// CanContain answers the containment query the auto-close walk
// drives: can an element with this content model directly contain a
// child element named childName (already upper-cased)?
func (cm *ContentModel) CanContain(childName string) bool {
	switch cm.DeclaredContent {
	case DeclaredANY:
		return true
	case DeclaredEMPTY, DeclaredCDATA, DeclaredRCDATA:
		return false
	}
	return cm.Root.containsName(childName)
}

// IsMixed reports whether #PCDATA is a member of the root group,
// i.e. whether character data is allowed alongside elements.
func (cm *ContentModel) IsMixed() bool {
	return cm.Root != nil && cm.Root.Mixed
}
