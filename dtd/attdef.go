package dtd

// Presence is the attribute's default-value disposition.
type Presence int

const (
	PresenceDefault  Presence = iota
	PresenceImplied           // #IMPLIED
	PresenceRequired          // #REQUIRED
	PresenceFixed             // #FIXED literal
	PresenceCurrent           // #CURRENT
	PresenceConref            // #CONREF
)

// AttrType is the declared attribute value type.
type AttrType int

const (
	AttrCDATA AttrType = iota
	AttrEntity
	AttrEntities
	AttrID
	AttrIDRef
	AttrIDRefs
	AttrName
	AttrNames
	AttrNMToken
	AttrNMTokens
	AttrNumber
	AttrNumbers
	AttrNUToken
	AttrNUTokens
	AttrEnumeration
	AttrNotation
)

// AttDef is one attribute declaration from an ATTLIST.
type AttDef struct {
	Name         string
	DefaultValue string
	Presence     Presence
	Type         AttrType
	Enum         []string // required for Enumeration/Notation, empty otherwise
}

// NewAttDef builds an attribute definition, discarding enum unless
// Type is Enumeration or Notation. An empty enum is not rejected for
// those two types.
func NewAttDef(name string, typ AttrType, enum []string, presence Presence, defaultValue string) *AttDef {
	if typ != AttrEnumeration && typ != AttrNotation {
		enum = nil
	}
	return &AttDef{
		Name:         name,
		Type:         typ,
		Enum:         enum,
		Presence:     presence,
		DefaultValue: defaultValue,
	}
}
