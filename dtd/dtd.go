package dtd

import (
	"strings"

	"github.com/nrkn/sgmlreader/internal/orderedmap"
)

// EntityDecl is one general or parameter entity declaration.
type EntityDecl struct {
	Name       string // verbatim, not upper-cased
	PublicID   string
	SystemID   string
	Value      string // literal body, for internal entities
	Class      int    // entity.Literal, kept as int to avoid an import cycle
	IsInternal bool
	IsParam    bool
}

// Dtd holds the tables a DTD parse produces: element declarations by
// upper-cased name, general/parameter entities by verbatim name.
type Dtd struct {
	Name     string // the DTD's declared root name
	PublicID string // the FPI from the DOCTYPE's PUBLIC clause, if any

	elements  map[string]*ElementDecl
	general   *orderedmap.Map[string, *EntityDecl]
	parameter *orderedmap.Map[string, *EntityDecl]
}

func New(name string) *Dtd {
	return &Dtd{
		Name:      name,
		elements:  map[string]*ElementDecl{},
		general:   orderedmap.New[string, *EntityDecl](),
		parameter: orderedmap.New[string, *EntityDecl](),
	}
}

// AddElement registers an element declaration, case-insensitively.
func (d *Dtd) AddElement(ed *ElementDecl) {
	d.elements[strings.ToUpper(ed.Name)] = ed
}

// Element performs a case-insensitive element lookup.
func (d *Dtd) Element(name string) (*ElementDecl, bool) {
	ed, ok := d.elements[strings.ToUpper(name)]
	return ed, ok
}

// AddGeneralEntity registers a general entity. Per SGML dictionary
// semantics, insertion is first-writer-wins: a later redeclaration
// with the same name is ignored, not an error.
func (d *Dtd) AddGeneralEntity(e *EntityDecl) {
	if _, exists := d.general.Get(e.Name); exists {
		return
	}
	_ = d.general.Set(e.Name, e)
}

// AddParameterEntity registers a parameter entity with the same
// first-writer-wins semantics as AddGeneralEntity.
func (d *Dtd) AddParameterEntity(e *EntityDecl) {
	if _, exists := d.parameter.Get(e.Name); exists {
		return
	}
	_ = d.parameter.Set(e.Name, e)
}

func (d *Dtd) GeneralEntity(name string) (*EntityDecl, bool) {
	return d.general.Get(name)
}

// ParameterEntity looks up a parameter entity. Expansion of the
// result is only permitted when it is internal; the caller is
// responsible for rejecting external parameter entity references
// outright rather than fetching them.
func (d *Dtd) ParameterEntity(name string) (*EntityDecl, bool) {
	return d.parameter.Get(name)
}
