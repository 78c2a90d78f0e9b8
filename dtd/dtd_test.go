package dtd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDtdElementLookupIsCaseInsensitive(t *testing.T) {
	d := New("html")
	d.AddElement(NewElementDecl("DIV", true, true, NewContentModel()))

	ed, ok := d.Element("div")
	require.True(t, ok)
	assert.Equal(t, "DIV", ed.Name)

	_, ok = d.Element("span")
	assert.False(t, ok)
}

func TestDtdEntityFirstWriterWins(t *testing.T) {
	d := New("html")
	d.AddGeneralEntity(&EntityDecl{Name: "nbsp", Value: " ", IsInternal: true})
	d.AddGeneralEntity(&EntityDecl{Name: "nbsp", Value: "REPLACED", IsInternal: true})

	e, ok := d.GeneralEntity("nbsp")
	require.True(t, ok)
	assert.Equal(t, " ", e.Value, "a later redeclaration must not overwrite the first")
}

func TestDtdParameterEntitySeparateNamespace(t *testing.T) {
	d := New("html")
	d.AddGeneralEntity(&EntityDecl{Name: "x", Value: "general", IsInternal: true})
	d.AddParameterEntity(&EntityDecl{Name: "x", Value: "parameter", IsInternal: true, IsParam: true})

	g, ok := d.GeneralEntity("x")
	require.True(t, ok)
	assert.Equal(t, "general", g.Value)

	p, ok := d.ParameterEntity("x")
	require.True(t, ok)
	assert.Equal(t, "parameter", p.Value)
}

func TestElementDeclAttributeLookup(t *testing.T) {
	ed := NewElementDecl("a", true, false, NewContentModel())
	ed.AddAttribute(NewAttDef("href", AttrCDATA, nil, PresenceImplied, ""))
	ed.AddAttribute(NewAttDef("href", AttrCDATA, nil, PresenceRequired, "duplicate"))

	ad, ok := ed.GetAttribute("HREF")
	require.True(t, ok)
	assert.Equal(t, PresenceImplied, ad.Presence, "duplicate AddAttribute must not overwrite the first")
}

func TestElementDeclCanContainExcludeInclude(t *testing.T) {
	cm := NewContentModel()
	cm.Root.AddMember("SPAN")
	cm.Root.SetType(GroupOr)

	ed := NewElementDecl("p", true, true, cm)
	ed.Exclusions = map[string]bool{"DIV": true}
	ed.Inclusions = map[string]bool{"BR": true}

	assert.True(t, ed.CanContain("span"))
	assert.False(t, ed.CanContain("table"))
	assert.True(t, ed.Excludes("div"))
	assert.True(t, ed.Includes("br"))
}

func TestContentModelDeclaredContentShortCircuits(t *testing.T) {
	cm := NewContentModel()
	cm.DeclaredContent = DeclaredEMPTY
	assert.False(t, cm.CanContain("anything"))

	cm2 := NewContentModel()
	cm2.DeclaredContent = DeclaredANY
	assert.True(t, cm2.CanContain("anything"))
}

func TestContentModelIsMixed(t *testing.T) {
	cm := NewContentModel()
	assert.False(t, cm.IsMixed())
	cm.Root.Mixed = true
	assert.True(t, cm.IsMixed())
}
