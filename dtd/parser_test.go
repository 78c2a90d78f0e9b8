package dtd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nrkn/sgmlreader/entity"
)

const sampleDTD = `
<!ENTITY % flow "P | DIV">
<!ELEMENT html O O (%flow;)*>
<!ELEMENT p O O (#PCDATA)*>
<!ELEMENT div - - (%flow;)*>
<!ELEMENT br - O EMPTY>
<!ATTLIST p
  align CDATA "left"
  id ID #IMPLIED>
<!ENTITY nbsp "&#160;">
`

func parseSample(t *testing.T, body string) *Dtd {
	t.Helper()
	d := New("html")
	root := entity.NewInternal("html", body, entity.LiteralNone)
	p := NewParser(d, nil, nil)
	got, err := p.Parse(root)
	require.NoError(t, err)
	return got
}

func TestParserDeclaresElementsAndParameterEntityExpansion(t *testing.T) {
	d := parseSample(t, sampleDTD)

	html, ok := d.Element("html")
	require.True(t, ok)
	assert.True(t, html.StartTagOptional)
	assert.True(t, html.EndTagOptional)
	assert.True(t, html.CanContain("p"), "parameter entity %%flow; must expand into the content model")
	assert.True(t, html.CanContain("div"))

	br, ok := d.Element("br")
	require.True(t, ok)
	assert.Equal(t, DeclaredEMPTY, br.Content.DeclaredContent)
	assert.False(t, br.StartTagOptional)
	assert.True(t, br.EndTagOptional)
}

func TestParserAttlistAttachesToElement(t *testing.T) {
	d := parseSample(t, sampleDTD)

	p, ok := d.Element("p")
	require.True(t, ok)

	align, ok := p.GetAttribute("align")
	require.True(t, ok)
	assert.Equal(t, "left", align.DefaultValue)
	assert.Equal(t, PresenceDefault, align.Presence)

	id, ok := p.GetAttribute("ID")
	require.True(t, ok)
	assert.Equal(t, PresenceImplied, id.Presence)
}

func TestParserGeneralEntityDecl(t *testing.T) {
	d := parseSample(t, sampleDTD)

	e, ok := d.GeneralEntity("nbsp")
	require.True(t, ok)
	assert.True(t, e.IsInternal)
	assert.Equal(t, " ", e.Value)
}

func TestParserRejectsExternalParameterEntity(t *testing.T) {
	d := New("html")
	body := `<!ENTITY % ext SYSTEM "http://example.test/ext.dtd">
<!ELEMENT a - - (%ext;)>`
	root := entity.NewInternal("html", body, entity.LiteralNone)
	p := NewParser(d, nil, nil)

	_, err := p.Parse(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExternalParamEntity)
}

func TestParserUndefinedParameterEntity(t *testing.T) {
	d := New("html")
	root := entity.NewInternal("html", `<!ELEMENT a - - (%missing;)>`, entity.LiteralNone)
	p := NewParser(d, nil, nil)

	_, err := p.Parse(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUndefinedParamEntity)
}

func TestParserMarkedSectionIncludeUnsupported(t *testing.T) {
	d := New("html")
	root := entity.NewInternal("html", `<![INCLUDE[<!ELEMENT a - - EMPTY>]]>`, entity.LiteralNone)
	p := NewParser(d, nil, nil)

	_, err := p.Parse(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedInclude)
}

func TestParserIgnoreMarkedSectionSkipsContent(t *testing.T) {
	d := New("html")
	root := entity.NewInternal("html", `<![IGNORE[<!ELEMENT a - - EMPTY>]]><!ELEMENT b - - EMPTY>`, entity.LiteralNone)
	p := NewParser(d, nil, nil)

	got, err := p.Parse(root)
	require.NoError(t, err)
	_, ok := got.Element("a")
	assert.False(t, ok, "content inside an IGNORE section must not be parsed")
	_, ok = got.Element("b")
	assert.True(t, ok)
}
