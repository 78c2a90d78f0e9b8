package sgmlreader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nrkn/sgmlreader/node"
)

func newTestReader(t *testing.T, body string, opts ...Option) *Reader {
	t.Helper()
	allOpts := append([]Option{WithInputStream(strings.NewReader(body))}, opts...)
	r, err := NewReader(allOpts...)
	require.NoError(t, err)
	return r
}

// drain collects every node Read produces into a flat event log, for
// assertions that care about the overall shape of a document rather
// than stepping through it one call at a time.
type event struct {
	typ   node.Type
	name  string
	value string
}

func drain(t *testing.T, r *Reader) []event {
	t.Helper()
	var events []event
	for r.Read() {
		events = append(events, event{typ: r.NodeType(), name: r.Name(), value: r.Value()})
	}
	require.NoError(t, r.Err())
	return events
}

func TestReaderEmitsBalancedStartAndEndElements(t *testing.T) {
	r := newTestReader(t, `<a><b>text</b></a>`, WithIgnoreDTD(true))
	events := drain(t, r)

	var depth int
	var maxDepth int
	for _, e := range events {
		switch e.typ {
		case node.Element:
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case node.EndElement:
			depth--
		}
	}
	assert.Equal(t, 0, depth, "every Element must be matched by exactly one EndElement")
	assert.Equal(t, 2, maxDepth)

	require.Len(t, events, 5)
	assert.Equal(t, "a", events[0].name)
	assert.Equal(t, node.Element, events[0].typ)
	assert.Equal(t, "b", events[1].name)
	assert.Equal(t, node.Text, events[2].typ)
	assert.Equal(t, "text", events[2].value)
	assert.Equal(t, "b", events[3].name)
	assert.Equal(t, node.EndElement, events[3].typ)
}

func TestReaderCaseFoldingAppliesToStartAndEndTags(t *testing.T) {
	r := newTestReader(t, `<Div>x</Div>`, WithIgnoreDTD(true), WithCaseFolding(CaseToUpper))
	events := drain(t, r)

	require.Len(t, events, 3)
	assert.Equal(t, "DIV", events[0].name)
	assert.Equal(t, "DIV", events[2].name, "the synthesized EndElement must mirror the folded start-tag name")
}

func TestReaderExpandsBuiltinAndNumericEntities(t *testing.T) {
	r := newTestReader(t, `<a>&amp;&#65;&#x42;</a>`, WithIgnoreDTD(true))
	events := drain(t, r)

	require.Len(t, events, 3)
	assert.Equal(t, node.Text, events[1].typ)
	assert.Equal(t, "&AB", events[1].value)
}

func TestReaderEnforcesSingleRoot(t *testing.T) {
	r := newTestReader(t, `<a></a><b></b>`, WithIgnoreDTD(true))
	events := drain(t, r)

	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].name)
	assert.Equal(t, "a", events[1].name)
	assert.True(t, r.EOF())
}

func TestReaderWhitespaceNoneSuppressesWhitespaceOnlyRuns(t *testing.T) {
	r := newTestReader(t, "<a>\n  <b>x</b>\n</a>", WithIgnoreDTD(true), WithWhitespaceHandling(WhitespaceNone))
	events := drain(t, r)

	for _, e := range events {
		assert.NotEqual(t, node.Whitespace, e.typ)
	}
}

func TestReaderAutoClosesOmittedEndTagUsingDTD(t *testing.T) {
	r := newTestReader(t, `<html><body><p>one<p>two</body></html>`, WithDocType("html"))
	events := drain(t, r)

	var names []string
	for _, e := range events {
		if e.typ == node.Element || e.typ == node.EndElement {
			names = append(names, e.name)
		}
	}
	// first <p> must be auto-closed before the second <p> opens, since
	// P's own end tag is omissible and BODY (not P) is what can
	// directly contain another P.
	require.Contains(t, names, "p")
	var sawFirstPClose bool
	depth := 0
	for _, e := range events {
		if e.typ == node.Element && e.name == "p" {
			depth++
			if depth == 2 {
				break
			}
		}
		if e.typ == node.EndElement && e.name == "p" && depth == 1 {
			sawFirstPClose = true
		}
	}
	assert.True(t, sawFirstPClose, "the first <p> should be auto-closed before the second <p> opens")
}

func TestReaderInjectsSimulatedHTMLRoot(t *testing.T) {
	r := newTestReader(t, `<body>hi</body>`, WithDocType("html"))

	require.True(t, r.Read())
	assert.Equal(t, node.Element, r.NodeType())
	assert.Equal(t, "html", r.Name())

	require.True(t, r.Read())
	assert.Equal(t, "body", r.Name())
}

func TestReaderEmptyElementPairsWithItsOwnEndElement(t *testing.T) {
	r := newTestReader(t, `<a><br/>after</a>`, WithIgnoreDTD(true))
	events := drain(t, r)

	require.Len(t, events, 5)
	assert.Equal(t, "br", events[1].name)
	assert.Equal(t, node.Element, events[1].typ)
	assert.Equal(t, "br", events[2].name)
	assert.Equal(t, node.EndElement, events[2].typ, "an empty element still gets its own paired EndElement")
	assert.Equal(t, node.Text, events[3].typ)
	assert.Equal(t, "after", events[3].value)
}

func TestReaderClosedRejectsFurtherReads(t *testing.T) {
	r := newTestReader(t, `<a></a>`, WithIgnoreDTD(true))
	require.NoError(t, r.Close())
	assert.False(t, r.Read())
	assert.ErrorIs(t, r.Err(), ErrReaderClosed)
}

func TestReaderRejectsBothInputsAndNoInput(t *testing.T) {
	_, err := NewReader(WithInputStream(strings.NewReader("x")), WithHref("http://example.test"))
	assert.ErrorIs(t, err, ErrBothInputs)

	_, err = NewReader()
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestReaderDuplicateAttributeFirstWins(t *testing.T) {
	r := newTestReader(t, `<a class="one" class="two">x</a>`, WithIgnoreDTD(true))
	require.True(t, r.Read())
	v, ok := r.GetAttribute("class")
	require.True(t, ok)
	assert.Equal(t, "one", v)
	assert.Equal(t, 1, r.AttributeCount())
}

func TestReaderUnquotedAndBareAttributes(t *testing.T) {
	r := newTestReader(t, `<input type=text disabled>`, WithIgnoreDTD(true))
	require.True(t, r.Read())
	v, ok := r.GetAttribute("type")
	require.True(t, ok)
	assert.Equal(t, "text", v)

	v, ok = r.GetAttribute("disabled")
	require.True(t, ok)
	assert.Equal(t, "disabled", v)
}

func TestReaderMismatchedEndTagClosesAncestors(t *testing.T) {
	r := newTestReader(t, `<a><b>x</a>`, WithIgnoreDTD(true))
	events := drain(t, r)

	// </a> must implicitly close the still-open <b> before closing <a>
	// itself: two EndElements total, innermost first.
	var ends []string
	for _, e := range events {
		if e.typ == node.EndElement {
			ends = append(ends, e.name)
		}
	}
	assert.Equal(t, []string{"b", "a"}, ends)
}

func TestReaderCommentAndCDATASection(t *testing.T) {
	r := newTestReader(t, `<a><!-- hi --><![CDATA[<raw>]]></a>`, WithIgnoreDTD(true))
	events := drain(t, r)

	require.Len(t, events, 4)
	assert.Equal(t, node.Comment, events[1].typ)
	assert.Equal(t, " hi ", events[1].value)
	assert.Equal(t, node.CDATA, events[2].typ)
	assert.Equal(t, "<raw>", events[2].value)
}

func TestReaderScriptContentIsRawCData(t *testing.T) {
	r := newTestReader(t, `<html><head><script>if (1 < 2) { x(); }</script></head><body></body></html>`,
		WithDocType("html"))
	events := drain(t, r)

	var sawScriptCData bool
	for _, e := range events {
		if e.typ == node.CDATA && strings.Contains(e.value, "1 < 2") {
			sawScriptCData = true
		}
	}
	assert.True(t, sawScriptCData, "SCRIPT's declared CDATA content must not be tokenized as markup")
}

func TestReadOuterXmlRoundTripsAnElement(t *testing.T) {
	r := newTestReader(t, `<a><b>text</b></a>`, WithIgnoreDTD(true))
	require.True(t, r.Read())
	outer, err := r.ReadOuterXml()
	require.NoError(t, err)
	assert.Equal(t, `<a><b>text</b></a>`, outer)
	assert.False(t, r.Read(), "ReadOuterXml must consume the whole subtree")
}
