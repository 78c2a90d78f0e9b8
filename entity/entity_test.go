package entity

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInternalOpensOverLiteral(t *testing.T) {
	e := NewInternal("amp", "&amp;", LiteralNone)
	require.NoError(t, e.Open(nil, ""))

	s, err := e.Stream()
	require.NoError(t, err)
	assert.Equal(t, '&', s.LastChar())
}

func TestEntityOpenTwiceFails(t *testing.T) {
	e := NewInternal("x", "hi", LiteralNone)
	require.NoError(t, e.Open(nil, ""))
	assert.ErrorIs(t, e.Open(nil, ""), ErrAlreadyOpened)
}

func TestEntityStreamBeforeOpenFails(t *testing.T) {
	e := NewInternal("x", "hi", LiteralNone)
	_, err := e.Stream()
	assert.ErrorIs(t, err, ErrNotOpened)
}

type stubByteSource struct {
	body        string
	contentType string
}

func (s stubByteSource) Open(uri string) (io.ReadCloser, string, string, error) {
	return io.NopCloser(strings.NewReader(s.body)), uri, s.contentType, nil
}

func TestEntityOpenExternalForcesHTMLFromContentType(t *testing.T) {
	e := NewExternal("doc", "", "http://example.test/doc")
	src := stubByteSource{body: "<p>hi</p>", contentType: "text/html"}

	require.NoError(t, e.Open(src, ""))
	assert.True(t, e.IsHTML)
	assert.Equal(t, "http://example.test/doc", e.ResolvedURI)
}

func TestEntityOpenExternalWithoutByteSourceFails(t *testing.T) {
	e := NewExternal("doc", "", "http://example.test/doc")
	err := e.Open(nil, "")
	require.Error(t, err)
}

func TestEntityCloseIsOnceOnly(t *testing.T) {
	e := NewInternal("x", "hi", LiteralNone)
	require.NoError(t, e.Open(nil, ""))
	require.NoError(t, e.Close())
	assert.ErrorIs(t, e.Close(), ErrAlreadyClosed)
}

func TestEntityContextWalksParentChain(t *testing.T) {
	parent := NewInternal("outer", "x", LiteralNone)
	require.NoError(t, parent.Open(nil, ""))
	child := NewInternal("inner", "y", LiteralNone)
	child.Parent = parent
	require.NoError(t, child.Open(nil, ""))

	ctx := child.Context()
	assert.Contains(t, ctx, "inner")
	assert.Contains(t, ctx, "outer")
}

func TestNewFromReaderAssumesUTF8(t *testing.T) {
	e, err := NewFromReader("", strings.NewReader("héllo"), false)
	require.NoError(t, err)
	s, err := e.Stream()
	require.NoError(t, err)
	assert.Equal(t, 'h', s.LastChar())
}
