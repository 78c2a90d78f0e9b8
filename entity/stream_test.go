package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamScanToken(t *testing.T) {
	s := NewStream([]byte("div class"), false)
	tok, err := s.ScanToken(" ", true)
	require.NoError(t, err)
	assert.Equal(t, "div", tok)
	assert.Equal(t, ' ', s.LastChar())
}

func TestStreamScanTokenRejectsBadNameStart(t *testing.T) {
	s := NewStream([]byte("1abc "), false)
	_, err := s.ScanToken(" ", true)
	assert.ErrorIs(t, err, ErrInvalidNameToken)
}

func TestStreamScanLiteralExpandsCharRefs(t *testing.T) {
	s := NewStream([]byte(`a&#65;b"`), false)
	lit, err := s.ScanLiteral('"')
	require.NoError(t, err)
	assert.Equal(t, "aAb", lit)
}

func TestStreamScanToEndRecoversPartialMatch(t *testing.T) {
	s := NewStream([]byte("a--x-->"), false)
	text, err := s.ScanToEnd("comment", "-->")
	require.NoError(t, err)
	assert.Equal(t, "a--x", text)
}

func TestStreamScanToEndUnterminatedFails(t *testing.T) {
	s := NewStream([]byte("no terminator here"), false)
	_, err := s.ScanToEnd("comment", "-->")
	assert.ErrorIs(t, err, ErrUnterminatedScan)
}

func TestStreamExpandCharEntityDecimalAndHex(t *testing.T) {
	s := NewStream([]byte("&#65;&#x42;"), false)
	got, err := s.ExpandCharEntity()
	require.NoError(t, err)
	assert.Equal(t, "A", got)

	got, err = s.ExpandCharEntity()
	require.NoError(t, err)
	assert.Equal(t, "B", got)
}

func TestStreamCRLFFoldsToOneLineAdvance(t *testing.T) {
	s := NewStream([]byte("a\r\nb"), false)
	assert.Equal(t, 1, s.Line())
	s.ReadChar() // consume 'a', now positioned on the folded \r\n
	assert.Equal(t, '\n', s.LastChar())
	assert.Equal(t, 2, s.Line())
	s.ReadChar()
	assert.Equal(t, 'b', s.LastChar())
	assert.Equal(t, 2, s.Line(), "CRLF must count as a single line advance")
}

func TestStreamEOF(t *testing.T) {
	s := NewStream([]byte(""), false)
	assert.Equal(t, EOF, s.LastChar())
}
