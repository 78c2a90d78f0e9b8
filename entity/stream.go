package entity

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/lestrrat-go/strcursor"

	"github.com/nrkn/sgmlreader/encoding"
)

// EOF is the sentinel ReadChar returns at the end of a character
// source. SGML text may legitimately contain NUL and low control
// bytes that get normalized away, so EOF borrows the one code point
// that can never appear in well-formed output: U+FFFF.
const EOF = rune(0xFFFF)

// Stream is the character source for a single open Entity: a cursor
// over already-decoded text, plus the line/column/offset bookkeeping
// and scan primitives the DTD parser and SGML reader drive directly.
// It is a thin SGML-flavored shell around strcursor.Cursor.
type Stream struct {
	cursor   strcursor.Cursor
	isHTML   bool
	lastChar rune
	line     int
	lineHead int64
	offset   int64
	buf      []byte
}

// NewStream wraps already-decoded text in a Stream and primes
// lookahead by reading the first character, matching the "opened
// exactly once ... reads one character to prime lookahead" contract
// for Entity.Open.
func NewStream(text []byte, isHTML bool) *Stream {
	s := &Stream{
		cursor: strcursor.NewRuneCursor(bytes.NewReader(text)),
		isHTML: isHTML,
		line:   1,
	}
	s.ReadChar()
	return s
}

func (s *Stream) LastChar() rune { return s.lastChar }
func (s *Stream) Line() int      { return s.line }
func (s *Stream) Offset() int64  { return s.offset }

// Column is the 1-based column of LastChar within its line.
func (s *Stream) Column() int { return int(s.offset - s.lineHead) }

func (s *Stream) IsWhitespace() bool {
	switch s.lastChar {
	case ' ', '\t', '\r', '\n':
		return true
	default:
		return false
	}
}

// ReadChar returns the next character, folding CR/LF pairs to a
// single line advance, normalizing NUL to space, and returning EOF
// once the underlying cursor is exhausted.
func (s *Stream) ReadChar() rune {
	if s.cursor.Done() {
		s.lastChar = EOF
		return EOF
	}

	c := s.cursor.Peek()
	s.cursor.Advance(1)
	s.offset++

	if c == 0 {
		c = ' '
	}

	if c == '\n' {
		s.line++
		s.lineHead = s.offset
	} else if c == '\r' {
		// CR LF counts as one line; a lone CR still starts a new line.
		if s.cursor.Peek() == '\n' {
			s.cursor.Advance(1)
			s.offset++
		}
		c = '\n'
		s.line++
		s.lineHead = s.offset
	}

	s.lastChar = c
	return c
}

// SkipWhitespace advances past runs of whitespace and returns the
// first non-whitespace character (or EOF).
func (s *Stream) SkipWhitespace() rune {
	for s.IsWhitespace() {
		s.ReadChar()
	}
	return s.lastChar
}

func isNameStart(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c > 127 && c != EOF)
}

func isNameChar(c rune) bool {
	return isNameStart(c) || c == '.' || c == '-' || c == ':' || (c >= '0' && c <= '9')
}

var ErrInvalidNameToken = errors.New("invalid name token")

// ScanToken reads into a shared buffer until the next character lies
// in term, optionally validating the result as an XML NMTOKEN-shaped
// identifier as it goes.
func (s *Stream) ScanToken(term string, nmtoken bool) (string, error) {
	s.buf = s.buf[:0]
	first := true
	for s.lastChar != EOF && !strings.ContainsRune(term, s.lastChar) {
		if nmtoken {
			if first && !isNameStart(s.lastChar) {
				return "", ErrInvalidNameToken
			}
			if !first && !isNameChar(s.lastChar) {
				return "", ErrInvalidNameToken
			}
		}
		first = false
		s.buf = appendRune(s.buf, s.lastChar)
		s.ReadChar()
	}
	return string(s.buf), nil
}

var ErrUnterminatedLiteral = errors.New("unterminated literal")

// ScanLiteral reads until the matching quote character, expanding
// numeric character references in place, and consumes the closing
// quote.
func (s *Stream) ScanLiteral(quote rune) (string, error) {
	s.buf = s.buf[:0]
	for {
		switch s.lastChar {
		case EOF:
			return "", ErrUnterminatedLiteral
		case quote:
			s.ReadChar()
			return string(s.buf), nil
		case '&':
			if lookaheadIsCharRef(s) {
				expanded, err := s.ExpandCharEntity()
				if err != nil {
					return "", err
				}
				s.buf = append(s.buf, expanded...)
				continue
			}
			fallthrough
		default:
			s.buf = appendRune(s.buf, s.lastChar)
			s.ReadChar()
		}
	}
}

func lookaheadIsCharRef(s *Stream) bool {
	return s.cursor.Peek() == '#'
}

var ErrUnterminatedScan = errors.New("terminator not found before end of input")

// ScanToEnd reads until the literal multi-character terminator is
// matched, falling back to a KMP-style partial-match recovery so a
// mismatched prefix (e.g. scanning for "-->"  and seeing "--x") is
// folded back into the accumulated buffer rather than dropped.
func (s *Stream) ScanToEnd(label, terminator string) (string, error) {
	s.buf = s.buf[:0]
	matched := 0
	for {
		if s.lastChar == EOF {
			return "", ErrUnterminatedScan
		}
		if s.lastChar == rune(terminator[matched]) {
			matched++
			if matched == len(terminator) {
				s.ReadChar()
				return string(s.buf), nil
			}
			s.ReadChar()
			continue
		}
		if matched > 0 {
			// Keep the longest suffix of the failed partial match that is
			// still a prefix of terminator, flush the rest, then re-test
			// the current character against the shortened match.
			k := matched - 1
			for k > 0 && terminator[matched-k:matched] != terminator[:k] {
				k--
			}
			s.buf = append(s.buf, terminator[:matched-k]...)
			matched = k
			continue
		}
		s.buf = appendRune(s.buf, s.lastChar)
		s.ReadChar()
	}
}

// ExpandCharEntity parses a decimal (#NNN;) or hex (#xHHHH;) numeric
// character reference — the leading '&' must already be the current
// lookahead — and returns the corresponding UTF-8 text, applying the
// HTML Windows-1252 remap for 0x80..0x9F when the entity is HTML.
func (s *Stream) ExpandCharEntity() (string, error) {
	if s.lastChar != '&' {
		return "", errors.New("expected '&'")
	}
	s.ReadChar() // consume '&'
	if s.lastChar != '#' {
		return "", errors.New("expected '#'")
	}
	s.ReadChar() // consume '#'

	hex := false
	if s.lastChar == 'x' || s.lastChar == 'X' {
		hex = true
		s.ReadChar()
	}

	var val int64
	digits := 0
	for {
		c := s.lastChar
		var d int64 = -1
		switch {
		case c >= '0' && c <= '9':
			d = int64(c - '0')
		case hex && c >= 'a' && c <= 'f':
			d = int64(c-'a') + 10
		case hex && c >= 'A' && c <= 'F':
			d = int64(c-'A') + 10
		}
		if d < 0 {
			break
		}
		if hex {
			val = val*16 + d
		} else {
			val = val*10 + d
		}
		digits++
		s.ReadChar()
	}
	if digits == 0 {
		return "", errors.New("malformed character reference")
	}
	if s.lastChar == ';' {
		s.ReadChar()
	}

	r := rune(val)
	if s.isHTML {
		r = encoding.RemapWindows1252(r)
	}
	if r > utf8.MaxRune || (r >= 0xD800 && r <= 0xDFFF) {
		r = utf8.RuneError
	}

	return string(r), nil
}

func appendRune(buf []byte, r rune) []byte {
	var tmp [utf8.UTFMax]byte
	n := utf8.EncodeRune(tmp[:], r)
	return append(buf, tmp[:n]...)
}
