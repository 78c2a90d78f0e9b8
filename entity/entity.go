// Package entity implements the Entity layer (C2/C3 in the design):
// a character source with encoding auto-detection, nested entity
// expansion, and line/column accounting, flattened into a single
// logical stream for the DTD parser and SGML reader above it.
package entity

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/nrkn/sgmlreader/encoding"
)

// Literal is the SGML entity literal classification.
type Literal int

const (
	LiteralNone Literal = iota
	LiteralCDATA
	LiteralSDATA
	LiteralPI
)

// ByteSource is the "byte stream by URI" external collaborator the
// core requires: given an absolute URI it returns a byte stream, the
// resolved URI (which may differ, e.g. after a redirect), and the
// response content type (used to force HTML mode).
type ByteSource interface {
	Open(uri string) (r io.ReadCloser, resolvedURI string, contentType string, err error)
}

// Entity represents one character source: an internal literal body,
// an external reference resolved through a ByteSource, or a
// pre-existing reader already in hand.
type Entity struct {
	Name       string
	PublicID   string
	URI        string // as given
	ResolvedURI string // filled on Open
	Parent     *Entity // back reference only, never owning
	Literal    string  // body, for internal entities
	Class      Literal
	IsInternal bool
	IsHTML     bool
	Encoding   string
	Proxy      string

	stream *Stream
	closer io.Closer
	opened bool
	closed bool
}

var (
	ErrAlreadyOpened        = errors.New("entity already opened")
	ErrNotOpened            = errors.New("entity not opened")
	ErrAlreadyClosed        = errors.New("entity already closed")
	ErrExternalParameterRef = errors.New("external parameter entity reference rejected")
)

// NewInternal constructs an entity whose content is a literal body
// (a general or parameter entity's replacement text).
func NewInternal(name, value string, class Literal) *Entity {
	return &Entity{
		Name:       name,
		Literal:    value,
		Class:      class,
		IsInternal: true,
	}
}

// NewExternal constructs an entity resolved by URI through a
// ByteSource when Open is called.
func NewExternal(name, publicID, uri string) *Entity {
	return &Entity{
		Name:     name,
		PublicID: publicID,
		URI:      uri,
	}
}

// NewFromReader wraps a pre-existing character reader (e.g. the
// top-level document supplied as an io.Reader rather than a URI).
// The caller is responsible for decoding; text is assumed to already
// be UTF-8.
func NewFromReader(name string, r io.Reader, isHTML bool) (*Entity, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	e := &Entity{Name: name, IsInternal: false, IsHTML: isHTML}
	e.stream = NewStream(b, isHTML)
	e.opened = true
	return e, nil
}

// Open resolves the entity exactly once: internal entities open a
// reader over their literal, external entities fetch through src,
// layer the Encoding Detector on top, and force IsHTML when the
// response content type is text/html.
func (e *Entity) Open(src ByteSource, defaultEncoding string) error {
	if e.opened {
		return ErrAlreadyOpened
	}
	e.opened = true

	if e.IsInternal {
		e.stream = NewStream([]byte(e.Literal), e.IsHTML)
		return nil
	}

	if src == nil {
		return fmt.Errorf("entity %q: no byte source configured", e.Name)
	}

	r, resolved, contentType, err := src.Open(e.URI)
	if err != nil {
		return err
	}
	e.closer = r
	if resolved != "" {
		e.ResolvedURI = resolved
	} else {
		e.ResolvedURI = e.URI
	}
	if contentType == "text/html" {
		e.IsHTML = true
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	decName, consumed := encoding.DetectBOM(raw)
	if decName != "" {
		raw = raw[consumed:]
	} else if decName2, ok := encoding.SniffXMLDecl(raw); ok {
		decName = decName2
	} else if decName2, ok := encoding.SniffHTMLMeta(sniffWindow(raw)); ok {
		decName = decName2
	} else if defaultEncoding != "" {
		decName = defaultEncoding
	}
	e.Encoding = decName

	enc := encoding.LoadOrDefault(decName)
	text, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return err
	}

	e.stream = NewStream(text, e.IsHTML)
	return nil
}

func sniffWindow(b []byte) []byte {
	const window = 4096
	if len(b) > window {
		return b[:window]
	}
	return b
}

// Close disposes of the underlying byte source exactly once.
func (e *Entity) Close() error {
	if e.closed {
		return ErrAlreadyClosed
	}
	e.closed = true
	if e.closer != nil {
		return e.closer.Close()
	}
	return nil
}

func (e *Entity) Stream() (*Stream, error) {
	if !e.opened {
		return nil, ErrNotOpened
	}
	return e.stream, nil
}

// Context walks the parent chain and returns a human-readable trace
// with line/entity/URI for each frame, newest first.
func (e *Entity) Context() string {
	var buf bytes.Buffer
	for cur := e; cur != nil; cur = cur.Parent {
		var line, column int
		if cur.stream != nil {
			line = cur.stream.Line()
			column = cur.stream.Column()
		}
		fmt.Fprintf(&buf, "  at %s line %d column %d", describeEntity(cur), line, column)
		if cur.ResolvedURI != "" {
			fmt.Fprintf(&buf, " (%s)", cur.ResolvedURI)
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}

func describeEntity(e *Entity) string {
	if e.Name == "" {
		return "<document>"
	}
	return e.Name
}
