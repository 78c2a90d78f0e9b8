package sgmlreader

import (
	"io"

	"github.com/lestrrat-go/option"
)

// Option is the functional-options currency shared by every
// NewReader(...Option) input, the same way the teacher's document
// tree shares github.com/lestrrat-go/option.Interface across its own
// option types.
type Option = option.Interface

type identInputStream struct{}
type identHref struct{}
type identDocType struct{}
type identPublicIdentifier struct{}
type identSystemLiteral struct{}
type identInternalSubset struct{}
type identIgnoreDTD struct{}
type identStripDocType struct{}
type identCaseFolding struct{}
type identWhitespaceHandling struct{}
type identWebProxy struct{}
type identBaseURI struct{}
type identErrorLog struct{}
type identErrorLogFile struct{}
type identByteSource struct{}
type identResourceLoader struct{}
type identDefaultEncoding struct{}

// WhitespaceHandling selects which whitespace-only text runs Read
// reports: a run consisting solely of whitespace is reported as the
// Whitespace node type rather than Text.
type WhitespaceHandling int

const (
	WhitespaceAll         WhitespaceHandling = iota // report every whitespace run
	WhitespaceSignificant                           // reserved for a future xml:space-aware policy; currently same as All
	WhitespaceNone                                   // suppress whitespace-only runs entirely
)

// WithInputStream supplies the document as an already-open io.Reader.
// Exactly one of WithInputStream / WithHref must be given.
func WithInputStream(r io.Reader) Option {
	return option.New(identInputStream{}, r)
}

// WithHref supplies the document as a URI resolved through the
// configured ByteSource. Exactly one of WithInputStream / WithHref
// must be given.
func WithHref(href string) Option {
	return option.New(identHref{}, href)
}

// WithDocType overrides the document type name that would otherwise
// come from an in-document DOCTYPE, e.g. forcing "html" for input
// that lacks one.
func WithDocType(name string) Option {
	return option.New(identDocType{}, name)
}

// WithPublicIdentifier overrides the DOCTYPE's public identifier.
func WithPublicIdentifier(pubid string) Option {
	return option.New(identPublicIdentifier{}, pubid)
}

// WithSystemLiteral overrides the DOCTYPE's system literal (the DTD
// URI).
func WithSystemLiteral(syslit string) Option {
	return option.New(identSystemLiteral{}, syslit)
}

// WithInternalSubset overrides the DOCTYPE's internal subset text.
func WithInternalSubset(subset string) Option {
	return option.New(identInternalSubset{}, subset)
}

// WithIgnoreDTD disables DTD loading entirely: no auto-close, and no
// entity references beyond the numeric character references C2 always
// understands and the five predefined XML entities (amp, lt, gt, quot,
// apos).
func WithIgnoreDTD(v bool) Option {
	return option.New(identIgnoreDTD{}, v)
}

// WithStripDocType suppresses the synthesized DocumentType node.
func WithStripDocType(v bool) Option {
	return option.New(identStripDocType{}, v)
}

// WithCaseFolding selects the C8 name-casing policy.
func WithCaseFolding(v CaseFolding) Option {
	return option.New(identCaseFolding{}, v)
}

// WithWhitespaceHandling selects which whitespace-only runs Read
// reports.
func WithWhitespaceHandling(v WhitespaceHandling) Option {
	return option.New(identWhitespaceHandling{}, v)
}

// WithWebProxy sets an opaque proxy string (e.g. "host:port") that the
// reader records on the entities it opens (entity.Entity.Proxy); the
// core never interprets it. It is not passed to ByteSource.Open: a
// ByteSource that uses a proxy is configured with it directly, as
// FileByteSource.Proxy is.
func WithWebProxy(proxy string) Option {
	return option.New(identWebProxy{}, proxy)
}

// WithBaseURI sets the base URI that BaseURI reports, and that
// relative SYSTEM literals are resolved against, while the current
// entity has no resolved URI of its own. URIs inside document content
// (href attributes and the like) are not resolved.
func WithBaseURI(uri string) Option {
	return option.New(identBaseURI{}, uri)
}

// WithErrorLog installs the Logger recoverable warnings are reported
// through.
func WithErrorLog(logf Logger) Option {
	return option.New(identErrorLog{}, logf)
}

// WithErrorLogFile installs a Logger that appends lines to the named
// file; the Reader owns the resulting file handle and closes it from
// Close.
func WithErrorLogFile(path string) Option {
	return option.New(identErrorLogFile{}, path)
}

// WithByteSource installs the ByteSource collaborator used to resolve
// Href, SYSTEM literals, and external entities.
func WithByteSource(src ByteSource) Option {
	return option.New(identByteSource{}, src)
}

// WithResourceLoader installs the ResourceLoader collaborator used to
// fetch the embedded "HTML" DTD.
func WithResourceLoader(rl ResourceLoader) Option {
	return option.New(identResourceLoader{}, rl)
}

// WithDefaultEncoding names the character encoding a root entity opened
// through WithHref uses when none is declared via BOM, XML declaration,
// or HTML meta tag. A document given through WithInputStream is read
// as UTF-8 and this option does not apply to it.
func WithDefaultEncoding(name string) Option {
	return option.New(identDefaultEncoding{}, name)
}
