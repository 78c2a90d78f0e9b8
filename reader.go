package sgmlreader

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lestrrat-go/pdebug"

	"github.com/nrkn/sgmlreader/dtd"
	"github.com/nrkn/sgmlreader/entity"
	"github.com/nrkn/sgmlreader/internal/debug"
	"github.com/nrkn/sgmlreader/internal/pool"
	"github.com/nrkn/sgmlreader/node"
)

// ReadState mirrors the standard pull-reader lifecycle: Initial before
// the first Read, Interactive while nodes are being produced,
// EndOfFile once the document is exhausted, Error after a fatal
// ParseError, Closed after Close.
type ReadState int

const (
	ReadStateInitial ReadState = iota
	ReadStateInteractive
	ReadStateEndOfFile
	ReadStateError
	ReadStateClosed
)

// Reader is the pull-mode SGML/HTML reader (C7): it tokenizes markup,
// maintains the open-element stack, consults the DTD to auto-close
// elements whose end tags were omitted, folds case, and emits a
// well-formed XML event sequence one node per Read call.
type Reader struct {
	src            ByteSource
	resourceLoader ResourceLoader
	logf           Logger
	logFile        *os.File

	docTypeOverride string
	publicID        string
	systemLiteral   string
	internalSubset  string
	ignoreDTD       bool
	stripDocType    bool
	caseFolding     CaseFolding
	wsHandling      WhitespaceHandling
	webProxy        string
	baseURI         string
	defaultEncoding string

	stack    entity.Stack
	dtd      *dtd.Dtd
	dtdReady bool
	isHTML   bool

	elements node.Stack
	scratch  *node.Node // backing store for Text/CDATA/Comment/PI/Whitespace/DocumentType events
	event    *node.Node // the node the last Read produced: scratch, or a node on elements
	ns       *namespaceResolver
	nsCounts []int // per open-element count of xmlns bindings pushed, for Pop on close

	rootFound       bool
	topLevelElement bool

	pending []func() bool

	readState ReadState
	err       error
	closed    bool

	textBuf []byte
}

// NewReader constructs a Reader from the given functional options.
// Exactly one of WithInputStream/WithHref must be given. The root
// entity is opened before NewReader returns; loading a DTD named by
// the options waits for the first call to Read.
func NewReader(opts ...Option) (*Reader, error) {
	scratch := node.NewScratch()
	r := &Reader{
		resourceLoader: DefaultResourceLoader,
		caseFolding:    CaseNone,
		wsHandling:     WhitespaceAll,
		readState:      ReadStateInitial,
		scratch:        scratch,
		event:          scratch,
		ns:             newNamespaceResolver(),
	}

	var inputStream io.Reader
	var href string

	for _, opt := range opts {
		switch opt.Ident() {
		case identInputStream{}:
			inputStream = opt.Value().(io.Reader)
		case identHref{}:
			href = opt.Value().(string)
		case identDocType{}:
			r.docTypeOverride = opt.Value().(string)
		case identPublicIdentifier{}:
			r.publicID = opt.Value().(string)
		case identSystemLiteral{}:
			r.systemLiteral = opt.Value().(string)
		case identInternalSubset{}:
			r.internalSubset = opt.Value().(string)
		case identIgnoreDTD{}:
			r.ignoreDTD = opt.Value().(bool)
		case identStripDocType{}:
			r.stripDocType = opt.Value().(bool)
		case identCaseFolding{}:
			r.caseFolding = opt.Value().(CaseFolding)
		case identWhitespaceHandling{}:
			r.wsHandling = opt.Value().(WhitespaceHandling)
		case identWebProxy{}:
			r.webProxy = opt.Value().(string)
		case identBaseURI{}:
			r.baseURI = opt.Value().(string)
		case identErrorLog{}:
			r.logf = opt.Value().(Logger)
		case identErrorLogFile{}:
			path := opt.Value().(string)
			f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				return nil, err
			}
			r.logFile = f
			r.logf = func(line string) { fmt.Fprintln(f, line) }
		case identByteSource{}:
			r.src = opt.Value().(ByteSource)
		case identResourceLoader{}:
			r.resourceLoader = opt.Value().(ResourceLoader)
		case identDefaultEncoding{}:
			r.defaultEncoding = opt.Value().(string)
		}
	}

	if inputStream != nil && href != "" {
		return nil, ErrBothInputs
	}
	if inputStream == nil && href == "" {
		return nil, ErrNoInput
	}
	if r.src == nil {
		r.src = DefaultByteSource
	}

	if inputStream != nil {
		root, err := r.openRoot(inputStream, href)
		if err != nil {
			return nil, err
		}
		r.stack.PushOpened(root)
		r.isHTML = root.IsHTML
	} else {
		root, err := r.openRoot(inputStream, href)
		if err != nil {
			return nil, err
		}
		if err := r.stack.Push(root, r.src, r.defaultEncoding); err != nil {
			return nil, err
		}
		r.isHTML = root.IsHTML
	}
	if strings.EqualFold(r.docTypeOverride, "html") {
		r.isHTML = true
	}

	return r, nil
}

func (r *Reader) openRoot(inputStream io.Reader, href string) (*entity.Entity, error) {
	if inputStream != nil {
		isHTML := strings.EqualFold(r.docTypeOverride, "html")
		return entity.NewFromReader("", inputStream, isHTML)
	}
	e := entity.NewExternal("", "", href)
	e.Proxy = r.webProxy
	return e, nil
}

func (r *Reader) warn(format string, args ...interface{}) {
	if r.logf != nil {
		r.logf(fmt.Sprintf(format, args...))
	}
}

func (r *Reader) fail(err error) bool {
	ctx := ""
	if e := r.stack.Current(); e != nil {
		ctx = e.Context()
	}
	r.err = wrapParseError(err, ctx)
	r.readState = ReadStateError
	return false
}

// cur returns the document entity stream currently driving
// tokenization, transparently popping any nested (general- or
// parameter-entity) frame that has run dry -- the same flattening
// rule dtd.Parser's cur() applies, now shared by the document reader
// so `&name;` expansion of an external general entity reads
// seamlessly until exhausted and then resumes the parent.
func (r *Reader) cur() *entity.Stream {
	for {
		e := r.stack.Current()
		if e == nil {
			return nil
		}
		s, _ := e.Stream()
		if s.LastChar() == entity.EOF && r.stack.Depth() > 1 {
			if err := r.stack.Pop(); err != nil {
				return nil
			}
			continue
		}
		return s
	}
}

// Read advances to the next node and reports whether one was
// produced. It returns false at end of document or after a fatal
// error (distinguished by Err).
func (r *Reader) Read() bool {
	if r.closed {
		r.err = ErrReaderClosed
		return false
	}
	if r.readState == ReadStateInitial {
		if err := r.bootstrap(); err != nil {
			return r.fail(err)
		}
		r.readState = ReadStateInteractive
	}
	if r.readState == ReadStateError || r.readState == ReadStateEndOfFile {
		return false
	}

	if pdebug.Enabled {
		g := pdebug.Marker("Reader.Read")
		defer g.End()
	}

	if len(r.pending) > 0 {
		fn := r.pending[0]
		r.pending = r.pending[1:]
		ok := fn()
		if !ok && r.err == nil {
			r.readState = ReadStateEndOfFile
		}
		return ok
	}

	ok := r.scanNext()
	if !ok && r.err == nil {
		r.readState = ReadStateEndOfFile
	}
	return ok
}

// Err returns the fatal error that stopped Read, if any.
func (r *Reader) Err() error { return r.err }

// EOF reports whether the reader has reached the end of the document
// (with no outstanding error).
func (r *Reader) EOF() bool { return r.readState == ReadStateEndOfFile }

// ReadState reports the high-level reader lifecycle state.
func (r *Reader) ReadState() ReadState { return r.readState }

// Encoding reports the encoding the root entity was decoded with.
func (r *Reader) Encoding() string {
	if e := r.rootEntity(); e != nil {
		return e.Encoding
	}
	return ""
}

func (r *Reader) rootEntity() *entity.Entity {
	e := r.stack.Current()
	for e != nil && e.Parent != nil {
		e = e.Parent
	}
	return e
}

// BaseURI is the resolved base URI of the entity currently driving
// tokenization (the document entity, or a pushed external entity).
func (r *Reader) BaseURI() string {
	if e := r.stack.Current(); e != nil && e.ResolvedURI != "" {
		return e.ResolvedURI
	}
	return r.baseURI
}

// Close disposes the entity chain. Safe to call at any point,
// including mid-parse, and safe to call twice.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.readState = ReadStateClosed
	var err error
	for !r.stack.Empty() {
		if e := r.stack.Pop(); e != nil {
			err = e
		}
	}
	if r.logFile != nil {
		_ = r.logFile.Close()
	}
	return err
}

// --- accessors mirroring the current node ---

func (r *Reader) NodeType() node.Type { return r.event.Type }
func (r *Reader) Name() string        { return r.event.Name }
func (r *Reader) Value() string       { return r.event.Value }
func (r *Reader) Depth() int          { return r.elements.Len() }
func (r *Reader) IsEmptyElement() bool {
	return r.event.Type == node.Element && r.event.IsEmpty
}
func (r *Reader) XmlSpace() node.XmlSpace { return r.event.XmlSpace }
func (r *Reader) XmlLang() string         { return r.event.XmlLang }

// LocalName is Name with any namespace prefix stripped.
func (r *Reader) LocalName() string {
	_, local := splitPrefix(r.event.Name)
	return local
}

// Prefix is the namespace prefix portion of Name, or "" when
// unprefixed.
func (r *Reader) Prefix() string {
	prefix, _ := splitPrefix(r.event.Name)
	return prefix
}

// NamespaceURI resolves Prefix against the ancestor xmlns scope
// chain, returning a stable synthesized placeholder for an unbound
// prefix.
func (r *Reader) NamespaceURI() string {
	prefix, _ := splitPrefix(r.event.Name)
	if prefix == "" {
		return ""
	}
	return r.ns.ResolveOrSynthesize(prefix)
}

func splitPrefix(name string) (prefix, local string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// emitScratch reinitializes the shared scratch node and makes it the
// current event, for every node kind the reader never pushes onto
// the open-element stack.
func (r *Reader) emitScratch(name string, typ node.Type, value string) bool {
	r.scratch.Reset(name, typ, value)
	r.event = r.scratch
	return true
}

func (r *Reader) pushNSCount(n int) {
	r.nsCounts = append(r.nsCounts, n)
}

func (r *Reader) popNSCount() int {
	if len(r.nsCounts) == 0 {
		return 0
	}
	n := r.nsCounts[len(r.nsCounts)-1]
	r.nsCounts = r.nsCounts[:len(r.nsCounts)-1]
	return n
}

func (r *Reader) acquireTextBuf() []byte {
	r.textBuf = pool.ByteSlice().GetCapacity(64)
	return r.textBuf
}

func (r *Reader) releaseTextBuf(b []byte) {
	pool.ByteSlice().Put(b)
}

func init() {
	if debug.Enabled {
		debug.Printf("sgmlreader: debug tracing enabled")
	}
}
