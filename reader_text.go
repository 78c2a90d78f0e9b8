package sgmlreader

import (
	"strings"
	"unicode/utf8"

	"github.com/nrkn/sgmlreader/dtd"
	"github.com/nrkn/sgmlreader/entity"
	"github.com/nrkn/sgmlreader/node"
)

// scanNext is the fresh-tokenization entry point Read calls whenever
// there is no queued continuation: it either emits a text/whitespace
// run and stashes the markup discriminator that follows it for the
// next Read, or -- when the run is empty because markup comes first,
// or because a whitespace-only run was suppressed -- dispatches that
// markup in the same call, since a call that produced no node at all
// would violate "exactly one node per Read".
func (r *Reader) scanNext() bool {
	if _, ok := r.cdataContent(); ok {
		return r.scanCData()
	}

	s := r.cur()
	if s == nil || s.LastChar() == entity.EOF {
		return r.finishDocument()
	}

	buf := r.acquireTextBuf()
	discrim, hitMarkup, err := r.accumulateText(&buf)
	if err != nil {
		r.releaseTextBuf(buf)
		return r.fail(err)
	}

	if len(buf) > 0 && r.emitTextRun(buf) {
		// emitTextRun always releases buf before returning.
		if hitMarkup {
			d := discrim
			r.pending = append(r.pending, func() bool { return r.dispatchMarkup(d) })
		}
		return true
	}

	// Either buf was empty, or it was an all-whitespace run suppressed
	// by WithWhitespaceHandling(WhitespaceNone); either way no node
	// was produced yet, so resolve the boundary we already found
	// directly instead of re-deriving it through cur().
	if hitMarkup {
		return r.dispatchMarkup(discrim)
	}
	return r.finishDocument()
}

// accumulateText reads characters into *bufp until it finds the start
// of real markup (returning the already-consumed discriminator
// character immediately following '<') or reaches end of document.
// A '<' not followed by a tag-shaped character is not markup at all
// in loose SGML content and is folded back into the text run verbatim
// -- matching the PartialTag/PartialText distinction design notes
// describe.
func (r *Reader) accumulateText(bufp *[]byte) (discrim rune, hitMarkup bool, err error) {
	buf := *bufp
	for {
		s := r.cur()
		if s == nil {
			*bufp = buf
			return 0, false, nil
		}
		c := s.LastChar()
		switch {
		case c == entity.EOF:
			*bufp = buf
			return 0, false, nil
		case c == '<':
			next := s.ReadChar()
			if next == '/' || next == '!' || next == '?' || next == '%' || isASCIILetter(next) {
				*bufp = buf
				return next, true, nil
			}
			buf = append(buf, '<')
		case c == '&':
			expanded, eerr := r.expandEntityInText(s)
			if eerr != nil {
				*bufp = buf
				return 0, false, eerr
			}
			buf = append(buf, expanded...)
		default:
			buf = appendRune(buf, c)
			s.ReadChar()
		}
	}
}

// expandEntityInText expands one entity reference with the current
// character positioned on '&'. Numeric references (&#NN; / &#xHH;)
// are always recognized; named references resolve against the active
// DTD's general entity table (falling back to the five predefined XML
// entities when no DTD is loaded or it does not declare the name),
// pushing the document's entity
// stack to follow an external general entity the same way the DTD
// parser follows a parameter entity.
func (r *Reader) expandEntityInText(s *entity.Stream) (string, error) {
	if expanded, err := s.ExpandCharEntity(); err == nil {
		return expanded, nil
	}
	// Not numeric: ExpandCharEntity already consumed '&' and left
	// lastChar positioned at the first name character.
	name, err := s.ScanToken(";\t\r\n <&", true)
	if err != nil || name == "" {
		return "&", nil
	}
	if s.LastChar() == ';' {
		s.ReadChar()
	}

	if val, ok := r.resolveGeneralEntity(name); ok {
		return val, nil
	}
	if decl, ok := r.generalEntity(name); ok && !decl.IsInternal {
		if perr := r.pushExternalGeneralEntity(decl); perr != nil {
			r.warn("sgmlreader: could not open external entity %q: %s", name, perr)
		}
		return "", nil
	}
	r.warn("sgmlreader: undefined entity %q", name)
	return "&" + name + ";", nil
}

func (r *Reader) pushExternalGeneralEntity(decl *dtd.EntityDecl) error {
	e := entity.NewExternal(decl.Name, "", decl.SystemID)
	e.Proxy = r.webProxy
	return r.stack.Push(e, r.src, "")
}

// emitTextRun classifies and emits a completed run, honoring
// WithWhitespaceHandling(WhitespaceNone) by reporting false (and
// releasing buf) instead of producing a node for a whitespace-only
// run.
func (r *Reader) emitTextRun(buf []byte) bool {
	if isAllWhitespace(buf) {
		if r.wsHandling == WhitespaceNone {
			r.releaseTextBuf(buf)
			return false
		}
		value := string(buf)
		r.releaseTextBuf(buf)
		r.emitScratch("", node.Whitespace, value)
		return true
	}
	value := string(buf)
	r.releaseTextBuf(buf)
	r.emitScratch("", node.Text, value)
	r.rootFound = true
	return true
}

func isAllWhitespace(buf []byte) bool {
	for _, b := range buf {
		switch b {
		case ' ', '\t', '\r', '\n':
		default:
			return false
		}
	}
	return len(buf) > 0
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// stripNestedCDATAWrappers removes literal CDATA/comment guards that
// hand-written SCRIPT/STYLE bodies wrap themselves in for legacy-parser
// compatibility, so a doubly-wrapped payload like
// "/*<![CDATA[*/ ... /*]]>*/" comes through as plain script text.
func stripNestedCDATAWrappers(s string) string {
	s = strings.ReplaceAll(s, "<![CDATA[", "")
	s = strings.ReplaceAll(s, "]]>", "")
	s = strings.ReplaceAll(s, "/**/", "")
	return s
}

func appendRune(buf []byte, r rune) []byte {
	var tmp [utf8.UTFMax]byte
	n := utf8.EncodeRune(tmp[:], r)
	return append(buf, tmp[:n]...)
}

// cdataContent reports whether the innermost open element declares
// CDATA or RCDATA content (SCRIPT/STYLE-style raw text, or TEXTAREA-
// style replaceable text), and if so its declaration.
func (r *Reader) cdataContent() (*dtd.ElementDecl, bool) {
	top := r.elements.Top()
	if top == nil || top.Decl == nil || top.Decl.Content == nil {
		return nil, false
	}
	switch top.Decl.Content.DeclaredContent {
	case dtd.DeclaredCDATA, dtd.DeclaredRCDATA:
		return top.Decl, true
	default:
		return nil, false
	}
}

// scanCData reads the raw content of a SCRIPT/STYLE/TEXTAREA-like
// element up to its own end tag (compared case-insensitively,
// matching the rest of the reader's case-folding posture). A comment
// or processing instruction embedded in that content -- common in
// hand-written SCRIPT bodies using "<!--//-->" to hide from ancient
// browsers -- is still recognized and reported as its own node rather
// than swallowed into the surrounding text; everything else, and any
// "<" that isn't one of these three forms, stays raw. RCDATA
// additionally expands entity references; CDATA does not.
func (r *Reader) scanCData() bool {
	top := r.elements.Top()
	decl, _ := r.cdataContent()
	rcdata := decl.Content.DeclaredContent == dtd.DeclaredRCDATA
	topName := top.Name

	buf := r.acquireTextBuf()
	for {
		s := r.cur()
		if s == nil || s.LastChar() == entity.EOF {
			r.releaseTextBuf(buf)
			r.warn("sgmlreader: %s not closed before end of input", topName)
			return r.closeCurrentElement()
		}
		c := s.LastChar()
		if c == '<' {
			next := s.ReadChar()
			if next == '/' {
				s.ReadChar() // move past '/' onto the name's first character
				endName, err := s.ScanToken(" \t\r\n>", false)
				if err == nil && strings.EqualFold(endName, topName) {
					s.SkipWhitespace()
					if s.LastChar() == '>' {
						s.ReadChar()
					}
					return r.flushCDataThenEmit(buf, topName, r.closeCurrentElement)
				}
				buf = append(buf, '<', '/')
				buf = append(buf, endName...)
				continue
			}
			if next == '!' {
				d := s.ReadChar() // consume '!'
				if d == '-' {
					text, err := r.scanCommentBody(s)
					if err != nil {
						r.releaseTextBuf(buf)
						return r.fail(err)
					}
					return r.flushCDataThenEmit(buf, topName, func() bool {
						return r.emitScratch("", node.Comment, repairCommentText(text))
					})
				}
				buf = append(buf, '<', '!')
				continue
			}
			if next == '?' {
				target, data, err := r.scanPIBody(s)
				if err != nil {
					r.releaseTextBuf(buf)
					return r.fail(err)
				}
				return r.flushCDataThenEmit(buf, topName, func() bool {
					return r.emitScratch(target, node.ProcessingInstruction, strings.TrimSpace(data))
				})
			}
			buf = append(buf, '<')
			continue
		}
		if rcdata && c == '&' {
			expanded, err := r.expandEntityInText(s)
			if err != nil {
				r.releaseTextBuf(buf)
				return r.fail(err)
			}
			buf = append(buf, expanded...)
			continue
		}
		buf = appendRune(buf, c)
		s.ReadChar()
	}
}

// flushCDataThenEmit reports the CDATA/RCDATA text accumulated so far
// (if any) as its own node, queuing emit as the continuation for the
// next Read, since a single call can only ever report one node.
// With nothing accumulated yet, emit runs immediately instead.
func (r *Reader) flushCDataThenEmit(buf []byte, topName string, emit func() bool) bool {
	if len(buf) > 0 {
		r.pending = append(r.pending, emit)
		value := stripNestedCDATAWrappers(string(buf))
		r.releaseTextBuf(buf)
		r.emitScratch(topName, node.CDATA, value)
		return true
	}
	r.releaseTextBuf(buf)
	return emit()
}
