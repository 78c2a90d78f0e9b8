package sgmlreader

import (
	"fmt"
	"strings"

	"github.com/nrkn/sgmlreader/dtd"
	"github.com/nrkn/sgmlreader/entity"
	"github.com/nrkn/sgmlreader/node"
)

// startTagInfo is a fully-scanned but not-yet-applied start tag: the
// auto-close walk may need to emit several synthetic EndElements
// before this tag's element is actually pushed, so the scanned data
// is carried in a pending closure rather than applied immediately.
type startTagInfo struct {
	name      string
	attrs     []pendingAttr
	selfClose bool
	simulated bool
}

type pendingAttr struct {
	name  string
	value *string
	quote rune
}

// dispatchMarkup routes on the character immediately following '<',
// already consumed by accumulateText's lookahead.
func (r *Reader) dispatchMarkup(discrim rune) bool {
	switch discrim {
	case '/':
		return r.parseEndTag()
	case '!':
		return r.parseBang()
	case '?':
		return r.parsePI()
	case '%':
		return r.parseASPBlock()
	default:
		return r.parseStartTag()
	}
}

func (r *Reader) parseBang() bool {
	s := r.cur()
	s.ReadChar() // consume '!'
	switch s.LastChar() {
	case '-':
		return r.parseComment()
	case '[':
		return r.parseCDATASection()
	default:
		kw, err := s.ScanToken(" \t\r\n[", false)
		if err != nil {
			return r.fail(err)
		}
		if strings.EqualFold(kw, "DOCTYPE") {
			return r.parseDoctype()
		}
		return r.fail(fmt.Errorf("%w: <!%s", ErrUnexpectedMarkup, kw))
	}
}

func (r *Reader) parseComment() bool {
	text, err := r.scanCommentBody(r.cur())
	if err != nil {
		return r.fail(err)
	}
	return r.emitScratch("", node.Comment, repairCommentText(text))
}

// scanCommentBody reads a comment's text once the stream is
// positioned on its first (unconsumed) '-', shared by parseComment
// and scanCData's recognition of a comment embedded in raw content.
func (r *Reader) scanCommentBody(s *entity.Stream) (string, error) {
	s.ReadChar() // consume the first '-'
	if s.LastChar() != '-' {
		return "", ErrUnexpectedMarkup
	}
	s.ReadChar() // consume the second '-'
	text, err := s.ScanToEnd("comment", "-->")
	if err != nil {
		return "", ErrUnclosedComment
	}
	return text, nil
}

// repairCommentText makes scanned comment text safe to re-emit as an
// XML comment: XML forbids "--" in a comment body and a trailing "-",
// both of which occur often enough in hand-written HTML/SGML.
func repairCommentText(text string) string {
	text = strings.ReplaceAll(text, "--", "-")
	if strings.HasSuffix(text, "-") {
		text += " "
	}
	return text
}

func (r *Reader) parseCDATASection() bool {
	s := r.cur()
	s.ReadChar() // consume '['
	kw, err := s.ScanToken(" \t\r\n[]", false)
	if err != nil {
		return r.fail(err)
	}
	if strings.EqualFold(kw, "CDATA") && s.LastChar() == '[' {
		s.ReadChar() // consume the second '['
		text, err := s.ScanToEnd("CDATA section", "]]>")
		if err != nil {
			return r.fail(ErrUnclosedCDATA)
		}
		return r.emitScratch("", node.CDATA, text)
	}
	// not a marked section we implement: IE's downlevel-revealed
	// conditional comments (<![if ...]>, <![endif]>) and any other
	// "<![keyword ...]>" form have no XML equivalent, so they are
	// dropped rather than reported.
	if _, err := s.ScanToEnd("marked section", "]>"); err != nil {
		r.warn("sgmlreader: marked section %q not closed before end of input", kw)
	}
	return r.scanNext()
}

func (r *Reader) parsePI() bool {
	target, data, err := r.scanPIBody(r.cur())
	if err != nil {
		return r.fail(err)
	}
	if strings.EqualFold(target, "xml") && r.elements.Len() == 0 && !r.rootFound {
		return r.scanNext() // the XML declaration itself: consumed, never reported
	}
	return r.emitScratch(target, node.ProcessingInstruction, strings.TrimSpace(data))
}

// scanPIBody reads a processing instruction's target and data once
// the stream is positioned on its unconsumed '?', shared by parsePI
// and scanCData's recognition of a PI embedded in raw content.
func (r *Reader) scanPIBody(s *entity.Stream) (target, data string, err error) {
	s.ReadChar() // consume '?'
	target, err = s.ScanToken(" \t\r\n?", true)
	if err != nil {
		return "", "", err
	}
	s.SkipWhitespace()
	data, err = s.ScanToEnd("processing instruction", "?>")
	if err != nil {
		return "", "", ErrUnclosedProcessingInstr
	}
	return target, data, nil
}

func (r *Reader) parseASPBlock() bool {
	s := r.cur()
	s.ReadChar() // consume '%'
	body, err := s.ScanToEnd("ASP block", "%>")
	if err != nil {
		return r.fail(ErrUnexpectedMarkup)
	}
	return r.emitScratch("", node.CDATA, "<%"+body+"%>")
}

func (r *Reader) parseDoctype() bool {
	s := r.cur()
	s.SkipWhitespace()
	name, err := s.ScanToken(" \t\r\n>[", true)
	if err != nil {
		return r.fail(ErrUnclosedDoctype)
	}
	s.SkipWhitespace()

	var pubid, syslit string
	if s.LastChar() != '>' && s.LastChar() != '[' {
		kw, _ := s.ScanToken(" \t\r\n>[", false)
		switch strings.ToUpper(kw) {
		case "PUBLIC":
			s.SkipWhitespace()
			if q := s.LastChar(); q == '"' || q == '\'' {
				s.ReadChar()
				pubid, _ = s.ScanLiteral(q)
			}
			s.SkipWhitespace()
			if q := s.LastChar(); q == '"' || q == '\'' {
				s.ReadChar()
				syslit, _ = s.ScanLiteral(q)
			}
		case "SYSTEM":
			s.SkipWhitespace()
			if q := s.LastChar(); q == '"' || q == '\'' {
				s.ReadChar()
				syslit, _ = s.ScanLiteral(q)
			}
		}
		s.SkipWhitespace()
	}
	var internalSubset string
	haveInternalSubset := false
	if s.LastChar() == '[' {
		s.ReadChar() // consume '['
		text, err := s.ScanToEnd("internal subset", "]")
		if err != nil {
			return r.fail(ErrUnclosedDoctype)
		}
		internalSubset, haveInternalSubset = text, true
		s.SkipWhitespace()
	}
	if s.LastChar() != '>' {
		return r.fail(ErrUnclosedDoctype)
	}
	s.ReadChar()

	if r.internalSubset != "" {
		internalSubset, haveInternalSubset = r.internalSubset, true
	}

	if !r.ignoreDTD && r.dtd == nil {
		effPubid, effSyslit := pubid, syslit
		if r.publicID != "" {
			effPubid = r.publicID
		}
		if r.systemLiteral != "" {
			effSyslit = r.systemLiteral
		}
		if haveInternalSubset {
			if err := r.loadInternalSubsetDTD(name, internalSubset); err != nil {
				return r.fail(err)
			}
		} else if err := r.loadDTD(name, effPubid, effSyslit); err != nil {
			return r.fail(err)
		}
	}

	if r.stripDocType {
		return r.scanNext()
	}
	return r.emitScratch(name, node.DocumentType, syslit)
}

func (r *Reader) parseEndTag() bool {
	s := r.cur()
	s.ReadChar() // consume '/'
	name, err := s.ScanToken(" \t\r\n>", true)
	if err != nil || name == "" {
		_, _ = s.ScanToEnd("end tag", ">")
		return r.scanNext()
	}
	s.SkipWhitespace()
	if s.LastChar() == '>' {
		s.ReadChar()
	}
	return r.closeNamed(name)
}

// closeNamed finds the innermost open element matching name
// (case-insensitively, independent of the configured CaseFolding
// policy) and emits one EndElement for every element from the top of
// the stack down to and including the match -- the same implicit
// repair an HTML-aware parser applies to "</div>" when an unclosed
// <span> is still open above it.
func (r *Reader) closeNamed(name string) bool {
	n := r.elements.Len()
	matchIdx := -1
	for i := n - 1; i >= 0; i-- {
		if strings.EqualFold(r.elements.At(i).Name, name) {
			matchIdx = i
			break
		}
	}
	if matchIdx < 0 {
		r.warn("sgmlreader: end tag </%s> has no matching start tag, ignored", name)
		return r.scanNext()
	}
	closesNeeded := n - matchIdx
	for k := 1; k < closesNeeded; k++ {
		r.pending = append(r.pending, r.closeCurrentElement)
	}
	return r.closeCurrentElement()
}

func (r *Reader) popElement() *node.Node {
	n := r.elements.Pop()
	if n == nil {
		return nil
	}
	count := r.popNSCount()
	r.ns.Pop(count)
	return n
}

func (r *Reader) closeCurrentElement() bool {
	n := r.popElement()
	if n == nil {
		return r.finishDocument()
	}
	name := n.Name
	n.Reset(name, node.EndElement, "")
	r.event = n
	return true
}

func (r *Reader) finishDocument() bool {
	if r.elements.Len() > 0 {
		n := r.elements.Len()
		for k := 1; k < n; k++ {
			r.pending = append(r.pending, r.closeCurrentElement)
		}
		return r.closeCurrentElement()
	}
	r.readState = ReadStateEndOfFile
	return false
}

func (r *Reader) scanAttributes(s *entity.Stream) ([]pendingAttr, bool) {
	var attrs []pendingAttr
	selfClose := false
	for {
		s.SkipWhitespace()
		c := s.LastChar()
		if c == entity.EOF {
			break
		}
		if c == '>' {
			s.ReadChar()
			break
		}
		if c == '/' {
			next := s.ReadChar()
			if next == '>' {
				s.ReadChar()
				selfClose = true
				break
			}
			continue
		}
		name, err := s.ScanToken(" \t\r\n=/>", true)
		if err != nil || name == "" {
			s.ReadChar() // make progress past an un-scannable byte
			continue
		}
		s.SkipWhitespace()
		var value *string
		var quote rune
		if s.LastChar() == '=' {
			s.ReadChar()
			s.SkipWhitespace()
			switch s.LastChar() {
			case '"', '\'':
				q := s.LastChar()
				s.ReadChar()
				v, err := s.ScanLiteral(q)
				if err == nil {
					value = &v
					quote = q
				}
			default:
				v, _ := s.ScanToken(" \t\r\n>", false)
				value = &v
			}
		} else {
			// bare HTML-style boolean attribute (<input disabled>):
			// the value defaults to the attribute's own name.
			v := name
			value = &v
		}
		attrs = append(attrs, pendingAttr{name: name, value: value, quote: quote})
	}
	return attrs, selfClose
}

func (r *Reader) parseStartTag() bool {
	s := r.cur()
	name, err := s.ScanToken(" \t\r\n/>", true)
	if err != nil || name == "" || !VerifyName(name) {
		_, _ = s.ScanToEnd("start tag", ">")
		return r.emitScratch("", node.Text, "<"+name+">")
	}
	attrs, selfClose := r.scanAttributes(s)
	return r.openElement(&startTagInfo{name: name, attrs: attrs, selfClose: selfClose})
}

// openElement applies structural repair before a scanned start tag
// actually becomes a pushed element: forcing EOF on a second root,
// injecting a simulated <html> the first time an HTML document's root
// isn't already "html", and auto-closing any open ancestors the DTD
// says cannot contain this element and whose own end tag is
// omissible.
func (r *Reader) openElement(info *startTagInfo) bool {
	if r.elements.Len() == 0 && r.topLevelElement {
		r.readState = ReadStateEndOfFile
		return false
	}

	if r.elements.Len() == 0 && !r.rootFound && r.isHTML && !r.ignoreDTD &&
		r.dtd != nil && !strings.EqualFold(info.name, "html") {
		r.pending = append(r.pending, func() bool { return r.pushAndEmitStart(info) })
		return r.pushSimulatedHTML()
	}

	closes := r.computeAutoClose(info.name)
	if closes > 0 {
		for k := 1; k < closes; k++ {
			r.pending = append(r.pending, r.closeCurrentElement)
		}
		r.pending = append(r.pending, func() bool { return r.pushAndEmitStart(info) })
		return r.closeCurrentElement()
	}
	return r.pushAndEmitStart(info)
}

// computeAutoClose walks outward from the innermost open element,
// counting how many must implicitly close before name can be opened:
// it stops at the first ancestor whose content model already permits
// or explicitly includes name, whose exclusion set forbids name
// outright (name nests inside regardless, permissively), whose own
// end tag is mandatory, or that has no DTD binding at all. The
// document root and <body> at depth 2 are never counted, regardless
// of what their content model would otherwise allow: a second root
// and an unclosable <body> are both ends a browser parser never lets
// auto-close reach.
func (r *Reader) computeAutoClose(name string) int {
	count := 0
	for i := r.elements.Len() - 1; i >= 0; i-- {
		if i == 0 {
			break
		}
		el := r.elements.At(i)
		if i == 1 && strings.EqualFold(el.Name, "body") {
			break
		}
		if el.Decl == nil {
			break
		}
		if el.Decl.Excludes(name) {
			break
		}
		if el.Decl.CanContain(name) || el.Decl.Includes(name) {
			break
		}
		if !el.Decl.EndTagOptional {
			break
		}
		count++
	}
	return count
}

func (r *Reader) pushSimulatedHTML() bool {
	decl, _ := r.elementDecl("html")
	n := r.elements.Push(r.caseFolding.Fold("html"), node.Element, "")
	n.Decl = decl
	n.Simulated = true
	n.IsEmpty = false
	r.pushNSCount(0)
	r.rootFound = true
	r.topLevelElement = true
	r.event = n
	return true
}

func (r *Reader) pushAndEmitStart(info *startTagInfo) bool {
	if r.elements.Len() == 0 {
		r.topLevelElement = true
	}

	decl, _ := r.elementDecl(info.name)
	reportedName := r.caseFolding.Fold(info.name)

	parentSpace, parentLang := node.XmlSpaceDefault, ""
	if top := r.elements.Top(); top != nil {
		parentSpace, parentLang = top.XmlSpace, top.XmlLang
	}

	n := r.elements.Push(reportedName, node.Element, "")
	n.Decl = decl
	n.XmlSpace = parentSpace
	n.XmlLang = parentLang
	n.Simulated = info.simulated

	nsDeclared := 0
	for _, a := range info.attrs {
		if n.AttributeByName(a.name) != nil {
			continue // first occurrence of a duplicate attribute wins
		}
		if !VerifyNMTOKEN(a.name) {
			continue
		}
		dst := n.PushAttribute(a.name)
		dst.Value = a.value
		dst.Quote = a.quote
		if decl != nil {
			if ad, ok := decl.GetAttribute(a.name); ok {
				dst.Def = ad
			}
		}

		val := dst.EffectiveValue()
		switch {
		case strings.EqualFold(a.name, "xmlns"):
			if r.ns.Declare("", val) {
				nsDeclared++
			}
		case len(a.name) > 6 && strings.EqualFold(a.name[:6], "xmlns:"):
			if r.ns.Declare(a.name[6:], val) {
				nsDeclared++
			}
		case strings.EqualFold(a.name, "xml:space"):
			if strings.EqualFold(val, "preserve") {
				n.XmlSpace = node.XmlSpacePreserve
			} else {
				n.XmlSpace = node.XmlSpaceDefault
			}
		case strings.EqualFold(a.name, "xml:lang"):
			n.XmlLang = val
		}
	}
	r.pushNSCount(nsDeclared)

	n.IsEmpty = info.selfClose ||
		(decl != nil && decl.Content != nil && decl.Content.DeclaredContent == dtd.DeclaredEMPTY)

	if n.IsEmpty {
		r.pending = append(r.pending, r.closeCurrentElement)
	}

	r.event = n
	r.rootFound = true
	return true
}
