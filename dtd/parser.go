package dtd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lestrrat-go/pdebug"

	"github.com/nrkn/sgmlreader/entity"
	"github.com/nrkn/sgmlreader/internal/debug"
)

const (
	ngTerm = " \r\n\t|,)"
	cmTerm = " \r\n\t,&|()?+*"
	dcTerm = " \r\n\t>"
	peTerm = " \t\r\n>"
)

var (
	ErrUnsupportedInclude   = errors.New("dtd: marked section INCLUDE is not implemented")
	ErrUndefinedParamEntity = errors.New("dtd: undefined parameter entity")
	ErrExternalParamEntity  = errors.New("dtd: external parameter entity rejected")
	ErrUnclosedModelGroup   = errors.New("dtd: content model group not closed in the entity where it was opened")
	ErrExpectedKeyword      = errors.New("dtd: expected ENTITY, ELEMENT, ATTLIST or comment")
	ErrUndeclaredElement    = errors.New("dtd: ATTLIST for undeclared element")
)

// Error wraps a parse failure with the entity-chain context every
// structural DTD error carries.
type Error struct {
	Err     error
	Context string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s\n%s", e.Err, e.Context)
}

func (e *Error) Unwrap() error { return e.Err }

// Parser is the recursive-descent SGML DTD parser (C5). Each Parser
// owns its own entity.Stack, on which the DTD's root entity and every
// parameter entity it expands are pushed, so parameter entity
// expansion flattens transparently into one character stream.
type Parser struct {
	stack  *entity.Stack
	src    entity.ByteSource
	dtd    *Dtd
	logf   func(string)
}

func NewParser(dtd *Dtd, src entity.ByteSource, logf func(string)) *Parser {
	return &Parser{stack: &entity.Stack{}, src: src, dtd: dtd, logf: logf}
}

func (p *Parser) warn(format string, args ...interface{}) {
	if p.logf != nil {
		p.logf(fmt.Sprintf(format, args...))
	}
}

// cur returns the current entity's stream, transparently popping any
// nested (parameter-entity) frame that has run dry so the caller
// always sees a single flattened character stream -- a content model
// like "%flow;" expanding to another parameter entity reference must
// fall back to its parent the moment it is exhausted, not dead-end at
// EOF. The outermost (root DTD) entity is left for Parse's own EOF
// case to pop, since that is what terminates the main loop.
func (p *Parser) cur() *entity.Stream {
	for {
		e := p.stack.Current()
		if e == nil {
			return nil
		}
		s, _ := e.Stream()
		if s.LastChar() == entity.EOF && p.stack.Depth() > 1 {
			if err := p.stack.Pop(); err != nil {
				return nil
			}
			continue
		}
		return s
	}
}

func (p *Parser) error(err error) error {
	ctx := ""
	if e := p.stack.Current(); e != nil {
		ctx = e.Context()
	}
	return &Error{Err: err, Context: ctx}
}

// Parse drives the main loop: select on the current character,
// pushing/popping entities as parameter references are encountered,
// terminating when the entity stack empties.
func (p *Parser) Parse(root *entity.Entity) (*Dtd, error) {
	if pdebug.Enabled {
		g := pdebug.Marker("Parser.Parse")
		defer g.End()
	}

	if err := p.stack.Push(root, p.src, ""); err != nil {
		return nil, err
	}

	for {
		s := p.cur()
		if s == nil {
			break
		}
		switch {
		case s.LastChar() == entity.EOF:
			if err := p.stack.Pop(); err != nil {
				return nil, err
			}
			if p.stack.Empty() {
				return p.dtd, nil
			}
		case s.IsWhitespace():
			s.ReadChar()
		case s.LastChar() == '<':
			if err := p.parseMarkup(); err != nil {
				return nil, p.error(err)
			}
		case s.LastChar() == '%':
			if err := p.expandParameterEntity(); err != nil {
				return nil, p.error(err)
			}
		default:
			return nil, p.error(fmt.Errorf("dtd: unexpected character %q", s.LastChar()))
		}
	}
	return p.dtd, nil
}

func (p *Parser) expandParameterEntity() error {
	s := p.cur()
	s.ReadChar() // consume '%'
	name, err := s.ScanToken(";"+peTerm, true)
	if err != nil {
		return err
	}
	if s.LastChar() == ';' {
		s.ReadChar()
	}

	decl, ok := p.dtd.ParameterEntity(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUndefinedParamEntity, name)
	}
	if !decl.IsInternal {
		return ErrExternalParamEntity
	}

	pe := entity.NewInternal(decl.Name, decl.Value, entity.LiteralNone)
	return p.stack.Push(pe, p.src, "")
}

func (p *Parser) parseMarkup() error {
	s := p.cur()
	s.ReadChar() // consume '<'
	if s.LastChar() != '!' {
		return ErrExpectedKeyword
	}
	s.ReadChar() // consume '!'

	switch {
	case s.LastChar() == '-':
		return p.parseComment()
	case s.LastChar() == '[':
		return p.parseMarkedSection()
	default:
		kw, err := s.ScanToken(" \t\r\n", false)
		if err != nil {
			return err
		}
		switch strings.ToUpper(kw) {
		case "ENTITY":
			return p.parseEntityDecl()
		case "ELEMENT":
			return p.parseElementDecl()
		case "ATTLIST":
			return p.parseAttlistDecl()
		default:
			return fmt.Errorf("%w: got %q", ErrExpectedKeyword, kw)
		}
	}
}

func (p *Parser) parseComment() error {
	s := p.cur()
	s.ReadChar() // first '-'
	if s.LastChar() != '-' {
		return errors.New("dtd: malformed comment")
	}
	s.ReadChar() // second '-'
	_, err := s.ScanToEnd("comment", "-->")
	return err
}

func (p *Parser) parseMarkedSection() error {
	s := p.cur()
	s.ReadChar() // consume '['
	s.SkipWhitespace()
	kw, err := s.ScanToken(" \t\r\n[", false)
	if err != nil {
		return err
	}
	s.SkipWhitespace()
	if s.LastChar() == '[' {
		s.ReadChar()
	}

	switch strings.ToUpper(kw) {
	case "INCLUDE":
		return ErrUnsupportedInclude
	case "IGNORE":
		_, err := s.ScanToEnd("marked section", "]]>")
		return err
	default:
		return fmt.Errorf("dtd: unsupported marked section keyword %q", kw)
	}
}

// parseEntityDecl parses:
//
//	<!ENTITY [%] name (literal | (CDATA|SDATA|PI) literal |
//	                   (PUBLIC pubid uri | SYSTEM uri))>
func (p *Parser) parseEntityDecl() error {
	s := p.cur()
	s.SkipWhitespace()

	isParam := false
	if s.LastChar() == '%' {
		isParam = true
		s.ReadChar()
		s.SkipWhitespace()
	}

	name, err := s.ScanToken(" \t\r\n", true)
	if err != nil {
		return err
	}
	s.SkipWhitespace()

	decl := &EntityDecl{Name: name, IsParam: isParam}

	switch {
	case s.LastChar() == '"' || s.LastChar() == '\'':
		q := s.LastChar()
		s.ReadChar()
		val, err := s.ScanLiteral(q)
		if err != nil {
			return err
		}
		decl.Value = val
		decl.IsInternal = true
	default:
		kw, err := s.ScanToken(" \t\r\n", false)
		if err != nil {
			return err
		}
		switch strings.ToUpper(kw) {
		case "CDATA", "SDATA", "PI":
			s.SkipWhitespace()
			q := s.LastChar()
			s.ReadChar()
			val, err := s.ScanLiteral(q)
			if err != nil {
				return err
			}
			decl.Value = val
			decl.IsInternal = true
			switch strings.ToUpper(kw) {
			case "CDATA":
				decl.Class = int(entity.LiteralCDATA)
			case "SDATA":
				decl.Class = int(entity.LiteralSDATA)
			case "PI":
				decl.Class = int(entity.LiteralPI)
			}
		case "PUBLIC":
			s.SkipWhitespace()
			q := s.LastChar()
			s.ReadChar()
			pub, err := s.ScanLiteral(q)
			if err != nil {
				return err
			}
			decl.PublicID = pub
			s.SkipWhitespace()
			if s.LastChar() == '"' || s.LastChar() == '\'' {
				q = s.LastChar()
				s.ReadChar()
				uri, err := s.ScanLiteral(q)
				if err != nil {
					return err
				}
				decl.SystemID = uri
			}
		case "SYSTEM":
			s.SkipWhitespace()
			q := s.LastChar()
			s.ReadChar()
			uri, err := s.ScanLiteral(q)
			if err != nil {
				return err
			}
			decl.SystemID = uri
		default:
			return fmt.Errorf("dtd: unexpected entity declaration keyword %q", kw)
		}
	}

	s.SkipWhitespace()
	if s.LastChar() != '>' {
		return errors.New("dtd: entity declaration not closed")
	}
	s.ReadChar()

	if isParam {
		if _, exists := p.dtd.ParameterEntity(decl.Name); exists {
			p.warn("parameter entity %q redeclared, keeping first declaration", decl.Name)
		}
		p.dtd.AddParameterEntity(decl)
	} else {
		if _, exists := p.dtd.GeneralEntity(decl.Name); exists {
			p.warn("general entity %q redeclared, keeping first declaration", decl.Name)
		}
		p.dtd.AddGeneralEntity(decl)
	}
	return nil
}

// parseElementDecl parses:
//
//	<!ELEMENT names sto eto model [-(excl)] [+(incl)]>
func (p *Parser) parseElementDecl() error {
	s := p.cur()
	s.SkipWhitespace()

	names, err := p.parseNameOrGroup()
	if err != nil {
		return err
	}

	s.SkipWhitespace()
	sto, err := p.parseTagOmission()
	if err != nil {
		return err
	}
	s.SkipWhitespace()
	eto, err := p.parseTagOmission()
	if err != nil {
		return err
	}
	s.SkipWhitespace()

	cm, err := p.parseContentSpec()
	if err != nil {
		return err
	}

	s.SkipWhitespace()
	var excl, incl map[string]bool
	if s.LastChar() == '-' {
		s.ReadChar()
		excl, err = p.parseNameGroupSet()
		if err != nil {
			return err
		}
		s.SkipWhitespace()
	}
	if s.LastChar() == '+' {
		s.ReadChar()
		incl, err = p.parseNameGroupSet()
		if err != nil {
			return err
		}
		s.SkipWhitespace()
	}

	if s.LastChar() != '>' {
		return errors.New("dtd: element declaration not closed")
	}
	s.ReadChar()

	for _, name := range names {
		ed := NewElementDecl(name, sto, eto, cm)
		ed.Exclusions = excl
		ed.Inclusions = incl
		p.dtd.AddElement(ed)
		if debug.Enabled {
			debug.Printf("dtd: declared element %s", ed.Name)
		}
	}
	return nil
}

// parseTagOmission reads a start/end-tag-omission marker: '-' (tag
// required) or 'O'/'o' (tag omissible).
func (p *Parser) parseTagOmission() (bool, error) {
	s := p.cur()
	switch s.LastChar() {
	case '-':
		s.ReadChar()
		return false, nil
	case 'O', 'o':
		s.ReadChar()
		return true, nil
	default:
		return false, fmt.Errorf("dtd: expected '-' or 'O', got %q", s.LastChar())
	}
}

// parseNameOrGroup parses `names` in an ELEMENT decl: a single name,
// or a parenthesized "|"-joined name group.
func (p *Parser) parseNameOrGroup() ([]string, error) {
	s := p.cur()
	for s.LastChar() == '%' {
		if err := p.expandParameterEntity(); err != nil {
			return nil, err
		}
		s = p.cur()
	}
	if s.LastChar() != '(' {
		name, err := s.ScanToken(" \t\r\n", true)
		if err != nil {
			return nil, err
		}
		return []string{strings.ToUpper(name)}, nil
	}

	s.ReadChar() // consume '('
	var names []string
	for {
		s.SkipWhitespace()
		if s.LastChar() == '%' {
			if err := p.expandParameterEntity(); err != nil {
				return nil, err
			}
			s = p.cur()
			continue
		}
		name, err := s.ScanToken(ngTerm, true)
		if err != nil {
			return nil, err
		}
		names = append(names, strings.ToUpper(name))
		s.SkipWhitespace()
		if s.LastChar() == '|' {
			s.ReadChar()
			continue
		}
		break
	}
	if s.LastChar() != ')' {
		return nil, errors.New("dtd: name group not closed")
	}
	s.ReadChar()
	return names, nil
}

func (p *Parser) parseNameGroupSet() (map[string]bool, error) {
	names, err := p.parseNameOrGroup()
	if err != nil {
		return nil, err
	}
	set := map[string]bool{}
	for _, n := range names {
		set[n] = true
	}
	return set, nil
}

// parseContentSpec parses `model`: declared content keywords, or a
// recursive model group with an optional trailing occurrence suffix.
func (p *Parser) parseContentSpec() (*ContentModel, error) {
	s := p.cur()
	cm := NewContentModel()

	for s.LastChar() == '%' {
		if err := p.expandParameterEntity(); err != nil {
			return nil, err
		}
		s = p.cur()
	}

	if s.LastChar() != '(' {
		kw, err := s.ScanToken(dcTerm, false)
		if err != nil {
			return nil, err
		}
		switch strings.ToUpper(kw) {
		case "CDATA":
			cm.DeclaredContent = DeclaredCDATA
		case "RCDATA":
			cm.DeclaredContent = DeclaredRCDATA
		case "EMPTY":
			cm.DeclaredContent = DeclaredEMPTY
		case "ANY":
			cm.DeclaredContent = DeclaredANY
		default:
			return nil, fmt.Errorf("dtd: unknown declared content %q", kw)
		}
		return cm, nil
	}

	openedIn := p.stack.Current()
	group, err := p.parseModelGroup()
	if err != nil {
		return nil, err
	}
	if p.stack.Current() != openedIn {
		return nil, ErrUnclosedModelGroup
	}
	cm.Root = group
	return cm, nil
}

// parseModelGroup parses one ( ... ) content model group, recursively
// descending into nested groups, honoring '%' parameter entity
// expansion anywhere a name/fragment is expected.
func (p *Parser) parseModelGroup() (*Group, error) {
	s := p.cur()
	s.ReadChar() // consume '('
	g := &Group{}

	s.SkipWhitespace()
	if s.LastChar() == '#' {
		s.ReadChar()
		kw, err := s.ScanToken(cmTerm, false)
		if err != nil {
			return nil, err
		}
		if strings.ToUpper(kw) != "PCDATA" {
			return nil, fmt.Errorf("dtd: expected #PCDATA, got #%s", kw)
		}
		g.Mixed = true
		g.AddMember("#PCDATA")
		s.SkipWhitespace()
	}

	for {
		s = p.cur()
		if s.LastChar() == '%' {
			if err := p.expandParameterEntity(); err != nil {
				return nil, err
			}
			continue
		}
		if s.LastChar() == ')' {
			break
		}
		if s.LastChar() == ',' || s.LastChar() == '|' || s.LastChar() == '&' {
			conn := s.LastChar()
			var t GroupType
			switch conn {
			case ',':
				t = GroupSeq
			case '|':
				t = GroupOr
			case '&':
				t = GroupAnd
			}
			if g.Type != GroupNone && g.Type != t {
				return nil, fmt.Errorf("dtd: connector %q is inconsistent with the group's other connectors", conn)
			}
			g.SetType(t)
			s.ReadChar()
			s.SkipWhitespace()
			continue
		}

		if s.LastChar() == '(' {
			sub, err := p.parseModelGroup()
			if err != nil {
				return nil, err
			}
			g.AddGroupMember(sub)
		} else {
			name, err := s.ScanToken(cmTerm, true)
			if err != nil {
				return nil, err
			}
			g.AddMember(strings.ToUpper(name))
			g.Members[len(g.Members)-1].Occurrence = parseOccurrence(s)
		}
		s.SkipWhitespace()
	}

	s = p.cur()
	s.ReadChar() // consume ')'
	g.Occurrence = parseOccurrence(s)
	return g, nil
}

func parseOccurrence(s *entity.Stream) Occurrence {
	switch s.LastChar() {
	case '?':
		s.ReadChar()
		return OccurOptional
	case '+':
		s.ReadChar()
		return OccurOneOrMore
	case '*':
		s.ReadChar()
		return OccurZeroOrMore
	default:
		return OccurRequired
	}
}

// parseAttlistDecl parses:
//
//	<!ATTLIST names (attdef)+ >
func (p *Parser) parseAttlistDecl() error {
	s := p.cur()
	s.SkipWhitespace()

	names, err := p.parseNameOrGroup()
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, ok := p.dtd.Element(name); !ok {
			return fmt.Errorf("%w: %q", ErrUndeclaredElement, name)
		}
	}

	for {
		s.SkipWhitespace()
		if s.LastChar() == '>' {
			s.ReadChar()
			break
		}
		if s.LastChar() == '%' {
			if err := p.expandParameterEntity(); err != nil {
				return err
			}
			s = p.cur()
			continue
		}

		attr, err := p.parseAttDef()
		if err != nil {
			return err
		}
		for _, name := range names {
			ed, _ := p.dtd.Element(name)
			ed.AddAttribute(attr)
		}
	}
	return nil
}

// parseAttDef parses one `name type default` triple inside an
// ATTLIST.
func (p *Parser) parseAttDef() (*AttDef, error) {
	s := p.cur()
	name, err := s.ScanToken(" \t\r\n", true)
	if err != nil {
		return nil, err
	}
	s.SkipWhitespace()

	var typ AttrType
	var enum []string
	if s.LastChar() == '(' {
		s.ReadChar()
		for {
			s.SkipWhitespace()
			val, err := s.ScanToken(ngTerm, false)
			if err != nil {
				return nil, err
			}
			enum = append(enum, val)
			s.SkipWhitespace()
			if s.LastChar() == '|' {
				s.ReadChar()
				continue
			}
			break
		}
		if s.LastChar() != ')' {
			return nil, errors.New("dtd: attribute enumeration not closed")
		}
		s.ReadChar()
		typ = AttrEnumeration
	} else {
		kw, err := s.ScanToken(" \t\r\n(", false)
		if err != nil {
			return nil, err
		}
		typ = attrTypeFromKeyword(kw)
		if typ == AttrNotation {
			s.SkipWhitespace()
			if s.LastChar() == '(' {
				s.ReadChar()
				for {
					s.SkipWhitespace()
					val, err := s.ScanToken(ngTerm, true)
					if err != nil {
						return nil, err
					}
					enum = append(enum, val)
					s.SkipWhitespace()
					if s.LastChar() == '|' {
						s.ReadChar()
						continue
					}
					break
				}
				if s.LastChar() != ')' {
					return nil, errors.New("dtd: notation group not closed")
				}
				s.ReadChar()
			}
		}
	}

	s.SkipWhitespace()
	presence, defaultValue, err := p.parseAttDefault()
	if err != nil {
		return nil, err
	}

	return NewAttDef(strings.ToUpper(name), typ, enum, presence, defaultValue), nil
}

func attrTypeFromKeyword(kw string) AttrType {
	switch strings.ToUpper(kw) {
	case "ENTITY":
		return AttrEntity
	case "ENTITIES":
		return AttrEntities
	case "ID":
		return AttrID
	case "IDREF":
		return AttrIDRef
	case "IDREFS":
		return AttrIDRefs
	case "NAME":
		return AttrName
	case "NAMES":
		return AttrNames
	case "NMTOKEN":
		return AttrNMToken
	case "NMTOKENS":
		return AttrNMTokens
	case "NUMBER":
		return AttrNumber
	case "NUMBERS":
		return AttrNumbers
	case "NUTOKEN":
		return AttrNUToken
	case "NUTOKENS":
		return AttrNUTokens
	case "NOTATION":
		return AttrNotation
	default:
		return AttrCDATA
	}
}

// parseAttDefault parses `default`: a literal, a bare name, or one of
// #REQUIRED, #IMPLIED, #FIXED literal, #CURRENT, #CONREF.
func (p *Parser) parseAttDefault() (Presence, string, error) {
	s := p.cur()
	if s.LastChar() == '#' {
		s.ReadChar()
		kw, err := s.ScanToken(" \t\r\n>", false)
		if err != nil {
			return PresenceDefault, "", err
		}
		switch strings.ToUpper(kw) {
		case "REQUIRED":
			return PresenceRequired, "", nil
		case "IMPLIED":
			return PresenceImplied, "", nil
		case "CURRENT":
			return PresenceCurrent, "", nil
		case "CONREF":
			return PresenceConref, "", nil
		case "FIXED":
			s.SkipWhitespace()
			val, err := p.parseAttValueLiteral()
			if err != nil {
				return PresenceDefault, "", err
			}
			return PresenceFixed, val, nil
		default:
			return PresenceDefault, "", fmt.Errorf("dtd: unknown default keyword %q", kw)
		}
	}

	val, err := p.parseAttValueLiteral()
	if err != nil {
		return PresenceDefault, "", err
	}
	return PresenceDefault, val, nil
}

func (p *Parser) parseAttValueLiteral() (string, error) {
	s := p.cur()
	if s.LastChar() == '"' || s.LastChar() == '\'' {
		q := s.LastChar()
		s.ReadChar()
		return s.ScanLiteral(q)
	}
	return s.ScanToken(peTerm, false)
}
