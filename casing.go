package sgmlreader

import (
	"strings"
	"unicode"
)

// CaseFolding selects the C8 name-casing policy applied to element
// and attribute names as the reader emits them.
type CaseFolding int

const (
	// CaseNone preserves the start-tag spelling. End tags still match
	// case-insensitively, but the node reports the casing the start
	// tag used, and the matching EndElement mirrors it.
	CaseNone CaseFolding = iota
	CaseToUpper
	CaseToLower
)

// Fold applies the case-folding policy to name.
func (c CaseFolding) Fold(name string) string {
	switch c {
	case CaseToUpper:
		return strings.ToUpper(name)
	case CaseToLower:
		return strings.ToLower(name)
	default:
		return name
	}
}

// isXMLNameStartChar and isXMLNameChar approximate the XML 1.0 Name
// production (NameStartChar / NameChar) closely enough for HTML's
// ASCII-heavy vocabulary plus arbitrary Unicode letters, without
// pulling in the full multi-range XML grammar table.
func isXMLNameStartChar(r rune) bool {
	switch {
	case r == ':' || r == '_':
		return true
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		return true
	case r >= 0x80:
		return unicode.IsLetter(r)
	default:
		return false
	}
}

func isXMLNameChar(r rune) bool {
	if isXMLNameStartChar(r) {
		return true
	}
	switch {
	case r == '-' || r == '.':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == 0xB7:
		return true
	case r >= 0x80:
		return unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)
	default:
		return false
	}
}

// VerifyName reports whether name satisfies the XML 1.0 Name
// production. A name with a colon is additionally required to have
// an NCName-valid local part after the colon (no second colon, valid
// NCName start/chars).
func VerifyName(name string) bool {
	if name == "" {
		return false
	}
	runes := []rune(name)
	if !isXMLNameStartChar(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !isXMLNameChar(r) {
			return false
		}
	}
	if i := strings.IndexByte(name, ':'); i >= 0 {
		suffix := name[i+1:]
		if suffix == "" || strings.ContainsRune(suffix, ':') {
			return false
		}
		if !verifyNCName(suffix) {
			return false
		}
	}
	return true
}

func verifyNCName(name string) bool {
	runes := []rune(name)
	if len(runes) == 0 || runes[0] == ':' || !isXMLNameStartChar(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if r == ':' || !isXMLNameChar(r) {
			return false
		}
	}
	return true
}

// VerifyNMTOKEN reports whether name satisfies the XML 1.0 Nmtoken
// production: one or more NameChars, with no constraint on the first
// character (unlike Name, which requires a NameStartChar).
func VerifyNMTOKEN(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !isXMLNameChar(r) {
			return false
		}
	}
	return true
}
