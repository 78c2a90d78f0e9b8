package encoding

import (
	"bytes"

	enc "golang.org/x/text/encoding"
)

// Name is a canonical encoding name, the same vocabulary Load accepts.
type Name = string

const (
	UTF8    Name = "utf-8"
	UTF16LE Name = "utf-16le"
	UTF16BE Name = "utf-16be"
	UCS4LE  Name = "ucs-4le"
	UCS4BE  Name = "ucs-4be"
)

var (
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUCS4LE1 = []byte{0x00, 0x00, 0x00, 0x3C}
	bomUCS4LE2 = []byte{0xFF, 0xFE, 0xFF, 0xFE}
	bomUCS4BE1 = []byte{0x3C, 0x00, 0x00, 0x00}
	bomUCS4BE2 = []byte{0xFE, 0xFF, 0xFE, 0xFF}
)

// DetectBOM examines the first 2-4 bytes of b for a byte-order mark
// and returns the encoding name it implies and the number of leading
// bytes that belong to the mark itself (to be consumed, not decoded).
// It reports ("", 0) when no BOM is present.
func DetectBOM(b []byte) (Name, int) {
	if len(b) >= 4 {
		switch {
		case bytes.Equal(b[:4], bomUCS4LE1), bytes.Equal(b[:4], bomUCS4LE2):
			return UCS4LE, 4
		case bytes.Equal(b[:4], bomUCS4BE1), bytes.Equal(b[:4], bomUCS4BE2):
			return UCS4BE, 4
		}
	}
	if len(b) >= 3 && bytes.Equal(b[:3], bomUTF8) {
		return UTF8, 3
	}
	if len(b) >= 2 {
		switch {
		case bytes.Equal(b[:2], bomUTF16BE):
			return UTF16BE, 2
		case bytes.Equal(b[:2], bomUTF16LE):
			return UTF16LE, 2
		}
	}
	return "", 0
}

// LoadOrDefault is Load with a fallback to UTF-8 when name is empty or
// unknown, the policy the Entity Stream applies when opening an entity
// with no declared or sniffed encoding.
func LoadOrDefault(name string) enc.Encoding {
	if name == "" {
		return Load(UTF8)
	}
	if e := Load(name); e != nil {
		return e
	}
	return Load(UTF8)
}
