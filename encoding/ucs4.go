package encoding

import (
	"unicode/utf8"

	enc "golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// UCS4 decodes four-byte UCS-4 code units (big- or little-endian) into
// UTF-8, encoding supra-BMP code points directly as four-byte UTF-8
// sequences (no surrogate pairs are produced), and rejecting values
// above U+10FFFF or inside the surrogate range U+D800..U+DFFF.
type UCS4 struct {
	BigEndian bool
}

var (
	UCS4BigEndian    = &UCS4{BigEndian: true}
	UCS4LittleEndian = &UCS4{BigEndian: false}
)

func (u *UCS4) NewDecoder() *enc.Decoder {
	return &enc.Decoder{Transformer: &ucs4Decoder{bigEndian: u.BigEndian}}
}

func (u *UCS4) NewEncoder() *enc.Encoder {
	return &enc.Encoder{Transformer: &ucs4Encoder{bigEndian: u.BigEndian}}
}

type ucs4Decoder struct {
	bigEndian bool
}

func (d *ucs4Decoder) Reset() {}

func (d *ucs4Decoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for len(src)-nSrc >= 4 {
		b := src[nSrc : nSrc+4]
		var v uint32
		if d.bigEndian {
			v = uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
		} else {
			v = uint32(b[3])<<24 | uint32(b[2])<<16 | uint32(b[1])<<8 | uint32(b[0])
		}

		if v > 0x10FFFF || (v >= 0xD800 && v <= 0xDFFF) {
			return nDst, nSrc, transform.ErrEndOfSpan
		}

		r := rune(v)
		need := utf8.RuneLen(r)
		if need < 0 {
			return nDst, nSrc, transform.ErrEndOfSpan
		}
		if len(dst)-nDst < need {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += utf8.EncodeRune(dst[nDst:], r)
		nSrc += 4
	}
	if atEOF && len(src)-nSrc > 0 && len(src)-nSrc < 4 {
		return nDst, nSrc, transform.ErrShortSrc
	}
	if !atEOF && len(src)-nSrc > 0 {
		return nDst, nSrc, transform.ErrShortSrc
	}
	return nDst, nSrc, nil
}

type ucs4Encoder struct {
	bigEndian bool
}

func (e *ucs4Encoder) Reset() {}

func (e *ucs4Encoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		r, width := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && width <= 1 {
			if !atEOF {
				return nDst, nSrc, transform.ErrShortSrc
			}
			return nDst, nSrc, transform.ErrEndOfSpan
		}
		if len(dst)-nDst < 4 {
			return nDst, nSrc, transform.ErrShortDst
		}
		v := uint32(r)
		if e.bigEndian {
			dst[nDst] = byte(v >> 24)
			dst[nDst+1] = byte(v >> 16)
			dst[nDst+2] = byte(v >> 8)
			dst[nDst+3] = byte(v)
		} else {
			dst[nDst] = byte(v)
			dst[nDst+1] = byte(v >> 8)
			dst[nDst+2] = byte(v >> 16)
			dst[nDst+3] = byte(v >> 24)
		}
		nDst += 4
		nSrc += width
	}
	return nDst, nSrc, nil
}
