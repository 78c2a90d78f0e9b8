package sgmlreader

import (
	"errors"
	"fmt"
)

// Sentinel errors for the structural document failures considered
// fatal to document parsing. Lexical errors from the entity stream
// and structural DTD errors from the dtd package are propagated
// as-is, wrapped in ParseError the same way.
var (
	ErrUnclosedComment          = errors.New("sgmlreader: comment not closed before end of input")
	ErrUnclosedCDATA            = errors.New("sgmlreader: CDATA section not closed before end of input")
	ErrUnclosedProcessingInstr  = errors.New("sgmlreader: processing instruction not closed before end of input")
	ErrUnclosedDoctype          = errors.New("sgmlreader: DOCTYPE declaration not closed before end of input")
	ErrUnexpectedMarkup         = errors.New("sgmlreader: unexpected character where markup was expected")
	ErrMultipleRoots            = errors.New("sgmlreader: a second root-level element was found")
	ErrNoInput                  = errors.New("sgmlreader: exactly one of InputStream or Href must be set")
	ErrBothInputs               = errors.New("sgmlreader: InputStream and Href are mutually exclusive")
	ErrReaderClosed             = errors.New("sgmlreader: reader is closed")
)

// ParseError wraps a lexical or structural failure with the
// entity-chain context string every fatal error carries (line,
// column, entity name, resolved URI for each frame).
type ParseError struct {
	Err     error
	Context string
}

func (e *ParseError) Error() string {
	if e.Context == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s\n%s", e.Err, e.Context)
}

func (e *ParseError) Unwrap() error { return e.Err }

func wrapParseError(err error, context string) error {
	if err == nil {
		return nil
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	return &ParseError{Err: err, Context: context}
}
