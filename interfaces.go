package sgmlreader

import (
	"io"

	"github.com/nrkn/sgmlreader/entity"
)

// ByteSource is the "byte stream by URI" external collaborator the
// reader and DTD parser both depend on: given an absolute URI it
// returns a byte stream, the resolved URI (which may differ after a
// redirect), and the response content type (used to force HTML mode
// when it is text/html). The core handles file: and opaque "web"
// schemes identically through this one interface.
type ByteSource = entity.ByteSource

// ResourceLoader is the external collaborator that resolves a
// logical resource name (currently just "HTML") to a character
// stream -- the embedded default DTD is loaded through it rather than
// read directly off disk.
type ResourceLoader interface {
	Load(name string) (io.Reader, error)
}

// ResourceLoaderFunc adapts a function to a ResourceLoader.
type ResourceLoaderFunc func(name string) (io.Reader, error)

func (f ResourceLoaderFunc) Load(name string) (io.Reader, error) { return f(name) }

// Logger is the line-oriented error writer a Reader or DTD Parser
// reports recoverable warnings through when set, and silently drops
// when nil.
type Logger func(line string)
