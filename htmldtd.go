package sgmlreader

import (
	"embed"
	"fmt"
	"io"
)

//go:embed resources/html.dtd
var embeddedResources embed.FS

// HTMLResourceName is the logical resource name requested from the
// ResourceLoader when a document's DOCTYPE root name is "html" (or
// WithDocType("html") forces it) and no system literal is present: load
// the embedded HTML DTD.
const HTMLResourceName = "HTML"

// DefaultResourceLoader resolves HTMLResourceName to the DTD embedded
// in the module binary. It is the ResourceLoader NewReader installs
// when the caller supplies none.
var DefaultResourceLoader ResourceLoader = ResourceLoaderFunc(loadEmbedded)

func loadEmbedded(name string) (io.Reader, error) {
	switch name {
	case HTMLResourceName:
		f, err := embeddedResources.Open("resources/html.dtd")
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("sgmlreader: unknown built-in resource %q", name)
	}
}
