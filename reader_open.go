package sgmlreader

import (
	"io"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/nrkn/sgmlreader/dtd"
	"github.com/nrkn/sgmlreader/entity"
)

// bootstrap runs once before the first Read: it loads a DTD eagerly
// when the caller already told us the document type up front (the
// CLI's -html/-dtd flags, or an explicit WithDocType/WithSystemLiteral
// option), the same way a browser parser picks its HTML content model
// before it has seen a single byte of markup. A document that carries
// its own in-line <!DOCTYPE ...> instead is handled lazily, the first
// time that markup is actually tokenized (see parseDoctype).
func (r *Reader) bootstrap() error {
	if r.ignoreDTD {
		return nil
	}
	if r.docTypeOverride == "" && r.systemLiteral == "" {
		return nil
	}
	name := r.docTypeOverride
	if name == "" {
		name = "html"
	}
	return r.loadDTD(name, r.publicID, r.systemLiteral)
}

// loadDTD resolves a DTD by root name: the embedded HTML DTD when the
// name is "html" and no external system literal overrides it,
// otherwise fetched through the configured ByteSource. Parse errors
// and a missing ByteSource for an external reference are both
// reported to the caller through the error Logger rather than failing
// the whole read: a document with a DTD we cannot load still parses,
// just without auto-close or entity references beyond the numeric
// references C2 always understands and the five predefined XML
// entities. A relative system literal is resolved against BaseURI
// when that is an absolute URI.
func (r *Reader) loadDTD(name, pubid, syslit string) error {
	var src io.Reader
	var err error

	switch {
	case syslit != "":
		if r.src == nil {
			r.warn("sgmlreader: SYSTEM %q requires a byte source, DTD not loaded", syslit)
			return nil
		}
		uri := syslit
		if base, perr := url.Parse(r.BaseURI()); perr == nil && base.IsAbs() {
			if ref, perr := url.Parse(syslit); perr == nil {
				uri = base.ResolveReference(ref).String()
			}
		}
		rc, _, _, openErr := r.src.Open(uri)
		if openErr != nil {
			r.warn("sgmlreader: could not fetch DTD %q: %s", syslit, openErr)
			return nil
		}
		defer rc.Close()
		src = rc
	case strings.EqualFold(name, "html"):
		f, loadErr := r.resourceLoader.Load(HTMLResourceName)
		if loadErr != nil {
			return errors.Wrap(loadErr, "failed to load built-in HTML resource")
		}
		src = f
	default:
		return nil
	}

	body, err := io.ReadAll(src)
	if err != nil {
		return errors.Wrap(err, "failed to read DTD body")
	}

	d := dtd.New(name)
	root := entity.NewInternal(name, string(body), entity.LiteralNone)
	p := dtd.NewParser(d, r.src, func(line string) { r.warn("%s", line) })
	if _, err := p.Parse(root); err != nil {
		r.warn("sgmlreader: DTD parse failed, continuing without auto-close: %s", err)
		return nil
	}

	r.dtd = d
	r.dtd.Name = name
	r.dtd.PublicID = pubid
	if strings.EqualFold(name, "html") {
		r.isHTML = true
	}
	return nil
}

// loadInternalSubsetDTD parses an internal-subset override supplied
// through WithInternalSubset in place of whatever subset text (if any)
// the document's own DOCTYPE carried, the same override precedence
// WithPublicIdentifier/WithSystemLiteral already apply to the FPI/URI.
func (r *Reader) loadInternalSubsetDTD(name, subset string) error {
	d := dtd.New(name)
	root := entity.NewInternal(name, subset, entity.LiteralNone)
	p := dtd.NewParser(d, r.src, func(line string) { r.warn("%s", line) })
	if _, err := p.Parse(root); err != nil {
		r.warn("sgmlreader: internal subset parse failed, continuing without auto-close: %s", err)
		return nil
	}
	r.dtd = d
	r.dtd.Name = name
	if strings.EqualFold(name, "html") {
		r.isHTML = true
	}
	return nil
}

func (r *Reader) elementDecl(name string) (*dtd.ElementDecl, bool) {
	if r.dtd == nil {
		return nil, false
	}
	return r.dtd.Element(name)
}

func (r *Reader) generalEntity(name string) (*dtd.EntityDecl, bool) {
	if r.dtd == nil {
		return nil, false
	}
	return r.dtd.GeneralEntity(name)
}

var builtinGeneralEntities = map[string]rune{
	"amp": '&', "lt": '<', "gt": '>', "quot": '"', "apos": '\'',
}

func (r *Reader) resolveGeneralEntity(name string) (string, bool) {
	if decl, ok := r.generalEntity(name); ok {
		if decl.IsInternal {
			return decl.Value, true
		}
		return "", false // external general entity, resolved via pushExternalEntity instead
	}
	if c, ok := builtinGeneralEntities[name]; ok {
		return string(c), true
	}
	return "", false
}
