package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"

	"github.com/nrkn/sgmlreader"
	"github.com/nrkn/sgmlreader/internal/cliutil"
	"github.com/nrkn/sgmlreader/internal/xmlenc"
	"github.com/nrkn/sgmlreader/node"
)

type cmdopts struct {
	ErrorLog string `short:"e" long:"errorlog" description:"log destination: a file path, or $STDERR" default:"$STDERR"`
	Format   bool   `short:"f" long:"format" description:"pretty-print and suppress insignificant whitespace"`
	HTML     bool   `long:"html" description:"force HTML content-model interpretation"`
	DTD      string `long:"dtd" description:"URL of an external DTD to use instead of the document's own DOCTYPE"`
	NoXML    bool   `long:"noxml" description:"suppress the <?xml ...?> declaration in the output"`
	DocType  bool   `long:"doctype" description:"keep the document's DOCTYPE declaration in the output"`
	Lower    bool   `long:"lower" description:"fold element and attribute names to lower case"`
	Upper    bool   `long:"upper" description:"fold element and attribute names to upper case"`
	Proxy    string `long:"proxy" description:"proxy for external entity/DTD fetches, host:port"`
	Encoding string `long:"encoding" description:"default character encoding when none is declared (inputs read by URI only; local files and stdin are read as UTF-8)"`
	Version  bool   `long:"version" description:"print the version and exit"`
}

func main() {
	os.Exit(_main())
}

func showUsage(parser *flags.Parser) {
	fmt.Fprintf(os.Stderr, `Usage: sgmlreader [options] [input-uri [output-file]]

Reads loosely-structured SGML/HTML and writes well-formed XML.
With no input-uri, reads from stdin; with no output-file, writes to stdout.

Options:
`)
	parser.WriteHelp(os.Stderr)
}

func showVersion() {
	fmt.Printf("sgmlreader version %s\n", sgmlreader.Version)
}

func _main() int {
	opts := cmdopts{ErrorLog: "$STDERR"}
	parser := flags.NewParser(&opts, flags.PassDoubleDash)
	args, err := parser.Parse()
	if err != nil {
		showUsage(parser)
		return 1
	}

	if opts.Version {
		showVersion()
		return 0
	}

	inputs, err := resolveInputs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	out := os.Stdout
	if len(args) > 1 {
		f, err := os.Create(args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer f.Close()
		out = f
	}

	logger, closeLog := buildLogger(opts.ErrorLog)
	if closeLog != nil {
		defer closeLog()
	}

	for _, in := range inputs {
		if err := convert(in, out, opts, logger); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	return 0
}

// inputSource is either an already-open stream (stdin, a glob-matched
// local file) or an opaque URI for the reader's ByteSource to resolve
// itself (a remote href, or a local path containing no glob matches).
type inputSource struct {
	stream io.ReadCloser
	href   string
}

// resolveInputs expands positional input-uri wildcards against local
// files, falling back to stdin when none was given and stdin is not a
// terminal.
func resolveInputs(args []string) ([]inputSource, error) {
	if len(args) == 0 {
		if cliutil.IsTty(os.Stdin.Fd()) {
			return nil, fmt.Errorf("sgmlreader: no input-uri given and stdin is a terminal")
		}
		return []inputSource{{stream: os.Stdin}}, nil
	}

	uri := args[0]
	matches, err := filepath.Glob(uri)
	if err != nil || len(matches) == 0 {
		return []inputSource{{href: uri}}, nil // not a local glob: resolve as one opaque URI
	}

	var sources []inputSource
	for _, m := range matches {
		f, err := os.Open(m)
		if err != nil {
			return nil, err
		}
		sources = append(sources, inputSource{stream: f})
	}
	return sources, nil
}

func buildLogger(dest string) (sgmlreader.Logger, func()) {
	if dest == "" || dest == "$STDERR" {
		return func(line string) { fmt.Fprintln(os.Stderr, line) }, nil
	}
	f, err := os.OpenFile(dest, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return func(line string) { fmt.Fprintln(os.Stderr, line) }, nil
	}
	return func(line string) { fmt.Fprintln(f, line) }, func() { f.Close() }
}

func convert(in inputSource, out io.Writer, opts cmdopts, logger sgmlreader.Logger) error {
	readerOpts := []sgmlreader.Option{
		sgmlreader.WithErrorLog(logger),
		sgmlreader.WithByteSource(&sgmlreader.FileByteSource{Proxy: opts.Proxy}),
	}
	if in.stream != nil {
		defer in.stream.Close()
		readerOpts = append(readerOpts, sgmlreader.WithInputStream(in.stream))
	} else {
		readerOpts = append(readerOpts, sgmlreader.WithHref(in.href))
	}
	if opts.HTML {
		readerOpts = append(readerOpts, sgmlreader.WithDocType("html"))
	}
	if opts.DTD != "" {
		readerOpts = append(readerOpts, sgmlreader.WithSystemLiteral(opts.DTD))
	}
	if !opts.DocType {
		readerOpts = append(readerOpts, sgmlreader.WithStripDocType(true))
	}
	switch {
	case opts.Lower:
		readerOpts = append(readerOpts, sgmlreader.WithCaseFolding(sgmlreader.CaseToLower))
	case opts.Upper:
		readerOpts = append(readerOpts, sgmlreader.WithCaseFolding(sgmlreader.CaseToUpper))
	}
	if opts.Format {
		readerOpts = append(readerOpts, sgmlreader.WithWhitespaceHandling(sgmlreader.WhitespaceNone))
	}
	if opts.Encoding != "" {
		readerOpts = append(readerOpts, sgmlreader.WithDefaultEncoding(opts.Encoding))
	}
	if opts.Proxy != "" {
		readerOpts = append(readerOpts, sgmlreader.WithWebProxy(opts.Proxy))
	}

	r, err := sgmlreader.NewReader(readerOpts...)
	if err != nil {
		return err
	}
	defer r.Close()

	w := newXMLWriter(out, opts.Format)
	if !opts.NoXML {
		w.writeXMLDecl()
	}
	for r.Read() {
		w.writeNode(r)
	}
	return r.Err()
}

// xmlWriter serializes the Read() event stream, optionally
// pretty-printing with one indent level per open element -- the
// "-f" flag's "pretty + whitespace-suppress" behavior.
type xmlWriter struct {
	out    io.Writer
	pretty bool
	depth  int
	// skipEnd is set after an empty element is written as "<name/>", so
	// the EndElement the reader pairs with it writes nothing.
	skipEnd bool
}

func newXMLWriter(out io.Writer, pretty bool) *xmlWriter {
	return &xmlWriter{out: out, pretty: pretty}
}

func (w *xmlWriter) writeXMLDecl() {
	fmt.Fprintln(w.out, `<?xml version="1.0" encoding="UTF-8"?>`)
}

func (w *xmlWriter) indent() {
	if w.pretty {
		for i := 0; i < w.depth; i++ {
			fmt.Fprint(w.out, "  ")
		}
	}
}

func (w *xmlWriter) newline() {
	if w.pretty {
		fmt.Fprintln(w.out)
	}
}

func (w *xmlWriter) writeNode(r *sgmlreader.Reader) {
	switch r.NodeType() {
	case node.EndElement:
		if w.skipEnd {
			w.skipEnd = false
			return
		}
		w.depth--
		w.indent()
		fmt.Fprintf(w.out, "</%s>", r.Name())
		w.newline()
	case node.Element:
		w.indent()
		fmt.Fprintf(w.out, "<%s", r.Name())
		for i := 0; i < r.AttributeCount(); i++ {
			name, value, ok := r.GetAttributeAt(i)
			if !ok {
				continue
			}
			fmt.Fprintf(w.out, " %s=\"", name)
			xmlenc.EscapeAttrValue(w.out, []byte(value))
			fmt.Fprint(w.out, `"`)
		}
		if r.IsEmptyElement() {
			fmt.Fprint(w.out, "/>")
			w.skipEnd = true
			w.newline()
		} else {
			fmt.Fprint(w.out, ">")
			w.depth++
			w.newline()
		}
	case node.Text, node.Whitespace:
		xmlenc.EscapeText(w.out, []byte(r.Value()), false)
	case node.CDATA:
		fmt.Fprintf(w.out, "<![CDATA[%s]]>", r.Value())
	case node.Comment:
		fmt.Fprintf(w.out, "<!--%s-->", r.Value())
	case node.ProcessingInstruction:
		fmt.Fprintf(w.out, "<?%s %s?>", r.Name(), r.Value())
	case node.DocumentType:
		fmt.Fprintf(w.out, "<!DOCTYPE %s>", r.Name())
		w.newline()
	}
}

