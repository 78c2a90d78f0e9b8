// Package sgmlreader implements a pull-mode reader that consumes
// loosely-structured SGML/HTML input and exposes it as a well-formed
// XML event stream. Consumers drive the reader by calling Read
// repeatedly; each call advances to the next node (element start,
// element end, text, CDATA, comment, processing instruction, document
// type declaration, or whitespace) and the accessor methods describe
// it.
//
// The reader repairs common HTML malformations — unquoted attribute
// values, missing end tags, duplicate attributes, inconsistent
// casing, mis-nested elements — using a Document Type Definition for
// guidance, the same way an SGML-aware browser parser does.
package sgmlreader

// Version is the module version string, reported by cmd/sgmlreader's
// -version flag.
const Version = "0.1.0"
