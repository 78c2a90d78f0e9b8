//+build debug

// Package debug gives the SGML reader and DTD parser a trace channel
// that costs nothing in a normal build: callers guard every use with
// Enabled, so the "debug" build tag is what decides whether Printf
// does anything at all.
package debug

import (
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"
)

const Enabled = true

var logger = log.New(os.Stdout, "|sgmlreader debug| ", 0)

// Printf traces one step of the parse (element declarations, entity
// expansion, auto-close decisions). Only available if compiled with
// the "debug" tag.
func Printf(f string, args ...interface{}) {
	logger.Printf(f, args...)
}

// Dump pretty-prints a DTD or reader-internal value for inspection.
func Dump(v ...interface{}) {
	spew.Dump(v...)
}
