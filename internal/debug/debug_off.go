//+build !debug

// Package debug gives the SGML reader and DTD parser a trace channel
// that costs nothing in a normal build: callers guard every use with
// Enabled, so the "debug" build tag is what decides whether Printf
// does anything at all.
package debug

const Enabled = false

// Printf is a no-op unless the binary was built with the "debug" tag.
func Printf(f string, args ...interface{}) {}

// Dump is a no-op unless the binary was built with the "debug" tag.
func Dump(v ...interface{}) {}
