package sgmlreader

import (
	"strconv"

	"github.com/nrkn/sgmlreader/internal/stack/nsstack"
)

// namespaceResolver implements a pass-through namespace surface: SGML
// has no namespaces, so xmlns/xmlns:* attributes are returned
// verbatim, and element/attribute prefixes are resolved by walking
// ancestor xmlns:* declarations. An unbound prefix receives a stable
// synthetic URI, "#unknown" for the first one encountered, then
// "#unknown1", "#unknown2", ... for the next ones, so repeated use of the same undeclared
// prefix always maps to the same placeholder.
type namespaceResolver struct {
	bindings nsstack.Stack
	unknown  map[string]string
	nextID   int
}

func newNamespaceResolver() *namespaceResolver {
	return &namespaceResolver{bindings: nsstack.New()}
}

// Declare registers an xmlns:prefix="uri" (or xmlns="uri" for the
// default/empty prefix) binding scoped to the element currently
// being opened, and reports whether a new binding was pushed (a
// prefix already bound anywhere on the stack is left alone, per
// nsstack's global-uniqueness policy).
func (n *namespaceResolver) Declare(prefix, uri string) bool {
	before := n.bindings.Len()
	n.bindings.Push(prefix, uri)
	return n.bindings.Len() != before
}

// Pop discards the count bindings most recently declared, called
// when the element that declared them closes.
func (n *namespaceResolver) Pop(count int) {
	if count > 0 {
		n.bindings.Pop(count)
	}
}

// Resolve looks up prefix against the ancestor scope chain. ok is
// false for the unprefixed (empty string) case, which callers should
// treat as "no namespace" rather than synthesizing a placeholder.
func (n *namespaceResolver) Resolve(prefix string) (uri string, ok bool) {
	if prefix == "" {
		return "", false
	}
	uri = n.bindings.Lookup(prefix)
	return uri, uri != ""
}

// ResolveOrSynthesize is Resolve, falling back to the stable
// "#unknown"/"#unknownN" placeholder for a prefix that is never bound
// anywhere in the document.
func (n *namespaceResolver) ResolveOrSynthesize(prefix string) string {
	if prefix == "" {
		return ""
	}
	if uri, ok := n.Resolve(prefix); ok {
		return uri
	}
	if n.unknown == nil {
		n.unknown = map[string]string{}
	}
	if uri, ok := n.unknown[prefix]; ok {
		return uri
	}
	var uri string
	if n.nextID == 0 {
		uri = "#unknown"
	} else {
		uri = "#unknown" + strconv.Itoa(n.nextID)
	}
	n.nextID++
	n.unknown[prefix] = uri
	return uri
}
