package entity

import "errors"

// Stack holds the chain of currently nested entities — the document
// (or DTD) entity and any parameter/general entities pushed while
// expanding a reference — flattened into the single character stream
// higher layers see. Only one entity is ever "current"; Parent links
// let Context walk back through the whole chain.
type Stack struct {
	current *Entity
}

var ErrEmptyStack = errors.New("entity stack is empty")

// Push opens e (parented to the current entity, if any) and makes it
// current.
func (s *Stack) Push(e *Entity, src ByteSource, defaultEncoding string) error {
	if s.current != nil {
		e.Parent = s.current
	}
	if err := e.Open(src, defaultEncoding); err != nil {
		return err
	}
	s.current = e
	return nil
}

// PushOpened makes an already-opened entity current, for callers that
// construct the entity themselves (e.g. NewFromReader, which reads
// its input eagerly rather than on Open).
func (s *Stack) PushOpened(e *Entity) {
	if s.current != nil {
		e.Parent = s.current
	}
	s.current = e
}

// Pop closes the current entity and restores its parent as current.
func (s *Stack) Pop() error {
	if s.current == nil {
		return ErrEmptyStack
	}
	e := s.current
	s.current = e.Parent
	return e.Close()
}

// Current returns the currently open entity, or nil if the stack is
// empty.
func (s *Stack) Current() *Entity {
	return s.current
}

// Empty reports whether the stack holds no entities.
func (s *Stack) Empty() bool {
	return s.current == nil
}

// Depth returns the number of entities currently nested. Callers use
// it to tell a nested entity from the root one; it places no limit on
// nesting, so circular parameter entity expansion is not detected.
func (s *Stack) Depth() int {
	n := 0
	for e := s.current; e != nil; e = e.Parent {
		n++
	}
	return n
}
