package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackPushReusesSlots(t *testing.T) {
	var s Stack

	a := s.Push("a", Element, "")
	b := s.Push("b", Element, "")
	require.Equal(t, 2, s.Len())
	require.Equal(t, b, s.Top())

	popped := s.Pop()
	require.Equal(t, b, popped, "Pop returns the popped node so its fields can still be read")
	require.Equal(t, 1, s.Len())

	reused := s.Push("c", Element, "")
	assert.Same(t, b, reused, "Push after Pop must reuse the high-water-mark slot, not allocate")
	assert.Equal(t, "c", reused.Name, "the reused slot must be reset before becoming visible")
	assert.NotSame(t, a, reused)
}

func TestStackAt(t *testing.T) {
	var s Stack
	s.Push("html", Element, "")
	s.Push("body", Element, "")
	s.Push("div", Element, "")

	require.Equal(t, "html", s.At(0).Name)
	require.Equal(t, "div", s.At(2).Name)
	require.Nil(t, s.At(3))
	require.Nil(t, s.At(-1))
}

func TestNodeResetClearsAttributesAndDecl(t *testing.T) {
	n := NewScratch()
	n.Reset("div", Element, "")
	a := n.PushAttribute("class")
	v := "main"
	a.Value = &v
	require.Equal(t, 1, n.AttributeCount())

	n.Reset("p", Text, "hello")
	assert.Equal(t, 0, n.AttributeCount(), "reset must clear the attribute table")
	assert.Nil(t, n.Decl)
	assert.True(t, n.IsEmpty, "reset defaults IsEmpty to true until the caller says otherwise")
}

func TestAttributeByNameIsCaseInsensitive(t *testing.T) {
	n := NewScratch()
	n.Reset("div", Element, "")
	n.PushAttribute("Class")

	a := n.AttributeByName("class")
	require.NotNil(t, a)
	assert.Equal(t, "Class", a.Name)
	assert.Nil(t, n.AttributeByName("missing"))
}

func TestAttributeEffectiveValueFallsBackToDefault(t *testing.T) {
	n := NewScratch()
	n.Reset("div", Element, "")
	a := n.PushAttribute("align")
	assert.Equal(t, "", a.EffectiveValue(), "no literal and no DTD default yields empty")

	v := "left"
	a.Value = &v
	assert.Equal(t, "left", a.EffectiveValue())
}

func TestAttributeCursorNavigation(t *testing.T) {
	n := NewScratch()
	n.Reset("div", Element, "")
	n.PushAttribute("a")
	n.PushAttribute("b")

	assert.Equal(t, -1, n.CurrentAttribute())
	require.True(t, n.MoveToAttribute(0))
	assert.Equal(t, 0, n.CurrentAttribute())
	require.True(t, n.MoveToNextAttribute())
	assert.Equal(t, 1, n.CurrentAttribute())
	assert.False(t, n.MoveToNextAttribute())

	n.MoveToElement()
	assert.Equal(t, -1, n.CurrentAttribute())
}
