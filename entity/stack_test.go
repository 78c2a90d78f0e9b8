package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackPushPopNesting(t *testing.T) {
	var s Stack
	assert.True(t, s.Empty())

	outer := NewInternal("outer", "outer text", LiteralNone)
	require.NoError(t, s.Push(outer, nil, ""))
	assert.Equal(t, 1, s.Depth())

	inner := NewInternal("inner", "inner text", LiteralNone)
	require.NoError(t, s.Push(inner, nil, ""))
	assert.Equal(t, 2, s.Depth())
	assert.Same(t, inner, s.Current())

	require.NoError(t, s.Pop())
	assert.Same(t, outer, s.Current())
	assert.Equal(t, 1, s.Depth())

	require.NoError(t, s.Pop())
	assert.True(t, s.Empty())
}

func TestStackPopEmptyFails(t *testing.T) {
	var s Stack
	assert.ErrorIs(t, s.Pop(), ErrEmptyStack)
}

func TestStackPushOpenedSetsParent(t *testing.T) {
	var s Stack
	root, err := NewFromReader("", strings.NewReader("hi"), false)
	require.NoError(t, err)
	s.PushOpened(root)

	child := NewInternal("child", "x", LiteralNone)
	require.NoError(t, s.Push(child, nil, ""))
	assert.Same(t, root, child.Parent)
}
