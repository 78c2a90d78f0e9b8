package nsstack_test

import (
	"testing"

	"github.com/nrkn/sgmlreader/internal/stack/nsstack"
	"github.com/stretchr/testify/assert"
)

func TestNsStack(t *testing.T) {
	s := nsstack.New()
	s.Push("xml", "http://www.w3.org/XML/1998/namespace")
	s.Push("ds", "http://www.w3.org/2000/09/xmldsig#")

	if !assert.Equal(t, 2, s.Len(), "Len == 2") {
		return
	}

	if !assert.Equal(t, "http://www.w3.org/2000/09/xmldsig#", s.Lookup("ds"), `Lookup("ds") succeeds`) {
		return
	}

	if !assert.Equal(t, "http://www.w3.org/XML/1998/namespace", s.Lookup("xml"), `Lookup("xml") succeeds`) {
		return
	}

	s.Pop()
	if !assert.Equal(t, 1, s.Len(), "Len == 1") {
		return
	}

	if !assert.Equal(t, "", s.Lookup("ds"), `Lookup("ds") fails`) {
		return
	}

	s.Pop(2)
	assert.Equal(t, 0, s.Len(), "popping past empty clamps rather than panicking")
}
