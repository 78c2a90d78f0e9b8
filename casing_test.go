package sgmlreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaseFoldingFold(t *testing.T) {
	require.Equal(t, "div", CaseNone.Fold("div"))
	require.Equal(t, "DIV", CaseNone.Fold("DIV"))
	require.Equal(t, "DIV", CaseToUpper.Fold("div"))
	require.Equal(t, "div", CaseToLower.Fold("DIV"))
}

func TestCaseFoldingIsIdempotent(t *testing.T) {
	for _, cf := range []CaseFolding{CaseNone, CaseToUpper, CaseToLower} {
		once := cf.Fold("MixedCase")
		twice := cf.Fold(once)
		assert.Equal(t, once, twice, "folding %v twice should be the same as folding once", cf)
	}
}

func TestVerifyName(t *testing.T) {
	valid := []string{"div", "a1", "_x", "ns:local", "x-y.z", "unicodeé"}
	for _, n := range valid {
		assert.True(t, VerifyName(n), "expected %q to be a valid Name", n)
	}

	invalid := []string{"", "1leading", "has space", "a:b:c", "a:", "-leading"}
	for _, n := range invalid {
		assert.False(t, VerifyName(n), "expected %q to be an invalid Name", n)
	}
}

func TestVerifyNMTOKEN(t *testing.T) {
	assert.True(t, VerifyNMTOKEN("1.2.3"))
	assert.True(t, VerifyNMTOKEN("data-foo"))
	assert.False(t, VerifyNMTOKEN(""))
	assert.False(t, VerifyNMTOKEN("has space"))
}
