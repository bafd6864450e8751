package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocabularyByName(t *testing.T) {
	v, err := VocabularyByName("")
	require.NoError(t, err)
	assert.Equal(t, []string{"--list-tests"}, v.ListArgs)
	assert.Equal(t, []string{"--test", "A::b"}, v.TestArgs("A::b"))
	assert.Equal(t, "test_results.txt", v.ReportFile)

	v, err = VocabularyByName("CDocTest")
	require.NoError(t, err)
	assert.Equal(t, []string{"GetTcList:"}, v.ListArgs)
	assert.Equal(t, []string{"TC/A::b"}, v.TestArgs("A::b"))
	assert.Equal(t, "output.vsc", v.ReportFile)

	_, err = VocabularyByName("gtest")
	assert.Error(t, err)
}

func TestParsePositional(t *testing.T) {
	list, name, ok := ParsePositional("GetTcList:")
	assert.True(t, ok)
	assert.True(t, list)
	assert.Empty(t, name)

	list, name, ok = ParsePositional("TC/SubMathTests::FAIL")
	assert.True(t, ok)
	assert.False(t, list)
	assert.Equal(t, "SubMathTests::FAIL", name)

	_, _, ok = ParsePositional("MathTests::FAIL")
	assert.False(t, ok)
}
