package tadapt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain_RunsRegisteredTests(t *testing.T) {
	t.Chdir(t.TempDir())

	reg := NewRegistry()
	reg.Suite("MathTests").
		Add("Addition", func(t *T) { t.Equal(2, 1+1) }).
		Add("FAIL", func(t *T) { t.Equal(2, 1) })
	reg.Add("StringTests", "Concatenation", func(t *T) { t.Equal("ab", "a"+"b") })

	report := filepath.Join("reports", "results.xml")
	assert.Equal(t, 1, Main(reg, []string{"--quiet", "--report", report}))

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `failedtests="1"`)
	assert.Contains(t, string(data), `name="Concatenation"`)

	assert.Equal(t, 0, Main(reg, []string{"--quiet", "--report", report, "TC/MathTests::Addition"}))
}
