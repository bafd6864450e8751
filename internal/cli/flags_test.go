package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tadapt/internal/config"
)

func TestFlags_ApplyOnlyChanged(t *testing.T) {
	cfg := config.New()
	cfg.ReportPath = "from-file.xml"
	cfg.FailFast = true

	flags := Flags{
		Test:     "MathTests::FAIL",
		Report:   config.DefaultReportPath,
		Format:   "json",
		FailFast: false,
		Exec:     "./tests",
		Quiet:    true,
	}
	changed := map[string]bool{FlagFormat: true, FlagExec: true}
	flags.Apply(cfg, func(name string) bool { return changed[name] })

	assert.Equal(t, "from-file.xml", cfg.ReportPath, "unchanged flag must not override")
	assert.True(t, cfg.FailFast, "unchanged flag must not override")
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "./tests", cfg.Exec.Path)
	assert.Equal(t, config.Flags{Test: "MathTests::FAIL", Quiet: true}, cfg.Flags)
}
