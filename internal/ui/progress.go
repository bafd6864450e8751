package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"tadapt/internal/domain"
)

// ProgressBar renders run progress. It satisfies execution.Observer.
type ProgressBar struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a progress bar writing to out, typically stderr.
func NewProgressBar(out io.Writer) *ProgressBar {
	return &ProgressBar{out: out}
}

// RunStarted sizes the bar once the selection is known.
func (p *ProgressBar) RunStarted(total int) {
	out := p.out
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(describe(0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(out),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// TestFinished advances the bar by one outcome.
func (p *ProgressBar) TestFinished(_ domain.Outcome, report *domain.RunReport) {
	if p.bar == nil {
		return
	}
	_ = p.bar.Set(report.Total)
	p.bar.Describe(describe(report.Passed, report.Failed))
}

// RunFinished completes the bar.
func (p *ProgressBar) RunFinished(*domain.RunReport) {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}

func describe(passed, failed int) string {
	return color.CyanString("Running tests: ") +
		color.GreenString("[passed: %d", passed) +
		" | " +
		color.RedString("failed: %d]", failed)
}
