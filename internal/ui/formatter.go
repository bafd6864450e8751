package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"tadapt/internal/domain"
	"tadapt/internal/storage"
)

// Formatter renders human readable output. It never writes to stdout on
// its own; callers pick the writer.
type Formatter struct {
	out   io.Writer
	color bool
}

// NewFormatter creates a new Formatter
func NewFormatter(out io.Writer, useColor bool) *Formatter {
	return &Formatter{out: out, color: useColor}
}

func (f *Formatter) paint(attr color.Attribute) *color.Color {
	c := color.New(attr)
	if f.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// PrintSummary prints a table of all outcomes followed by a one line verdict.
func (f *Formatter) PrintSummary(report *domain.RunReport) {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle("Test Results")
	t.AppendHeader(table.Row{"Suite", "Test", "Location", "Duration", "Status"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Suite", AutoMerge: true},
		{Name: "Duration", Align: text.AlignRight},
	})

	for _, o := range report.Outcomes {
		t.AppendRow(table.Row{
			o.Suite,
			o.Test,
			fmt.Sprintf("%s:%d", o.File, o.Line),
			formatDuration(o.Duration),
			f.statusString(o.Status),
		})
	}

	overall := "PASS"
	if report.Failed > 0 {
		overall = "FAIL"
	}
	t.AppendFooter(table.Row{
		"TOTAL",
		fmt.Sprintf("%d passed, %d failed", report.Passed, report.Failed),
		"",
		formatDuration(report.Duration),
		overall,
	})

	switch {
	case !f.color:
		t.SetStyle(table.StyleLight)
	case report.Failed > 0:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	case report.Partial:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}
	t.Style().Format.Footer = text.FormatDefault
	t.Render()

	fmt.Fprintln(f.out)
	switch {
	case report.Total == 0:
		fmt.Fprintln(f.out, f.paint(color.FgYellow).Sprint("No tests were selected"))
	case report.Failed == 0:
		fmt.Fprintln(f.out, f.paint(color.FgGreen).Sprintf("✓ All %d test(s) passed", report.Total))
	default:
		fmt.Fprintln(f.out, f.paint(color.FgRed).Sprintf("✗ %d of %d test(s) failed", report.Failed, report.Total))
		for _, o := range report.Failures() {
			fmt.Fprintf(f.out, "  %s %s\n", f.paint(color.FgRed).Sprint(o.Name), indent(o.Detail, "    "))
		}
	}
	if report.Partial {
		fmt.Fprintln(f.out, f.paint(color.FgYellow).Sprint("! Run ended early, report is partial"))
	}
}

func (f *Formatter) statusString(s domain.Status) string {
	switch s {
	case domain.StatusPassed:
		return f.paint(color.FgGreen).Sprint("PASS")
	case domain.StatusFailed:
		return f.paint(color.FgRed).Sprint("FAIL")
	default:
		return f.paint(color.FgMagenta).Sprint("ERROR")
	}
}

// PrintTestTree prints the registered tests grouped by suite in
// registration order. failed marks qualified names that failed last run.
func (f *Formatter) PrintTestTree(recs []domain.TestRecord, failed map[string]struct{}) {
	var suites []string
	bySuite := make(map[string][]domain.TestRecord)
	for _, rec := range recs {
		if _, ok := bySuite[rec.Suite]; !ok {
			suites = append(suites, rec.Suite)
		}
		bySuite[rec.Suite] = append(bySuite[rec.Suite], rec)
	}

	fmt.Fprintln(f.out, f.paint(color.FgGreen).Sprintf("Found %d test(s) in %d suite(s):", len(recs), len(suites)))
	for i, suite := range suites {
		lastSuite := i == len(suites)-1
		branch, pad := "├── ", "│   "
		if lastSuite {
			branch, pad = "└── ", "    "
		}
		fmt.Fprintf(f.out, "%s%s\n", branch, f.paint(color.FgCyan).Sprint(suite))

		tests := bySuite[suite]
		for j, rec := range tests {
			leaf := "├── "
			if j == len(tests)-1 {
				leaf = "└── "
			}
			marker := ""
			if _, ok := failed[rec.QualifiedName()]; ok {
				marker = " " + f.paint(color.FgRed).Sprint("[F]")
			}
			fmt.Fprintf(f.out, "%s%s%s %s%s\n", pad, leaf,
				f.paint(color.FgYellow).Sprint(rec.Name),
				f.paint(color.FgHiBlack).Sprintf("(%s:%d)", rec.File, rec.Line),
				marker)
		}
	}
}

// PrintHistory prints recorded runs, newest first.
func (f *Formatter) PrintHistory(runs []storage.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(f.out, f.paint(color.FgYellow).Sprint("No runs recorded"))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle("Run History")
	t.AppendHeader(table.Row{"Run", "Started", "Duration", "Tests", "Passed", "Failed", "Status"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
	})
	for _, run := range runs {
		status := f.paint(color.FgGreen).Sprint("PASS")
		if run.Failed > 0 {
			status = f.paint(color.FgRed).Sprint("FAIL")
		}
		if run.Partial {
			status += " (partial)"
		}
		t.AppendRow(table.Row{
			run.ID,
			run.Started.Local().Format(time.DateTime),
			formatDuration(run.Duration),
			run.Total,
			run.Passed,
			run.Failed,
			status,
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.3fs", d.Seconds())
}

func indent(s, prefix string) string {
	if !strings.Contains(s, "\n") {
		return s
	}
	return strings.ReplaceAll(s, "\n", "\n"+prefix)
}
