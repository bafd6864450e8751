package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"tadapt/internal/domain"
)

// Viewer displays failed outcomes of a report.
type Viewer interface {
	View(report *domain.RunReport) error
}

// FailureViewer browses failures in an interactive TUI.
type FailureViewer struct {
	out io.Writer
	app *tview.Application
}

// NewFailureViewer creates a viewer. out receives the message shown when
// there is nothing to browse.
func NewFailureViewer(out io.Writer) *FailureViewer {
	return &FailureViewer{out: out, app: tview.NewApplication()}
}

// View runs the TUI until the user quits.
func (v *FailureViewer) View(report *domain.RunReport) error {
	failures := report.Failures()
	if len(failures) == 0 {
		fmt.Fprintln(v.out, color.GreenString("✓ No test failures found!"))
		return nil
	}

	app := v.app

	// Failed tests (left side)
	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	for i, o := range failures {
		list.AddItem(listItemText(i, o), "", 0, nil)
	}
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetText(headerText(report))

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(failures) {
			statsView.SetText(formatFailureStats(failures[index]))
			detailsView.SetText(formatFailureDetails(failures[index]))
			detailsView.ScrollToBeginning()
		}
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC, tcell.KeyEsc:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'q' {
				app.Stop()
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func headerText(report *domain.RunReport) string {
	partial := ""
	if report.Partial {
		partial = ", [yellow]partial[white]"
	}
	return fmt.Sprintf(" Test Failures (%d of %d%s) | ↑↓ navigate, → details, ← back, q to exit ",
		report.Failed, report.Total, partial)
}

func listItemText(index int, o domain.Outcome) string {
	marker := "[red]✗"
	if o.Status == domain.StatusError {
		marker = "[fuchsia]!"
	}
	return fmt.Sprintf("%s [yellow]%d.[white] %s", marker, index+1, tview.Escape(o.Name))
}

// formatFailureStats formats the header line for one failure using tview
// color tags.
func formatFailureStats(o domain.Outcome) string {
	file := o.File
	if file == "" {
		file = "unknown file"
	}
	return fmt.Sprintf("[cyan]suite:[white] [yellow]%s[white]  [cyan]test:[white] [yellow]%s[white]\n[cyan]at:[white] %s:%d\n",
		tview.Escape(o.Suite), tview.Escape(o.Test), tview.Escape(file), o.Line)
}

// formatFailureDetails formats the body for one failure.
func formatFailureDetails(o domain.Outcome) string {
	var b strings.Builder

	kind := "Assertion failure"
	if o.Status == domain.StatusError {
		kind = "Unexpected fault"
	}
	fmt.Fprintf(&b, "[red]✗ %s: %s[white]\n\n", kind, tview.Escape(o.Name))
	fmt.Fprintf(&b, "[yellow]Duration:[white] %s\n\n", formatDuration(o.Duration))

	detail := o.Detail
	if detail == "" {
		detail = "(no detail recorded)"
	}
	lines := strings.Split(detail, "\n")
	fmt.Fprintf(&b, "[yellow]Details:[white]\n")
	for i, line := range lines {
		if i == maxDetailLines {
			fmt.Fprintf(&b, "  [gray]... and %d more lines[white]\n", len(lines)-maxDetailLines)
			break
		}
		fmt.Fprintf(&b, "  %s\n", tview.Escape(line))
	}
	return b.String()
}

const maxDetailLines = 50
