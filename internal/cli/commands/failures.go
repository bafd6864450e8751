package commands

import (
	"github.com/spf13/cobra"

	"tadapt/internal/storage"
	"tadapt/internal/ui"
)

// FailuresCommand shows the failures of the last report.
type FailuresCommand struct {
	s *session
}

// Execute runs the command
func (fc *FailuresCommand) Execute(cmd *cobra.Command, args []string) error {
	report, err := storage.Load(fc.s.cfg.ReportPath)
	if err != nil {
		return runtimeError(err)
	}

	viewer := fc.s.app.Viewer
	if viewer == nil {
		if !ui.IsTerminal(fc.s.app.Stdout) {
			ui.NewFormatter(fc.s.app.Stdout, false).PrintSummary(report)
			return nil
		}
		viewer = ui.NewFailureViewer(fc.s.app.Stdout)
	}
	if err := viewer.View(report); err != nil {
		return runtimeError(err)
	}
	return nil
}

func (fc *FailuresCommand) command() *cobra.Command {
	return &cobra.Command{
		Use:     "failures",
		Aliases: []string{"faills"},
		Short:   "View test failures interactively",
		Long:    "Display failures from the last report in an interactive viewer, or as a table when stdout is not a terminal",
		Args:    cobra.NoArgs,
		RunE:    fc.Execute,
	}
}
