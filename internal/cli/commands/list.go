package commands

import (
	"github.com/spf13/cobra"

	"tadapt/internal/discovery"
	"tadapt/internal/storage"
	"tadapt/internal/ui"
)

// ListCommand handles discovery and the human readable listing.
type ListCommand struct {
	s *session
}

// Discover writes one suite::test,file,line line per registered test to
// stdout and nothing else.
func (lc *ListCommand) Discover(cmd *cobra.Command, args []string) error {
	reg, err := lc.s.registry()
	if err != nil {
		return err
	}
	recs, err := reg.Tests()
	if err != nil {
		return runtimeError(err)
	}
	if err := discovery.WriteListing(lc.s.app.Stdout, recs); err != nil {
		return runtimeError(err)
	}
	lc.s.logger.Debug("Listed tests", "count", len(recs))
	return nil
}

// Execute prints registered tests grouped by suite, marking the ones that
// failed in the last report.
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	reg, err := lc.s.registry()
	if err != nil {
		return err
	}
	recs, err := reg.Tests()
	if err != nil {
		return runtimeError(err)
	}

	failed := make(map[string]struct{})
	if previous, err := storage.Load(lc.s.cfg.ReportPath); err == nil {
		for _, o := range previous.Failures() {
			failed[o.Name] = struct{}{}
		}
	}

	ui.NewFormatter(lc.s.app.Stdout, ui.IsTerminal(lc.s.app.Stdout)).PrintTestTree(recs, failed)
	return nil
}

func (lc *ListCommand) command() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered tests by suite",
		Long:  "Print registered tests grouped by suite, marking those that failed in the last report with [F]",
		Args:  cobra.NoArgs,
		RunE:  lc.Execute,
	}
}
