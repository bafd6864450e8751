package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"tadapt/internal/cli"
	"tadapt/internal/domain"
	"tadapt/internal/storage"
	"tadapt/internal/ui"
)

// HistoryCommand lists recorded runs, or the outcomes of one run.
type HistoryCommand struct {
	s     *session
	limit int
}

// Execute runs the command
func (hc *HistoryCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := hc.s.cfg
	if cfg.HistoryDSN == "" {
		return usageError(fmt.Errorf("history needs --%s or TADAPT_HISTORY", cli.FlagHistory))
	}
	limit := hc.limit
	if !cmd.Flags().Changed("limit") {
		limit = cfg.HistoryLimit
	}

	ctx := cmd.Context()
	history, err := storage.OpenHistory(ctx, cfg.HistoryDSN)
	if err != nil {
		return runtimeError(err)
	}
	defer history.Close()

	formatter := ui.NewFormatter(hc.s.app.Stdout, ui.IsTerminal(hc.s.app.Stdout))
	if len(args) == 1 {
		outcomes, err := history.Outcomes(ctx, args[0])
		if err != nil {
			return runtimeError(err)
		}
		if len(outcomes) == 0 {
			return runtimeError(fmt.Errorf("no outcomes recorded for run %s", args[0]))
		}
		report := &domain.RunReport{ID: args[0]}
		for _, o := range outcomes {
			report.Append(o)
			report.Duration += o.Duration
		}
		formatter.PrintSummary(report)
		return nil
	}

	runs, err := history.Recent(ctx, limit)
	if err != nil {
		return runtimeError(err)
	}
	formatter.PrintHistory(runs)
	return nil
}

func (hc *HistoryCommand) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded runs",
		Long:  "List the most recent runs from the history database, or the outcomes of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  hc.Execute,
	}
	cmd.Flags().IntVarP(&hc.limit, "limit", "n", 0, "Number of runs to show")
	return cmd
}
