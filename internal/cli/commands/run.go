package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tadapt/internal/discovery"
	"tadapt/internal/domain"
	"tadapt/internal/execution"
	"tadapt/internal/exitcodes"
	"tadapt/internal/storage"
	"tadapt/internal/ui"
)

// RunCommand runs the selected tests, writes the report and sets the exit
// code to the number of failures.
type RunCommand struct {
	s *session
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	s := rc.s
	cfg := s.cfg

	if s.app.ExecFlags {
		if err := cfg.CheckReportCollision(); err != nil {
			return usageError(err)
		}
	}

	reg, err := s.registry()
	if err != nil {
		return err
	}

	sel, err := rc.selector()
	if err != nil {
		return runtimeError(err)
	}

	format, err := storage.ParseFormat(cfg.Format)
	if err != nil {
		return usageError(err)
	}
	st, err := storage.NewFileStorage(cfg.ReportPath, format)
	if err != nil {
		return usageError(err)
	}

	// The report destination is acquired before any test runs so an
	// unwritable path fails fast.
	artifact, err := st.Open()
	if err != nil {
		return runtimeError(err)
	}
	defer func() {
		if err := artifact.Close(); err != nil {
			s.logger.Warn("Failed to close report", "path", artifact.Path(), "err", err)
		}
	}()

	opts := execution.Options{FailFast: cfg.FailFast}
	if cfg.Progress && !cfg.Flags.Quiet {
		opts.Observer = ui.NewProgressBar(s.app.Stderr)
	}
	engine := execution.NewEngine(opts, s.logger)

	report, runErr := engine.Run(cmd.Context(), reg, sel)
	if report != nil {
		if err := artifact.Write(report); err != nil {
			return runtimeError(errors.Join(runErr, err))
		}
		s.logger.Debug("Report written", "path", artifact.Path(), "format", format, "partial", report.Partial)

		rc.record(cmd.Context(), report)

		if !cfg.Flags.Quiet {
			ui.NewFormatter(s.app.Stderr, s.color()).PrintSummary(report)
		}
	}
	if runErr != nil {
		return runtimeError(runErr)
	}

	if report.Total == 0 && cfg.RequireMatch {
		return exitWith(exitcodes.NoTestsSelected, fmt.Errorf("no registered test matches %s", sel))
	}
	s.code = exitcodes.FromFailures(report.Failed)
	return nil
}

// selector builds the selection for this invocation. With --failed it
// reads the previous report before the new one replaces it.
func (rc *RunCommand) selector() (discovery.Selector, error) {
	cfg := rc.s.cfg
	switch {
	case cfg.Flags.Test != "":
		return discovery.ExactMatch(cfg.Flags.Test), nil
	case cfg.Flags.Failed:
		previous, err := storage.Load(cfg.ReportPath)
		if err != nil {
			return discovery.Selector{}, fmt.Errorf("--failed needs a previous report: %w", err)
		}
		var names []string
		for _, o := range previous.Failures() {
			names = append(names, o.Name)
		}
		if len(names) == 0 {
			rc.s.logger.Info("Previous run had no failures", "report", cfg.ReportPath)
		}
		return discovery.AnyOf(names...), nil
	default:
		return discovery.All(), nil
	}
}

// record stores the run in the history database. History is auxiliary so
// failures are only logged.
func (rc *RunCommand) record(ctx context.Context, report *domain.RunReport) {
	dsn := rc.s.cfg.HistoryDSN
	if dsn == "" {
		return
	}
	history, err := storage.OpenHistory(ctx, dsn)
	if err != nil {
		rc.s.logger.Warn("History unavailable", "err", err)
		return
	}
	defer history.Close()

	if err := history.Record(ctx, report); err != nil {
		rc.s.logger.Warn("Failed to record run", "run", report.ID, "err", err)
	}
}
