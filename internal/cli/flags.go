package cli

import "tadapt/internal/config"

// Flag names shared by the commands and the config layer.
const (
	FlagListTests    = "list-tests"
	FlagTest         = "test"
	FlagReport       = "report"
	FlagFormat       = "format"
	FlagFailFast     = "fail-fast"
	FlagFailed       = "failed"
	FlagRequireMatch = "require-match"
	FlagProgress     = "progress"
	FlagQuiet        = "quiet"
	FlagHistory      = "history"
	FlagLogLevel     = "log-level"
	FlagConfig       = "config"
	FlagExec         = "exec"
	FlagExecDir      = "exec-dir"
	FlagExecReport   = "exec-report"
	FlagVocabulary   = "vocabulary"
)

// Flags holds command-line flags
type Flags struct {
	ListTests    bool
	Test         string
	Report       string
	Format       string
	FailFast     bool
	Failed       bool
	RequireMatch bool
	Progress     bool
	Quiet        bool
	History      string
	LogLevel     string
	ConfigFile   string

	Exec       string
	ExecDir    string
	ExecReport string
	Vocabulary string
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ListTests:  f.ListTests,
		Test:       f.Test,
		Failed:     f.Failed,
		Quiet:      f.Quiet,
		ConfigFile: f.ConfigFile,
	}
}

// Apply copies every flag the user set onto cfg. Flags left at their
// default do not override values from the config file or environment.
func (f *Flags) Apply(cfg *config.Config, changed func(name string) bool) {
	cfg.Flags = f.ToConfigFlags()

	str := func(name, value string, dst *string) {
		if changed(name) {
			*dst = value
		}
	}
	boolean := func(name string, value bool, dst *bool) {
		if changed(name) {
			*dst = value
		}
	}

	str(FlagReport, f.Report, &cfg.ReportPath)
	str(FlagFormat, f.Format, &cfg.Format)
	str(FlagHistory, f.History, &cfg.HistoryDSN)
	str(FlagLogLevel, f.LogLevel, &cfg.LogLevel)
	str(FlagExec, f.Exec, &cfg.Exec.Path)
	str(FlagExecDir, f.ExecDir, &cfg.Exec.Dir)
	str(FlagExecReport, f.ExecReport, &cfg.Exec.ReportFile)
	str(FlagVocabulary, f.Vocabulary, &cfg.Exec.Vocabulary)
	boolean(FlagFailFast, f.FailFast, &cfg.FailFast)
	boolean(FlagRequireMatch, f.RequireMatch, &cfg.RequireMatch)
	boolean(FlagProgress, f.Progress, &cfg.Progress)
}
