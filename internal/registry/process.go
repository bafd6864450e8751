package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/log"

	"tadapt/internal/discovery"
	"tadapt/internal/domain"
	"tadapt/internal/storage"
)

// ProcessConfig describes an external adapter binary.
type ProcessConfig struct {
	Path       string   // Adapter executable
	Args       []string // Arguments placed before the mode arguments
	Dir        string   // Working directory, defaults to the current one
	ReportFile string   // Report written by the binary, relative to Dir
	Env        []string // Extra environment, appended to os.Environ
	Vocabulary discovery.Vocabulary
}

// Process is a Registry backed by an adapter binary that speaks the
// discovery protocol: it lists tests with the vocabulary's list arguments
// and runs one test per invocation.
type Process struct {
	config ProcessConfig
	log    log.Logger
}

// NewProcess creates a registry for the binary described by cfg.
func NewProcess(cfg ProcessConfig, logger log.Logger) *Process {
	if cfg.Vocabulary.ListArgs == nil {
		cfg.Vocabulary = discovery.UnitTestPP
	}
	return &Process{config: cfg, log: logger.New("component", "process-registry", "bin", cfg.Path)}
}

// Tests runs the binary in list mode and parses its listing.
func (p *Process) Tests() ([]domain.TestRecord, error) {
	cmd := p.command(context.Background(), p.config.Vocabulary.ListArgs)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	p.log.Debug("Listing tests", "args", cmd.Args)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("list tests with %s: %w: %s", p.config.Path, err, strings.TrimSpace(stderr.String()))
	}
	records, err := discovery.ParseListing(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("parse listing of %s: %w", p.config.Path, err)
	}
	return records, nil
}

// Invoke runs the binary for a single test and reads its verdict from the
// report it writes, falling back to the exit code.
func (p *Process) Invoke(ctx context.Context, rec domain.TestRecord) domain.Result {
	name := rec.QualifiedName()
	reportPath := p.reportPath()
	if reportPath != "" {
		// A stale report from an earlier invocation must not be mistaken for this one.
		if err := os.Remove(reportPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return domain.Fault(fmt.Sprintf("remove stale report %s: %v", reportPath, err))
		}
	}

	cmd := p.command(ctx, p.config.Vocabulary.TestArgs(name))
	p.log.Debug("Running test", "test", name, "args", cmd.Args)
	output, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return domain.Fault(fmt.Sprintf("failed to start %s: %v", p.config.Path, err))
	}
	if exitErr != nil && exitErr.ExitCode() < 0 {
		return domain.Fault(fmt.Sprintf("%s terminated: %v\n%s", p.config.Path, exitErr, strings.TrimSpace(string(output))))
	}

	if reportPath != "" {
		report, loadErr := storage.Load(reportPath)
		if loadErr == nil {
			for _, o := range report.Outcomes {
				if o.Name == name {
					return domain.Result{Status: o.Status, Detail: o.Detail}
				}
			}
			return domain.Fault(fmt.Sprintf("%s did not report %s", p.config.Path, name))
		}
		p.log.Debug("No usable report, using exit code", "test", name, "err", loadErr)
	}

	if err == nil {
		return domain.Pass()
	}
	detail := strings.TrimSpace(string(output))
	if detail == "" {
		detail = exitErr.Error()
	}
	return domain.Fail(detail)
}

func (p *Process) command(ctx context.Context, modeArgs []string) *exec.Cmd {
	args := append(append([]string{}, p.config.Args...), modeArgs...)
	cmd := exec.CommandContext(ctx, p.config.Path, args...)

	// Set environment variables
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, p.config.Env...)

	if p.config.Dir != "" {
		cmd.Dir = p.config.Dir
	}
	return cmd
}

func (p *Process) reportPath() string {
	if p.config.ReportFile == "" {
		return ""
	}
	if filepath.IsAbs(p.config.ReportFile) || p.config.Dir == "" {
		return p.config.ReportFile
	}
	return filepath.Join(p.config.Dir, p.config.ReportFile)
}
