package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"

	"tadapt/internal/discovery"
	"tadapt/internal/domain"
	"tadapt/internal/registry"
)

var (
	// ErrRegistryUnavailable means the registry could not be enumerated.
	// It is distinct from a selection that matched nothing.
	ErrRegistryUnavailable = errors.New("registry unavailable")
	// ErrRegistryFault means the registry broke its contract while invoking a test.
	ErrRegistryFault = errors.New("registry fault")
	// ErrAlreadyRun is returned when Run is called on a used engine.
	ErrAlreadyRun = errors.New("engine already ran")
)

// State is the lifecycle of one run.
type State int

const (
	NotStarted State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Running:
		return "running"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Observer is notified as a run progresses.
type Observer interface {
	RunStarted(total int)
	TestFinished(o domain.Outcome, report *domain.RunReport)
	RunFinished(report *domain.RunReport)
}

// Options tune a run.
type Options struct {
	// FailFast stops the run after the first failing outcome.
	FailFast bool
	// Observer receives progress callbacks, may be nil.
	Observer Observer
	// Now is the clock used for timings, time.Now when nil.
	Now func() time.Time
	// NewID generates run ids, uuid.NewString when nil.
	NewID func() string
}

// Engine executes the selected tests of a registry one after another.
// An Engine performs a single run.
type Engine struct {
	opts  Options
	log   log.Logger
	state State
}

// NewEngine creates an engine in the NotStarted state.
func NewEngine(opts Options, logger log.Logger) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Engine{opts: opts, log: logger.New("component", "engine")}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Run walks reg in registration order, invoking every record sel matches.
//
// Per-test failures become outcomes. A nil error always comes with a
// complete report. When the run ends early because ctx was cancelled or the
// registry misbehaved, the report recorded so far is returned with
// Partial set, together with the error. A registry that cannot be
// enumerated yields ErrRegistryUnavailable and no report.
func (e *Engine) Run(ctx context.Context, reg registry.Registry, sel discovery.Selector) (*domain.RunReport, error) {
	if e.state != NotStarted {
		return nil, ErrAlreadyRun
	}
	if reg == nil {
		e.state = Finished
		return nil, fmt.Errorf("%w: no registry", ErrRegistryUnavailable)
	}

	records, err := reg.Tests()
	if err != nil {
		e.state = Finished
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	selected := sel.Filter(records)

	e.state = Running
	report := &domain.RunReport{ID: e.opts.NewID(), Started: e.opts.Now()}
	e.log.Debug("Run started", "run", report.ID, "selector", sel.String(), "registered", len(records), "selected", len(selected))
	if len(selected) == 0 {
		e.log.Warn("No tests matched the selection", "selector", sel.String())
	}
	if e.opts.Observer != nil {
		e.opts.Observer.RunStarted(len(selected))
	}

	runErr := e.runAll(ctx, reg, selected, report)

	report.Duration = e.opts.Now().Sub(report.Started)
	report.Finalize()
	e.state = Finished
	if e.opts.Observer != nil {
		e.opts.Observer.RunFinished(report)
	}
	e.log.Info("Run finished", "run", report.ID, "total", report.Total, "passed", report.Passed,
		"failed", report.Failed, "partial", report.Partial, "duration", report.Duration)
	return report, runErr
}

func (e *Engine) runAll(ctx context.Context, reg registry.Registry, selected []domain.TestRecord, report *domain.RunReport) error {
	for i, rec := range selected {
		if err := ctx.Err(); err != nil {
			report.Partial = true
			return fmt.Errorf("run interrupted before %s: %w", rec.QualifiedName(), err)
		}

		start := e.opts.Now()
		res, err := e.invoke(ctx, reg, rec)
		if err != nil {
			report.Partial = true
			return err
		}
		outcome := domain.NewOutcome(rec, res, e.opts.Now().Sub(start))
		report.Append(outcome)

		e.log.Debug("Test finished", "test", outcome.Name, "status", outcome.Status, "duration", outcome.Duration)
		if e.opts.Observer != nil {
			e.opts.Observer.TestFinished(outcome, report)
		}

		if !outcome.Passed() && e.opts.FailFast {
			if remaining := len(selected) - i - 1; remaining > 0 {
				e.log.Info("Stopping after first failure", "test", outcome.Name, "skipped", remaining)
				report.Partial = true
			}
			return nil
		}
	}
	return nil
}

// invoke calls the registry, converting a panic that escapes it into a
// fatal error. Registries are expected to contain faults of test bodies.
func (e *Engine) invoke(ctx context.Context, reg registry.Registry, rec domain.TestRecord) (res domain.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: invoking %s: %v", ErrRegistryFault, rec.QualifiedName(), r)
		}
	}()
	return reg.Invoke(ctx, rec), nil
}
