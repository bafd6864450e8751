package execution

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tadapt/internal/discovery"
	"tadapt/internal/domain"
	"tadapt/internal/registry"
)

func discard() log.Logger {
	return log.NewLogger(log.DiscardHandler())
}

// fixedClock advances one millisecond per reading.
func fixedClock() func() time.Time {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Millisecond)
		return now
	}
}

func newEngine(opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = fixedClock()
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return "run" }
	}
	return NewEngine(opts, discard())
}

func scenarioRegistry() *registry.Memory {
	m := registry.NewMemory()
	m.Suite("MathTests").
		Add("Addition", func(t *registry.T) { t.Equal(4, 2+2) }).
		Add("FAIL", func(t *registry.T) { t.Equal(2, 1) })
	m.Suite("StringTests").
		Add("Concatenation", func(t *registry.T) { t.Equal("Hello World", "Hello"+" World") })
	return m
}

func names(report *domain.RunReport) []string {
	var out []string
	for _, o := range report.Outcomes {
		out = append(out, o.Name)
	}
	return out
}

func TestEngine_RunAllScenario(t *testing.T) {
	e := newEngine(Options{})
	assert.Equal(t, NotStarted, e.State())

	report, err := e.Run(context.Background(), scenarioRegistry(), discovery.All())
	require.NoError(t, err)
	assert.Equal(t, Finished, e.State())

	assert.Equal(t, []string{"MathTests::Addition", "MathTests::FAIL", "StringTests::Concatenation"}, names(report))
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Passed)
	assert.Equal(t, 1, report.Failed)
	assert.False(t, report.Partial)
	assert.Equal(t, "run", report.ID)
	assert.Contains(t, report.Outcomes[1].Detail, "Expected 2 but was 1")
	assert.Equal(t, domain.StatusFailed, report.Outcomes[1].Status)
	assert.Equal(t, time.Millisecond, report.Outcomes[0].Duration)
}

func TestEngine_RunOne(t *testing.T) {
	report, err := newEngine(Options{}).Run(context.Background(), scenarioRegistry(), discovery.ExactMatch("MathTests::FAIL"))
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, "MathTests::FAIL", report.Outcomes[0].Name)
	assert.Equal(t, 1, report.Failed)
}

func TestEngine_RunOneAbsent(t *testing.T) {
	report, err := newEngine(Options{}).Run(context.Background(), scenarioRegistry(), discovery.ExactMatch("MathTests::Missing"))
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Empty(t, report.Outcomes)
	assert.Equal(t, 0, report.Total)
	assert.Equal(t, 0, report.Failed)
	assert.False(t, report.Partial)
}

func TestEngine_RunAllEqualsConcatenatedRunOne(t *testing.T) {
	reg := scenarioRegistry()
	all, err := newEngine(Options{}).Run(context.Background(), reg, discovery.All())
	require.NoError(t, err)

	records, err := reg.Tests()
	require.NoError(t, err)
	var concatenated []domain.Outcome
	for _, rec := range records {
		one, err := newEngine(Options{}).Run(context.Background(), reg, discovery.ExactMatch(rec.QualifiedName()))
		require.NoError(t, err)
		concatenated = append(concatenated, one.Outcomes...)
	}

	ignoreTiming := cmpopts.IgnoreFields(domain.Outcome{}, "Duration")
	if diff := cmp.Diff(all.Outcomes, concatenated, ignoreTiming); diff != "" {
		t.Errorf("run-all differs from concatenated run-one (-all +one):\n%s", diff)
	}
}

func TestEngine_Idempotent(t *testing.T) {
	reg := scenarioRegistry()
	first, err := NewEngine(Options{}, discard()).Run(context.Background(), reg, discovery.All())
	require.NoError(t, err)
	second, err := NewEngine(Options{}, discard()).Run(context.Background(), reg, discovery.All())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	ignoreTiming := cmpopts.IgnoreFields(domain.Outcome{}, "Duration")
	assert.True(t, cmp.Equal(first.Outcomes, second.Outcomes, ignoreTiming))
}

func TestEngine_FaultsAreContained(t *testing.T) {
	m := registry.NewMemory()
	m.Add("S", "before", func(t *registry.T) {})
	m.Add("S", "panics", func(t *registry.T) { panic("boom") })
	m.Add("S", "after", func(t *registry.T) {})

	report, err := newEngine(Options{}).Run(context.Background(), m, discovery.All())
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, domain.StatusError, report.Outcomes[1].Status)
	assert.Contains(t, report.Outcomes[1].Detail, "boom")
	assert.True(t, report.Outcomes[2].Passed())
	assert.Equal(t, 1, report.Failed)
}

func TestEngine_FailFast(t *testing.T) {
	report, err := newEngine(Options{FailFast: true}).Run(context.Background(), scenarioRegistry(), discovery.All())
	require.NoError(t, err)
	assert.Equal(t, []string{"MathTests::Addition", "MathTests::FAIL"}, names(report))
	assert.True(t, report.Partial)
	assert.Equal(t, 1, report.Failed)
}

func TestEngine_FailFastLastTestIsComplete(t *testing.T) {
	report, err := newEngine(Options{FailFast: true}).Run(context.Background(), scenarioRegistry(), discovery.ExactMatch("MathTests::FAIL"))
	require.NoError(t, err)
	assert.False(t, report.Partial)
}

type brokenRegistry struct{}

func (brokenRegistry) Tests() ([]domain.TestRecord, error) {
	return nil, errors.New("binary not found")
}

func (brokenRegistry) Invoke(context.Context, domain.TestRecord) domain.Result {
	return domain.Pass()
}

func TestEngine_RegistryUnavailable(t *testing.T) {
	e := newEngine(Options{})
	report, err := e.Run(context.Background(), brokenRegistry{}, discovery.All())
	assert.Nil(t, report)
	assert.True(t, errors.Is(err, ErrRegistryUnavailable))
	assert.Equal(t, Finished, e.State())

	report, err = newEngine(Options{}).Run(context.Background(), nil, discovery.All())
	assert.Nil(t, report)
	assert.True(t, errors.Is(err, ErrRegistryUnavailable))
}

// panickyRegistry breaks the Invoke contract on its second test.
type panickyRegistry struct {
	*registry.Memory
}

func (p panickyRegistry) Invoke(ctx context.Context, rec domain.TestRecord) domain.Result {
	if rec.Name == "FAIL" {
		panic("registry bug")
	}
	return p.Memory.Invoke(ctx, rec)
}

func TestEngine_RegistryFaultYieldsPartialReport(t *testing.T) {
	report, err := newEngine(Options{}).Run(context.Background(), panickyRegistry{scenarioRegistry()}, discovery.All())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRegistryFault))
	require.NotNil(t, report)
	assert.True(t, report.Partial)
	assert.Equal(t, []string{"MathTests::Addition"}, names(report))
}

type zeroRegistry struct {
	*registry.Memory
}

func (zeroRegistry) Invoke(context.Context, domain.TestRecord) domain.Result {
	return domain.Result{}
}

func TestEngine_ZeroResultIsFault(t *testing.T) {
	report, err := newEngine(Options{}).Run(context.Background(), zeroRegistry{scenarioRegistry()}, discovery.ExactMatch("MathTests::Addition"))
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, domain.StatusError, report.Outcomes[0].Status)
}

func TestEngine_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := registry.NewMemory()
	m.Add("S", "first", func(t *registry.T) { cancel() })
	m.Add("S", "second", func(t *registry.T) {})

	report, err := newEngine(Options{}).Run(ctx, m, discovery.All())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, report.Partial)
	assert.Equal(t, []string{"S::first"}, names(report))
}

func TestEngine_SingleUse(t *testing.T) {
	e := newEngine(Options{})
	_, err := e.Run(context.Background(), scenarioRegistry(), discovery.All())
	require.NoError(t, err)
	_, err = e.Run(context.Background(), scenarioRegistry(), discovery.All())
	assert.True(t, errors.Is(err, ErrAlreadyRun))
}

type recordingObserver struct {
	events []string
}

func (r *recordingObserver) RunStarted(total int) {
	r.events = append(r.events, fmt.Sprintf("start %d", total))
}

func (r *recordingObserver) TestFinished(o domain.Outcome, report *domain.RunReport) {
	r.events = append(r.events, fmt.Sprintf("%s %s %d/%d", o.Name, o.Status, report.Passed, report.Failed))
}

func (r *recordingObserver) RunFinished(report *domain.RunReport) {
	r.events = append(r.events, fmt.Sprintf("finish %d", report.Total))
}

func TestEngine_Observer(t *testing.T) {
	obs := &recordingObserver{}
	_, err := newEngine(Options{Observer: obs}).Run(context.Background(), scenarioRegistry(), discovery.All())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"start 3",
		"MathTests::Addition passed 1/0",
		"MathTests::FAIL failed 1/1",
		"StringTests::Concatenation passed 2/1",
		"finish 3",
	}, obs.events)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "not-started", NotStarted.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "finished", Finished.String())
	assert.Equal(t, "state(7)", State(7).String())
}
