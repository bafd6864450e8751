package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tadapt/internal/discovery"
	"tadapt/internal/domain"
	"tadapt/internal/storage"
)

// TestHelperProcess is not a real test. It is re-executed by the Process
// tests and behaves like an adapter binary.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("TADAPT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	os.Exit(fakeAdapter(args))
}

var fakeTests = []struct {
	rec    domain.TestRecord
	result domain.Result
}{
	{domain.TestRecord{Suite: "MathTests", Name: "Addition", File: "test_main.cpp", Line: 9}, domain.Pass()},
	{domain.TestRecord{Suite: "MathTests", Name: "FAIL", File: "test_main.cpp", Line: 16}, domain.Fail("test_main.cpp(17) : Expected 2 but was 1")},
	{domain.TestRecord{Suite: "StringTests", Name: "Concatenation", File: "test_main.cpp", Line: 22}, domain.Pass()},
}

func fakeAdapter(args []string) int {
	mode := os.Getenv("TADAPT_HELPER_MODE")
	if len(args) == 1 && (args[0] == discovery.ListFlag || args[0] == discovery.CDocTestList) {
		if mode == "broken-list" {
			fmt.Fprintln(os.Stderr, "registry unavailable")
			return 3
		}
		fmt.Println("banner without commas")
		var recs []domain.TestRecord
		for _, ft := range fakeTests {
			recs = append(recs, ft.rec)
		}
		if err := discovery.WriteListing(os.Stdout, recs); err != nil {
			return 255
		}
		return 0
	}

	var name string
	switch {
	case len(args) == 2 && args[0] == discovery.TestFlag:
		name = args[1]
	case len(args) == 1:
		_, name, _ = discovery.ParsePositional(args[0])
	}

	report := &domain.RunReport{}
	for _, ft := range fakeTests {
		if ft.rec.QualifiedName() == name {
			report.Append(domain.NewOutcome(ft.rec, ft.result, 0))
		}
	}
	if mode == "no-report" {
		fmt.Println("output from", name)
		return report.Failed
	}
	if mode == "crash" {
		panic("adapter crashed")
	}
	f, err := os.Create("test_results.txt")
	if err != nil {
		return 255
	}
	defer f.Close()
	if err := (storage.XMLEncoder{}).Encode(f, report); err != nil {
		return 255
	}
	return report.Failed
}

func helperProcess(t *testing.T, mode string, vocab discovery.Vocabulary) *Process {
	t.Helper()
	return NewProcess(ProcessConfig{
		Path:       os.Args[0],
		Args:       []string{"-test.run=TestHelperProcess", "--"},
		Dir:        t.TempDir(),
		ReportFile: "test_results.txt",
		Env:        []string{"TADAPT_HELPER_PROCESS=1", "TADAPT_HELPER_MODE=" + mode},
		Vocabulary: vocab,
	}, log.NewLogger(log.DiscardHandler()))
}

func TestProcess_Tests(t *testing.T) {
	for _, vocab := range []discovery.Vocabulary{discovery.UnitTestPP, discovery.CDocTest} {
		t.Run(vocab.Name, func(t *testing.T) {
			p := helperProcess(t, "", vocab)
			records, err := p.Tests()
			require.NoError(t, err)
			require.Len(t, records, 3)
			assert.Equal(t, fakeTests[1].rec, records[1])
		})
	}
}

func TestProcess_TestsUnavailable(t *testing.T) {
	p := helperProcess(t, "broken-list", discovery.UnitTestPP)
	_, err := p.Tests()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry unavailable")
}

func TestProcess_InvokeReadsReport(t *testing.T) {
	for _, vocab := range []discovery.Vocabulary{discovery.UnitTestPP, discovery.CDocTest} {
		t.Run(vocab.Name, func(t *testing.T) {
			p := helperProcess(t, "", vocab)
			ctx := context.Background()

			res := p.Invoke(ctx, fakeTests[0].rec)
			assert.Equal(t, domain.StatusPassed, res.Status)

			res = p.Invoke(ctx, fakeTests[1].rec)
			assert.Equal(t, domain.StatusFailed, res.Status)
			assert.Equal(t, "test_main.cpp(17) : Expected 2 but was 1", res.Detail)
		})
	}
}

func TestProcess_InvokeUnreported(t *testing.T) {
	p := helperProcess(t, "", discovery.UnitTestPP)
	res := p.Invoke(context.Background(), domain.TestRecord{Suite: "Ghost", Name: "Test"})
	assert.Equal(t, domain.StatusError, res.Status)
	assert.Contains(t, res.Detail, "did not report Ghost::Test")
}

func TestProcess_InvokeFallsBackToExitCode(t *testing.T) {
	p := helperProcess(t, "no-report", discovery.UnitTestPP)
	ctx := context.Background()

	res := p.Invoke(ctx, fakeTests[0].rec)
	assert.Equal(t, domain.StatusPassed, res.Status)

	res = p.Invoke(ctx, fakeTests[1].rec)
	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.Contains(t, res.Detail, "output from MathTests::FAIL")
}

func TestProcess_InvokeStaleReportRemoved(t *testing.T) {
	p := helperProcess(t, "crash", discovery.UnitTestPP)
	stale := filepath.Join(p.config.Dir, "test_results.txt")
	require.NoError(t, os.WriteFile(stale, []byte(`<unittest-results tests="1" failedtests="0" failures="0" time="0"><test suite="MathTests" name="FAIL" time="0"/></unittest-results>`), 0644))

	res := p.Invoke(context.Background(), fakeTests[1].rec)
	// The crash exits non-zero without a report; the stale pass must not be used.
	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.Contains(t, res.Detail, "adapter crashed")
}

func TestProcess_InvokeMissingBinary(t *testing.T) {
	p := NewProcess(ProcessConfig{Path: filepath.Join(t.TempDir(), "missing")}, log.NewLogger(log.DiscardHandler()))
	res := p.Invoke(context.Background(), fakeTests[0].rec)
	assert.Equal(t, domain.StatusError, res.Status)
	assert.Contains(t, res.Detail, "failed to start")
}
