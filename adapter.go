// Package tadapt turns a program holding registered tests into an adapter
// that external drivers can query and run.
//
// A test binary registers its tests and hands control to Main:
//
//	func main() {
//		reg := tadapt.NewRegistry()
//		reg.Suite("MathTests").
//			Add("Addition", func(t *tadapt.T) { t.Equal(2, 1+1) })
//		os.Exit(tadapt.Main(reg, os.Args[1:]))
//	}
//
// The binary then understands --list-tests, --test <suite::test> and the
// GetTcList: / TC/<suite::test> arguments, writes test_results.txt and
// exits with the number of failed tests.
package tadapt

import (
	"context"
	"os"
	"path/filepath"

	"tadapt/internal/cli/commands"
	"tadapt/internal/domain"
	"tadapt/internal/registry"
)

type (
	// Registry enumerates and invokes tests.
	Registry = registry.Registry
	// Memory is the in-process registry.
	Memory = registry.Memory
	// T is handed to each test body.
	T = registry.T
	// Body is the code of one test.
	Body = registry.Body
	// TestRecord identifies one registered test.
	TestRecord = domain.TestRecord
	// Result is what a registry reports for one invocation.
	Result = domain.Result
)

// NewRegistry creates an empty in-process registry.
func NewRegistry() *Memory {
	return registry.NewMemory()
}

// Main runs the adapter over reg with the given command line arguments
// and returns the exit code. A first SIGINT or SIGTERM stops the run after
// the test in progress and the partial report is still written; a second one
// terminates the process.
func Main(reg Registry, args []string) int {
	ctx, stop := commands.SignalContext(context.Background())
	defer stop()

	app := commands.NewApp(filepath.Base(os.Args[0]), commands.Static(reg))
	return app.Execute(ctx, args)
}
