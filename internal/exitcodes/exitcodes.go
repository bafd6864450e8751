// Package exitcodes defines the exit codes used by tadapt.
package exitcodes

// Run modes exit with the number of failed tests, so any code in
// [1, MaxTestFailures] means "that many tests failed". Codes above
// MaxTestFailures are reserved for conditions that are not test failures:
//
// * Success (0): listing finished, or every selected test passed
// * NoTestsSelected (252): --require-match given and nothing matched
// * UsageErr (254): bad flags or configuration
// * RuntimeErr (255): report unwritable, registry unavailable, run aborted
const (
	Success         = 0
	MaxTestFailures = 250
	NoTestsSelected = 252
	UsageErr        = 254
	RuntimeErr      = 255
)

// FromFailures maps a failure count onto an exit code.
func FromFailures(n int) int {
	switch {
	case n <= 0:
		return Success
	case n > MaxTestFailures:
		return MaxTestFailures
	default:
		return n
	}
}
