package discovery

import (
	"fmt"
	"strings"
)

// Arguments understood by adapter binaries.
const (
	ListFlag = "--list-tests"
	TestFlag = "--test"

	// cdoctest style: a single positional argument per mode
	CDocTestList   = "GetTcList:"
	CDocTestPrefix = "TC/"

	// Report files written by adapters of each style
	UnitTestPPReport = "test_results.txt"
	CDocTestReport   = "output.vsc"
)

// Vocabulary names the arguments a driver passes to an adapter binary.
type Vocabulary struct {
	Name     string
	ListArgs []string
	// ReportFile is where an adapter of this style writes its report.
	ReportFile string
	testArgs   func(name string) []string
}

// TestArgs returns the arguments that select a single qualified name.
func (v Vocabulary) TestArgs(name string) []string {
	return v.testArgs(name)
}

var (
	// UnitTestPP is the "--list-tests" / "--test <name>" vocabulary.
	UnitTestPP = Vocabulary{
		Name:       "unittestpp",
		ListArgs:   []string{ListFlag},
		ReportFile: UnitTestPPReport,
		testArgs:   func(name string) []string { return []string{TestFlag, name} },
	}
	// CDocTest is the "GetTcList:" / "TC/<name>" vocabulary.
	CDocTest = Vocabulary{
		Name:       "cdoctest",
		ListArgs:   []string{CDocTestList},
		ReportFile: CDocTestReport,
		testArgs:   func(name string) []string { return []string{CDocTestPrefix + name} },
	}
)

// VocabularyByName looks up a vocabulary by its configured name.
func VocabularyByName(name string) (Vocabulary, error) {
	switch strings.ToLower(name) {
	case "", UnitTestPP.Name:
		return UnitTestPP, nil
	case CDocTest.Name:
		return CDocTest, nil
	}
	return Vocabulary{}, fmt.Errorf("unknown vocabulary %q (want %s or %s)", name, UnitTestPP.Name, CDocTest.Name)
}

// ParsePositional interprets a cdoctest style positional argument.
// It returns list=true for "GetTcList:", a test name for "TC/<name>", and
// ok=false for anything else.
func ParsePositional(arg string) (list bool, name string, ok bool) {
	if arg == CDocTestList {
		return true, "", true
	}
	if strings.HasPrefix(arg, CDocTestPrefix) {
		return false, strings.TrimPrefix(arg, CDocTestPrefix), true
	}
	return false, "", false
}
