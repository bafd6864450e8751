package discovery

import (
	"strings"

	"tadapt/internal/domain"
)

// DefaultSuite is the suite assigned to listed names that carry no "::".
const DefaultSuite = "default"

// QualifiedName resolves the canonical "suite::test" identity of a record.
func QualifiedName(rec domain.TestRecord) string {
	return rec.QualifiedName()
}

// SplitQualifiedName splits a qualified name at its last separator.
// Names without a separator belong to DefaultSuite.
func SplitQualifiedName(name string) (suite, test string) {
	i := strings.LastIndex(name, domain.Separator)
	if i < 0 {
		return DefaultSuite, strings.TrimSpace(name)
	}
	return strings.TrimSpace(name[:i]), strings.TrimSpace(name[i+len(domain.Separator):])
}
