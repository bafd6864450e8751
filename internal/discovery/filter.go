package discovery

import (
	"strings"

	"tadapt/internal/domain"
)

// Selector decides which registered tests take part in a run.
// The zero value selects every test.
type Selector struct {
	name  string
	exact bool
	// set by AnyOf
	names []string
	index map[string]struct{}
}

// All selects every registered test.
func All() Selector {
	return Selector{}
}

// ExactMatch selects the test whose qualified name equals name byte for byte.
func ExactMatch(name string) Selector {
	return Selector{name: name, exact: true}
}

// AnyOf selects every test whose qualified name is one of names. It is used
// to rerun the failures of a previous report; with no names it matches
// nothing.
func AnyOf(names ...string) Selector {
	index := make(map[string]struct{}, len(names))
	for _, n := range names {
		index[n] = struct{}{}
	}
	return Selector{exact: true, names: names, index: index}
}

// IsAll reports whether the selector applies no filtering.
func (s Selector) IsAll() bool {
	return !s.exact
}

// Name returns the qualified name an ExactMatch selector looks for, or ""
// for the other variants.
func (s Selector) Name() string {
	return s.name
}

// Matches reports whether rec is selected. It never fails; an ExactMatch on
// a name that is not registered simply matches nothing.
func (s Selector) Matches(rec domain.TestRecord) bool {
	if !s.exact {
		return true
	}
	if s.index != nil {
		_, ok := s.index[rec.QualifiedName()]
		return ok
	}
	return rec.QualifiedName() == s.name
}

// Filter returns the selected records, keeping registration order.
func (s Selector) Filter(records []domain.TestRecord) []domain.TestRecord {
	if !s.exact {
		return records
	}
	var filtered []domain.TestRecord
	for _, rec := range records {
		if s.Matches(rec) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

func (s Selector) String() string {
	if !s.exact {
		return "all"
	}
	if s.index != nil {
		return "any of [" + strings.Join(s.names, ", ") + "]"
	}
	return s.name
}
