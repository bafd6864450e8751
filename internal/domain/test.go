package domain

// Separator joins a suite name and a test name into a qualified name.
const Separator = "::"

// TestRecord is the identity metadata of one registered test.
// Records are owned by a registry and never modified after registration.
type TestRecord struct {
	Suite string // Suite the test was declared in
	Name  string // Test name within the suite
	File  string // Source file of the declaration
	Line  int    // Line of the declaration
}

// QualifiedName returns "suite::test", the addressable identity of the record.
func (r TestRecord) QualifiedName() string {
	return r.Suite + Separator + r.Name
}
