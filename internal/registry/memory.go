package registry

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/go-cmp/cmp"

	"tadapt/internal/domain"
)

// Body is the code of one test.
type Body func(t *T)

type entry struct {
	record domain.TestRecord
	body   Body
}

// Memory is an in-process registry. Tests are added once at start-up and
// the registry is only read afterwards.
type Memory struct {
	entries []entry
}

// NewMemory creates an empty registry.
func NewMemory() *Memory {
	return &Memory{}
}

// Add registers body as suite::name, recording the caller's source location.
func (m *Memory) Add(suite, name string, body Body) {
	file, line := caller(1)
	m.AddAt(domain.TestRecord{Suite: suite, Name: name, File: file, Line: line}, body)
}

// AddAt registers body under an explicit record.
func (m *Memory) AddAt(rec domain.TestRecord, body Body) {
	m.entries = append(m.entries, entry{record: rec, body: body})
}

// Suite returns a helper that registers tests under one suite name.
func (m *Memory) Suite(name string) *Suite {
	return &Suite{name: name, registry: m}
}

// Len returns the number of registered tests.
func (m *Memory) Len() int {
	return len(m.entries)
}

// Tests implements Registry.
func (m *Memory) Tests() ([]domain.TestRecord, error) {
	records := make([]domain.TestRecord, len(m.entries))
	for i, e := range m.entries {
		records[i] = e.record
	}
	return records, nil
}

// Invoke implements Registry. Panics raised by the body are contained here
// and turned into a fault Result.
func (m *Memory) Invoke(ctx context.Context, rec domain.TestRecord) (res domain.Result) {
	var body Body
	for _, e := range m.entries {
		if e.record == rec {
			body = e.body
			break
		}
	}
	if body == nil {
		return domain.Fault(fmt.Sprintf("test %s is not registered", rec.QualifiedName()))
	}

	t := &T{ctx: ctx, record: rec}
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(stopTest); ok {
			res = domain.Fail(t.failures...)
			return
		}
		res = domain.Fault(fmt.Sprintf("unhandled panic in %s: %v", rec.QualifiedName(), r))
	}()

	body(t)
	if t.Failed() {
		return domain.Fail(t.failures...)
	}
	return domain.Pass()
}

// Suite registers tests under a fixed suite name.
type Suite struct {
	name     string
	registry *Memory
}

// Add registers body as <suite>::name.
func (s *Suite) Add(name string, body Body) *Suite {
	file, line := caller(1)
	s.registry.AddAt(domain.TestRecord{Suite: s.name, Name: name, File: file, Line: line}, body)
	return s
}

// stopTest unwinds a body after Fatalf.
type stopTest struct{}

// T is handed to every test body to record failures.
type T struct {
	ctx      context.Context
	record   domain.TestRecord
	failures []string
}

// Context returns the context of the run.
func (t *T) Context() context.Context {
	return t.ctx
}

// Name returns the qualified name of the running test.
func (t *T) Name() string {
	return t.record.QualifiedName()
}

// Failed reports whether a failure has been recorded.
func (t *T) Failed() bool {
	return len(t.failures) > 0
}

// Errorf records a failure and lets the body continue.
func (t *T) Errorf(format string, args ...any) {
	file, line := caller(1)
	t.fail(file, line, fmt.Sprintf(format, args...))
}

// Fatalf records a failure and stops the body.
func (t *T) Fatalf(format string, args ...any) {
	file, line := caller(1)
	t.fail(file, line, fmt.Sprintf(format, args...))
	panic(stopTest{})
}

// Equal records a failure unless want and got are equal.
func (t *T) Equal(want, got any) bool {
	if cmp.Equal(want, got) {
		return true
	}
	msg := fmt.Sprintf("Expected %v but was %v", want, got)
	if diff := cmp.Diff(want, got); strings.Count(diff, "\n") > 3 {
		msg += "\n" + diff
	}
	file, line := caller(1)
	t.fail(file, line, msg)
	return false
}

// Check records a failure when cond is false.
func (t *T) Check(cond bool, msg string) bool {
	if !cond {
		file, line := caller(1)
		t.fail(file, line, msg)
	}
	return cond
}

func (t *T) fail(file string, line int, msg string) {
	t.failures = append(t.failures, fmt.Sprintf("%s(%d) : %s", filepath.Base(file), line, msg))
}

// caller returns the location skip frames above its caller.
func caller(skip int) (string, int) {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown", 0
	}
	return file, line
}
