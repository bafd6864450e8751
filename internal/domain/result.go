package domain

import (
	"strings"
	"time"
)

// Status is the terminal state of one executed test.
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed" // assertion failure
	StatusError  Status = "error"  // unexpected fault inside the test body
)

// Result is what a registry reports back after invoking a test body.
type Result struct {
	Status Status
	Detail string
}

// Pass returns a passing Result.
func Pass() Result {
	return Result{Status: StatusPassed}
}

// Fail returns an assertion failure with the given detail lines.
func Fail(details ...string) Result {
	return Result{Status: StatusFailed, Detail: strings.Join(details, "\n")}
}

// Fault returns an unexpected-fault Result.
func Fault(detail string) Result {
	return Result{Status: StatusError, Detail: detail}
}

// Outcome is the recorded result of executing one test
type Outcome struct {
	Name     string // Qualified name
	Suite    string
	Test     string
	File     string
	Line     int
	Status   Status
	Detail   string // Failure detail, empty for passes
	Duration time.Duration
}

// Passed reports whether the outcome counts as a pass.
func (o Outcome) Passed() bool {
	return o.Status == StatusPassed
}

// NewOutcome builds the outcome of running rec.
func NewOutcome(rec TestRecord, res Result, d time.Duration) Outcome {
	status := res.Status
	if status == "" {
		// A registry that returns a zero Result did not report on the body.
		status = StatusError
		if res.Detail == "" {
			res.Detail = "registry returned no result"
		}
	}
	detail := res.Detail
	if status == StatusPassed {
		detail = ""
	}
	return Outcome{
		Name:     rec.QualifiedName(),
		Suite:    rec.Suite,
		Test:     rec.Name,
		File:     rec.File,
		Line:     rec.Line,
		Status:   status,
		Detail:   detail,
		Duration: d,
	}
}

// RunReport is the ordered set of outcomes of one invocation plus aggregate counts.
type RunReport struct {
	ID       string
	Started  time.Time
	Duration time.Duration
	Outcomes []Outcome
	Total    int
	Passed   int
	Failed   int
	// Partial is set when the run ended before every selected test executed.
	Partial bool
}

// Append records an outcome and keeps the counts in step with the sequence.
func (r *RunReport) Append(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.Finalize()
}

// Finalize recomputes the aggregate counts from the outcome sequence.
func (r *RunReport) Finalize() {
	r.Total = len(r.Outcomes)
	r.Passed = 0
	r.Failed = 0
	for _, o := range r.Outcomes {
		if o.Passed() {
			r.Passed++
		} else {
			r.Failed++
		}
	}
}

// Failures returns the non-passing outcomes in run order.
func (r *RunReport) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.Passed() {
			failed = append(failed, o)
		}
	}
	return failed
}
