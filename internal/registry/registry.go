// Package registry defines the test registry the adapter runs against and
// provides two implementations: an in-process Memory registry and a Process
// registry that drives an external adapter binary.
package registry

import (
	"context"

	"tadapt/internal/domain"
)

// Registry is the collection of declared tests.
type Registry interface {
	// Tests enumerates every record in registration order. An error means
	// the registry itself is unavailable.
	Tests() ([]domain.TestRecord, error)
	// Invoke executes the body of rec. Faults inside the body are reported
	// through the Result, never as panics.
	Invoke(ctx context.Context, rec domain.TestRecord) domain.Result
}
