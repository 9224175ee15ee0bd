package batch

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

// BatchResult is the outcome of one batch task.
//
//nolint:revive // BatchResult reads better than Result at call sites outside the package.
type BatchResult struct {
	// Index is the batch position in partition order.
	Index int

	// Wave is the 0-based wave the batch ran in.
	Wave int

	// Units is the number of units in the batch.
	Units int

	// Started and Finished come from the scheduler clock.
	Started  time.Time
	Finished time.Time

	// Err is nil on success, a wrapped BatchFunc error, or a *PanicError.
	Err error
}

// Duration returns how long the batch task ran.
func (r BatchResult) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// PanicError records a panic recovered from a batch task.
type PanicError struct {
	Batch int
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("batch %d panicked: %v", e.Batch, e.Value)
}

// Result aggregates the outcome of a scheduler run.
type Result struct {
	// Total is the requested unit count.
	Total int

	// Batches holds one result per dispatched batch, grouped by wave.
	Batches []BatchResult

	// Waves is the number of completed wave barriers.
	Waves int

	// Processed counts units of batches that completed without error.
	Processed int

	// PeakInFlight is the highest number of simultaneously running batches.
	PeakInFlight int

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// FailedBatches returns the number of batches that errored or panicked.
func (r *Result) FailedBatches() int {
	failed := 0
	for _, b := range r.Batches {
		if b.Err != nil {
			failed++
		}
	}
	return failed
}

// Err aggregates every batch failure into a single error, or returns nil.
func (r *Result) Err() error {
	errs := new(multierror.Error)
	for _, b := range r.Batches {
		if b.Err != nil {
			errs = multierror.Append(errs, b.Err)
		}
	}
	return errs.ErrorOrNil()
}
