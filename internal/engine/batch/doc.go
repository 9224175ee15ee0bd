// Package batch schedules fixed-size batches of work units in bounded waves.
//
// A run partitions the range [0, total) into contiguous batches of a fixed
// size and executes them in waves. Key properties:
//   - Every unit appears in exactly one batch, in order
//   - At most `concurrency` batches are in flight at any instant
//   - A wave is a full barrier: wave N+1 starts only after every batch of
//     wave N has finished
//   - Batch errors and panics are recorded per batch and never stop the run
//   - Progress counts units of batches that actually completed
//
// The scheduler is agnostic of what a batch does. The transaction simulator
// in package txn supplies the BatchFunc used by the benchmark.
package batch
