// Package txn simulates processing of abstract transactions.
//
// Each unit sleeps for a uniformly distributed delay and fails with a small
// independent probability. A failure is only reported through a Notifier; it
// never aborts the batch or affects throughput accounting. Randomness and
// time are injected through the Source and Clock capabilities so tests can
// run the simulator deterministically and without sleeping.
package txn
