package batch

import "fmt"

// Unit is an opaque work item identifier in the range [0, total).
type Unit int

// Batch is a contiguous, ordered group of units processed by a single task.
type Batch struct {
	// Index is the 0-based position of the batch in partition order.
	Index int

	// Units are the unit identifiers owned exclusively by this batch.
	Units []Unit
}

// Len returns the number of units in the batch.
func (b Batch) Len() int {
	return len(b.Units)
}

// Partition splits [0, total) into contiguous batches of batchSize units.
// The final batch is truncated when total is not a multiple of batchSize.
// A total of zero yields no batches.
func Partition(total, batchSize int) ([]Batch, error) {
	if batchSize < MinBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}
	if total < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTotal, total)
	}

	bounds := calculateBatches(total, batchSize)
	batches := make([]Batch, len(bounds))
	for i, bound := range bounds {
		units := make([]Unit, bound[1]-bound[0])
		for j := range units {
			units[j] = Unit(bound[0] + j)
		}
		batches[i] = Batch{Index: i, Units: units}
	}

	return batches, nil
}

// calculateBatches returns the [start, end) boundaries of each batch.
func calculateBatches(total, batchSize int) [][2]int {
	boundaries := make([][2]int, batchCount(total, batchSize))
	for i := range boundaries {
		start := i * batchSize
		boundaries[i] = [2]int{start, min(start+batchSize, total)}
	}
	return boundaries
}

// Waves groups batches into consecutive waves of at most concurrency batches.
// The returned slices share the backing array of batches.
func Waves(batches []Batch, concurrency int) [][]Batch {
	if concurrency < 1 {
		concurrency = 1
	}

	waves := make([][]Batch, 0, batchCount(len(batches), concurrency))
	for start := 0; start < len(batches); start += concurrency {
		end := min(start+concurrency, len(batches))
		waves = append(waves, batches[start:end])
	}

	return waves
}

// batchCount returns the number of groups of size n needed to hold total items.
func batchCount(total, n int) int {
	count := total / n
	if total%n > 0 {
		count++
	}
	return count
}
