package batch

import (
	"sync"
	"time"
)

// percentMultiplier is used to convert a ratio to percentage (0-100).
const percentMultiplier = 100

// Progress tracks units and batches that have actually completed.
// It provides thread-safe access to progress metrics for console and TUI updates.
type Progress struct {
	// TotalItems is the total number of units to process.
	TotalItems int

	// ProcessedItems is the number of units in batches that completed successfully.
	ProcessedItems int

	// TotalBatches is the total number of batches.
	TotalBatches int

	// ProcessedBatches is the number of batches that finished, successfully or not.
	ProcessedBatches int

	// FailedBatches is the number of batches that returned an error or panicked.
	FailedBatches int

	// BatchSize is the configured batch size.
	BatchSize int

	// StartTime is when processing started.
	StartTime time.Time

	// LastUpdateTime is when progress was last updated.
	LastUpdateTime time.Time

	// mu protects concurrent access to progress fields.
	mu sync.RWMutex
}

// NewProgress creates a new progress tracker.
func NewProgress(totalItems, totalBatches, batchSize int) *Progress {
	now := time.Now()
	return &Progress{
		TotalItems:     totalItems,
		TotalBatches:   totalBatches,
		BatchSize:      batchSize,
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// AddProcessed records a successfully completed batch of itemsProcessed units.
// This method is thread-safe.
func (p *Progress) AddProcessed(itemsProcessed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ProcessedItems += itemsProcessed
	p.ProcessedBatches++
	p.LastUpdateTime = time.Now()
}

// AddFailed records a batch that finished with an error.
// Its units are not counted as processed.
func (p *Progress) AddFailed() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ProcessedBatches++
	p.FailedBatches++
	p.LastUpdateTime = time.Now()
}

// Snapshot returns a thread-safe copy of the current progress state.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return ProgressSnapshot{
		TotalItems:       p.TotalItems,
		ProcessedItems:   p.ProcessedItems,
		TotalBatches:     p.TotalBatches,
		ProcessedBatches: p.ProcessedBatches,
		FailedBatches:    p.FailedBatches,
		BatchSize:        p.BatchSize,
		StartTime:        p.StartTime,
		LastUpdateTime:   p.LastUpdateTime,
		PercentComplete:  p.percentCompleteUnsafe(),
		ElapsedTime:      time.Since(p.StartTime),
		ItemsPerSecond:   p.itemsPerSecondUnsafe(),
		Remaining:        p.estimatedTimeRemainingUnsafe(),
	}
}

// ProgressSnapshot is an immutable snapshot of progress state.
type ProgressSnapshot struct {
	TotalItems       int
	ProcessedItems   int
	TotalBatches     int
	ProcessedBatches int
	FailedBatches    int
	BatchSize        int
	StartTime        time.Time
	LastUpdateTime   time.Time
	PercentComplete  float64
	ElapsedTime      time.Duration
	ItemsPerSecond   float64

	// Remaining extrapolates the time left from the average time per unit so far.
	// It is 0 until the first unit completes.
	Remaining time.Duration
}

// Fraction returns completed batches over total batches in [0, 1].
// An empty run is reported as complete.
func (s ProgressSnapshot) Fraction() float64 {
	if s.TotalBatches == 0 {
		return 1
	}
	return float64(s.ProcessedBatches) / float64(s.TotalBatches)
}

// percentCompleteUnsafe calculates percent complete without locking.
// Should only be called when already holding the lock.
func (p *Progress) percentCompleteUnsafe() float64 {
	if p.TotalItems == 0 {
		return 0
	}
	return (float64(p.ProcessedItems) / float64(p.TotalItems)) * percentMultiplier
}

// itemsPerSecondUnsafe calculates items per second without locking.
// Should only be called when already holding the lock.
func (p *Progress) itemsPerSecondUnsafe() float64 {
	elapsed := time.Since(p.StartTime).Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(p.ProcessedItems) / elapsed
}

// estimatedTimeRemainingUnsafe extrapolates the remaining time without locking.
// Should only be called when already holding the lock.
func (p *Progress) estimatedTimeRemainingUnsafe() time.Duration {
	if p.ProcessedItems == 0 {
		return 0
	}

	elapsed := time.Since(p.StartTime)
	avgTimePerItem := elapsed / time.Duration(p.ProcessedItems)
	remainingItems := p.TotalItems - p.ProcessedItems

	return avgTimePerItem * time.Duration(remainingItems)
}
