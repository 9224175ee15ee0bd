package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Default scheduling configuration.
const (
	// DefaultBatchSize is the default number of units per batch.
	DefaultBatchSize = 1000

	// DefaultConcurrency is the default number of batches per wave.
	DefaultConcurrency = 50

	// MinBatchSize is the minimum allowed batch size.
	MinBatchSize = 1

	// MinConcurrency is the minimum allowed wave size.
	MinConcurrency = 1
)

// Common scheduling errors.
var (
	ErrInvalidBatchSize   = errors.New("batch size must be at least 1")
	ErrInvalidConcurrency = errors.New("concurrency must be at least 1")
	ErrInvalidTotal       = errors.New("total unit count cannot be negative")
	ErrNilBatchFunc       = errors.New("batch function cannot be nil")
)

// BatchFunc processes a single batch. Units must be handled in index order.
// A returned error is recorded on the batch result and does not stop the run.
//
//nolint:revive // BatchFunc is the canonical name for this exported type.
type BatchFunc func(ctx context.Context, b Batch) error

// ProgressCallback is invoked by the coordinator after every wave barrier.
type ProgressCallback func(snapshot ProgressSnapshot)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithProgressCallback sets the callback invoked after each completed wave.
func WithProgressCallback(callback ProgressCallback) Option {
	return func(s *Scheduler) {
		s.onProgress = callback
	}
}

// WithLogger sets the logger used for wave-level diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithClock replaces the time source used for batch timestamps and elapsed time.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// Scheduler runs batches in waves of bounded concurrency.
// A Scheduler holds no per-run state and may be reused for several runs.
type Scheduler struct {
	// batchSize is the number of units per batch.
	batchSize int

	// concurrency is the maximum number of batches in flight.
	concurrency int

	onProgress ProgressCallback
	logger     zerolog.Logger
	now        func() time.Time
}

// NewScheduler creates a scheduler with the given batch size and wave size.
func NewScheduler(batchSize, concurrency int, opts ...Option) (*Scheduler, error) {
	if batchSize < MinBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}
	if concurrency < MinConcurrency {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidConcurrency, concurrency)
	}

	s := &Scheduler{
		batchSize:   batchSize,
		concurrency: concurrency,
		logger:      zerolog.Nop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// BatchSize returns the configured batch size.
func (s *Scheduler) BatchSize() int {
	return s.batchSize
}

// Concurrency returns the configured wave size.
func (s *Scheduler) Concurrency() int {
	return s.concurrency
}

// Run partitions [0, total) and processes every batch through fn in waves.
//
// Each wave launches up to Concurrency batches and waits for all of them
// before the next wave is dispatched. Batch errors and panics are captured in
// the result; they never abort the run. If ctx is cancelled at any point, no
// further waves are dispatched and the partial result is returned together
// with ctx.Err().
func (s *Scheduler) Run(ctx context.Context, total int, fn BatchFunc) (*Result, error) {
	if fn == nil {
		return nil, ErrNilBatchFunc
	}

	batches, err := Partition(total, s.batchSize)
	if err != nil {
		return nil, err
	}

	waves := Waves(batches, s.concurrency)
	progress := NewProgress(total, len(batches), s.batchSize)
	gauge := &inFlightGauge{}

	result := &Result{
		Total:   total,
		Batches: make([]BatchResult, 0, len(batches)),
	}

	start := s.now()
	defer func() {
		result.Elapsed = s.now().Sub(start)
		result.PeakInFlight = gauge.Peak()
		result.Processed = progress.Snapshot().ProcessedItems
	}()

	for waveIndex, wave := range waves {
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.logger.Warn().
				Int("wave", waveIndex).
				Int("remaining_waves", len(waves)-waveIndex).
				Msg("run cancelled before wave dispatch")
			return result, ctxErr
		}

		waveResults := s.runWave(ctx, waveIndex, wave, fn, progress, gauge)
		result.Batches = append(result.Batches, waveResults...)
		result.Waves++

		snapshot := progress.Snapshot()
		s.logger.Debug().
			Int("wave", waveIndex).
			Int("batches", len(wave)).
			Int("processed", snapshot.ProcessedItems).
			Int("failed_batches", snapshot.FailedBatches).
			Msg("wave complete")

		if s.onProgress != nil {
			s.onProgress(snapshot)
		}
	}

	// Cancellation during the final wave still cut its batches short.
	if ctxErr := ctx.Err(); ctxErr != nil {
		s.logger.Warn().Int("waves", result.Waves).Msg("run cancelled during final wave")
		return result, ctxErr
	}

	return result, nil
}

// runWave launches every batch of the wave concurrently and blocks until all finish.
func (s *Scheduler) runWave(
	ctx context.Context,
	waveIndex int,
	wave []Batch,
	fn BatchFunc,
	progress *Progress,
	gauge *inFlightGauge,
) []BatchResult {
	results := make([]BatchResult, len(wave))

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, b := range wave {
		g.Go(func() error {
			results[i] = s.runBatch(ctx, waveIndex, b, fn, gauge)
			if results[i].Err != nil {
				progress.AddFailed()
			} else {
				progress.AddProcessed(b.Len())
			}
			// Always nil: one failed batch must not affect its siblings.
			return nil
		})
	}

	_ = g.Wait()

	return results
}

// runBatch executes fn for a single batch, converting a panic into a PanicError.
func (s *Scheduler) runBatch(
	ctx context.Context,
	waveIndex int,
	b Batch,
	fn BatchFunc,
	gauge *inFlightGauge,
) (res BatchResult) {
	gauge.Enter()
	defer gauge.Leave()

	res = BatchResult{
		Index:   b.Index,
		Wave:    waveIndex,
		Units:   b.Len(),
		Started: s.now(),
	}

	defer func() {
		if r := recover(); r != nil {
			res.Err = &PanicError{Batch: b.Index, Value: r, Stack: debug.Stack()}
			s.logger.Error().
				Int("batch", b.Index).
				Interface("panic", r).
				Msg("batch task panicked")
		}
		res.Finished = s.now()
	}()

	if err := fn(ctx, b); err != nil {
		res.Err = fmt.Errorf("batch %d failed: %w", b.Index, err)
	}

	return res
}

// inFlightGauge tracks the number of running batch tasks and its high-water mark.
type inFlightGauge struct {
	current atomic.Int64
	peak    atomic.Int64
}

// Enter records a batch task start.
func (g *inFlightGauge) Enter() {
	n := g.current.Add(1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

// Leave records a batch task exit.
func (g *inFlightGauge) Leave() {
	g.current.Add(-1)
}

// Peak returns the highest number of concurrently running batch tasks observed.
func (g *inFlightGauge) Peak() int {
	return int(g.peak.Load())
}
