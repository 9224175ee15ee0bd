package txn

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/txbench/internal/engine/batch"
)

// Default workload profile.
const (
	DefaultMinDelay    = 30
	DefaultMaxDelay    = 120
	DefaultTick        = time.Microsecond
	DefaultFailureRate = 0.001
)

// Profile describes the simulated cost of one transaction.
type Profile struct {
	// MinDelay and MaxDelay bound the uniform delay, inclusive, in ticks.
	MinDelay int
	MaxDelay int

	// Tick is the duration of one delay unit.
	Tick time.Duration

	// FailureRate is the independent probability that a unit fails.
	FailureRate float64
}

// DefaultProfile returns 30-120µs delays with a 0.1% failure rate.
func DefaultProfile() Profile {
	return Profile{
		MinDelay:    DefaultMinDelay,
		MaxDelay:    DefaultMaxDelay,
		Tick:        DefaultTick,
		FailureRate: DefaultFailureRate,
	}
}

// Validate checks the profile bounds.
func (p Profile) Validate() error {
	if p.MinDelay < 0 || p.MaxDelay < p.MinDelay {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidDelay, p.MinDelay, p.MaxDelay)
	}
	if p.Tick <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidTick, p.Tick)
	}
	if p.FailureRate < 0 || p.FailureRate > 1 {
		return fmt.Errorf("%w: got %g", ErrInvalidFailureRate, p.FailureRate)
	}
	return nil
}

// Delay draws a delay uniformly from [MinDelay, MaxDelay] ticks.
func (p Profile) Delay(src Source) time.Duration {
	span := p.MaxDelay - p.MinDelay + 1
	return time.Duration(p.MinDelay+src.IntN(span)) * p.Tick
}

// Fails draws whether a unit fails.
func (p Profile) Fails(src Source) bool {
	return src.Float64() < p.FailureRate
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithClock replaces the real sleeping clock.
func WithClock(c Clock) Option {
	return func(s *Simulator) { s.clock = c }
}

// WithSourceFactory replaces the per-batch randomness factory.
func WithSourceFactory(f SourceFactory) Option {
	return func(s *Simulator) { s.sources = f }
}

// WithNotifier sets where failure notices are sent.
func WithNotifier(n Notifier) Option {
	return func(s *Simulator) { s.notifier = n }
}

// WithLogger sets the simulator logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

// Simulator is the per-unit transaction handler. It is safe for concurrent
// use by multiple batch tasks; each task draws from its own Source.
type Simulator struct {
	profile  Profile
	clock    Clock
	sources  SourceFactory
	notifier Notifier
	logger   zerolog.Logger

	units    atomic.Int64
	failures atomic.Int64
}

// NewSimulator creates a simulator for the given profile.
// Without options it sleeps for real, uses unseeded sources, and drops failure notices.
func NewSimulator(profile Profile, opts ...Option) (*Simulator, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		profile:  profile,
		clock:    RealClock{},
		sources:  NewSourceFactory(nil),
		notifier: discardNotifier{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// ProcessBatch handles every unit of b in index order with a fresh Source.
// It has the batch.BatchFunc signature. Simulated failures never produce an error;
// only a cancelled context stops the batch early.
func (s *Simulator) ProcessBatch(ctx context.Context, b batch.Batch) error {
	src := s.sources(b.Index)
	for _, id := range b.Units {
		if err := s.ProcessUnit(ctx, src, id); err != nil {
			return err
		}
	}
	return nil
}

// ProcessUnit sleeps for a random delay, then possibly reports a simulated failure.
func (s *Simulator) ProcessUnit(ctx context.Context, src Source, id batch.Unit) error {
	if err := s.clock.Sleep(ctx, s.profile.Delay(src)); err != nil {
		return fmt.Errorf("transaction %d interrupted: %w", id, err)
	}
	s.units.Add(1)

	if s.profile.Fails(src) {
		s.failures.Add(1)
		s.notifier.TransactionFailed(id)
		s.logger.Debug().Int("transaction", int(id)).Msg("simulated transaction failure")
	}

	return nil
}

// Units returns the number of units handled so far.
func (s *Simulator) Units() int64 {
	return s.units.Load()
}

// Failures returns the number of simulated failures so far.
func (s *Simulator) Failures() int64 {
	return s.failures.Load()
}
