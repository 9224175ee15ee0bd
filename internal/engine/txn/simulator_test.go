package txn

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/txbench/internal/engine/batch"
)

// recordingClock records requested delays without sleeping.
type recordingClock struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (c *recordingClock) Sleep(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	c.delays = append(c.delays, d)
	c.mu.Unlock()
	return nil
}

// noopClock returns immediately.
type noopClock struct{}

func (noopClock) Sleep(context.Context, time.Duration) error { return nil }

// recordingNotifier collects failed ids.
type recordingNotifier struct {
	mu  sync.Mutex
	ids []batch.Unit
}

func (n *recordingNotifier) TransactionFailed(id batch.Unit) {
	n.mu.Lock()
	n.ids = append(n.ids, id)
	n.mu.Unlock()
}

func seeded(seed uint64) SourceFactory {
	return NewSourceFactory(&seed)
}

func unitBatch(index, start, n int) batch.Batch {
	units := make([]batch.Unit, n)
	for i := range units {
		units[i] = batch.Unit(start + i)
	}
	return batch.Batch{Index: index, Units: units}
}

func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Profile)
		wantErr error
	}{
		{name: "default", mutate: func(*Profile) {}},
		{name: "fixed delay", mutate: func(p *Profile) { p.MinDelay, p.MaxDelay = 50, 50 }},
		{name: "zero delay", mutate: func(p *Profile) { p.MinDelay, p.MaxDelay = 0, 0 }},
		{name: "min above max", mutate: func(p *Profile) { p.MinDelay = 200 }, wantErr: ErrInvalidDelay},
		{name: "negative min", mutate: func(p *Profile) { p.MinDelay = -1 }, wantErr: ErrInvalidDelay},
		{name: "zero tick", mutate: func(p *Profile) { p.Tick = 0 }, wantErr: ErrInvalidTick},
		{name: "rate above one", mutate: func(p *Profile) { p.FailureRate = 1.5 }, wantErr: ErrInvalidFailureRate},
		{name: "negative rate", mutate: func(p *Profile) { p.FailureRate = -0.1 }, wantErr: ErrInvalidFailureRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultProfile()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewSimulator_InvalidProfile(t *testing.T) {
	p := DefaultProfile()
	p.FailureRate = 2
	_, err := NewSimulator(p)
	require.ErrorIs(t, err, ErrInvalidFailureRate)
}

func TestSimulator_DelaysWithinRange(t *testing.T) {
	clock := &recordingClock{}
	sim, err := NewSimulator(DefaultProfile(), WithClock(clock), WithSourceFactory(seeded(7)))
	require.NoError(t, err)

	require.NoError(t, sim.ProcessBatch(context.Background(), unitBatch(0, 0, 100_000)))
	require.Len(t, clock.delays, 100_000)

	lo, hi := 30*time.Microsecond, 120*time.Microsecond
	sawLo, sawHi := false, false
	for _, d := range clock.delays {
		require.GreaterOrEqual(t, d, lo)
		require.LessOrEqual(t, d, hi)
		sawLo = sawLo || d == lo
		sawHi = sawHi || d == hi
	}
	assert.True(t, sawLo, "lower bound is inclusive")
	assert.True(t, sawHi, "upper bound is inclusive")
}

func TestSimulator_FailureRate(t *testing.T) {
	notifier := &recordingNotifier{}
	sim, err := NewSimulator(DefaultProfile(),
		WithClock(noopClock{}),
		WithSourceFactory(seeded(42)),
		WithNotifier(notifier),
	)
	require.NoError(t, err)

	const units = 1_000_000
	const perBatch = 1000
	for i := range units / perBatch {
		require.NoError(t, sim.ProcessBatch(context.Background(), unitBatch(i, i*perBatch, perBatch)))
	}

	// Expected 1000 failures, standard deviation about 31.6.
	assert.Equal(t, int64(units), sim.Units())
	assert.InDelta(t, 1000, sim.Failures(), 150)
	assert.Len(t, notifier.ids, int(sim.Failures()))
}

func TestSimulator_UnitsInOrder(t *testing.T) {
	p := DefaultProfile()
	p.FailureRate = 1
	notifier := &recordingNotifier{}
	sim, err := NewSimulator(p, WithClock(noopClock{}), WithNotifier(notifier))
	require.NoError(t, err)

	require.NoError(t, sim.ProcessBatch(context.Background(), unitBatch(3, 30, 10)))
	assert.Equal(t, []batch.Unit{30, 31, 32, 33, 34, 35, 36, 37, 38, 39}, notifier.ids)
	assert.Equal(t, int64(10), sim.Failures())
}

func TestSimulator_FailureNeverErrors(t *testing.T) {
	p := DefaultProfile()
	p.FailureRate = 1
	sim, err := NewSimulator(p, WithClock(noopClock{}))
	require.NoError(t, err)

	assert.NoError(t, sim.ProcessBatch(context.Background(), unitBatch(0, 0, 5)))
}

func TestSimulator_Cancelled(t *testing.T) {
	sim, err := NewSimulator(DefaultProfile())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = sim.ProcessBatch(ctx, unitBatch(0, 0, 3))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, sim.Units())
}

func TestSimulator_WithScheduler(t *testing.T) {
	var out bytes.Buffer
	p := DefaultProfile()
	p.FailureRate = 0.5
	sim, err := NewSimulator(p,
		WithClock(noopClock{}),
		WithSourceFactory(seeded(1)),
		WithNotifier(NewWriterNotifier(&out)),
	)
	require.NoError(t, err)

	s, err := batch.NewScheduler(10, 4)
	require.NoError(t, err)

	res, err := s.Run(context.Background(), 200, sim.ProcessBatch)
	require.NoError(t, err)
	assert.Equal(t, 200, res.Processed)
	assert.Equal(t, int64(200), sim.Units())
	assert.Equal(t, int(sim.Failures()), bytes.Count(out.Bytes(), []byte("failed to process.\n")))
}

func TestNewSourceFactory(t *testing.T) {
	t.Run("SeededIsReproducible", func(t *testing.T) {
		a, b := seeded(99)(3), seeded(99)(3)
		for range 100 {
			require.Equal(t, a.IntN(1000), b.IntN(1000))
		}
	})

	t.Run("BatchesAreIndependent", func(t *testing.T) {
		f := seeded(99)
		a, b := f(0), f(1)
		same := true
		for range 20 {
			if a.IntN(1<<30) != b.IntN(1<<30) {
				same = false
			}
		}
		assert.False(t, same)
	})

	t.Run("Unseeded", func(t *testing.T) {
		src := NewSourceFactory(nil)(0)
		v := src.Float64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	})
}

func TestWriterNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewWriterNotifier(&buf)
	n.TransactionFailed(42)
	n.TransactionFailed(7)
	assert.Equal(t, "Transaction 42 failed to process.\nTransaction 7 failed to process.\n", buf.String())
}

func TestRealClock(t *testing.T) {
	c := RealClock{}

	start := time.Now()
	require.NoError(t, c.Sleep(context.Background(), 2*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 2*time.Millisecond)

	require.NoError(t, c.Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Sleep(ctx, time.Hour), context.Canceled)
}
