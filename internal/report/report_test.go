package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/txbench/internal/engine/batch"
)

func TestComputeTPS(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		elapsed time.Duration
		want    float64
	}{
		{name: "one second", total: 1000, elapsed: time.Second, want: 1000},
		{name: "half second", total: 1000, elapsed: 500 * time.Millisecond, want: 2000},
		{name: "zero elapsed", total: 1000, elapsed: 0, want: 0},
		{name: "negative elapsed", total: 1000, elapsed: -time.Second, want: 0},
		{name: "zero total", total: 0, elapsed: time.Second, want: 0},
		{name: "zero total and elapsed", total: 0, elapsed: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTPS(tt.total, tt.elapsed)
			assert.False(t, math.IsInf(got, 0) || math.IsNaN(got))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 2350 * time.Millisecond, want: "2.35s"},
		{in: 812400 * time.Microsecond, want: "812.40ms"},
		{in: 35 * time.Microsecond, want: "35.00µs"},
		{in: 500 * time.Nanosecond, want: "500.00ns"},
		{in: 0, want: "0.00ns"},
		{in: -time.Second, want: "0.00ns"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.in))
		})
	}
}

func runResult(t *testing.T, total, batchSize, concurrency int) *batch.Result {
	t.Helper()
	s, err := batch.NewScheduler(batchSize, concurrency)
	require.NoError(t, err)
	res, err := s.Run(t.Context(), total, func(_ context.Context, _ batch.Batch) error { return nil })
	require.NoError(t, err)
	return res
}

func TestNewSummary(t *testing.T) {
	t.Run("TenUnits", func(t *testing.T) {
		res := runResult(t, 10, 5, 1)
		s := NewSummary("run-1", res, 0, false)

		assert.Equal(t, 10, s.Total)
		assert.Equal(t, 2, s.Batches)
		assert.Equal(t, 2, s.Waves)
		assert.True(t, strings.HasPrefix(s.Line(), "Processed 10 transactions in "), s.Line())
		assert.Contains(t, s.Line(), " -> TPS: ")
	})

	t.Run("EmptyRun", func(t *testing.T) {
		res := runResult(t, 0, 5, 1)
		s := NewSummary("", res, 0, false)

		assert.Zero(t, s.Batches)
		assert.Zero(t, s.TPS)
		assert.True(t, strings.HasPrefix(s.Line(), "Processed 0 transactions in "), s.Line())
		assert.True(t, strings.HasSuffix(s.Line(), "-> TPS: 0.00"), s.Line())
	})

	t.Run("NilResult", func(t *testing.T) {
		s := NewSummary("", nil, 0, false)
		assert.Equal(t, "Processed 0 transactions in 0.00ns -> TPS: 0.00", s.Line())
	})

	t.Run("FixedLine", func(t *testing.T) {
		res := &batch.Result{Total: 100_000, Processed: 100_000, Elapsed: 2 * time.Second}
		s := NewSummary("", res, 97, false)
		assert.Equal(t, "Processed 100000 transactions in 2.00s -> TPS: 50000.00", s.Line())
		assert.Equal(t, int64(97), s.FailedUnits)
	})

	t.Run("Interrupted", func(t *testing.T) {
		res := &batch.Result{Total: 100, Processed: 40, Elapsed: time.Second}
		s := NewSummary("", res, 0, true)
		assert.Equal(t, "Processed 40 transactions in 1.00s -> TPS: 40.00", s.Line())
	})

	t.Run("CancelledDuringFinalWave", func(t *testing.T) {
		sched, err := batch.NewScheduler(5, 2)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		res, runErr := sched.Run(ctx, 10, func(ctx context.Context, b batch.Batch) error {
			if b.Index == 0 {
				cancel()
			}
			<-ctx.Done()
			return ctx.Err()
		})
		interrupted := errors.Is(runErr, context.Canceled)
		require.True(t, interrupted)

		s := NewSummary("", res, 0, interrupted)
		assert.True(t, s.Interrupted)
		assert.Equal(t, 0, s.Count())
		assert.Equal(t, 2, s.FailedBatches)
		assert.True(t, strings.HasPrefix(s.Line(), "Processed 0 transactions in "), s.Line())
		assert.True(t, strings.HasSuffix(s.Line(), "-> TPS: 0.00"), s.Line())
	})
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressPrinter(&buf, 10_000)

	for _, n := range []int{5_000, 10_000, 15_000, 35_000, 35_000, 100_000} {
		p.Observe(batch.ProgressSnapshot{ProcessedItems: n})
	}

	assert.Equal(t,
		"Progress: 10000 transactions processed...\n"+
			"Progress: 35000 transactions processed...\n"+
			"Progress: 100000 transactions processed...\n",
		buf.String())

	t.Run("DefaultInterval", func(t *testing.T) {
		var out bytes.Buffer
		d := NewProgressPrinter(&out, 0)
		d.Observe(batch.ProgressSnapshot{ProcessedItems: 9_999})
		assert.Empty(t, out.String())
		d.Observe(batch.ProgressSnapshot{ProcessedItems: DefaultProgressInterval})
		assert.NotEmpty(t, out.String())
	})
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "text": FormatText, "JSON": FormatJSON, " table ": FormatTable} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestWriteSummary(t *testing.T) {
	s := Summary{
		RunID:          "01HZX",
		Total:          100_000,
		Processed:      100_000,
		Batches:        100,
		Waves:          2,
		PeakInFlight:   50,
		FailedUnits:    98,
		Elapsed:        2 * time.Second,
		ElapsedSeconds: 2,
		TPS:            50_000,
	}

	t.Run("Text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSummary(&buf, s, FormatText))
		assert.Equal(t, "Processed 100000 transactions in 2.00s -> TPS: 50000.00\n", buf.String())
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSummary(&buf, s, FormatJSON))

		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.InDelta(t, 100_000, got["total"], 0)
		assert.InDelta(t, 50_000, got["tps"], 0)
		assert.InDelta(t, 98, got["failed_units"], 0)
		assert.Equal(t, "01HZX", got["run_id"])
		assert.NotContains(t, got, "interrupted")
	})

	t.Run("Table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSummary(&buf, s, FormatTable))
		out := buf.String()
		assert.True(t, strings.HasPrefix(out, s.Line()+"\n"))
		assert.Contains(t, out, "Benchmark summary")
		assert.Contains(t, out, "100,000")
		assert.Contains(t, out, "50,000.00 tx/s")
	})

	t.Run("Unknown", func(t *testing.T) {
		assert.ErrorIs(t, WriteSummary(&bytes.Buffer{}, s, Format("xml")), ErrUnknownFormat)
	})
}
