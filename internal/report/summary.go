// Package report renders benchmark progress and the final throughput summary.
package report

import (
	"fmt"
	"time"

	"github.com/rshade/txbench/internal/engine/batch"
)

// Summary is the final outcome of a benchmark run.
type Summary struct {
	RunID          string        `json:"run_id,omitempty"`
	Total          int           `json:"total"`
	Processed      int           `json:"processed"`
	Batches        int           `json:"batches"`
	Waves          int           `json:"waves"`
	PeakInFlight   int           `json:"peak_in_flight"`
	FailedUnits    int64         `json:"failed_units"`
	FailedBatches  int           `json:"failed_batches"`
	Interrupted    bool          `json:"interrupted,omitempty"`
	Elapsed        time.Duration `json:"-"`
	ElapsedSeconds float64       `json:"elapsed_seconds"`
	TPS            float64       `json:"tps"`
}

// NewSummary builds a summary from a scheduler result.
// failedUnits is the count of simulated failures; it never reduces throughput.
// When interrupted is true, throughput is computed over the units that completed.
func NewSummary(runID string, res *batch.Result, failedUnits int64, interrupted bool) Summary {
	s := Summary{
		RunID:       runID,
		FailedUnits: failedUnits,
		Interrupted: interrupted,
	}
	if res == nil {
		return s
	}

	s.Total = res.Total
	s.Processed = res.Processed
	s.Batches = len(res.Batches)
	s.Waves = res.Waves
	s.PeakInFlight = res.PeakInFlight
	s.FailedBatches = res.FailedBatches()
	s.Elapsed = res.Elapsed
	s.ElapsedSeconds = res.Elapsed.Seconds()
	s.TPS = ComputeTPS(s.Count(), res.Elapsed)

	return s
}

// Count is the transaction count reported on the summary line.
func (s Summary) Count() int {
	if s.Interrupted {
		return s.Processed
	}
	return s.Total
}

// Line returns the one-line summary:
// "Processed <total> transactions in <duration> -> TPS: <throughput>".
func (s Summary) Line() string {
	return fmt.Sprintf("Processed %d transactions in %s -> TPS: %.2f",
		s.Count(), FormatDuration(s.Elapsed), s.TPS)
}

// ComputeTPS returns total / elapsed seconds.
// It returns 0 for an empty run or a non-positive elapsed time instead of
// dividing by zero.
func ComputeTPS(total int, elapsed time.Duration) float64 {
	if total <= 0 || elapsed <= 0 {
		return 0
	}
	return float64(total) / elapsed.Seconds()
}

// FormatDuration renders d with two decimals in the largest unit that fits,
// for example 2.35s, 812.40ms, 35.00µs or 0.00ns.
func FormatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
	case d >= time.Microsecond:
		return fmt.Sprintf("%.2fµs", float64(d)/float64(time.Microsecond))
	case d > 0:
		return fmt.Sprintf("%.2fns", float64(d))
	default:
		return "0.00ns"
	}
}
