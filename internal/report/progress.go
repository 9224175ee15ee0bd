package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/rshade/txbench/internal/engine/batch"
)

// DefaultProgressInterval is the unit count between progress lines.
const DefaultProgressInterval = 10_000

// ProgressPrinter writes "Progress: <N> transactions processed..." each time the
// completed unit count crosses a multiple of the interval.
type ProgressPrinter struct {
	mu       sync.Mutex
	w        io.Writer
	interval int
	mark     int
}

// NewProgressPrinter creates a printer. An interval below one falls back to the default.
func NewProgressPrinter(w io.Writer, interval int) *ProgressPrinter {
	if interval < 1 {
		interval = DefaultProgressInterval
	}
	return &ProgressPrinter{w: w, interval: interval}
}

// Observe prints a progress line if the snapshot crossed a new interval mark.
// It has the batch.ProgressCallback signature.
func (p *ProgressPrinter) Observe(snapshot batch.ProgressSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	mark := snapshot.ProcessedItems / p.interval
	if mark <= p.mark {
		return
	}
	p.mark = mark
	_, _ = fmt.Fprintf(p.w, "Progress: %d transactions processed...\n", snapshot.ProcessedItems)
}
