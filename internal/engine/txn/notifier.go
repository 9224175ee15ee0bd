package txn

import (
	"fmt"
	"io"
	"sync"

	"github.com/rshade/txbench/internal/engine/batch"
)

// Notifier receives simulated failure notices.
type Notifier interface {
	TransactionFailed(id batch.Unit)
}

// WriterNotifier writes one "Transaction <id> failed to process." line per failure.
// Writes are serialized so lines from concurrent batches never interleave.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier creates a notifier that writes failure lines to w.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// TransactionFailed writes the failure line for id.
func (n *WriterNotifier) TransactionFailed(id batch.Unit) {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, _ = fmt.Fprintf(n.w, "Transaction %d failed to process.\n", id)
}

// discardNotifier drops every notice.
type discardNotifier struct{}

func (discardNotifier) TransactionFailed(batch.Unit) {}
