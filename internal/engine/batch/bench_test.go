package batch_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/rshade/txbench/internal/engine/batch"
)

// BenchmarkPartition measures splitting the default run into batches.
func BenchmarkPartition(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		if _, err := batch.Partition(100_000, batch.DefaultBatchSize); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSchedulerRun measures scheduling overhead with a no-op batch function.
func BenchmarkSchedulerRun(b *testing.B) {
	noop := func(_ context.Context, _ batch.Batch) error { return nil }

	for _, concurrency := range []int{1, 10, 50} {
		b.Run(fmt.Sprintf("concurrency=%d", concurrency), func(b *testing.B) {
			sched, err := batch.NewScheduler(100, concurrency)
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			for b.Loop() {
				if _, err := sched.Run(context.Background(), 100_000, noop); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
