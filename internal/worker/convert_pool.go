package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"scholarag/internal/domain"
)

// HardWorkerCap bounds concurrent conversions regardless of the requested
// worker count. Conversion backends load large models per request and fall
// over under unbounded fan-out.
const HardWorkerCap = 4

// Result is the outcome of processing one source file. Exactly one Result is
// emitted per submitted path, success or failure.
type Result struct {
	SourcePath string
	DocumentID string
	Title      string
	OutputPath string
	Elapsed    time.Duration
	Err        error
}

// ProcessFunc handles a single source file. It is called from a pool
// goroutine and must be safe for concurrent use.
type ProcessFunc func(ctx context.Context, sourcePath string) Result

// ConvertPool runs batch document processing with bounded concurrency.
// Results are delivered in completion order, not submission order.
type ConvertPool struct {
	maxWorkers int64
	logger     *slog.Logger
}

func NewConvertPool(maxWorkers int, logger *slog.Logger) *ConvertPool {
	if maxWorkers <= 0 || maxWorkers > HardWorkerCap {
		maxWorkers = HardWorkerCap
	}
	return &ConvertPool{maxWorkers: int64(maxWorkers), logger: logger}
}

// Run submits every source path to the pool and returns the result stream.
// The channel is closed once all paths have been processed. Cancelling ctx
// stops admission of new work and unblocks every worker even when the
// consumer stops reading; results in flight at cancellation may be dropped,
// but the stream always terminates and no goroutine outlives it.
func (p *ConvertPool) Run(ctx context.Context, sourcePaths []string, process ProcessFunc) <-chan Result {
	results := make(chan Result)
	sem := semaphore.NewWeighted(p.maxWorkers)

	p.logger.Info("batch_convert_started",
		slog.Int("file_count", len(sourcePaths)),
		slog.Int64("max_workers", p.maxWorkers))

	emit := func(result Result) {
		// A consumer that abandoned the stream would otherwise pin this
		// goroutine and its semaphore slot forever.
		select {
		case results <- result:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(results)
		var wg sync.WaitGroup
		for _, sourcePath := range sourcePaths {
			if err := sem.Acquire(ctx, 1); err != nil {
				emit(Result{SourcePath: sourcePath, Err: err})
				continue
			}
			wg.Add(1)
			go func(sourcePath string) {
				defer wg.Done()
				defer sem.Release(1)
				started := time.Now()
				result := process(ctx, sourcePath)
				result.Elapsed = time.Since(started)
				if result.Err != nil {
					p.logger.Warn("batch_convert_item_failed",
						slog.String("source_path", sourcePath),
						slog.String("error", result.Err.Error()))
				}
				emit(result)
			}(sourcePath)
		}
		wg.Wait()
	}()

	return results
}

// BatchError summarizes a fully consumed result stream. It returns nil when
// every item succeeded and a PartialBatchError otherwise.
func BatchError(results []Result) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return &domain.PartialBatchError{Failed: failed, Succeeded: len(results) - failed}
}
