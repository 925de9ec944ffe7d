package embedding

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

// BatcherOptions tunes how a text set is split and submitted.
type BatcherOptions struct {
	BatchSize   int
	Concurrency int
	MaxRetries  int
	BaseBackoff time.Duration
}

func (o BatcherOptions) normalized() BatcherOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = 32
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = 500 * time.Millisecond
	}
	return o
}

// BatchReport is the outcome of embedding a text set. Vectors is indexed by
// input position; entries for failed batches stay nil and their positions are
// listed in FailedIndexes. A batch failure never discards sibling batches.
type BatchReport struct {
	Vectors       [][]float32
	TotalTokens   int
	FailedIndexes []int
	FirstErr      error
}

// Batcher splits texts into bounded batches and embeds them on a worker pool.
type Batcher struct {
	provider Provider
	opts     BatcherOptions
}

func NewBatcher(provider Provider, opts BatcherOptions) *Batcher {
	return &Batcher{provider: provider, opts: opts.normalized()}
}

// EmbedAll embeds every text, retrying failed batches with exponential
// backoff before giving up on that batch alone.
func (b *Batcher) EmbedAll(ctx context.Context, texts []string) (*BatchReport, error) {
	report := &BatchReport{Vectors: make([][]float32, len(texts))}
	if len(texts) == 0 {
		return report, nil
	}

	pool, err := ants.NewPool(b.opts.Concurrency)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for start := 0; start < len(texts); start += b.opts.BatchSize {
		end := start + b.opts.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		start, end := start, end

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			result, batchErr := b.embedWithRetry(ctx, texts[start:end])

			mu.Lock()
			defer mu.Unlock()
			if batchErr != nil {
				for i := start; i < end; i++ {
					report.FailedIndexes = append(report.FailedIndexes, i)
				}
				if report.FirstErr == nil {
					report.FirstErr = batchErr
				}
				return
			}
			copy(report.Vectors[start:end], result.Vectors)
			report.TotalTokens += result.TotalTokens
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			for i := start; i < end; i++ {
				report.FailedIndexes = append(report.FailedIndexes, i)
			}
			if report.FirstErr == nil {
				report.FirstErr = submitErr
			}
			mu.Unlock()
		}
	}

	wg.Wait()
	return report, nil
}

func (b *Batcher) embedWithRetry(ctx context.Context, batch []string) (*BatchResult, error) {
	var lastErr error
	for attempt := 0; attempt <= b.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := b.opts.BaseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		result, err := b.provider.EmbedBatch(ctx, batch)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}
