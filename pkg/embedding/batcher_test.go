package embedding

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProvider embeds each text as a vector encoding its numeric suffix,
// so ordering can be asserted after concurrent batching. Texts containing
// "fail" error out, optionally only for the first N attempts.
type countingProvider struct {
	mu        sync.Mutex
	calls     int
	failUntil int
	dimension int
}

func (p *countingProvider) EmbedBatch(_ context.Context, texts []string) (*BatchResult, error) {
	p.mu.Lock()
	p.calls++
	call := p.calls
	p.mu.Unlock()

	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if strings.Contains(text, "fail") && call <= p.failUntil {
			return nil, fmt.Errorf("embed batch: upstream unavailable (call %d)", call)
		}
		n, _ := strconv.Atoi(strings.TrimPrefix(text, "text-"))
		vec := make([]float32, p.dimension)
		vec[0] = float32(n)
		vectors = append(vectors, vec)
	}
	return &BatchResult{Vectors: vectors, TotalTokens: len(texts) * 3}, nil
}

func (p *countingProvider) Dimension() int { return p.dimension }

func texts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "text-" + strconv.Itoa(i)
	}
	return out
}

func TestEmbedAllOrdersVectorsByInput(t *testing.T) {
	provider := &countingProvider{dimension: 4}
	b := NewBatcher(provider, BatcherOptions{BatchSize: 3, Concurrency: 4})

	report, err := b.EmbedAll(context.Background(), texts(10))
	require.NoError(t, err)
	require.Len(t, report.Vectors, 10)
	assert.Empty(t, report.FailedIndexes)
	assert.Equal(t, 30, report.TotalTokens)

	for i, vec := range report.Vectors {
		require.NotNil(t, vec, "vector %d missing", i)
		assert.Equal(t, float32(i), vec[0], "vector %d out of order", i)
	}
}

func TestEmbedAllEmptyInput(t *testing.T) {
	b := NewBatcher(&countingProvider{dimension: 4}, BatcherOptions{})

	report, err := b.EmbedAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, report.Vectors)
	assert.Empty(t, report.FailedIndexes)
}

func TestEmbedAllIsolatesFailedBatch(t *testing.T) {
	provider := &countingProvider{dimension: 4, failUntil: 1 << 30}
	b := NewBatcher(provider, BatcherOptions{BatchSize: 2, Concurrency: 1, MaxRetries: 0})

	input := []string{"text-0", "text-1", "text-2-fail", "text-3", "text-4"}
	report, err := b.EmbedAll(context.Background(), input)
	require.NoError(t, err, "a batch failure degrades the report, it does not fail the call")

	// The batch holding index 2 and 3 failed; its siblings survived.
	assert.ElementsMatch(t, []int{2, 3}, report.FailedIndexes)
	assert.Error(t, report.FirstErr)

	assert.NotNil(t, report.Vectors[0])
	assert.NotNil(t, report.Vectors[1])
	assert.Nil(t, report.Vectors[2])
	assert.Nil(t, report.Vectors[3])
	assert.NotNil(t, report.Vectors[4])
}

func TestEmbedAllRetriesTransientFailure(t *testing.T) {
	// The first call fails, the retry succeeds.
	provider := &countingProvider{dimension: 4, failUntil: 1}
	b := NewBatcher(provider, BatcherOptions{
		BatchSize:   8,
		Concurrency: 1,
		MaxRetries:  2,
		BaseBackoff: 1, // nanoseconds, keep the test fast
	})

	report, err := b.EmbedAll(context.Background(), []string{"text-0-fail", "text-1"})
	require.NoError(t, err)
	assert.Empty(t, report.FailedIndexes)
	require.NotNil(t, report.Vectors[0])
	assert.GreaterOrEqual(t, provider.calls, 2)
}

func TestEmbedAllHonorsContextCancel(t *testing.T) {
	provider := &countingProvider{dimension: 4, failUntil: 1 << 30}
	b := NewBatcher(provider, BatcherOptions{
		BatchSize:   2,
		Concurrency: 1,
		MaxRetries:  5,
		BaseBackoff: 1 << 30, // cancellation must win over the backoff sleep
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := b.EmbedAll(ctx, []string{"text-0-fail", "text-1"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1}, report.FailedIndexes)
	assert.ErrorIs(t, report.FirstErr, context.Canceled)
}

func TestNormalizeVector(t *testing.T) {
	vec := normalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, float64(vec[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(vec[1]), 1e-6)

	zero := normalizeVector([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)
}

func TestDimensionMismatchSentinel(t *testing.T) {
	assert.False(t, errors.Is(ErrDimensionMismatch, ErrCountMismatch))
}
