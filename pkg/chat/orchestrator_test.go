package chat

import (
	"context"
	"testing"
	"time"

	"policy-intel-be/internal/repository/contract"
	"policy-intel-be/internal/repository/unitofwork"
	"policy-intel-be/pkg/embedding"
	"policy-intel-be/pkg/llm"
	"policy-intel-be/pkg/retrieval"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// endlessStreamProvider streams deltas until its context is cancelled,
// standing in for a long model answer.
type endlessStreamProvider struct{}

func (p *endlessStreamProvider) Complete(context.Context, llm.Request) (*llm.Response, error) {
	return &llm.Response{Text: "unused"}, nil
}

func (p *endlessStreamProvider) Stream(ctx context.Context, _ llm.Request) (<-chan llm.StreamEvent, error) {
	out := make(chan llm.StreamEvent)
	go func() {
		defer close(out)
		for {
			select {
			case out <- llm.StreamEvent{Delta: "word "}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

type stubEmbedder struct{}

func (e *stubEmbedder) EmbedBatch(_ context.Context, texts []string) (*embedding.BatchResult, error) {
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = make([]float32, 4)
	}
	return &embedding.BatchResult{Vectors: vectors}, nil
}

func (e *stubEmbedder) Dimension() int { return 4 }

type emptySearchRepo struct {
	contract.ChunkEmbeddingRepository
}

func (r emptySearchRepo) SearchSimilarWithScore(context.Context, []float32, int, uuid.UUID, float64, contract.SearchFilter) ([]*contract.ChunkSearchResult, error) {
	return nil, nil
}

type stubUow struct {
	unitofwork.UnitOfWork
}

func (u stubUow) ChunkEmbeddingRepository() contract.ChunkEmbeddingRepository {
	return emptySearchRepo{}
}

func TestAskStreamStopsWhenConsumerGone(t *testing.T) {
	orchestrator := NewOrchestrator(
		retrieval.NewRetriever(&stubEmbedder{}, zap.NewNop()),
		&endlessStreamProvider{},
		retrieval.DefaultConfig(),
		64,
		zap.NewNop(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := orchestrator.AskStream(ctx, stubUow{}, Scope{TenantId: uuid.New()}, nil, "what is my occurrence limit?")
	require.NoError(t, err)

	// Read one delta, then walk away like a disconnected client.
	ev := <-events
	assert.NotEmpty(t, ev.Delta)
	cancel()

	// The relay must notice the cancellation and close the channel even
	// though nobody is draining the remaining deltas.
	require.Eventually(t, func() bool {
		select {
		case _, open := <-events:
			return !open
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond, "stream relay leaked after cancellation")
}
