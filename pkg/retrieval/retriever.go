// Package retrieval runs scoped nearest-neighbor search over chunk vectors
// and returns ranked, citation-ready excerpts.
package retrieval

import (
	"context"
	"fmt"

	"policy-intel-be/internal/repository/contract"
	"policy-intel-be/internal/repository/unitofwork"
	"policy-intel-be/pkg/embedding"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config encapsulates search parameters.
type Config struct {
	// DBThreshold is the floor applied inside the vector query.
	DBThreshold float64
	// SimilarityFloor drops weak matches after the query; near-zero
	// similarities read as noise, not evidence.
	SimilarityFloor float64
	TopK            int
}

// DefaultConfig returns default search configuration.
func DefaultConfig() Config {
	return Config{
		DBThreshold:     0.0,
		SimilarityFloor: 0.30,
		TopK:            8,
	}
}

// Filter narrows retrieval to a conversation's scope.
type Filter struct {
	DocumentIds []uuid.UUID
	PolicyIds   []uuid.UUID
}

// Retriever embeds a query and searches the tenant's chunk vectors.
type Retriever struct {
	embedder embedding.Provider
	logger   *zap.Logger
}

func NewRetriever(embedder embedding.Provider, logger *zap.Logger) *Retriever {
	return &Retriever{
		embedder: embedder,
		logger:   logger,
	}
}

// Execute embeds the query with the same provider used at ingestion and
// returns the top matches. An empty corpus yields an empty list, not an
// error.
func (r *Retriever) Execute(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	tenantId uuid.UUID,
	query string,
	filter Filter,
	config Config,
) ([]*contract.ChunkSearchResult, error) {

	batch, err := r.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}
	if len(batch.Vectors) != 1 {
		return nil, fmt.Errorf("query embedding returned %d vectors", len(batch.Vectors))
	}

	results, err := uow.ChunkEmbeddingRepository().SearchSimilarWithScore(
		ctx,
		batch.Vectors[0],
		config.TopK,
		tenantId,
		config.DBThreshold,
		contract.SearchFilter{
			DocumentIds: filter.DocumentIds,
			PolicyIds:   filter.PolicyIds,
		},
	)
	if err != nil {
		r.logger.Error("vector search failed", zap.Error(err))
		return nil, err
	}

	filtered := make([]*contract.ChunkSearchResult, 0, len(results))
	for _, res := range results {
		if res.Similarity < config.SimilarityFloor {
			continue
		}
		filtered = append(filtered, res)
	}

	r.logger.Debug("retrieval complete",
		zap.Int("raw", len(results)),
		zap.Int("kept", len(filtered)),
		zap.String("tenant_id", tenantId.String()))

	return filtered, nil
}
