package contract

import (
	"context"
	"time"

	"policy-intel-be/internal/entity"
	"policy-intel-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.Chunk) error
	Update(ctx context.Context, chunk *entity.Chunk) error
	// MarkEmbedded flips the embedded flag for the given chunks in one write.
	MarkEmbedded(ctx context.Context, chunkIds []uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
}

// ChunkSearchResult is one retrieval hit, carrying everything citation
// rendering needs so callers never join again.
type ChunkSearchResult struct {
	ChunkId      uuid.UUID
	DocumentId   uuid.UUID
	DocumentName string
	StartPage    int
	EndPage      int
	SectionType  string
	Text         string
	Similarity   float64 // 0.0 to 1.0 (1.0 = identical)
	CreatedAt    time.Time
}

// SearchFilter narrows a vector search beyond the tenant scope.
type SearchFilter struct {
	DocumentIds []uuid.UUID
	PolicyIds   []uuid.UUID
}

type ChunkEmbeddingRepository interface {
	CreateBulk(ctx context.Context, embeddings []*entity.ChunkEmbedding) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns the top results by cosine similarity,
	// scoped to the tenant and the optional id filters, excluding matches
	// below threshold. Ties on similarity break by newest chunk first.
	SearchSimilarWithScore(ctx context.Context, vector []float32, limit int, tenantId uuid.UUID, threshold float64, filter SearchFilter) ([]*ChunkSearchResult, error)
}
