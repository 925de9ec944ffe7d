package implementation

import (
	"context"
	"time"

	"policy-intel-be/internal/entity"
	"policy-intel-be/internal/mapper"
	"policy-intel-be/internal/model"
	"policy-intel-be/internal/repository/contract"
	"policy-intel-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ChunkEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChunkMapper
}

func NewChunkEmbeddingRepository(db *gorm.DB) contract.ChunkEmbeddingRepository {
	return &ChunkEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewChunkMapper(),
	}
}

func (r *ChunkEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.ChunkEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := make([]*model.ChunkEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = r.mapper.EmbeddingToModel(e)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}
	for i, m := range models {
		*embeddings[i] = *r.mapper.EmbeddingToEntity(m)
	}
	return nil
}

func (r *ChunkEmbeddingRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.ChunkEmbedding{}).Error
}

func (r *ChunkEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	err := query.Model(&model.ChunkEmbedding{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore runs the cosine search. pgvector's <=> operator is
// cosine distance, so similarity = 1 - distance. The joins scope results to
// the tenant and carry the chunk/document metadata citations need.
func (r *ChunkEmbeddingRepositoryImpl) SearchSimilarWithScore(
	ctx context.Context,
	vector []float32,
	limit int,
	tenantId uuid.UUID,
	threshold float64,
	filter contract.SearchFilter,
) ([]*contract.ChunkSearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	queryVector := pgvector.NewVector(vector)

	query := r.db.WithContext(ctx).
		Table("chunk_embeddings").
		Select(`chunks.id as chunk_id,
			chunks.document_id,
			documents.file_name as document_name,
			chunks.start_page,
			chunks.end_page,
			chunks.section_type,
			chunks.text,
			chunks.created_at,
			1 - (chunk_embeddings.vector <=> ?) as similarity`, queryVector).
		Joins("JOIN chunks ON chunks.id = chunk_embeddings.chunk_id").
		Joins("JOIN documents ON documents.id = chunk_embeddings.document_id").
		Where("documents.tenant_id = ?", tenantId).
		Where("documents.deleted_at IS NULL").
		Where("chunk_embeddings.deleted_at IS NULL").
		Where("chunks.embedded = ?", true).
		Where("1 - (chunk_embeddings.vector <=> ?) >= ?", queryVector, threshold)

	if len(filter.DocumentIds) > 0 {
		query = query.Where("chunks.document_id IN ?", filter.DocumentIds)
	}
	if len(filter.PolicyIds) > 0 {
		subQuery := r.db.Table("policies").Select("document_id").Where("id IN ?", filter.PolicyIds)
		query = query.Where("chunks.document_id IN (?)", subQuery)
	}

	type row struct {
		ChunkId      uuid.UUID
		DocumentId   uuid.UUID
		DocumentName string
		StartPage    int
		EndPage      int
		SectionType  string
		Text         string
		CreatedAt    time.Time
		Similarity   float64
	}
	var rows []row

	err := query.
		Order("similarity DESC, chunks.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]*contract.ChunkSearchResult, len(rows))
	for i, res := range rows {
		results[i] = &contract.ChunkSearchResult{
			ChunkId:      res.ChunkId,
			DocumentId:   res.DocumentId,
			DocumentName: res.DocumentName,
			StartPage:    res.StartPage,
			EndPage:      res.EndPage,
			SectionType:  res.SectionType,
			Text:         res.Text,
			Similarity:   res.Similarity,
			CreatedAt:    res.CreatedAt,
		}
	}
	return results, nil
}
