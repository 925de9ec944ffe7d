package mapper

import (
	"policy-intel-be/internal/entity"
	"policy-intel-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ChunkMapper struct{}

func NewChunkMapper() *ChunkMapper {
	return &ChunkMapper{}
}

func (m *ChunkMapper) ToEntity(c *model.Chunk) *entity.Chunk {
	if c == nil {
		return nil
	}
	return &entity.Chunk{
		Id:            c.Id,
		DocumentId:    c.DocumentId,
		Index:         c.ChunkIndex,
		Text:          c.Text,
		StartPage:     c.StartPage,
		EndPage:       c.EndPage,
		TokenEstimate: c.TokenEstimate,
		SectionType:   c.SectionType,
		Embedded:      c.Embedded,
		CreatedAt:     c.CreatedAt,
	}
}

func (m *ChunkMapper) ToModel(c *entity.Chunk) *model.Chunk {
	if c == nil {
		return nil
	}
	return &model.Chunk{
		Id:            c.Id,
		DocumentId:    c.DocumentId,
		ChunkIndex:    c.Index,
		Text:          c.Text,
		StartPage:     c.StartPage,
		EndPage:       c.EndPage,
		TokenEstimate: c.TokenEstimate,
		SectionType:   c.SectionType,
		Embedded:      c.Embedded,
		CreatedAt:     c.CreatedAt,
	}
}

func (m *ChunkMapper) EmbeddingToEntity(e *model.ChunkEmbedding) *entity.ChunkEmbedding {
	if e == nil {
		return nil
	}
	return &entity.ChunkEmbedding{
		Id:         e.Id,
		ChunkId:    e.ChunkId,
		DocumentId: e.DocumentId,
		Vector:     e.Vector.Slice(),
		CreatedAt:  e.CreatedAt,
	}
}

func (m *ChunkMapper) EmbeddingToModel(e *entity.ChunkEmbedding) *model.ChunkEmbedding {
	if e == nil {
		return nil
	}
	return &model.ChunkEmbedding{
		Id:         e.Id,
		ChunkId:    e.ChunkId,
		DocumentId: e.DocumentId,
		Vector:     pgvector.NewVector(e.Vector),
		CreatedAt:  e.CreatedAt,
	}
}
