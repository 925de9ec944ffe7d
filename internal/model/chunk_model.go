package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type Chunk struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentId    uuid.UUID `gorm:"type:uuid;not null;index"`
	ChunkIndex    int       `gorm:"not null"` // 0-based, contiguous per document
	Text          string    `gorm:"type:text"`
	StartPage     int
	EndPage       int
	TokenEstimate int
	SectionType   string    `gorm:"type:varchar(32);default:unknown"`
	Embedded      bool      `gorm:"default:false;index"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (Chunk) TableName() string {
	return "chunks"
}

type ChunkEmbedding struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChunkId    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	DocumentId uuid.UUID       `gorm:"type:uuid;not null;index"`
	Vector     pgvector.Vector `gorm:"type:vector(768)"` // dimension fixed by the embedding provider
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
	DeletedAt  gorm.DeletedAt  `gorm:"index"`
}

func (ChunkEmbedding) TableName() string {
	return "chunk_embeddings"
}
