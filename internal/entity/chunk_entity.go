package entity

import (
	"time"

	"github.com/google/uuid"
)

// Chunk is a token-bounded, page-anchored slice of document text. Chunks of a
// document are totally ordered by Index starting at 0.
type Chunk struct {
	Id            uuid.UUID
	DocumentId    uuid.UUID
	Index         int
	Text          string
	StartPage     int
	EndPage       int
	TokenEstimate int
	SectionType   string
	Embedded      bool // false until a vector is stored; excluded from retrieval
	CreatedAt     time.Time
}

// ChunkEmbedding is the stored vector for one chunk.
type ChunkEmbedding struct {
	Id         uuid.UUID
	ChunkId    uuid.UUID
	DocumentId uuid.UUID
	Vector     []float32
	CreatedAt  time.Time
}
