package embedding

import (
	"context"
	"errors"
	"math"
)

// BatchResult carries one vector per input text, in input order.
type BatchResult struct {
	Vectors     [][]float32
	TotalTokens int
}

// Provider defines the contract for any embedding backend. Implementations
// must return exactly one vector per input, all with Dimension() components.
type Provider interface {
	EmbedBatch(ctx context.Context, texts []string) (*BatchResult, error)
	Dimension() int
}

// ErrDimensionMismatch is returned when a backend produces a vector whose
// length disagrees with the provider's declared dimension.
var ErrDimensionMismatch = errors.New("embedding: vector dimension mismatch")

// ErrCountMismatch is returned when a backend returns a different number of
// vectors than texts submitted.
var ErrCountMismatch = errors.New("embedding: vector count mismatch")

// normalizeVector normalizes a vector to unit length (magnitude = 1).
// Cosine distance in pgvector requires normalized vectors.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
