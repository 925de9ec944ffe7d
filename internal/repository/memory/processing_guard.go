package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ProcessingGuard enforces one active pipeline run per document. Entries
// expire after two hours so a crashed worker cannot wedge a document forever.
type ProcessingGuard struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewProcessingGuard() *ProcessingGuard {
	c := cache.New(2*time.Hour, 10*time.Minute)
	return &ProcessingGuard{
		cache: c,
	}
}

// TryAcquire claims the document for processing. Returns false when another
// run already holds it.
func (g *ProcessingGuard) TryAcquire(documentId uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := documentId.String()
	if _, held := g.cache.Get(key); held {
		return false
	}
	g.cache.Set(key, time.Now(), cache.DefaultExpiration)
	return true
}

// Release frees the document after a run finishes, regardless of outcome.
func (g *ProcessingGuard) Release(documentId uuid.UUID) {
	g.cache.Delete(documentId.String())
}

// IsProcessing reports whether a run currently holds the document.
func (g *ProcessingGuard) IsProcessing(documentId uuid.UUID) bool {
	_, held := g.cache.Get(documentId.String())
	return held
}
