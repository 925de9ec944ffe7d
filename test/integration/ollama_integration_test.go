// Live Ollama smoke tests for the two local AI paths the pipeline depends
// on: chat completion and embedding. They only run when a local Ollama
// daemon is reachable and OLLAMA_INTEGRATION=1 is set.
package integration

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"policy-intel-be/pkg/embedding"
	"policy-intel-be/pkg/llm"
	"policy-intel-be/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ollamaBaseURL = "http://localhost:11434"

func requireOllama(t *testing.T) {
	t.Helper()
	if os.Getenv("OLLAMA_INTEGRATION") != "1" {
		t.Skip("Skipping: set OLLAMA_INTEGRATION=1 to run live Ollama tests")
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(ollamaBaseURL + "/api/tags")
	if err != nil {
		t.Skipf("Skipping: Ollama not reachable at %s: %v", ollamaBaseURL, err)
	}
	resp.Body.Close()
}

func TestOllamaCompletion(t *testing.T) {
	requireOllama(t)

	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = "llama3"
	}
	provider := ollama.NewOllamaProvider(ollamaBaseURL, model)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	resp, err := provider.Complete(ctx, llm.Request{
		System: "You answer in one short sentence.",
		Messages: []llm.Message{
			{Role: "user", Content: "What does a general liability aggregate limit cap?"},
		},
		MaxTokens:   128,
		Temperature: 0,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Text)
	t.Logf("completion: %s", resp.Text)
}

func TestOllamaEmbedding(t *testing.T) {
	requireOllama(t)

	model := os.Getenv("EMBEDDING_MODEL")
	if model == "" {
		model = "nomic-embed-text"
	}
	provider := embedding.NewOllamaProvider(ollamaBaseURL, model, 768)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	res, err := provider.EmbedBatch(ctx, []string{
		"Each occurrence limit: $1,000,000",
		"General aggregate limit: $2,000,000",
	})
	require.NoError(t, err)
	require.Len(t, res.Vectors, 2)
	assert.Len(t, res.Vectors[0], provider.Dimension())

	// Vectors are normalized at the provider boundary, so the dot product of
	// related texts is their cosine similarity.
	var dot float32
	for i := range res.Vectors[0] {
		dot += res.Vectors[0][i] * res.Vectors[1][i]
	}
	assert.Greater(t, float64(dot), 0.5, "related lines should score as similar")
}
