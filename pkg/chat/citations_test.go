package chat

import (
	"testing"

	"policy-intel-be/internal/repository/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCitations(t *testing.T) {
	results := []*contract.ChunkSearchResult{
		searchResult("policy.pdf", 1, 2, "occurrence limit"),
		searchResult("policy.pdf", 3, 5, "aggregate limit"),
	}
	answer := "Your occurrence limit is $1M [Source: Page 2] and the aggregate is $2M [Source: Page 4]."

	citations := extractCitations(answer, results)

	require.Len(t, citations, 2)
	assert.Equal(t, results[0].ChunkId, citations[0].ChunkId)
	assert.Equal(t, 2, citations[0].PageNumber)
	assert.Equal(t, results[1].ChunkId, citations[1].ChunkId)
	assert.Equal(t, 4, citations[1].PageNumber)
}

func TestExtractCitationsDedupesPages(t *testing.T) {
	results := []*contract.ChunkSearchResult{
		searchResult("policy.pdf", 1, 1, "limit"),
	}
	answer := "The limit [Source: Page 1] applies per occurrence [Source: Page 1]."

	citations := extractCitations(answer, results)
	assert.Len(t, citations, 1)
}

func TestExtractCitationsAcceptsPageRanges(t *testing.T) {
	results := []*contract.ChunkSearchResult{
		searchResult("policy.pdf", 3, 6, "endorsement wording"),
	}
	// A range marker resolves by its first page.
	citations := extractCitations("See [Source: Page 3-6].", results)

	require.Len(t, citations, 1)
	assert.Equal(t, 3, citations[0].PageNumber)
}

func TestExtractCitationsDropsUnmatchedMarkers(t *testing.T) {
	results := []*contract.ChunkSearchResult{
		searchResult("policy.pdf", 1, 2, "limit"),
	}
	// Page 9 was never retrieved; the marker is dropped, not guessed at.
	citations := extractCitations("Claim denied [Source: Page 9].", results)
	assert.Empty(t, citations)
}

func TestExtractCitationsNoMarkers(t *testing.T) {
	assert.Nil(t, extractCitations("An aggregate limit caps total payouts.", nil))
}
