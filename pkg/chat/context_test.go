package chat

import (
	"fmt"
	"strings"
	"testing"

	"policy-intel-be/internal/constant"
	"policy-intel-be/internal/entity"
	"policy-intel-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchResult(doc string, start, end int, text string) *contract.ChunkSearchResult {
	return &contract.ChunkSearchResult{
		ChunkId:      uuid.New(),
		DocumentId:   uuid.New(),
		DocumentName: doc,
		StartPage:    start,
		EndPage:      end,
		SectionType:  constant.SectionDeclarations,
		Text:         text,
	}
}

func TestBuildContextBlock(t *testing.T) {
	results := []*contract.ChunkSearchResult{
		searchResult("policy.pdf", 1, 1, "Each occurrence limit: $1,000,000"),
		searchResult("policy.pdf", 2, 4, "General aggregate limit: $2,000,000"),
	}

	block := buildContextBlock(results)

	assert.Contains(t, block, "[Document: policy.pdf, Page 1, Section: declarations]")
	assert.Contains(t, block, "[Document: policy.pdf, Page 2-4, Section: declarations]")
	assert.Contains(t, block, "Each occurrence limit: $1,000,000")
	// Rank order is preserved.
	assert.Less(t,
		strings.Index(block, "Page 1,"),
		strings.Index(block, "Page 2-4,"))
}

func TestBuildContextBlockEmpty(t *testing.T) {
	assert.Equal(t, constant.ChatNoContextBlock, buildContextBlock(nil))
}

func TestBuildHistoryTruncates(t *testing.T) {
	var messages []*entity.ChatMessage
	for i := 0; i < 10; i++ {
		messages = append(messages, &entity.ChatMessage{
			Role:    constant.ChatMessageRoleUser,
			Content: fmt.Sprintf("question %d", i),
		})
	}

	history := buildHistory(messages)

	require.Len(t, history, constant.ChatHistoryLimit)
	// The oldest turns are dropped, not the newest.
	assert.Equal(t, "question 4", history[0].Content)
	assert.Equal(t, "question 9", history[len(history)-1].Content)
}

func TestBuildHistoryTruncatesLongBodies(t *testing.T) {
	long := strings.Repeat("x", constant.ChatHistoryMaxChars+200)
	history := buildHistory([]*entity.ChatMessage{
		{Role: constant.ChatMessageRoleAssistant, Content: long},
	})

	require.Len(t, history, 1)
	assert.Len(t, history[0].Content, constant.ChatHistoryMaxChars+3)
	assert.True(t, strings.HasSuffix(history[0].Content, "..."))
}

func TestBuildUserTurn(t *testing.T) {
	turn := buildUserTurn("EXCERPTS", "What is my deductible?")
	assert.True(t, strings.HasPrefix(turn, "<context>\nEXCERPTS\n</context>"))
	assert.True(t, strings.HasSuffix(turn, "Question: What is my deductible?"))
}
