package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateConversationRequest struct {
	Title       string      `json:"title"`
	DocumentIds []uuid.UUID `json:"document_ids"`
	PolicyIds   []uuid.UUID `json:"policy_ids"`
}

type CreateConversationResponse struct {
	Id uuid.UUID `json:"id"`
}

type ConversationListItem struct {
	Id          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	DocumentIds []uuid.UUID `json:"document_ids"`
	PolicyIds   []uuid.UUID `json:"policy_ids"`
	CreatedAt   time.Time   `json:"created_at"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type CitationItem struct {
	ChunkId    uuid.UUID `json:"chunk_id"`
	DocumentId uuid.UUID `json:"document_id"`
	PageNumber int       `json:"page_number"`
}

type SendMessageResponse struct {
	MessageId    uuid.UUID      `json:"message_id"`
	Content      string         `json:"content"`
	Citations    []CitationItem `json:"citations"`
	InputTokens  int            `json:"input_tokens"`
	OutputTokens int            `json:"output_tokens"`
}

type ChatMessageItem struct {
	Id        uuid.UUID      `json:"id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Citations []CitationItem `json:"citations"`
	CreatedAt time.Time      `json:"created_at"`
}

// StreamChunk is one server-sent frame of a streaming chat turn.
type StreamChunk struct {
	Type      string         `json:"type"` // "delta" | "done" | "error"
	Delta     string         `json:"delta,omitempty"`
	MessageId *uuid.UUID     `json:"message_id,omitempty"`
	Citations []CitationItem `json:"citations,omitempty"`
	Error     string         `json:"error,omitempty"`
}
