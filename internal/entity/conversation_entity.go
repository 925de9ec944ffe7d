package entity

import (
	"time"

	"github.com/google/uuid"
)

// Conversation scopes retrieval for a chat thread to a set of policy and/or
// document ids. Empty scope means the whole tenant corpus.
type Conversation struct {
	Id          uuid.UUID
	TenantId    uuid.UUID
	Title       string
	DocumentIds []uuid.UUID
	PolicyIds   []uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
}

// ChatMessage is one append-only turn in a conversation.
type ChatMessage struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Role           string // user | assistant
	Content        string
	CreatedAt      time.Time
}

// ChatCitation links an assistant message to a chunk it cited.
type ChatCitation struct {
	Id            uuid.UUID
	ChatMessageId uuid.UUID
	ChunkId       uuid.UUID
	DocumentId    uuid.UUID
	PageNumber    int
	CreatedAt     time.Time
}
