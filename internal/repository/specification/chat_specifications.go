package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByConversationID filters messages by their conversation.
type ByConversationID struct {
	ConversationId uuid.UUID
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationId)
}

// ByChatMessageID filters citations by their message.
type ByChatMessageID struct {
	ChatMessageId uuid.UUID
}

func (s ByChatMessageID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_message_id = ?", s.ChatMessageId)
}

// ByChatMessageIDs filters citations by a set of messages.
type ByChatMessageIDs struct {
	ChatMessageIds []uuid.UUID
}

func (s ByChatMessageIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_message_id IN ?", s.ChatMessageIds)
}
