package service

import (
	"context"
	"errors"
	"time"

	"policy-intel-be/internal/constant"
	"policy-intel-be/internal/dto"
	"policy-intel-be/internal/entity"
	"policy-intel-be/internal/repository/specification"
	"policy-intel-be/internal/repository/unitofwork"
	"policy-intel-be/pkg/chat"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrScopeNotOwned is returned when a conversation scope references a
// document or policy outside the caller's tenant.
var ErrScopeNotOwned = errors.New("scoped id does not belong to tenant")

const conversationTitleMaxChars = 60

type IChatService interface {
	CreateConversation(ctx context.Context, tenantId uuid.UUID, req *dto.CreateConversationRequest) (*dto.CreateConversationResponse, error)
	ListConversations(ctx context.Context, tenantId uuid.UUID) ([]*dto.ConversationListItem, error)
	DeleteConversation(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) error
	ListMessages(ctx context.Context, tenantId uuid.UUID, conversationId uuid.UUID) ([]*dto.ChatMessageItem, error)
	SendMessage(ctx context.Context, tenantId uuid.UUID, conversationId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	StreamMessage(ctx context.Context, tenantId uuid.UUID, conversationId uuid.UUID, req *dto.SendMessageRequest) (<-chan dto.StreamChunk, error)
}

type chatService struct {
	uowFactory   unitofwork.RepositoryFactory
	orchestrator *chat.Orchestrator
	logger       *zap.Logger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	orchestrator *chat.Orchestrator,
	logger *zap.Logger,
) IChatService {
	return &chatService{
		uowFactory:   uowFactory,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

func (c *chatService) CreateConversation(ctx context.Context, tenantId uuid.UUID, req *dto.CreateConversationRequest) (*dto.CreateConversationResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	if err := c.verifyScope(ctx, uow, tenantId, req.DocumentIds, req.PolicyIds); err != nil {
		return nil, err
	}

	conversation := entity.Conversation{
		Id:          uuid.New(),
		TenantId:    tenantId,
		Title:       req.Title,
		DocumentIds: req.DocumentIds,
		PolicyIds:   req.PolicyIds,
		CreatedAt:   time.Now(),
	}

	if err := uow.ConversationRepository().Create(ctx, &conversation); err != nil {
		return nil, err
	}

	return &dto.CreateConversationResponse{Id: conversation.Id}, nil
}

// verifyScope rejects scope ids that do not resolve inside the tenant, so a
// conversation can never read another tenant's corpus.
func (c *chatService) verifyScope(ctx context.Context, uow unitofwork.UnitOfWork, tenantId uuid.UUID, documentIds, policyIds []uuid.UUID) error {
	if len(documentIds) > 0 {
		count, err := uow.DocumentRepository().Count(ctx,
			specification.ByIDs{IDs: documentIds},
			specification.TenantOwnedBy{TenantId: tenantId},
		)
		if err != nil {
			return err
		}
		if count != int64(len(documentIds)) {
			return ErrScopeNotOwned
		}
	}

	if len(policyIds) > 0 {
		policies, err := uow.PolicyRepository().FindAll(ctx,
			specification.ByIDs{IDs: policyIds},
			specification.TenantOwnedBy{TenantId: tenantId},
		)
		if err != nil {
			return err
		}
		if len(policies) != len(policyIds) {
			return ErrScopeNotOwned
		}
	}

	return nil
}

func (c *chatService) ListConversations(ctx context.Context, tenantId uuid.UUID) ([]*dto.ConversationListItem, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.TenantOwnedBy{TenantId: tenantId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ConversationListItem, 0, len(conversations))
	for _, conversation := range conversations {
		items = append(items, &dto.ConversationListItem{
			Id:          conversation.Id,
			Title:       conversation.Title,
			DocumentIds: conversation.DocumentIds,
			PolicyIds:   conversation.PolicyIds,
			CreatedAt:   conversation.CreatedAt,
		})
	}
	return items, nil
}

func (c *chatService) DeleteConversation(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.TenantOwnedBy{TenantId: tenantId},
	)
	if err != nil {
		return err
	}
	if conversation == nil {
		return nil
	}

	return uow.ConversationRepository().Delete(ctx, id)
}

func (c *chatService) ListMessages(ctx context.Context, tenantId uuid.UUID, conversationId uuid.UUID) ([]*dto.ChatMessageItem, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	conversation, err := c.findConversation(ctx, uow, tenantId, conversationId)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, nil
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationId: conversationId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	messageIds := make([]uuid.UUID, 0, len(messages))
	for _, message := range messages {
		messageIds = append(messageIds, message.Id)
	}

	citationsByMessage := make(map[uuid.UUID][]dto.CitationItem)
	if len(messageIds) > 0 {
		citations, err := uow.ChatCitationRepository().FindAll(ctx,
			specification.ByChatMessageIDs{ChatMessageIds: messageIds},
			specification.OrderBy{Field: "created_at", Desc: false},
		)
		if err != nil {
			return nil, err
		}
		for _, citation := range citations {
			citationsByMessage[citation.ChatMessageId] = append(citationsByMessage[citation.ChatMessageId], dto.CitationItem{
				ChunkId:    citation.ChunkId,
				DocumentId: citation.DocumentId,
				PageNumber: citation.PageNumber,
			})
		}
	}

	items := make([]*dto.ChatMessageItem, 0, len(messages))
	for _, message := range messages {
		cites := citationsByMessage[message.Id]
		if cites == nil {
			cites = []dto.CitationItem{}
		}
		items = append(items, &dto.ChatMessageItem{
			Id:        message.Id,
			Role:      message.Role,
			Content:   message.Content,
			Citations: cites,
			CreatedAt: message.CreatedAt,
		})
	}
	return items, nil
}

func (c *chatService) SendMessage(ctx context.Context, tenantId uuid.UUID, conversationId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	conversation, err := c.findConversation(ctx, uow, tenantId, conversationId)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, nil
	}

	history, err := c.loadHistory(ctx, uow, conversationId)
	if err != nil {
		return nil, err
	}

	if err := c.persistUserTurn(ctx, uow, conversation, len(history), req.Content); err != nil {
		return nil, err
	}

	answer, err := c.orchestrator.Ask(ctx, uow, chat.Scope{
		TenantId:    tenantId,
		DocumentIds: conversation.DocumentIds,
		PolicyIds:   conversation.PolicyIds,
	}, history, req.Content)
	if err != nil {
		return nil, err
	}

	messageId, citations, err := c.persistAssistantTurn(ctx, uow, conversationId, answer.Text, answer.Citations)
	if err != nil {
		return nil, err
	}

	return &dto.SendMessageResponse{
		MessageId:    messageId,
		Content:      answer.Text,
		Citations:    citations,
		InputTokens:  answer.InputTokens,
		OutputTokens: answer.OutputTokens,
	}, nil
}

// StreamMessage runs one streaming chat turn. A cancelled stream discards the
// partial assistant text; only a completed turn is persisted.
func (c *chatService) StreamMessage(ctx context.Context, tenantId uuid.UUID, conversationId uuid.UUID, req *dto.SendMessageRequest) (<-chan dto.StreamChunk, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	conversation, err := c.findConversation(ctx, uow, tenantId, conversationId)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, nil
	}

	history, err := c.loadHistory(ctx, uow, conversationId)
	if err != nil {
		return nil, err
	}

	if err := c.persistUserTurn(ctx, uow, conversation, len(history), req.Content); err != nil {
		return nil, err
	}

	events, err := c.orchestrator.AskStream(ctx, uow, chat.Scope{
		TenantId:    tenantId,
		DocumentIds: conversation.DocumentIds,
		PolicyIds:   conversation.PolicyIds,
	}, history, req.Content)
	if err != nil {
		return nil, err
	}

	chunks := make(chan dto.StreamChunk)
	go func() {
		defer close(chunks)

		// The SSE writer stops draining when the client disconnects, so
		// every send must also watch ctx or this goroutine wedges.
		send := func(chunk dto.StreamChunk) bool {
			select {
			case chunks <- chunk:
				return true
			case <-ctx.Done():
				return false
			}
		}

		var full string
		for ev := range events {
			switch {
			case ev.Err != nil:
				c.logger.Error("chat stream failed", zap.Error(ev.Err))
				send(dto.StreamChunk{Type: "error", Error: ev.Err.Error()})
				return
			case ev.Done:
				// Persist with a fresh context so a client disconnect right
				// after the terminal event cannot lose the finished turn.
				saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
				messageId, citations, err := c.persistAssistantTurn(saveCtx, uow, conversationId, full, ev.Citations)
				cancel()
				if err != nil {
					c.logger.Error("failed to persist streamed turn", zap.Error(err))
					send(dto.StreamChunk{Type: "error", Error: "failed to save message"})
					return
				}
				send(dto.StreamChunk{
					Type:      "done",
					MessageId: &messageId,
					Citations: citations,
				})
				return
			default:
				full += ev.Delta
				if !send(dto.StreamChunk{Type: "delta", Delta: ev.Delta}) {
					return
				}
			}
		}
	}()

	return chunks, nil
}

func (c *chatService) findConversation(ctx context.Context, uow unitofwork.UnitOfWork, tenantId uuid.UUID, id uuid.UUID) (*entity.Conversation, error) {
	return uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.TenantOwnedBy{TenantId: tenantId},
	)
}

// loadHistory returns the most recent prior turns in chronological order.
func (c *chatService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, conversationId uuid.UUID) ([]*entity.ChatMessage, error) {
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationId: conversationId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: constant.ChatHistoryLimit, Offset: 0},
	)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// persistUserTurn stores the user message and, on the first turn of an
// untitled conversation, derives the title from it.
func (c *chatService) persistUserTurn(ctx context.Context, uow unitofwork.UnitOfWork, conversation *entity.Conversation, historyLen int, content string) error {
	message := entity.ChatMessage{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Role:           constant.ChatMessageRoleUser,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, &message); err != nil {
		return err
	}

	if historyLen == 0 && conversation.Title == "" {
		now := time.Now()
		conversation.Title = deriveTitle(content)
		conversation.UpdatedAt = &now
		if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
			return err
		}
	}
	return nil
}

func (c *chatService) persistAssistantTurn(ctx context.Context, uow unitofwork.UnitOfWork, conversationId uuid.UUID, content string, citations []chat.Citation) (uuid.UUID, []dto.CitationItem, error) {
	message := entity.ChatMessage{
		Id:             uuid.New(),
		ConversationId: conversationId,
		Role:           constant.ChatMessageRoleAssistant,
		Content:        content,
		CreatedAt:      time.Now(),
	}

	rows := make([]*entity.ChatCitation, 0, len(citations))
	items := make([]dto.CitationItem, 0, len(citations))
	for _, citation := range citations {
		rows = append(rows, &entity.ChatCitation{
			Id:            uuid.New(),
			ChatMessageId: message.Id,
			ChunkId:       citation.ChunkId,
			DocumentId:    citation.DocumentId,
			PageNumber:    citation.PageNumber,
			CreatedAt:     time.Now(),
		})
		items = append(items, dto.CitationItem{
			ChunkId:    citation.ChunkId,
			DocumentId: citation.DocumentId,
			PageNumber: citation.PageNumber,
		})
	}

	if err := uow.Begin(ctx); err != nil {
		return uuid.Nil, nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, &message); err != nil {
		return uuid.Nil, nil, err
	}
	if len(rows) > 0 {
		if err := uow.ChatCitationRepository().CreateBulk(ctx, rows); err != nil {
			return uuid.Nil, nil, err
		}
	}
	if err := uow.Commit(); err != nil {
		return uuid.Nil, nil, err
	}

	return message.Id, items, nil
}

func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= conversationTitleMaxChars {
		return content
	}
	return string(runes[:conversationTitleMaxChars]) + "..."
}
