package unitofwork

import (
	"context"

	"policy-intel-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	DocumentPageRepository() contract.DocumentPageRepository
	ChunkRepository() contract.ChunkRepository
	ChunkEmbeddingRepository() contract.ChunkEmbeddingRepository

	PolicyRepository() contract.PolicyRepository
	CoverageRepository() contract.CoverageRepository
	ValidationIssueRepository() contract.ValidationIssueRepository

	ConversationRepository() contract.ConversationRepository
	ChatMessageRepository() contract.ChatMessageRepository
	ChatCitationRepository() contract.ChatCitationRepository
}
