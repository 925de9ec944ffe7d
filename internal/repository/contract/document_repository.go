package contract

import (
	"context"

	"policy-intel-be/internal/entity"
	"policy-intel-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	Update(ctx context.Context, document *entity.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// UpdateStage writes only the stage column so progress commits stay
	// narrow during a pipeline run.
	UpdateStage(ctx context.Context, id uuid.UUID, stage string) error
}

type DocumentPageRepository interface {
	CreateBulk(ctx context.Context, pages []*entity.DocumentPage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentPage, error)
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
}
