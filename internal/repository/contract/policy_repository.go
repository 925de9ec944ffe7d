package contract

import (
	"context"

	"policy-intel-be/internal/entity"
	"policy-intel-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PolicyRepository interface {
	Create(ctx context.Context, policy *entity.Policy) error
	Update(ctx context.Context, policy *entity.Policy) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Policy, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Policy, error)
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
}

type CoverageRepository interface {
	CreateBulk(ctx context.Context, coverages []*entity.Coverage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Coverage, error)
	DeleteByPolicyId(ctx context.Context, policyId uuid.UUID) error
}

type ValidationIssueRepository interface {
	CreateBulk(ctx context.Context, issues []*entity.ValidationIssue) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ValidationIssue, error)
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
}
