package implementation

import (
	"context"
	"errors"

	"policy-intel-be/internal/entity"
	"policy-intel-be/internal/mapper"
	"policy-intel-be/internal/model"
	"policy-intel-be/internal/repository/contract"
	"policy-intel-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PolicyRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PolicyMapper
}

func NewPolicyRepository(db *gorm.DB) contract.PolicyRepository {
	return &PolicyRepositoryImpl{
		db:     db,
		mapper: mapper.NewPolicyMapper(),
	}
}

func (r *PolicyRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PolicyRepositoryImpl) Create(ctx context.Context, policy *entity.Policy) error {
	m := r.mapper.ToModel(policy)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*policy = *r.mapper.ToEntity(m)
	return nil
}

func (r *PolicyRepositoryImpl) Update(ctx context.Context, policy *entity.Policy) error {
	m := r.mapper.ToModel(policy)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*policy = *r.mapper.ToEntity(m)
	return nil
}

func (r *PolicyRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Policy, error) {
	var m model.Policy
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PolicyRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Policy, error) {
	var models []*model.Policy
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Policy, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *PolicyRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.Policy{}).Error
}

type CoverageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PolicyMapper
}

func NewCoverageRepository(db *gorm.DB) contract.CoverageRepository {
	return &CoverageRepositoryImpl{
		db:     db,
		mapper: mapper.NewPolicyMapper(),
	}
}

func (r *CoverageRepositoryImpl) CreateBulk(ctx context.Context, coverages []*entity.Coverage) error {
	if len(coverages) == 0 {
		return nil
	}
	models := make([]*model.Coverage, len(coverages))
	for i, c := range coverages {
		models[i] = r.mapper.CoverageToModel(c)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}
	for i, m := range models {
		*coverages[i] = *r.mapper.CoverageToEntity(m)
	}
	return nil
}

func (r *CoverageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Coverage, error) {
	var models []*model.Coverage
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Coverage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.CoverageToEntity(m)
	}
	return entities, nil
}

func (r *CoverageRepositoryImpl) DeleteByPolicyId(ctx context.Context, policyId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("policy_id = ?", policyId).Delete(&model.Coverage{}).Error
}

type ValidationIssueRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PolicyMapper
}

func NewValidationIssueRepository(db *gorm.DB) contract.ValidationIssueRepository {
	return &ValidationIssueRepositoryImpl{
		db:     db,
		mapper: mapper.NewPolicyMapper(),
	}
}

func (r *ValidationIssueRepositoryImpl) CreateBulk(ctx context.Context, issues []*entity.ValidationIssue) error {
	if len(issues) == 0 {
		return nil
	}
	models := make([]*model.ValidationIssue, len(issues))
	for i, issue := range issues {
		models[i] = r.mapper.IssueToModel(issue)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}
	for i, m := range models {
		*issues[i] = *r.mapper.IssueToEntity(m)
	}
	return nil
}

func (r *ValidationIssueRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ValidationIssue, error) {
	var models []*model.ValidationIssue
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ValidationIssue, len(models))
	for i, m := range models {
		entities[i] = r.mapper.IssueToEntity(m)
	}
	return entities, nil
}

func (r *ValidationIssueRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.ValidationIssue{}).Error
}
