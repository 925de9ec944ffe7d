package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenantOwnedBy scopes a query to one tenant's rows.
type TenantOwnedBy struct {
	TenantId uuid.UUID
}

func (s TenantOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("tenant_id = ?", s.TenantId)
}

// ByDocumentID filters child rows by their owning document.
type ByDocumentID struct {
	DocumentId uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentId)
}

// ByDocumentIDs filters child rows by a set of owning documents.
type ByDocumentIDs struct {
	DocumentIds []uuid.UUID
}

func (s ByDocumentIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id IN ?", s.DocumentIds)
}

// ByStatus filters documents by lifecycle status.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// NeedsReview filters documents flagged for manual review.
type NeedsReview struct{}

func (s NeedsReview) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("needs_human_review = ?", true)
}

// ByPolicyID filters coverage rows by their owning policy.
type ByPolicyID struct {
	PolicyId uuid.UUID
}

func (s ByPolicyID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("policy_id = ?", s.PolicyId)
}

// ByPolicyIDs filters by a set of policies.
type ByPolicyIDs struct {
	PolicyIds []uuid.UUID
}

func (s ByPolicyIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("policy_id IN ?", s.PolicyIds)
}
