package mapper

import (
	"time"

	"policy-intel-be/internal/entity"
	"policy-intel-be/internal/model"

	"gorm.io/gorm"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var deletedAt *time.Time
	if d.DeletedAt.Valid {
		t := d.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.Document{
		Id:                d.Id,
		TenantId:          d.TenantId,
		FileName:          d.FileName,
		DocumentType:      d.DocumentType,
		Status:            d.Status,
		Stage:             d.Stage,
		PageCount:         d.PageCount,
		QualityScore:      d.QualityScore,
		ScannedPageCount:  d.ScannedPageCount,
		AppearsScanned:    d.AppearsScanned,
		IsHybrid:          d.IsHybrid,
		OverallConfidence: d.OverallConfidence,
		NeedsHumanReview:  d.NeedsHumanReview,
		ErrorMessage:      d.ErrorMessage,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         updatedAt,
		DeletedAt:         deletedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if d.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *d.DeletedAt, Valid: true}
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.Document{
		Id:                d.Id,
		TenantId:          d.TenantId,
		FileName:          d.FileName,
		DocumentType:      d.DocumentType,
		Status:            d.Status,
		Stage:             d.Stage,
		PageCount:         d.PageCount,
		QualityScore:      d.QualityScore,
		ScannedPageCount:  d.ScannedPageCount,
		AppearsScanned:    d.AppearsScanned,
		IsHybrid:          d.IsHybrid,
		OverallConfidence: d.OverallConfidence,
		NeedsHumanReview:  d.NeedsHumanReview,
		ErrorMessage:      d.ErrorMessage,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         updatedAt,
		DeletedAt:         deletedAt,
	}
}

func (m *DocumentMapper) PageToEntity(p *model.DocumentPage) *entity.DocumentPage {
	if p == nil {
		return nil
	}
	return &entity.DocumentPage{
		Id:         p.Id,
		DocumentId: p.DocumentId,
		PageNumber: p.PageNumber,
		Text:       p.Text,
		IsScanned:  p.IsScanned,
		CreatedAt:  p.CreatedAt,
	}
}

func (m *DocumentMapper) PageToModel(p *entity.DocumentPage) *model.DocumentPage {
	if p == nil {
		return nil
	}
	return &model.DocumentPage{
		Id:         p.Id,
		DocumentId: p.DocumentId,
		PageNumber: p.PageNumber,
		Text:       p.Text,
		IsScanned:  p.IsScanned,
		CreatedAt:  p.CreatedAt,
	}
}
