package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantId          uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName          string    `gorm:"type:text;not null"`
	DocumentType      string    `gorm:"type:varchar(32);default:unknown"`
	Status            string    `gorm:"type:varchar(16);not null;index"`
	Stage             string    `gorm:"type:varchar(32)"`
	PageCount         int
	QualityScore      int
	ScannedPageCount  int
	AppearsScanned    bool
	IsHybrid          bool
	OverallConfidence float64
	NeedsHumanReview  bool `gorm:"index"`
	ErrorMessage      *string
	CreatedAt         time.Time      `gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime"`
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}

type DocumentPage struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentId uuid.UUID `gorm:"type:uuid;not null;index"`
	PageNumber int       `gorm:"not null"`
	Text       string    `gorm:"type:text"`
	IsScanned  bool
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (DocumentPage) TableName() string {
	return "document_pages"
}
