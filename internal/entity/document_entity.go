package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is one uploaded insurance PDF and the rollup of its pipeline run.
type Document struct {
	Id                uuid.UUID
	TenantId          uuid.UUID
	FileName          string
	DocumentType      string
	Status            string
	Stage             string // last committed pipeline stage
	PageCount         int
	QualityScore      int // 0-100, density of extractable text
	ScannedPageCount  int
	AppearsScanned    bool
	IsHybrid          bool
	OverallConfidence float64
	NeedsHumanReview  bool
	ErrorMessage      *string
	CreatedAt         time.Time
	UpdatedAt         *time.Time
	DeletedAt         *time.Time
}

// DocumentPage is the immutable per-page raw text produced once per document.
type DocumentPage struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	PageNumber int // 1-based
	Text       string
	IsScanned  bool
	CreatedAt  time.Time
}
