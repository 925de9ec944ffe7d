package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadDocumentResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type DocumentListItem struct {
	Id                uuid.UUID `json:"id"`
	FileName          string    `json:"file_name"`
	DocumentType      string    `json:"document_type"`
	Status            string    `json:"status"`
	Stage             string    `json:"stage"`
	PageCount         int       `json:"page_count"`
	OverallConfidence float64   `json:"overall_confidence"`
	NeedsHumanReview  bool      `json:"needs_human_review"`
	CreatedAt         time.Time `json:"created_at"`
}

type ValidationIssueItem struct {
	Severity string `json:"severity"`
	Field    string `json:"field"`
	Message  string `json:"message"`
	Code     string `json:"code"`
}

type CoverageItem struct {
	Id                  uuid.UUID              `json:"id"`
	CoverageType        string                 `json:"coverage_type"`
	Subtype             *string                `json:"subtype"`
	EachOccurrenceLimit *float64               `json:"each_occurrence_limit"`
	AggregateLimit      *float64               `json:"aggregate_limit"`
	Deductible          *float64               `json:"deductible"`
	Premium             *float64               `json:"premium"`
	IsClaimsMade        bool                   `json:"is_claims_made"`
	IsOccurrenceForm    bool                   `json:"is_occurrence_form"`
	RetroactiveDate     *time.Time             `json:"retroactive_date"`
	Details             map[string]interface{} `json:"details"`
	Confidence          float64                `json:"confidence"`
}

type PolicyDetail struct {
	Id             uuid.UUID      `json:"id"`
	PolicyNumber   *string        `json:"policy_number"`
	CarrierName    *string        `json:"carrier_name"`
	NAICCode       *string        `json:"naic_code"`
	InsuredName    *string        `json:"insured_name"`
	InsuredAddress *string        `json:"insured_address"`
	EffectiveDate  *time.Time     `json:"effective_date"`
	ExpirationDate *time.Time     `json:"expiration_date"`
	TotalPremium   *float64       `json:"total_premium"`
	Status         string         `json:"status"`
	Confidence     float64        `json:"confidence"`
	Coverages      []CoverageItem `json:"coverages"`
}

type ShowDocumentResponse struct {
	Id                uuid.UUID             `json:"id"`
	FileName          string                `json:"file_name"`
	DocumentType      string                `json:"document_type"`
	Status            string                `json:"status"`
	Stage             string                `json:"stage"`
	PageCount         int                   `json:"page_count"`
	QualityScore      int                   `json:"quality_score"`
	ScannedPageCount  int                   `json:"scanned_page_count"`
	AppearsScanned    bool                  `json:"appears_scanned"`
	IsHybrid          bool                  `json:"is_hybrid"`
	OverallConfidence float64               `json:"overall_confidence"`
	NeedsHumanReview  bool                  `json:"needs_human_review"`
	ErrorMessage      *string               `json:"error_message"`
	Policy            *PolicyDetail         `json:"policy"`
	ValidationIssues  []ValidationIssueItem `json:"validation_issues"`
	ChunkCount        int64                 `json:"chunk_count"`
	EmbeddedCount     int64                 `json:"embedded_count"`
	CreatedAt         time.Time             `json:"created_at"`
}
