package entity

import (
	"time"

	"github.com/google/uuid"
)

// Policy holds the structured fields extracted from a document. All
// identification fields are nullable; absence is data, not an error.
type Policy struct {
	Id             uuid.UUID
	TenantId       uuid.UUID
	DocumentId     uuid.UUID
	PolicyNumber   *string
	CarrierName    *string
	NAICCode       *string
	InsuredName    *string
	InsuredAddress *string
	EffectiveDate  *time.Time
	ExpirationDate *time.Time
	TotalPremium   *float64
	Status         string // quote | bound | active
	Confidence     float64
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// Coverage is one line of protection within a policy. CoverageType is the only
// required field; an empty type invalidates the extraction.
type Coverage struct {
	Id                  uuid.UUID
	PolicyId            uuid.UUID
	CoverageType        string
	Subtype             *string
	EachOccurrenceLimit *float64
	AggregateLimit      *float64
	Deductible          *float64
	Premium             *float64
	IsClaimsMade        bool
	IsOccurrenceForm    bool
	RetroactiveDate     *time.Time
	Details             map[string]interface{}
	Confidence          float64
	CreatedAt           time.Time
}

// ValidationIssue is one persisted error or warning from the rule engine.
type ValidationIssue struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	Severity   string // error | warning
	Field      string
	Message    string
	Code       string
	CreatedAt  time.Time
}
