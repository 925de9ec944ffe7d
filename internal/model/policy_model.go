package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Policy struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantId       uuid.UUID `gorm:"type:uuid;not null;index"`
	DocumentId     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	PolicyNumber   *string   `gorm:"type:varchar(64)"`
	CarrierName    *string   `gorm:"type:text"`
	NAICCode       *string   `gorm:"type:varchar(8)"`
	InsuredName    *string   `gorm:"type:text"`
	InsuredAddress *string   `gorm:"type:text"`
	EffectiveDate  *time.Time
	ExpirationDate *time.Time
	TotalPremium   *float64
	Status         string `gorm:"type:varchar(16);default:quote"`
	Confidence     float64
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Policy) TableName() string {
	return "policies"
}

type Coverage struct {
	Id                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	PolicyId            uuid.UUID `gorm:"type:uuid;not null;index"`
	CoverageType        string    `gorm:"type:varchar(48);not null"`
	Subtype             *string   `gorm:"type:varchar(64)"`
	EachOccurrenceLimit *float64
	AggregateLimit      *float64
	Deductible          *float64
	Premium             *float64
	IsClaimsMade        bool
	IsOccurrenceForm    bool
	RetroactiveDate     *time.Time
	Details             datatypes.JSONMap `gorm:"type:jsonb"`
	Confidence          float64
	CreatedAt           time.Time `gorm:"autoCreateTime"`
}

func (Coverage) TableName() string {
	return "coverages"
}

type ValidationIssue struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentId uuid.UUID `gorm:"type:uuid;not null;index"`
	Severity   string    `gorm:"type:varchar(8);not null"`
	Field      string    `gorm:"type:varchar(64)"`
	Message    string    `gorm:"type:text"`
	Code       string    `gorm:"type:varchar(48);index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (ValidationIssue) TableName() string {
	return "validation_issues"
}
