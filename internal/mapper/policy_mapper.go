package mapper

import (
	"policy-intel-be/internal/entity"
	"policy-intel-be/internal/model"

	"gorm.io/datatypes"
)

type PolicyMapper struct{}

func NewPolicyMapper() *PolicyMapper {
	return &PolicyMapper{}
}

func (m *PolicyMapper) ToEntity(p *model.Policy) *entity.Policy {
	if p == nil {
		return nil
	}

	var updatedAt = p.UpdatedAt
	return &entity.Policy{
		Id:             p.Id,
		TenantId:       p.TenantId,
		DocumentId:     p.DocumentId,
		PolicyNumber:   p.PolicyNumber,
		CarrierName:    p.CarrierName,
		NAICCode:       p.NAICCode,
		InsuredName:    p.InsuredName,
		InsuredAddress: p.InsuredAddress,
		EffectiveDate:  p.EffectiveDate,
		ExpirationDate: p.ExpirationDate,
		TotalPremium:   p.TotalPremium,
		Status:         p.Status,
		Confidence:     p.Confidence,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      &updatedAt,
	}
}

func (m *PolicyMapper) ToModel(p *entity.Policy) *model.Policy {
	if p == nil {
		return nil
	}
	mp := &model.Policy{
		Id:             p.Id,
		TenantId:       p.TenantId,
		DocumentId:     p.DocumentId,
		PolicyNumber:   p.PolicyNumber,
		CarrierName:    p.CarrierName,
		NAICCode:       p.NAICCode,
		InsuredName:    p.InsuredName,
		InsuredAddress: p.InsuredAddress,
		EffectiveDate:  p.EffectiveDate,
		ExpirationDate: p.ExpirationDate,
		TotalPremium:   p.TotalPremium,
		Status:         p.Status,
		Confidence:     p.Confidence,
		CreatedAt:      p.CreatedAt,
	}
	if p.UpdatedAt != nil {
		mp.UpdatedAt = *p.UpdatedAt
	}
	return mp
}

func (m *PolicyMapper) CoverageToEntity(c *model.Coverage) *entity.Coverage {
	if c == nil {
		return nil
	}
	return &entity.Coverage{
		Id:                  c.Id,
		PolicyId:            c.PolicyId,
		CoverageType:        c.CoverageType,
		Subtype:             c.Subtype,
		EachOccurrenceLimit: c.EachOccurrenceLimit,
		AggregateLimit:      c.AggregateLimit,
		Deductible:          c.Deductible,
		Premium:             c.Premium,
		IsClaimsMade:        c.IsClaimsMade,
		IsOccurrenceForm:    c.IsOccurrenceForm,
		RetroactiveDate:     c.RetroactiveDate,
		Details:             map[string]interface{}(c.Details),
		Confidence:          c.Confidence,
		CreatedAt:           c.CreatedAt,
	}
}

func (m *PolicyMapper) CoverageToModel(c *entity.Coverage) *model.Coverage {
	if c == nil {
		return nil
	}
	return &model.Coverage{
		Id:                  c.Id,
		PolicyId:            c.PolicyId,
		CoverageType:        c.CoverageType,
		Subtype:             c.Subtype,
		EachOccurrenceLimit: c.EachOccurrenceLimit,
		AggregateLimit:      c.AggregateLimit,
		Deductible:          c.Deductible,
		Premium:             c.Premium,
		IsClaimsMade:        c.IsClaimsMade,
		IsOccurrenceForm:    c.IsOccurrenceForm,
		RetroactiveDate:     c.RetroactiveDate,
		Details:             datatypes.JSONMap(c.Details),
		Confidence:          c.Confidence,
		CreatedAt:           c.CreatedAt,
	}
}

func (m *PolicyMapper) IssueToEntity(i *model.ValidationIssue) *entity.ValidationIssue {
	if i == nil {
		return nil
	}
	return &entity.ValidationIssue{
		Id:         i.Id,
		DocumentId: i.DocumentId,
		Severity:   i.Severity,
		Field:      i.Field,
		Message:    i.Message,
		Code:       i.Code,
		CreatedAt:  i.CreatedAt,
	}
}

func (m *PolicyMapper) IssueToModel(i *entity.ValidationIssue) *model.ValidationIssue {
	if i == nil {
		return nil
	}
	return &model.ValidationIssue{
		Id:         i.Id,
		DocumentId: i.DocumentId,
		Severity:   i.Severity,
		Field:      i.Field,
		Message:    i.Message,
		Code:       i.Code,
		CreatedAt:  i.CreatedAt,
	}
}
