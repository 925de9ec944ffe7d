package validation

import (
	"testing"

	"policy-intel-be/internal/constant"
	"policy-intel-be/pkg/extraction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string   { return &s }
func numPtr(f float64) *float64 { return &f }

func cleanPolicy() *extraction.PolicyRecord {
	return &extraction.PolicyRecord{
		PolicyNumber:   strPtr("GL-2026-001"),
		CarrierName:    strPtr("Hartland Mutual"),
		NAICCode:       strPtr("12345"),
		InsuredName:    strPtr("Acme Widgets LLC"),
		EffectiveDate:  strPtr("2026-01-01"),
		ExpirationDate: strPtr("2027-01-01"),
		TotalPremium:   numPtr(25000),
		Status:         constant.PolicyStatusActive,
		Confidence:     0.9,
	}
}

func cleanCoverage() *extraction.CoverageRecord {
	return &extraction.CoverageRecord{
		CoverageType:        constant.CoverageGeneralLiability,
		EachOccurrenceLimit: numPtr(1_000_000),
		AggregateLimit:      numPtr(2_000_000),
		Deductible:          numPtr(5_000),
		Premium:             numPtr(12_000),
		IsOccurrenceForm:    true,
		Confidence:          0.85,
	}
}

func issueCodes(issues []Issue) []string {
	codes := make([]string, 0, len(issues))
	for _, i := range issues {
		codes = append(codes, i.Code)
	}
	return codes
}

func TestValidatePolicyClean(t *testing.T) {
	res := ValidatePolicy(cleanPolicy(), constant.DocumentTypePolicy)
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
	assert.InDelta(t, 0.9, res.AdjustedConfidence, 1e-9)
	assert.False(t, res.NeedsHumanReview())
}

func TestValidatePolicyMissingInsuredName(t *testing.T) {
	p := cleanPolicy()
	p.InsuredName = nil
	res := ValidatePolicy(p, constant.DocumentTypePolicy)

	assert.False(t, res.IsValid)
	assert.Contains(t, issueCodes(res.Errors), CodeMissingInsuredName)
	assert.InDelta(t, 0.8, res.AdjustedConfidence, 1e-9)
	assert.True(t, res.NeedsHumanReview())
}

func TestValidatePolicyInvalidDateRange(t *testing.T) {
	p := cleanPolicy()
	p.EffectiveDate = strPtr("2026-06-01")
	p.ExpirationDate = strPtr("2026-06-01")
	res := ValidatePolicy(p, constant.DocumentTypePolicy)

	assert.False(t, res.IsValid)
	assert.Contains(t, issueCodes(res.Errors), CodeInvalidDateRange)
}

func TestValidatePolicyUnusualTerm(t *testing.T) {
	p := cleanPolicy()
	p.ExpirationDate = strPtr("2030-01-01") // 48 months
	res := ValidatePolicy(p, constant.DocumentTypePolicy)

	assert.True(t, res.IsValid)
	assert.Contains(t, issueCodes(res.Warnings), CodeUnusualTerm)
	assert.InDelta(t, 0.88, res.AdjustedConfidence, 1e-9)
}

func TestValidatePolicyNAICAndPremiumWarnings(t *testing.T) {
	p := cleanPolicy()
	p.NAICCode = strPtr("12AB5")
	p.TotalPremium = numPtr(12_000_000)
	res := ValidatePolicy(p, constant.DocumentTypePolicy)

	codes := issueCodes(res.Warnings)
	assert.Contains(t, codes, CodeInvalidNAIC)
	assert.Contains(t, codes, CodeHighPremium)
	assert.True(t, res.IsValid)
}

func TestValidatePolicyNumberOptionalOnQuotes(t *testing.T) {
	p := cleanPolicy()
	p.PolicyNumber = nil

	res := ValidatePolicy(p, constant.DocumentTypeQuote)
	assert.NotContains(t, issueCodes(res.Warnings), CodeMissingPolicyNumber)

	res = ValidatePolicy(p, constant.DocumentTypePolicy)
	assert.Contains(t, issueCodes(res.Warnings), CodeMissingPolicyNumber)
}

func TestValidateCoverageNegativeLimit(t *testing.T) {
	c := cleanCoverage()
	c.AggregateLimit = numPtr(-100)
	res := ValidateCoverage(c)

	assert.False(t, res.IsValid)
	assert.Contains(t, issueCodes(res.Errors), CodeNegativeLimit)
	// The negative aggregate also trips the GL low-aggregate warning, so the
	// reported 0.85 loses 0.15 for the error and 0.03 for the warning.
	assert.Contains(t, issueCodes(res.Warnings), CodeLowAggregate)
	assert.InDelta(t, 0.67, res.AdjustedConfidence, 1e-9)
}

func TestValidateCoverageLowAggregateOnlyForGL(t *testing.T) {
	c := cleanCoverage()
	c.EachOccurrenceLimit = numPtr(2_000_000)
	c.AggregateLimit = numPtr(1_000_000)

	res := ValidateCoverage(c)
	assert.Contains(t, issueCodes(res.Warnings), CodeLowAggregate)

	// The same limits on a property line are not flagged. Property aggregates
	// are structured differently, the GL occurrence/aggregate relationship
	// does not apply.
	c.CoverageType = constant.CoverageCommercialProperty
	res = ValidateCoverage(c)
	assert.NotContains(t, issueCodes(res.Warnings), CodeLowAggregate)
}

func TestValidateCoverageClaimsMadeWithoutRetroDate(t *testing.T) {
	c := cleanCoverage()
	c.CoverageType = constant.CoverageProfessionalLiability
	c.IsClaimsMade = true
	c.IsOccurrenceForm = false
	c.RetroactiveDate = nil

	res := ValidateCoverage(c)
	assert.Contains(t, issueCodes(res.Warnings), CodeMissingRetroactiveDate)
}

func TestValidateCoverageDeductibleExceedsLimit(t *testing.T) {
	c := cleanCoverage()
	c.Deductible = numPtr(1_000_000)

	res := ValidateCoverage(c)
	assert.Contains(t, issueCodes(res.Warnings), CodeDeductibleExceedsLimit)
}

func TestValidateCoverageConfidenceFloorsAtZero(t *testing.T) {
	c := cleanCoverage()
	c.CoverageType = ""
	c.Confidence = 0.1

	res := ValidateCoverage(c)
	assert.Equal(t, 0.0, res.AdjustedConfidence)
}

func TestValidateDocumentRollup(t *testing.T) {
	result := &extraction.Result{
		Policy:    cleanPolicy(),
		Coverages: []extraction.CoverageRecord{*cleanCoverage()},
	}

	doc := ValidateDocument(result, constant.DocumentTypePolicy, 0.9)

	require.Len(t, doc.Coverages, 1)
	assert.Empty(t, doc.DocumentIssues)
	// 0.10*0.9 + 0.30*0.9 + 0.60*0.85 with no penalties.
	assert.InDelta(t, 0.87, doc.OverallConfidence, 1e-9)
	assert.False(t, doc.NeedsHumanReview)
}

func TestValidateDocumentNoCoverages(t *testing.T) {
	result := &extraction.Result{Policy: cleanPolicy()}

	doc := ValidateDocument(result, constant.DocumentTypePolicy, 0.9)

	assert.Contains(t, issueCodes(doc.DocumentIssues), CodeNoCoverages)
	// Coverage confidence defaults to the 0.5 neutral midpoint, and the
	// NO_COVERAGES warning costs 0.01.
	assert.InDelta(t, 0.10*0.9+0.30*0.9+0.60*0.5-0.01, doc.OverallConfidence, 1e-9)
	assert.True(t, doc.NeedsHumanReview)
}

func TestValidateDocumentDuplicateCoverage(t *testing.T) {
	result := &extraction.Result{
		Policy:    cleanPolicy(),
		Coverages: []extraction.CoverageRecord{*cleanCoverage(), *cleanCoverage()},
	}

	doc := ValidateDocument(result, constant.DocumentTypePolicy, 0.9)
	assert.Contains(t, issueCodes(doc.DocumentIssues), CodeDuplicateCoverage)
}

func TestValidateDocumentErrorForcesReview(t *testing.T) {
	p := cleanPolicy()
	p.InsuredName = nil
	result := &extraction.Result{
		Policy:    p,
		Coverages: []extraction.CoverageRecord{*cleanCoverage()},
	}

	doc := ValidateDocument(result, constant.DocumentTypePolicy, 0.95)
	assert.True(t, doc.NeedsHumanReview, "any error forces review regardless of confidence")
}

func TestValidateDocumentClampsConfidence(t *testing.T) {
	p := cleanPolicy()
	p.InsuredName = nil
	p.EffectiveDate = strPtr("2026-06-01")
	p.ExpirationDate = strPtr("2026-05-01")
	p.Confidence = 0.2

	bad := cleanCoverage()
	bad.CoverageType = ""
	bad.EachOccurrenceLimit = numPtr(-1)
	bad.Confidence = 0.1

	result := &extraction.Result{
		Policy:    p,
		Coverages: []extraction.CoverageRecord{*bad, *bad, *bad},
	}

	doc := ValidateDocument(result, constant.DocumentTypePolicy, 0)
	assert.GreaterOrEqual(t, doc.OverallConfidence, 0.0)
	assert.LessOrEqual(t, doc.OverallConfidence, 1.0)
	assert.True(t, doc.NeedsHumanReview)
}

func TestValidateDocumentIdempotent(t *testing.T) {
	p := cleanPolicy()
	p.NAICCode = strPtr("12AB5")

	bad := cleanCoverage()
	bad.Deductible = numPtr(2_000_000)

	result := &extraction.Result{
		Policy:    p,
		Coverages: []extraction.CoverageRecord{*cleanCoverage(), *bad},
	}

	first := ValidateDocument(result, constant.DocumentTypePolicy, 0.8)
	second := ValidateDocument(result, constant.DocumentTypePolicy, 0.8)

	// Validation reads, never mutates; running it twice over the same input
	// must produce identical issues and confidence.
	assert.Equal(t, first, second)
	assert.InDelta(t, 0.9, p.Confidence, 1e-9)
	require.Len(t, result.Coverages, 2)
	assert.InDelta(t, 0.85, result.Coverages[0].Confidence, 1e-9)
}
