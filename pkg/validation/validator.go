// Package validation is the deterministic rule engine over extracted policy
// and coverage records. It never calls out, never mutates its inputs, and
// never raises a confidence score.
package validation

import (
	"fmt"
	"regexp"
	"time"

	"policy-intel-be/internal/constant"
	"policy-intel-be/pkg/extraction"
)

// Issue codes.
const (
	CodeMissingInsuredName     = "MISSING_INSURED_NAME"
	CodeInvalidDateRange       = "INVALID_DATE_RANGE"
	CodeUnusualTerm            = "UNUSUAL_TERM"
	CodeInvalidNAIC            = "INVALID_NAIC"
	CodeNonPositivePremium     = "NON_POSITIVE_PREMIUM"
	CodeHighPremium            = "HIGH_PREMIUM"
	CodeMissingPolicyNumber    = "MISSING_POLICY_NUMBER"
	CodeMissingCoverageType    = "MISSING_COVERAGE_TYPE"
	CodeNegativeLimit          = "NEGATIVE_LIMIT"
	CodeDeductibleExceedsLimit = "DEDUCTIBLE_EXCEEDS_LIMIT"
	CodeMissingRetroactiveDate = "MISSING_RETRO_DATE"
	CodeLowAggregate           = "LOW_AGGREGATE"
	CodeNoCoverages            = "NO_COVERAGES"
	CodeDuplicateCoverage      = "DUPLICATE_COVERAGE"
)

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

const highPremiumLimit = 10_000_000

var naicPattern = regexp.MustCompile(`^\d{5}$`)

// Issue is one validation finding.
type Issue struct {
	Severity string `json:"severity"`
	Field    string `json:"field"`
	Message  string `json:"message"`
	Code     string `json:"code"`
}

// UnitResult is the validation outcome for one policy or coverage record.
type UnitResult struct {
	IsValid            bool
	Errors             []Issue
	Warnings           []Issue
	AdjustedConfidence float64
}

// NeedsHumanReview is the single gate downstream consumers use to route a
// unit for manual review.
func (u UnitResult) NeedsHumanReview() bool {
	return !u.IsValid || u.AdjustedConfidence < 0.7
}

// DocumentResult aggregates per-unit results with the document rollup.
type DocumentResult struct {
	Policy            UnitResult
	Coverages         []UnitResult
	DocumentIssues    []Issue
	OverallConfidence float64
	NeedsHumanReview  bool
}

// ValidatePolicy applies the policy rules and adjusts the reported
// confidence down by 0.1 per error and 0.02 per warning, floored at 0.
func ValidatePolicy(p *extraction.PolicyRecord, documentType string) UnitResult {
	var errs, warns []Issue

	if p.InsuredName == nil {
		errs = append(errs, Issue{SeverityError, "insured_name", "insured name is required", CodeMissingInsuredName})
	}

	eff := parseDate(p.EffectiveDate)
	exp := parseDate(p.ExpirationDate)
	if eff != nil && exp != nil {
		if !exp.After(*eff) {
			errs = append(errs, Issue{SeverityError, "expiration_date", "expiration date must be after effective date", CodeInvalidDateRange})
		} else {
			months := monthsBetween(*eff, *exp)
			if months < 1 || months > 36 {
				warns = append(warns, Issue{SeverityWarning, "expiration_date",
					fmt.Sprintf("unusual policy term of %d months", months), CodeUnusualTerm})
			}
		}
	}

	if p.NAICCode != nil && !naicPattern.MatchString(*p.NAICCode) {
		warns = append(warns, Issue{SeverityWarning, "naic_code",
			fmt.Sprintf("NAIC code %q is not 5 digits", *p.NAICCode), CodeInvalidNAIC})
	}

	if p.TotalPremium != nil {
		if *p.TotalPremium <= 0 {
			warns = append(warns, Issue{SeverityWarning, "total_premium", "premium is not positive", CodeNonPositivePremium})
		} else if *p.TotalPremium > highPremiumLimit {
			warns = append(warns, Issue{SeverityWarning, "total_premium",
				fmt.Sprintf("premium %.2f exceeds %d", *p.TotalPremium, highPremiumLimit), CodeHighPremium})
		}
	}

	if p.PolicyNumber == nil && documentType != constant.DocumentTypeQuote {
		warns = append(warns, Issue{SeverityWarning, "policy_number", "policy number missing on a non-quote document", CodeMissingPolicyNumber})
	}

	return unitResult(p.Confidence, errs, warns, 0.1, 0.02)
}

// ValidateCoverage applies the coverage rules and adjusts confidence down by
// 0.15 per error and 0.03 per warning, floored at 0.
func ValidateCoverage(c *extraction.CoverageRecord) UnitResult {
	var errs, warns []Issue

	if c.CoverageType == "" {
		errs = append(errs, Issue{SeverityError, "coverage_type", "coverage type is required", CodeMissingCoverageType})
	}

	for _, check := range []struct {
		field string
		value *float64
	}{
		{"each_occurrence_limit", c.EachOccurrenceLimit},
		{"aggregate_limit", c.AggregateLimit},
		{"deductible", c.Deductible},
	} {
		if check.value != nil && *check.value < 0 {
			errs = append(errs, Issue{SeverityError, check.field,
				fmt.Sprintf("%s must be non-negative", check.field), CodeNegativeLimit})
		}
	}

	if c.Deductible != nil && c.EachOccurrenceLimit != nil && *c.Deductible >= *c.EachOccurrenceLimit && *c.EachOccurrenceLimit > 0 {
		warns = append(warns, Issue{SeverityWarning, "deductible", "deductible meets or exceeds the occurrence limit", CodeDeductibleExceedsLimit})
	}

	if c.IsClaimsMade && c.RetroactiveDate == nil {
		warns = append(warns, Issue{SeverityWarning, "retroactive_date", "claims-made coverage without a retroactive date", CodeMissingRetroactiveDate})
	}

	if c.CoverageType == constant.CoverageGeneralLiability &&
		c.AggregateLimit != nil && c.EachOccurrenceLimit != nil &&
		*c.AggregateLimit < *c.EachOccurrenceLimit {
		warns = append(warns, Issue{SeverityWarning, "aggregate_limit", "aggregate limit is below the occurrence limit", CodeLowAggregate})
	}

	return unitResult(c.Confidence, errs, warns, 0.15, 0.03)
}

// ValidateDocument validates the full extraction and computes the weighted
// document rollup. The rollup starts at 0.10 x classification + 0.30 x
// policy + 0.60 x average coverage confidence, then drops 0.05 per error and
// 0.01 per warning across all units, clamped to [0,1].
func ValidateDocument(result *extraction.Result, documentType string, classificationConfidence float64) DocumentResult {
	doc := DocumentResult{}

	doc.Policy = ValidatePolicy(result.Policy, documentType)

	seen := map[string]int{}
	for i := range result.Coverages {
		c := &result.Coverages[i]
		doc.Coverages = append(doc.Coverages, ValidateCoverage(c))
		seen[c.CoverageType]++
	}
	for coverageType, count := range seen {
		if count > 1 && coverageType != "" {
			doc.DocumentIssues = append(doc.DocumentIssues, Issue{SeverityWarning, "coverages",
				fmt.Sprintf("coverage type %s extracted %d times", coverageType, count), CodeDuplicateCoverage})
		}
	}

	coverageConfidence := 0.5
	if len(doc.Coverages) == 0 {
		doc.DocumentIssues = append(doc.DocumentIssues, Issue{SeverityWarning, "coverages", "no coverages extracted", CodeNoCoverages})
	} else {
		var sum float64
		for _, cu := range doc.Coverages {
			sum += cu.AdjustedConfidence
		}
		coverageConfidence = sum / float64(len(doc.Coverages))
	}

	totalErrors := len(doc.Policy.Errors)
	totalWarnings := len(doc.Policy.Warnings) + len(doc.DocumentIssues)
	for _, cu := range doc.Coverages {
		totalErrors += len(cu.Errors)
		totalWarnings += len(cu.Warnings)
	}

	overall := 0.10*clamp(classificationConfidence) +
		0.30*doc.Policy.AdjustedConfidence +
		0.60*coverageConfidence
	overall -= 0.05*float64(totalErrors) + 0.01*float64(totalWarnings)
	doc.OverallConfidence = clamp(overall)

	isValid := totalErrors == 0
	doc.NeedsHumanReview = !isValid || doc.OverallConfidence < 0.7
	return doc
}

func unitResult(reported float64, errs, warns []Issue, errPenalty, warnPenalty float64) UnitResult {
	adjusted := clamp(reported) - errPenalty*float64(len(errs)) - warnPenalty*float64(len(warns))
	if adjusted < 0 {
		adjusted = 0
	}
	return UnitResult{
		IsValid:            len(errs) == 0,
		Errors:             errs,
		Warnings:           warns,
		AdjustedConfidence: adjusted,
	}
}

func parseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil
	}
	return &t
}

// monthsBetween counts whole months from a to b, rounding by day of month.
func monthsBetween(a, b time.Time) int {
	months := int(b.Year()-a.Year())*12 + int(b.Month()-a.Month())
	if b.Day() < a.Day() {
		months--
	}
	return months
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
