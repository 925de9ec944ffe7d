package extraction

import (
	"context"
	"fmt"
	"strings"

	"policy-intel-be/internal/constant"
	"policy-intel-be/pkg/chunker"
)

// coverageStrategy is one per-type extraction pass. Each entry contributes
// the type-specific guidance appended to the generic coverage prompt.
type coverageStrategy struct {
	guidance string
}

// coverageStrategies routes a coverage type to its specialized prompt.
// Unlisted types fall through to genericCoverageStrategy.
var coverageStrategies = map[string]coverageStrategy{
	constant.CoverageGeneralLiability: {
		guidance: "Look for each occurrence limit, general aggregate limit, products-completed operations aggregate, personal and advertising injury limit, and medical expense limit. Record the extras under details.",
	},
	constant.CoverageCommercialProperty: {
		guidance: "Look for building limit, business personal property limit, business income limit, and the deductible per cause of loss. Record valuation basis (RC or ACV) and coinsurance under details.",
	},
	constant.CoverageCommercialAuto: {
		guidance: "Look for combined single limit, covered auto symbols, uninsured motorist limits, and comprehensive/collision deductibles. Record vehicle schedule entries under details.",
	},
	constant.CoverageWorkersCompensation: {
		guidance: "Look for employers liability limits (each accident, disease policy limit, disease each employee) and state classifications. Record class codes and rates under details.",
	},
	constant.CoverageProfessionalLiability: {
		guidance: "This line is usually claims-made. Look for the retroactive date, per-claim limit, aggregate limit, and deductible.",
	},
	constant.CoverageCyber: {
		guidance: "This line is usually claims-made. Look for the retroactive date, per-claim and aggregate limits, and sublimits for breach response, ransomware, and business interruption under details.",
	},
	constant.CoverageDirectorsOfficers: {
		guidance: "This line is usually claims-made. Look for side A/B/C limits, the retention, and the retroactive or continuity date.",
	},
	constant.CoverageUmbrella: {
		guidance: "Look for the umbrella each occurrence and aggregate limits, the self-insured retention, and the scheduled underlying policies under details.",
	},
}

var genericCoverageStrategy = coverageStrategy{
	guidance: "Extract whatever limits, deductibles, and premium amounts are stated for this coverage line.",
}

func strategyFor(coverageType string) coverageStrategy {
	if s, ok := coverageStrategies[coverageType]; ok {
		return s
	}
	return genericCoverageStrategy
}

const policyOnlySystemPrompt = `You are an insurance data extraction engine. Given the declarations text of an insurance document, respond with ONLY a JSON object, no prose:
{
  "policy_number": "...", "carrier_name": "...", "naic_code": "...",
  "insured_name": "...", "insured_address": "...",
  "effective_date": "YYYY-MM-DD", "expiration_date": "YYYY-MM-DD",
  "total_premium": 0, "status": "quote|bound|active", "confidence": 0.0
}
Use null for any field not present. Dates must be ISO. Monetary values must be plain numbers. Never invent values.`

const coverageSystemPromptFmt = `You are an insurance data extraction engine. Extract the %s coverage from the document text. Respond with ONLY a JSON object, no prose:
{
  "coverage_type": "%s", "subtype": "...",
  "each_occurrence_limit": 0, "aggregate_limit": 0, "deductible": 0, "premium": 0,
  "is_claims_made": false, "is_occurrence_form": false,
  "retroactive_date": "YYYY-MM-DD",
  "details": {}, "confidence": 0.0
}
%s
Use null for any field not present. Dates must be ISO. Monetary values must be plain numbers. Never invent values.`

// extractTwoPass runs a policy-only pass over declarations text, then one
// pass per detected coverage type through the strategy table.
func (e *Extractor) extractTwoPass(ctx context.Context, chunks []chunker.Chunk, detectedCoverages []string) (*Result, error) {
	result := &Result{}

	declText := e.joinChunks(selectSection(chunks, constant.SectionDeclarations))

	var policy PolicyRecord
	notes, err := e.completeJSON(ctx, policyOnlySystemPrompt, declText, &policy)
	result.Notes = append(result.Notes, notes...)
	if err != nil {
		return nil, fmt.Errorf("policy pass: %w", err)
	}
	sanitizePolicy(&policy, &result.Notes)
	result.Policy = &policy

	fullText := e.joinChunks(chunks)
	for _, coverageType := range detectedCoverages {
		if coverageType == constant.CoverageBusinessOwners {
			// The BOP line itself carries no limits; its component lines
			// are extracted under their own types.
			continue
		}

		strategy := strategyFor(coverageType)
		system := fmt.Sprintf(coverageSystemPromptFmt,
			strings.ReplaceAll(coverageType, "_", " "), coverageType, strategy.guidance)

		var coverage CoverageRecord
		passNotes, passErr := e.completeJSON(ctx, system, fullText, &coverage)
		result.Notes = append(result.Notes, passNotes...)
		if passErr != nil {
			result.Notes = append(result.Notes, fmt.Sprintf("coverage pass %s failed: %v", coverageType, passErr))
			continue
		}
		if coverage.CoverageType == "" {
			coverage.CoverageType = coverageType
		}
		sanitizeCoverage(&coverage, &result.Notes)
		result.Coverages = append(result.Coverages, coverage)
	}

	return result, nil
}

// selectSection filters chunks by section tag, falling back to all chunks
// when no chunk carries the tag.
func selectSection(chunks []chunker.Chunk, sectionType string) []chunker.Chunk {
	var matched []chunker.Chunk
	for _, c := range chunks {
		if c.SectionType == sectionType {
			matched = append(matched, c)
		}
	}
	if len(matched) == 0 {
		return chunks
	}
	return matched
}
