package extraction

import (
	"context"
	"fmt"
	"strings"

	"policy-intel-be/internal/constant"
	"policy-intel-be/pkg/chunker"
	"policy-intel-be/pkg/llm"
	"policy-intel-be/pkg/llm/jsonx"
)

// Options selects the extraction strategy and caps call sizes.
type Options struct {
	Strategy      string
	MaxTokens     int
	MaxInputChars int
}

func (o Options) normalized() Options {
	if o.Strategy == "" {
		o.Strategy = constant.ExtractionStrategyUnified
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 3000
	}
	if o.MaxInputChars <= 0 {
		o.MaxInputChars = 48000
	}
	return o
}

// Extractor produces structured policy and coverage records from chunk text.
type Extractor struct {
	provider llm.Provider
	opts     Options
}

func NewExtractor(provider llm.Provider, opts Options) *Extractor {
	return &Extractor{provider: provider, opts: opts.normalized()}
}

const unifiedSystemPrompt = `You are an insurance data extraction engine. Given insurance document text, respond with ONLY a JSON object, no prose:
{
  "policy": {
    "policy_number": "...", "carrier_name": "...", "naic_code": "...",
    "insured_name": "...", "insured_address": "...",
    "effective_date": "YYYY-MM-DD", "expiration_date": "YYYY-MM-DD",
    "total_premium": 0, "status": "quote|bound|active", "confidence": 0.0
  },
  "coverages": [{
    "coverage_type": "...", "subtype": "...",
    "each_occurrence_limit": 0, "aggregate_limit": 0, "deductible": 0, "premium": 0,
    "is_claims_made": false, "is_occurrence_form": false,
    "retroactive_date": "YYYY-MM-DD",
    "details": {}, "confidence": 0.0
  }]
}
Use null for any field not present in the text. Dates must be ISO (YYYY-MM-DD). Monetary values must be plain numbers with no currency symbols or commas. Allowed coverage_type values: general_liability, commercial_property, commercial_auto, workers_compensation, umbrella, professional_liability, cyber, directors_officers, epli, inland_marine, business_owners. confidence is your 0 to 1 certainty per record. Never invent values that are not in the text.`

const parseRetryReminder = "Your previous answer was not valid JSON. Respond with ONLY the JSON object described, nothing else."

type unifiedPayload struct {
	Policy    *PolicyRecord    `json:"policy"`
	Coverages []CoverageRecord `json:"coverages"`
}

// Extract runs the configured strategy over the document's chunks.
// detectedCoverages comes from classification and steers the two-pass
// strategy; the unified strategy uses it only as a hint in the prompt.
func (e *Extractor) Extract(ctx context.Context, chunks []chunker.Chunk, detectedCoverages []string) (*Result, error) {
	if e.opts.Strategy == constant.ExtractionStrategyTwoPass {
		return e.extractTwoPass(ctx, chunks, detectedCoverages)
	}
	return e.extractUnified(ctx, chunks, detectedCoverages)
}

func (e *Extractor) extractUnified(ctx context.Context, chunks []chunker.Chunk, detectedCoverages []string) (*Result, error) {
	text := e.joinChunks(chunks)

	var sb strings.Builder
	if len(detectedCoverages) > 0 {
		fmt.Fprintf(&sb, "Coverage lines detected in this document: %s\n\n", strings.Join(detectedCoverages, ", "))
	}
	sb.WriteString(text)

	var payload unifiedPayload
	notes, err := e.completeJSON(ctx, unifiedSystemPrompt, sb.String(), &payload)
	if err != nil {
		return nil, err
	}

	result := &Result{Notes: notes}
	if payload.Policy == nil {
		result.Notes = append(result.Notes, "extraction returned no policy object")
		result.Policy = &PolicyRecord{Status: constant.PolicyStatusQuote, Confidence: 0.3}
	} else {
		result.Policy = payload.Policy
	}
	sanitizePolicy(result.Policy, &result.Notes)

	for i := range payload.Coverages {
		sanitizeCoverage(&payload.Coverages[i], &result.Notes)
	}
	result.Coverages = payload.Coverages
	return result, nil
}

// completeJSON issues the call and parses the object out of the response,
// retrying once with a stricter reminder on parse failure.
func (e *Extractor) completeJSON(ctx context.Context, system, userContent string, v interface{}) ([]string, error) {
	var notes []string

	resp, err := e.provider.Complete(ctx, llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: "user", Content: userContent}},
		MaxTokens:   e.opts.MaxTokens,
		Temperature: 0.1,
	})
	if err != nil {
		return nil, err
	}

	if jsonErr := jsonx.ExtractObject(resp.Text, v); jsonErr != nil {
		notes = append(notes, "first extraction response was not valid JSON, retried")
		resp, err = e.provider.Complete(ctx, llm.Request{
			System:      system,
			Messages:    []llm.Message{{Role: "user", Content: userContent + "\n\n" + parseRetryReminder}},
			MaxTokens:   e.opts.MaxTokens,
			Temperature: 0,
		})
		if err != nil {
			return notes, err
		}
		if jsonErr = jsonx.ExtractObject(resp.Text, v); jsonErr != nil {
			return notes, fmt.Errorf("parse extraction response: %w", jsonErr)
		}
	}
	return notes, nil
}

// joinChunks concatenates chunk text with separators, capped to the
// configured input budget.
func (e *Extractor) joinChunks(chunks []chunker.Chunk) string {
	var sb strings.Builder
	for _, c := range chunks {
		if sb.Len()+len(c.Text) > e.opts.MaxInputChars {
			break
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n---\n\n")
		}
		sb.WriteString(c.Text)
	}
	return sb.String()
}
