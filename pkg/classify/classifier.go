// Package classify labels a document by type, detected coverage lines, and
// section boundaries using a single LLM call over a capped page sample.
package classify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"policy-intel-be/internal/constant"
	"policy-intel-be/pkg/llm"
	"policy-intel-be/pkg/llm/jsonx"
)

// Section is one classifier-reported region of the document.
type Section struct {
	Type        string   `json:"type"`
	StartPage   int      `json:"start_page"`
	EndPage     int      `json:"end_page"`
	FormNumbers []string `json:"form_numbers,omitempty"`
}

// Result is the parsed classification outcome. Enum fields are coerced to the
// closed vocabularies; anything unrecognized becomes "unknown".
type Result struct {
	DocumentType      string    `json:"document_type"`
	CoveragesDetected []string  `json:"coverages_detected"`
	Sections          []Section `json:"sections"`
	Confidence        float64   `json:"confidence"`
}

// Options caps how much document text reaches the model.
type Options struct {
	SamplePages int
	MaxTokens   int
}

func (o Options) normalized() Options {
	if o.SamplePages <= 0 {
		o.SamplePages = 10
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 1500
	}
	return o
}

// Classifier wraps an LLM provider with the classification instruction set.
type Classifier struct {
	provider llm.Provider
	opts     Options
}

func NewClassifier(provider llm.Provider, opts Options) *Classifier {
	return &Classifier{provider: provider, opts: opts.normalized()}
}

const systemPrompt = `You are an insurance document analyst. Given pages of an insurance document, respond with ONLY a JSON object, no prose, in this exact shape:
{
  "document_type": "policy|quote|binder|endorsement|certificate|unknown",
  "coverages_detected": ["general_liability", ...],
  "sections": [{"type": "declarations|coverage_form|endorsements|schedule|conditions|exclusions|definitions|unknown", "start_page": 1, "end_page": 2, "form_numbers": ["CG 00 01"]}],
  "confidence": 0.0
}
Allowed coverage values: general_liability, commercial_property, commercial_auto, workers_compensation, umbrella, professional_liability, cyber, directors_officers, epli, inland_marine, business_owners.
A business owners policy (BOP) bundles liability and property: when you detect one, include business_owners AND its component lines.
confidence is your 0 to 1 certainty in the document_type and coverage labels.`

const retryReminder = "Your previous answer was not valid JSON. Respond with ONLY the JSON object described, nothing else."

// Classify samples the leading pages and asks the model for labels. A parse
// failure is retried once with a stricter reminder; a second failure returns
// an unknown-type result at reduced confidence together with the error, so
// the pipeline can proceed while recording the degradation.
func (c *Classifier) Classify(ctx context.Context, pages map[int]string, fileName string) (*Result, error) {
	userContent := c.buildSample(pages, fileName)

	raw, err := c.complete(ctx, userContent)
	if err != nil {
		return fallbackResult(), err
	}

	var parsed Result
	if jsonErr := jsonx.ExtractObject(raw, &parsed); jsonErr != nil {
		raw, err = c.complete(ctx, userContent+"\n\n"+retryReminder)
		if err != nil {
			return fallbackResult(), err
		}
		if jsonErr = jsonx.ExtractObject(raw, &parsed); jsonErr != nil {
			return fallbackResult(), fmt.Errorf("parse classification: %w", jsonErr)
		}
	}

	sanitize(&parsed)
	return &parsed, nil
}

func (c *Classifier) complete(ctx context.Context, userContent string) (string, error) {
	resp, err := c.provider.Complete(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: "user", Content: userContent}},
		MaxTokens:   c.opts.MaxTokens,
		Temperature: 0.1,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (c *Classifier) buildSample(pages map[int]string, fileName string) string {
	numbers := make([]int, 0, len(pages))
	for n := range pages {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	if len(numbers) > c.opts.SamplePages {
		numbers = numbers[:c.opts.SamplePages]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Filename: %s\nTotal pages: %d\n", fileName, len(pages))
	for _, n := range numbers {
		fmt.Fprintf(&sb, "\n--- Page %d ---\n%s\n", n, pages[n])
	}
	return sb.String()
}

func fallbackResult() *Result {
	return &Result{
		DocumentType:      constant.DocumentTypeUnknown,
		CoveragesDetected: []string{},
		Sections:          []Section{},
		Confidence:        0.3,
	}
}

// sanitize coerces enums into the closed vocabularies, expands the combined
// business owners line, clamps confidence, and dedupes coverages.
func sanitize(r *Result) {
	if !constant.IsValidDocumentType(r.DocumentType) {
		r.DocumentType = constant.DocumentTypeUnknown
	}

	seen := map[string]bool{}
	coverages := make([]string, 0, len(r.CoveragesDetected)+2)
	add := func(ct string) {
		if ct == "" || seen[ct] {
			return
		}
		seen[ct] = true
		coverages = append(coverages, ct)
	}

	for _, ct := range r.CoveragesDetected {
		ct = strings.ToLower(strings.TrimSpace(ct))
		if !constant.IsValidCoverageType(ct) {
			continue
		}
		add(ct)
		if ct == constant.CoverageBusinessOwners {
			add(constant.CoverageGeneralLiability)
			add(constant.CoverageCommercialProperty)
		}
	}
	r.CoveragesDetected = coverages

	sections := r.Sections[:0]
	for _, s := range r.Sections {
		s.Type = strings.ToLower(strings.TrimSpace(s.Type))
		if !constant.IsValidSectionType(s.Type) {
			s.Type = constant.SectionUnknown
		}
		if s.StartPage < 1 || s.EndPage < s.StartPage {
			continue
		}
		sections = append(sections, s)
	}
	r.Sections = sections

	if r.Confidence < 0 {
		r.Confidence = 0
	}
	if r.Confidence > 1 {
		r.Confidence = 1
	}
}
