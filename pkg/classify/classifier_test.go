package classify

import (
	"context"
	"errors"
	"testing"

	"policy-intel-be/internal/constant"
	"policy-intel-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider returns canned completions in order, recording the
// requests it receives.
type scriptedProvider struct {
	responses []string
	err       error
	requests  []llm.Request
}

func (s *scriptedProvider) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	idx := len(s.requests) - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return &llm.Response{Text: s.responses[idx]}, nil
}

func (s *scriptedProvider) Stream(context.Context, llm.Request) (<-chan llm.StreamEvent, error) {
	return nil, errors.New("not implemented")
}

func samplePages() map[int]string {
	return map[int]string{
		1: "BUSINESSOWNERS POLICY DECLARATIONS",
		2: "SECTION I - PROPERTY",
		3: "SECTION II - LIABILITY",
	}
}

func TestClassifyParsesResponse(t *testing.T) {
	provider := &scriptedProvider{responses: []string{`{
		"document_type": "policy",
		"coverages_detected": ["general_liability"],
		"sections": [{"type": "declarations", "start_page": 1, "end_page": 1}],
		"confidence": 0.92
	}`}}
	c := NewClassifier(provider, Options{})

	res, err := c.Classify(context.Background(), samplePages(), "bop.pdf")
	require.NoError(t, err)
	assert.Equal(t, constant.DocumentTypePolicy, res.DocumentType)
	assert.Equal(t, []string{constant.CoverageGeneralLiability}, res.CoveragesDetected)
	require.Len(t, res.Sections, 1)
	assert.Equal(t, constant.SectionDeclarations, res.Sections[0].Type)
	assert.InDelta(t, 0.92, res.Confidence, 1e-9)
	require.Len(t, provider.requests, 1)
}

func TestClassifyExpandsBusinessOwners(t *testing.T) {
	provider := &scriptedProvider{responses: []string{`{
		"document_type": "policy",
		"coverages_detected": ["business_owners"],
		"sections": [],
		"confidence": 0.8
	}`}}
	c := NewClassifier(provider, Options{})

	res, err := c.Classify(context.Background(), samplePages(), "bop.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{
		constant.CoverageBusinessOwners,
		constant.CoverageGeneralLiability,
		constant.CoverageCommercialProperty,
	}, res.CoveragesDetected)
}

func TestClassifySanitizesUnknownEnums(t *testing.T) {
	provider := &scriptedProvider{responses: []string{`{
		"document_type": "renewal_notice",
		"coverages_detected": ["General_Liability", "flood", "general_liability"],
		"sections": [
			{"type": "cover_letter", "start_page": 1, "end_page": 2},
			{"type": "declarations", "start_page": 5, "end_page": 3}
		],
		"confidence": 1.4
	}`}}
	c := NewClassifier(provider, Options{})

	res, err := c.Classify(context.Background(), samplePages(), "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, constant.DocumentTypeUnknown, res.DocumentType)
	// Casing is normalized, unknown values dropped, duplicates collapsed.
	assert.Equal(t, []string{constant.CoverageGeneralLiability}, res.CoveragesDetected)
	// The unknown section type is kept but retagged; the inverted page range
	// is dropped entirely.
	require.Len(t, res.Sections, 1)
	assert.Equal(t, constant.SectionUnknown, res.Sections[0].Type)
	assert.Equal(t, 1.0, res.Confidence)
}

func TestClassifyRetriesOnceOnBadJSON(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"The document appears to be an insurance policy.",
		`{"document_type": "policy", "coverages_detected": [], "sections": [], "confidence": 0.7}`,
	}}
	c := NewClassifier(provider, Options{})

	res, err := c.Classify(context.Background(), samplePages(), "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, constant.DocumentTypePolicy, res.DocumentType)
	require.Len(t, provider.requests, 2)
	assert.Contains(t, provider.requests[1].Messages[0].Content, "not valid JSON")
}

func TestClassifyFallsBackAfterSecondParseFailure(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"not json",
		"still not json",
	}}
	c := NewClassifier(provider, Options{})

	res, err := c.Classify(context.Background(), samplePages(), "doc.pdf")
	assert.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, constant.DocumentTypeUnknown, res.DocumentType)
	assert.InDelta(t, 0.3, res.Confidence, 1e-9)
}

func TestClassifyFallsBackOnProviderError(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("connection refused")}
	c := NewClassifier(provider, Options{})

	res, err := c.Classify(context.Background(), samplePages(), "doc.pdf")
	assert.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, constant.DocumentTypeUnknown, res.DocumentType)
}

func TestBuildSampleCapsPages(t *testing.T) {
	pages := map[int]string{}
	for i := 1; i <= 30; i++ {
		pages[i] = "page body"
	}
	provider := &scriptedProvider{responses: []string{
		`{"document_type": "policy", "coverages_detected": [], "sections": [], "confidence": 0.9}`,
	}}
	c := NewClassifier(provider, Options{SamplePages: 5})

	_, err := c.Classify(context.Background(), pages, "long.pdf")
	require.NoError(t, err)

	sent := provider.requests[0].Messages[0].Content
	assert.Contains(t, sent, "Total pages: 30")
	assert.Contains(t, sent, "--- Page 5 ---")
	assert.NotContains(t, sent, "--- Page 6 ---")
}
