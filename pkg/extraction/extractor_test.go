package extraction

import (
	"context"
	"encoding/json"
	"testing"

	"policy-intel-be/pkg/chunker"
	"policy-intel-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	responses []string
	requests  []llm.Request
	err       error
}

func (p *scriptedProvider) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	idx := len(p.requests) - 1
	if idx >= len(p.responses) {
		idx = len(p.responses) - 1
	}
	return &llm.Response{Text: p.responses[idx]}, nil
}

func (p *scriptedProvider) Stream(context.Context, llm.Request) (<-chan llm.StreamEvent, error) {
	return nil, llm.ErrEmptyResponse
}

func TestExtractUnifiedParsesFormattedAmounts(t *testing.T) {
	provider := &scriptedProvider{responses: []string{`{
		"policy": {
			"policy_number": "GL-2024-001", "carrier_name": "Acme Mutual",
			"total_premium": "$25,000", "status": "bound", "confidence": 0.9
		},
		"coverages": [{
			"coverage_type": "general_liability",
			"each_occurrence_limit": "$1,000,000",
			"aggregate_limit": 2000000,
			"deductible": "waived",
			"premium": null,
			"confidence": 0.8
		}]
	}`}}

	extractor := NewExtractor(provider, Options{})
	result, err := extractor.Extract(context.Background(), []chunker.Chunk{{Text: "COMMERCIAL GENERAL LIABILITY DECLARATIONS"}}, nil)
	require.NoError(t, err)
	require.Len(t, provider.requests, 1, "a formatted amount must not burn the parse retry")

	require.NotNil(t, result.Policy.TotalPremium)
	assert.Equal(t, 25000.0, *result.Policy.TotalPremium)

	require.Len(t, result.Coverages, 1)
	cov := result.Coverages[0]
	require.NotNil(t, cov.EachOccurrenceLimit)
	assert.Equal(t, 1000000.0, *cov.EachOccurrenceLimit)
	require.NotNil(t, cov.AggregateLimit)
	assert.Equal(t, 2000000.0, *cov.AggregateLimit)
	assert.Nil(t, cov.Deductible)
	assert.Nil(t, cov.Premium)
	assert.Contains(t, result.Notes, `deductible: unparseable amount "waived" dropped`)
}

func TestCoverageRecordLenientMoneyDecode(t *testing.T) {
	var c CoverageRecord
	require.NoError(t, json.Unmarshal([]byte(`{
		"coverage_type": "cyber",
		"each_occurrence_limit": "1,500,000",
		"aggregate_limit": null,
		"deductible": "",
		"premium": "TBD",
		"confidence": 0.7
	}`), &c))

	require.NotNil(t, c.EachOccurrenceLimit)
	assert.Equal(t, 1500000.0, *c.EachOccurrenceLimit)
	assert.Nil(t, c.AggregateLimit)
	assert.Nil(t, c.Deductible)
	assert.Nil(t, c.Premium)

	var notes []string
	sanitizeCoverage(&c, &notes)
	assert.Contains(t, notes, `premium: unparseable amount "TBD" dropped`)
	assert.NotContains(t, notes, `deductible: unparseable amount "" dropped`)
}
