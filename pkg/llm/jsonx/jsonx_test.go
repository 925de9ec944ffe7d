package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	DocumentType string  `json:"document_type"`
	Confidence   float64 `json:"confidence"`
}

func TestExtractObjectPlain(t *testing.T) {
	var p payload
	err := ExtractObject(`{"document_type": "policy", "confidence": 0.92}`, &p)
	require.NoError(t, err)
	assert.Equal(t, "policy", p.DocumentType)
	assert.InDelta(t, 0.92, p.Confidence, 1e-9)
}

func TestExtractObjectStripsFences(t *testing.T) {
	raw := "```json\n{\"document_type\": \"quote\", \"confidence\": 0.8}\n```"
	var p payload
	require.NoError(t, ExtractObject(raw, &p))
	assert.Equal(t, "quote", p.DocumentType)

	raw = "```\n{\"document_type\": \"binder\", \"confidence\": 0.7}\n```"
	require.NoError(t, ExtractObject(raw, &p))
	assert.Equal(t, "binder", p.DocumentType)
}

func TestExtractObjectFromSurroundingProse(t *testing.T) {
	raw := `Sure! Here is the classification you asked for:
{"document_type": "endorsement", "confidence": 0.85}
Let me know if you need anything else.`

	var p payload
	require.NoError(t, ExtractObject(raw, &p))
	assert.Equal(t, "endorsement", p.DocumentType)
}

func TestExtractObjectBalancedSpanRespectsStrings(t *testing.T) {
	// The brace inside the string literal must not close the span early.
	raw := `{"document_type": "policy {draft}", "confidence": 1}`
	var p payload
	require.NoError(t, ExtractObject(raw, &p))
	assert.Equal(t, "policy {draft}", p.DocumentType)
}

func TestExtractObjectNested(t *testing.T) {
	raw := `prefix {"outer": {"inner": 1}, "document_type": "policy", "confidence": 0.5} suffix`
	var p payload
	require.NoError(t, ExtractObject(raw, &p))
	assert.Equal(t, "policy", p.DocumentType)
}

func TestExtractObjectRepairsMissingKeyQuotes(t *testing.T) {
	raw := `{document_type": "certificate", confidence": 0.6}`
	var p payload
	require.NoError(t, ExtractObject(raw, &p))
	assert.Equal(t, "certificate", p.DocumentType)
	assert.InDelta(t, 0.6, p.Confidence, 1e-9)
}

func TestExtractObjectNoJSON(t *testing.T) {
	var p payload
	err := ExtractObject("I could not classify this document, sorry.", &p)
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestExtractObjectUnrepairable(t *testing.T) {
	var p payload
	err := ExtractObject(`{"document_type": }`, &p)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoJSON)
}
