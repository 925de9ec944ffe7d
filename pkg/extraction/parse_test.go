package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string   { return &s }
func numPtr(f float64) *float64 { return &f }

func TestSanitizeDate(t *testing.T) {
	var notes []string

	assert.Nil(t, sanitizeDate("effective_date", nil, &notes))
	assert.Nil(t, sanitizeDate("effective_date", strPtr(""), &notes))
	assert.Nil(t, sanitizeDate("effective_date", strPtr("null"), &notes))
	assert.Nil(t, sanitizeDate("effective_date", strPtr("NULL"), &notes))
	assert.Empty(t, notes, "empty and null placeholders drop silently")

	got := sanitizeDate("effective_date", strPtr(" 2026-03-15 "), &notes)
	require.NotNil(t, got)
	assert.Equal(t, "2026-03-15", *got)
	assert.Empty(t, notes)

	assert.Nil(t, sanitizeDate("effective_date", strPtr("03/15/2026"), &notes))
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0], "unparseable date")
}

func TestSanitizeMoney(t *testing.T) {
	var notes []string

	assert.Nil(t, sanitizeMoney("premium", nil, &notes))

	got := sanitizeMoney("premium", numPtr(25000), &notes)
	require.NotNil(t, got)
	assert.Equal(t, 25000.0, *got)
	assert.Empty(t, notes)

	assert.Nil(t, sanitizeMoney("premium", numPtr(-50), &notes))
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0], "negative amount")
}

func TestParseMoneyString(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$1,000,000", 1_000_000, true},
		{"1000000", 1_000_000, true},
		{"$ 2,500.50", 2500.50, true},
		{"", 0, false},
		{"$", 0, false},
		{"-500", 0, false},
		{"one million", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseMoneyString(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}

func TestSanitizePolicy(t *testing.T) {
	var notes []string
	p := &PolicyRecord{
		PolicyNumber:   strPtr("  GL-001  "),
		CarrierName:    strPtr("null"),
		InsuredName:    strPtr(""),
		EffectiveDate:  strPtr("2026-01-01"),
		ExpirationDate: strPtr("next year"),
		TotalPremium:   numPtr(-1),
		Status:         " Active ",
		Confidence:     1.3,
	}

	sanitizePolicy(p, &notes)

	assert.Equal(t, "GL-001", *p.PolicyNumber)
	assert.Nil(t, p.CarrierName)
	assert.Nil(t, p.InsuredName)
	assert.Equal(t, "2026-01-01", *p.EffectiveDate)
	assert.Nil(t, p.ExpirationDate)
	assert.Nil(t, p.TotalPremium)
	assert.Equal(t, "active", p.Status)
	assert.Equal(t, 1.0, p.Confidence)
	assert.Len(t, notes, 2)
}

func TestSanitizeCoverage(t *testing.T) {
	var notes []string
	c := &CoverageRecord{
		CoverageType:        " General_Liability ",
		EachOccurrenceLimit: numPtr(1_000_000),
		AggregateLimit:      numPtr(-2),
		Confidence:          -0.5,
	}

	sanitizeCoverage(c, &notes)

	assert.Equal(t, "general_liability", c.CoverageType)
	assert.Equal(t, 1_000_000.0, *c.EachOccurrenceLimit)
	assert.Nil(t, c.AggregateLimit)
	assert.Equal(t, 0.0, c.Confidence)
	require.NotNil(t, c.Details, "details map is always usable after sanitizing")
	assert.Len(t, notes, 1)
}
