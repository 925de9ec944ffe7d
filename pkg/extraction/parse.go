package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var moneyArtifacts = regexp.MustCompile(`[$,\s]`)

// moneyAmount decodes a money value the model may emit as a number or as a
// formatted string like "$1,000,000". Strings go through parseMoneyString;
// anything unparseable decodes to nil with a note instead of failing the
// whole extraction.
type moneyAmount struct {
	value *float64
	note  string
}

func (m *moneyAmount) UnmarshalJSON(data []byte) error {
	m.value = nil
	m.note = ""

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(trimmed, &f); err == nil {
		m.value = &f
		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" || strings.EqualFold(s, "null") {
			return nil
		}
		if parsed, ok := parseMoneyString(s); ok {
			m.value = &parsed
			return nil
		}
		m.note = fmt.Sprintf("unparseable amount %q dropped", s)
		return nil
	}

	m.note = fmt.Sprintf("unexpected amount %s dropped", trimmed)
	return nil
}

// sanitizeDate keeps only parseable ISO dates. Anything else becomes nil
// with a note; a bad date never fails the extraction.
func sanitizeDate(field string, value *string, notes *[]string) *string {
	if value == nil {
		return nil
	}
	s := strings.TrimSpace(*value)
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		*notes = append(*notes, fmt.Sprintf("%s: unparseable date %q dropped", field, s))
		return nil
	}
	return &s
}

// sanitizeMoney strips formatting artifacts and rejects negatives. Malformed
// amounts become nil with a note.
func sanitizeMoney(field string, value *float64, notes *[]string) *float64 {
	if value == nil {
		return nil
	}
	if *value < 0 {
		*notes = append(*notes, fmt.Sprintf("%s: negative amount %.2f dropped", field, *value))
		return nil
	}
	return value
}

// parseMoneyString handles models that return "$1,000,000" instead of a
// number.
func parseMoneyString(s string) (float64, bool) {
	cleaned := moneyArtifacts.ReplaceAllString(strings.TrimSpace(s), "")
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return f, true
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// sanitizePolicy normalizes a freshly parsed policy record in place.
func sanitizePolicy(p *PolicyRecord, notes *[]string) {
	*notes = append(*notes, p.decodeNotes...)
	p.decodeNotes = nil
	p.EffectiveDate = sanitizeDate("effective_date", p.EffectiveDate, notes)
	p.ExpirationDate = sanitizeDate("expiration_date", p.ExpirationDate, notes)
	p.TotalPremium = sanitizeMoney("total_premium", p.TotalPremium, notes)
	p.Status = strings.ToLower(strings.TrimSpace(p.Status))
	p.Confidence = clampConfidence(p.Confidence)
	trimStringPtr(&p.PolicyNumber)
	trimStringPtr(&p.CarrierName)
	trimStringPtr(&p.NAICCode)
	trimStringPtr(&p.InsuredName)
	trimStringPtr(&p.InsuredAddress)
}

// sanitizeCoverage normalizes one coverage record in place.
func sanitizeCoverage(c *CoverageRecord, notes *[]string) {
	*notes = append(*notes, c.decodeNotes...)
	c.decodeNotes = nil
	c.CoverageType = strings.ToLower(strings.TrimSpace(c.CoverageType))
	c.EachOccurrenceLimit = sanitizeMoney("each_occurrence_limit", c.EachOccurrenceLimit, notes)
	c.AggregateLimit = sanitizeMoney("aggregate_limit", c.AggregateLimit, notes)
	c.Deductible = sanitizeMoney("deductible", c.Deductible, notes)
	c.Premium = sanitizeMoney("premium", c.Premium, notes)
	c.RetroactiveDate = sanitizeDate("retroactive_date", c.RetroactiveDate, notes)
	c.Confidence = clampConfidence(c.Confidence)
	trimStringPtr(&c.Subtype)
	if c.Details == nil {
		c.Details = map[string]interface{}{}
	}
}

func trimStringPtr(s **string) {
	if *s == nil {
		return
	}
	trimmed := strings.TrimSpace(**s)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		*s = nil
		return
	}
	*s = &trimmed
}
