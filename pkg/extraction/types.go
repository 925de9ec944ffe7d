// Package extraction turns chunked document text into structured policy and
// coverage records via LLM calls, using either one unified call or a
// declarations-then-coverage two-pass strategy.
package extraction

import "encoding/json"

// PolicyRecord holds extracted policy identification fields. Nullable fields
// are pointers; a nil means the model could not find the value.
type PolicyRecord struct {
	PolicyNumber   *string  `json:"policy_number"`
	CarrierName    *string  `json:"carrier_name"`
	NAICCode       *string  `json:"naic_code"`
	InsuredName    *string  `json:"insured_name"`
	InsuredAddress *string  `json:"insured_address"`
	EffectiveDate  *string  `json:"effective_date"`
	ExpirationDate *string  `json:"expiration_date"`
	TotalPremium   *float64 `json:"total_premium"`
	Status         string   `json:"status"`
	Confidence     float64  `json:"confidence"`

	// decodeNotes collects amounts dropped during decoding; sanitizePolicy
	// flushes them into the result notes.
	decodeNotes []string
}

// UnmarshalJSON decodes money fields leniently so a formatted string amount
// never fails the whole parse.
func (p *PolicyRecord) UnmarshalJSON(data []byte) error {
	type policyAlias PolicyRecord
	aux := struct {
		*policyAlias
		TotalPremium moneyAmount `json:"total_premium"`
	}{policyAlias: (*policyAlias)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	p.decodeNotes = nil
	p.TotalPremium = aux.TotalPremium.value
	if aux.TotalPremium.note != "" {
		p.decodeNotes = append(p.decodeNotes, "total_premium: "+aux.TotalPremium.note)
	}
	return nil
}

// CoverageRecord holds one extracted coverage line.
type CoverageRecord struct {
	CoverageType        string                 `json:"coverage_type"`
	Subtype             *string                `json:"subtype"`
	EachOccurrenceLimit *float64               `json:"each_occurrence_limit"`
	AggregateLimit      *float64               `json:"aggregate_limit"`
	Deductible          *float64               `json:"deductible"`
	Premium             *float64               `json:"premium"`
	IsClaimsMade        bool                   `json:"is_claims_made"`
	IsOccurrenceForm    bool                   `json:"is_occurrence_form"`
	RetroactiveDate     *string                `json:"retroactive_date"`
	Details             map[string]interface{} `json:"details"`
	Confidence          float64                `json:"confidence"`

	decodeNotes []string
}

// UnmarshalJSON decodes the four money fields leniently, same as PolicyRecord.
func (c *CoverageRecord) UnmarshalJSON(data []byte) error {
	type coverageAlias CoverageRecord
	aux := struct {
		*coverageAlias
		EachOccurrenceLimit moneyAmount `json:"each_occurrence_limit"`
		AggregateLimit      moneyAmount `json:"aggregate_limit"`
		Deductible          moneyAmount `json:"deductible"`
		Premium             moneyAmount `json:"premium"`
	}{coverageAlias: (*coverageAlias)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	c.decodeNotes = nil
	for _, amount := range []struct {
		field string
		m     moneyAmount
		dst   **float64
	}{
		{"each_occurrence_limit", aux.EachOccurrenceLimit, &c.EachOccurrenceLimit},
		{"aggregate_limit", aux.AggregateLimit, &c.AggregateLimit},
		{"deductible", aux.Deductible, &c.Deductible},
		{"premium", aux.Premium, &c.Premium},
	} {
		*amount.dst = amount.m.value
		if amount.m.note != "" {
			c.decodeNotes = append(c.decodeNotes, amount.field+": "+amount.m.note)
		}
	}
	return nil
}

// Result is the combined output of a document extraction. Notes carry
// data-quality observations (dropped dates, malformed amounts) that are
// logged but never fail the run.
type Result struct {
	Policy    *PolicyRecord
	Coverages []CoverageRecord
	Notes     []string
}
