package constant

// Document lifecycle statuses. A document is terminal at Completed or Failed;
// Completed may still carry needs_human_review=true.
const (
	DocumentStatusUploaded   = "uploaded"
	DocumentStatusProcessing = "processing"
	DocumentStatusCompleted  = "completed"
	DocumentStatusFailed     = "failed"
)

// Pipeline stages, in execution order. The document row records the last
// committed stage so a cancelled run is left in a well-defined state.
const (
	StageExtractingText   = "extracting_text"
	StageChunking         = "chunking"
	StageClassifying      = "classifying"
	StageEmbedding        = "embedding"
	StageExtractingFields = "extracting_fields"
	StageValidating       = "validating"
)

// Section types a chunk can be tagged with.
const (
	SectionDeclarations = "declarations"
	SectionCoverageForm = "coverage_form"
	SectionEndorsements = "endorsements"
	SectionSchedule     = "schedule"
	SectionConditions   = "conditions"
	SectionExclusions   = "exclusions"
	SectionDefinitions  = "definitions"
	SectionUnknown      = "unknown"
)

// SectionTypes lists every valid section tag.
var SectionTypes = []string{
	SectionDeclarations,
	SectionCoverageForm,
	SectionEndorsements,
	SectionSchedule,
	SectionConditions,
	SectionExclusions,
	SectionDefinitions,
	SectionUnknown,
}

// Document types the classifier may return.
const (
	DocumentTypePolicy      = "policy"
	DocumentTypeQuote       = "quote"
	DocumentTypeBinder      = "binder"
	DocumentTypeEndorsement = "endorsement"
	DocumentTypeCertificate = "certificate"
	DocumentTypeUnknown     = "unknown"
)

var DocumentTypes = []string{
	DocumentTypePolicy,
	DocumentTypeQuote,
	DocumentTypeBinder,
	DocumentTypeEndorsement,
	DocumentTypeCertificate,
	DocumentTypeUnknown,
}

// Coverage type vocabulary. The classifier and extractor are constrained to
// these values; anything else falls back to the generic extraction strategy.
const (
	CoverageGeneralLiability      = "general_liability"
	CoverageCommercialProperty    = "commercial_property"
	CoverageCommercialAuto        = "commercial_auto"
	CoverageWorkersCompensation   = "workers_compensation"
	CoverageUmbrella              = "umbrella"
	CoverageProfessionalLiability = "professional_liability"
	CoverageCyber                 = "cyber"
	CoverageDirectorsOfficers     = "directors_officers"
	CoverageEPLI                  = "epli"
	CoverageInlandMarine          = "inland_marine"
	CoverageBusinessOwners        = "business_owners"
)

var CoverageTypes = []string{
	CoverageGeneralLiability,
	CoverageCommercialProperty,
	CoverageCommercialAuto,
	CoverageWorkersCompensation,
	CoverageUmbrella,
	CoverageProfessionalLiability,
	CoverageCyber,
	CoverageDirectorsOfficers,
	CoverageEPLI,
	CoverageInlandMarine,
	CoverageBusinessOwners,
}

// Policy statuses.
const (
	PolicyStatusQuote  = "quote"
	PolicyStatusBound  = "bound"
	PolicyStatusActive = "active"
)

// Extraction strategies.
const (
	ExtractionStrategyUnified = "unified"
	ExtractionStrategyTwoPass = "two_pass"
)

func IsValidDocumentType(t string) bool {
	return contains(DocumentTypes, t)
}

func IsValidCoverageType(t string) bool {
	return contains(CoverageTypes, t)
}

func IsValidSectionType(t string) bool {
	return contains(SectionTypes, t)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
