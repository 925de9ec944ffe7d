package chunker

import "strings"

// Section type names shared with the classifier vocabulary.
const (
	sectionDeclarations = "declarations"
	sectionCoverageForm = "coverage_form"
	sectionEndorsements = "endorsements"
	sectionSchedule     = "schedule"
	sectionConditions   = "conditions"
	sectionExclusions   = "exclusions"
	sectionDefinitions  = "definitions"
	sectionUnknown      = "unknown"
)

// sectionMarkers maps heading phrases to section types, checked in order so
// the more specific markers win.
var sectionMarkers = []struct {
	marker  string
	section string
}{
	{"declarations", sectionDeclarations},
	{"dec page", sectionDeclarations},
	{"schedule of forms", sectionSchedule},
	{"schedule of", sectionSchedule},
	{"endorsement", sectionEndorsements},
	{"exclusion", sectionExclusions},
	{"definitions", sectionDefinitions},
	{"conditions", sectionConditions},
	{"coverage form", sectionCoverageForm},
	{"coverage part", sectionCoverageForm},
	{"insuring agreement", sectionCoverageForm},
}

// detectSection guesses a section type from chunk text. It only inspects the
// leading portion where headings live; the classifier's page ranges override
// this via Retag.
func detectSection(text string) string {
	head := text
	if len(head) > 400 {
		head = head[:400]
	}
	head = strings.ToLower(head)

	for _, m := range sectionMarkers {
		if strings.Contains(head, m.marker) {
			return m.section
		}
	}
	return sectionUnknown
}
