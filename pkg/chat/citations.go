package chat

import (
	"regexp"
	"strconv"

	"policy-intel-be/internal/repository/contract"

	"github.com/google/uuid"
)

var citationPattern = regexp.MustCompile(`\[Source:\s*Page\s*(\d+)(?:\s*-\s*\d+)?\]`)

// Citation resolves one [Source: Page X] marker back to the chunk that
// supplied that page.
type Citation struct {
	ChunkId    uuid.UUID
	DocumentId uuid.UUID
	PageNumber int
}

// extractCitations parses the markers out of the generated answer and maps
// each cited page to the first retrieval result covering it. Markers that
// match no excerpt are dropped rather than guessed at.
func extractCitations(answer string, results []*contract.ChunkSearchResult) []Citation {
	matches := citationPattern.FindAllStringSubmatch(answer, -1)
	if len(matches) == 0 {
		return nil
	}

	var citations []Citation
	seen := map[int]bool{}
	for _, m := range matches {
		page, err := strconv.Atoi(m[1])
		if err != nil || seen[page] {
			continue
		}
		seen[page] = true

		for _, res := range results {
			if page >= res.StartPage && page <= res.EndPage {
				citations = append(citations, Citation{
					ChunkId:    res.ChunkId,
					DocumentId: res.DocumentId,
					PageNumber: page,
				})
				break
			}
		}
	}
	return citations
}
