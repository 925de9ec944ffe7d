package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))

	// Dense prose counts by characters (~4 chars per token).
	prose := strings.Repeat("abcdefgh ", 10) // 90 chars, 10 words
	assert.Equal(t, 23, EstimateTokens(prose))

	// Tabular text with short cells counts by words.
	table := strings.Repeat("a ", 50)
	assert.Equal(t, 50, EstimateTokens(table))
}

func TestSplitContiguousIndices(t *testing.T) {
	pages := map[int]string{
		1: strings.Repeat("general liability occurrence limit ", 60),
		2: strings.Repeat("property coverage building contents ", 60),
		3: strings.Repeat("endorsement additional insured wording ", 60),
	}

	chunks := Split(pages, Options{TargetTokens: 100, MaxTokens: 200, OverlapTokens: 10})
	require.NotEmpty(t, chunks)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.NotEmpty(t, c.Text)
		assert.GreaterOrEqual(t, c.StartPage, 1)
		assert.LessOrEqual(t, c.EndPage, 3)
		assert.LessOrEqual(t, c.StartPage, c.EndPage)
	}
}

func TestSplitRespectsMaxTokens(t *testing.T) {
	// One oversized page must be broken on word boundaries, never emitted as
	// a single chunk past the cap.
	pages := map[int]string{
		1: strings.Repeat("commercial general liability declarations premium deductible ", 400),
	}

	opts := Options{TargetTokens: 150, MaxTokens: 300, OverlapTokens: 20}
	chunks := Split(pages, opts)
	require.Greater(t, len(chunks), 1)

	for _, c := range chunks {
		assert.LessOrEqual(t, c.TokenEstimate, opts.MaxTokens,
			"chunk %d exceeds the hard cap", c.Index)
		assert.Equal(t, 1, c.StartPage)
		assert.Equal(t, 1, c.EndPage)
	}
}

func TestSplitCarriesOverlap(t *testing.T) {
	pages := map[int]string{
		1: strings.Repeat("alpha bravo charlie delta echo foxtrot ", 40),
		2: strings.Repeat("golf hotel india juliett kilo lima ", 40),
	}

	chunks := Split(pages, Options{TargetTokens: 80, MaxTokens: 160, OverlapTokens: 10})
	require.Greater(t, len(chunks), 1)

	// The second chunk's prefix repeats the tail of the first.
	tailWords := strings.Fields(chunks[0].Text)
	lastWord := tailWords[len(tailWords)-1]
	assert.True(t, strings.Contains(chunks[1].Text, lastWord),
		"expected overlap from previous chunk in %q", chunks[1].Text[:40])
}

func TestSplitSkipsEmptyPages(t *testing.T) {
	pages := map[int]string{
		1: "COMMERCIAL GENERAL LIABILITY DECLARATIONS Policy Number GL-123",
		2: "   ",
		3: "",
	}

	chunks := Split(pages, DefaultOptions())
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].StartPage)
	assert.Equal(t, 1, chunks[0].EndPage)
}

func TestSplitEmptyInput(t *testing.T) {
	assert.Empty(t, Split(map[int]string{}, DefaultOptions()))
	assert.Empty(t, Split(nil, DefaultOptions()))
}

func TestDetectSectionFromHeading(t *testing.T) {
	chunks := Split(map[int]string{
		1: "COMMERCIAL GENERAL LIABILITY DECLARATIONS\nNamed Insured: Acme Widgets LLC",
	}, DefaultOptions())
	require.Len(t, chunks, 1)
	assert.Equal(t, sectionDeclarations, chunks[0].SectionType)
}

func TestRetag(t *testing.T) {
	chunks := []Chunk{
		{Index: 0, StartPage: 1, EndPage: 2, SectionType: sectionUnknown},
		{Index: 1, StartPage: 3, EndPage: 5, SectionType: sectionUnknown},
		{Index: 2, StartPage: 6, EndPage: 9, SectionType: sectionConditions},
	}
	sections := []Section{
		{Type: sectionDeclarations, StartPage: 1, EndPage: 2},
		{Type: sectionEndorsements, StartPage: 3, EndPage: 4},
	}

	Retag(chunks, sections)

	assert.Equal(t, sectionDeclarations, chunks[0].SectionType)
	// Chunk 1 spills past the endorsements section, so its tag stays.
	assert.Equal(t, sectionUnknown, chunks[1].SectionType)
	assert.Equal(t, sectionConditions, chunks[2].SectionType)
}

func TestOptionsNormalized(t *testing.T) {
	o := Options{TargetTokens: 0, MaxTokens: 0, OverlapTokens: -5}.normalized()
	assert.Equal(t, 500, o.TargetTokens)
	assert.Equal(t, 1000, o.MaxTokens)
	assert.Equal(t, 0, o.OverlapTokens)

	o = Options{TargetTokens: 100, MaxTokens: 50, OverlapTokens: 400}.normalized()
	assert.Equal(t, 200, o.MaxTokens)
	assert.Equal(t, 100, o.OverlapTokens)

	// A cap equal to the target leaves no room for the overlap carry; it is
	// raised to target+overlap.
	o = Options{TargetTokens: 100, MaxTokens: 100, OverlapTokens: 20}.normalized()
	assert.Equal(t, 120, o.MaxTokens)
}

func TestSplitTightCapAbsorbsOverlapCarry(t *testing.T) {
	pages := map[int]string{
		1: strings.Repeat("a ", 500),
		2: strings.Repeat("b ", 500),
	}

	opts := Options{TargetTokens: 100, MaxTokens: 100, OverlapTokens: 20}
	chunks := Split(pages, opts)
	require.Greater(t, len(chunks), 1)

	for _, c := range chunks {
		assert.LessOrEqual(t, c.TokenEstimate, opts.TargetTokens+opts.OverlapTokens,
			"chunk %d exceeds the cap once the carry is counted", c.Index)
	}
}
