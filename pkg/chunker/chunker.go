package chunker

import (
	"sort"
	"strings"
)

// Options controls chunk sizing. All sizes are in estimated tokens.
type Options struct {
	TargetTokens  int
	MaxTokens     int
	OverlapTokens int
}

// DefaultOptions mirrors the pipeline defaults.
func DefaultOptions() Options {
	return Options{
		TargetTokens:  500,
		MaxTokens:     1000,
		OverlapTokens: 50,
	}
}

func (o Options) normalized() Options {
	if o.TargetTokens <= 0 {
		o.TargetTokens = 500
	}
	if o.MaxTokens < o.TargetTokens {
		o.MaxTokens = o.TargetTokens * 2
	}
	if o.OverlapTokens < 0 {
		o.OverlapTokens = 0
	}
	// Overlap beyond the target would make chunks regress.
	if o.OverlapTokens > o.TargetTokens {
		o.OverlapTokens = o.TargetTokens
	}
	// The overlap carry is prepended after the cap check, so the cap must
	// leave room for it on top of a full target.
	if o.MaxTokens < o.TargetTokens+o.OverlapTokens {
		o.MaxTokens = o.TargetTokens + o.OverlapTokens
	}
	return o
}

// Chunk is a bounded slice of document text spanning [StartPage, EndPage].
type Chunk struct {
	Index         int
	Text          string
	StartPage     int
	EndPage       int
	TokenEstimate int
	SectionType   string
}

// Section is a classifier-reported page range used for retagging.
type Section struct {
	Type      string
	StartPage int
	EndPage   int
}

// EstimateTokens is a deterministic word/character heuristic, not an exact
// tokenizer. It must stay stable: persisted token estimates are compared
// against it on reprocessing.
func EstimateTokens(s string) int {
	if s == "" {
		return 0
	}
	words := len(strings.Fields(s))
	chars := len(s)
	// Dense prose runs ~4 chars/token; tabular dec pages tokenize closer to
	// one token per word. Take the larger so we never undercount.
	byChars := (chars + 3) / 4
	if words > byChars {
		return words
	}
	return byChars
}

// Split walks pages in order and accumulates text into chunks. A chunk closes
// once it reaches TargetTokens or when appending the next piece would exceed
// MaxTokens; the last OverlapTokens worth of words carries into the next
// chunk's prefix. Pages larger than the target are split on word boundaries.
//
// Invariants: indices are contiguous from 0, no chunk exceeds MaxTokens, and
// every chunk's page range lies within the input pages.
func Split(pages map[int]string, opts Options) []Chunk {
	opts = opts.normalized()

	pageNumbers := make([]int, 0, len(pages))
	for n := range pages {
		pageNumbers = append(pageNumbers, n)
	}
	sort.Ints(pageNumbers)

	var (
		chunks    []Chunk
		builder   strings.Builder
		startPage int
		endPage   int
		carry     string // overlap prefix from the previous chunk
	)

	flush := func() {
		text := strings.TrimSpace(builder.String())
		if text == "" {
			builder.Reset()
			return
		}
		chunks = append(chunks, Chunk{
			Index:         len(chunks),
			Text:          text,
			StartPage:     startPage,
			EndPage:       endPage,
			TokenEstimate: EstimateTokens(text),
			SectionType:   detectSection(text),
		})
		carry = overlapTail(text, opts.OverlapTokens)
		builder.Reset()
		startPage = 0
	}

	appendPiece := func(piece string, page int) {
		if strings.TrimSpace(piece) == "" {
			return
		}
		if pending := EstimateTokens(builder.String()); pending > 0 &&
			pending+EstimateTokens(piece)+1 > opts.MaxTokens {
			flush()
		}
		if startPage == 0 {
			startPage = page
			if carry != "" {
				builder.WriteString(carry)
				builder.WriteString(" ")
			}
		}
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(piece)
		endPage = page

		if EstimateTokens(builder.String()) >= opts.TargetTokens {
			flush()
		}
	}

	for _, n := range pageNumbers {
		text := pages[n]
		if strings.TrimSpace(text) == "" {
			continue
		}

		// Close the running chunk early if the whole page would blow past
		// the hard cap.
		pending := EstimateTokens(builder.String())
		if pending > 0 && pending+EstimateTokens(text) > opts.MaxTokens {
			flush()
		}

		for _, piece := range splitOversized(text, opts.TargetTokens) {
			appendPiece(piece, n)
		}
	}
	flush()

	return chunks
}

// Retag overwrites section types on chunks whose page range falls inside a
// classifier-reported section. Tagging is advisory metadata; chunks outside
// every section keep their heuristic tag.
func Retag(chunks []Chunk, sections []Section) {
	for i := range chunks {
		for _, s := range sections {
			if chunks[i].StartPage >= s.StartPage && chunks[i].EndPage <= s.EndPage && s.Type != "" {
				chunks[i].SectionType = s.Type
				break
			}
		}
	}
}

// splitOversized breaks one page's text into pieces of at most maxTokens on
// word boundaries. Pages under the limit come back whole.
func splitOversized(text string, maxTokens int) []string {
	if EstimateTokens(text) <= maxTokens {
		return []string{text}
	}

	words := strings.Fields(text)
	var pieces []string
	var b strings.Builder
	for _, w := range words {
		if b.Len() > 0 && EstimateTokens(b.String())+EstimateTokens(w)+1 > maxTokens {
			pieces = append(pieces, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(w)
	}
	if b.Len() > 0 {
		pieces = append(pieces, b.String())
	}
	return pieces
}

// overlapTail returns roughly the last n tokens of text, on word boundaries.
func overlapTail(text string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(text)
	var (
		tail   []string
		tokens int
	)
	for i := len(words) - 1; i >= 0 && tokens < n; i-- {
		tail = append([]string{words[i]}, tail...)
		tokens += EstimateTokens(words[i])
	}
	return strings.Join(tail, " ")
}
