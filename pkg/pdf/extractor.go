package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// Quality scoring thresholds. A page with fewer extractable characters than
// minPageChars is treated as scanned (image-only or near-empty).
const (
	minPageChars      = 120
	scannedScoreLimit = 30
)

// Result is the outcome of text extraction for one document. Success=false
// means the PDF itself is malformed; that is terminal, the pipeline never
// retries input errors.
type Result struct {
	Success          bool
	Error            string
	Pages            map[int]string // 1-based page number -> plain text
	PageCount        int
	QualityScore     int // 0-100
	ScannedPageCount int
	AppearsScanned   bool
	IsHybrid         bool
}

// Extractor pulls per-page plain text out of a PDF byte stream.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the full byte stream and returns per-page text plus quality
// indicators. The filename is only used in diagnostics.
func (e *Extractor) Extract(data []byte, fileName string) *Result {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("malformed PDF %q: %v", fileName, err),
		}
	}

	pageCount := reader.NumPage()
	if pageCount == 0 {
		return &Result{
			Success: false,
			Error:   fmt.Sprintf("PDF %q contains no pages", fileName),
		}
	}

	pages := make(map[int]string, pageCount)
	scanned := 0

	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages[i] = ""
			scanned++
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page degrades quality, it does not fail
			// the document.
			pages[i] = ""
			scanned++
			continue
		}

		text = normalizeText(text)
		pages[i] = text
		if len(text) < minPageChars {
			scanned++
		}
	}

	score := qualityScore(pages, pageCount)

	return &Result{
		Success:          true,
		Pages:            pages,
		PageCount:        pageCount,
		QualityScore:     score,
		ScannedPageCount: scanned,
		AppearsScanned:   score < scannedScoreLimit,
		IsHybrid:         scanned > 0 && scanned < pageCount,
	}
}

// qualityScore maps average extractable characters per page onto 0-100.
// ~2000 chars/page is typical for a dense dec page, so that saturates at 100.
func qualityScore(pages map[int]string, pageCount int) int {
	if pageCount == 0 {
		return 0
	}
	total := 0
	for _, t := range pages {
		total += len(t)
	}
	avg := total / pageCount
	score := avg * 100 / 2000
	if score > 100 {
		score = 100
	}
	return score
}

// normalizeText collapses runs of whitespace the PDF text layer tends to emit
// while keeping line structure intact.
func normalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if r == '\n' {
			b.WriteRune('\n')
			lastSpace = false
			continue
		}
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
			}
			lastSpace = true
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSpace(b.String())
}
