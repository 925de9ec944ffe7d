package pdf

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalPDF builds a structurally valid single-page PDF with no text
// content, computing the xref offsets as the body is assembled.
func minimalPDF(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	offsets := make([]int, 0, 3)

	buf.WriteString("%PDF-1.4\n")

	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}
	writeObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	writeObj("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	writeObj("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n")

	xrefStart := buf.Len()
	buf.WriteString("xref\n0 4\n0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xrefStart)

	return buf.Bytes()
}

func TestExtractMalformedPDF(t *testing.T) {
	res := NewExtractor().Extract([]byte("this is not a pdf"), "broken.pdf")

	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "broken.pdf")
	assert.Nil(t, res.Pages)
}

func TestExtractEmptyInput(t *testing.T) {
	res := NewExtractor().Extract(nil, "empty.pdf")
	assert.False(t, res.Success)
}

func TestExtractTextlessPageCountsAsScanned(t *testing.T) {
	res := NewExtractor().Extract(minimalPDF(t), "scan.pdf")

	require.True(t, res.Success, "extraction error: %s", res.Error)
	assert.Equal(t, 1, res.PageCount)
	assert.Equal(t, 1, res.ScannedPageCount)
	assert.True(t, res.AppearsScanned)
	assert.False(t, res.IsHybrid)
	assert.Equal(t, 0, res.QualityScore)
}

func TestNormalizeText(t *testing.T) {
	in := "Named  Insured:\tAcme   Widgets\nPolicy \t Number:  GL-001  "
	assert.Equal(t, "Named Insured: Acme Widgets\nPolicy Number: GL-001", normalizeText(in))
}

func TestQualityScore(t *testing.T) {
	assert.Equal(t, 0, qualityScore(nil, 0))

	dense := map[int]string{1: string(make([]byte, 4000))}
	assert.Equal(t, 100, qualityScore(dense, 1), "score saturates at 100")

	half := map[int]string{1: string(make([]byte, 1000)), 2: ""}
	assert.Equal(t, 25, qualityScore(half, 2))
}
