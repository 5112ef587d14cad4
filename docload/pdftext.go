package docload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFExtractor is the native fallback chunk source: it parses PDF content
// streams directly via pdfcpu and emits one chunk per non-empty page.
type PDFExtractor struct {
	// Quality receives extraction metrics for the last processed file
	// when non-nil.
	Quality *ExtractionQuality
}

// Chunks extracts page-ordered chunks from the PDF at path.
func (e *PDFExtractor) Chunks(_ context.Context, path, stateCode string) ([]RawChunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read %s: %w", path, err)
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var chunks []RawChunk
	var allText strings.Builder
	totalChars := 0

	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		pageText := extractPageText(pdfCtx, pageNr)
		if pageText == "" {
			continue
		}
		totalChars += len([]rune(pageText))

		chunks = append(chunks, RawChunk{
			ChunkID:       fmt.Sprintf("%s_p%04d", stateCode, pageNr),
			StateCode:     stateCode,
			DocumentTitle: title,
			PageNumber:    pageNr,
			SectionTitle:  headingOf(pageText),
			Content:       pageText,
		})

		if allText.Len() > 0 {
			allText.WriteByte('\n')
		}
		allText.WriteString(pageText)
	}

	if e.Quality != nil {
		full := allText.String()
		var charsPerPage float64
		if pdfCtx.PageCount > 0 {
			charsPerPage = float64(totalChars) / float64(pdfCtx.PageCount)
		}
		*e.Quality = ExtractionQuality{
			PageCount:      pdfCtx.PageCount,
			CharsPerPage:   charsPerPage,
			PrintableRatio: printableRatio(full),
			WordlikeRatio:  wordlikeRatio(full),
		}
	}

	return chunks, nil
}

// extractPageText pulls text from one page's content stream.
func extractPageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromStream(data)
}

// pdfStringRe matches PDF string literals: (text here)
var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// textFromStream parses PDF content-stream text operators (Tj, TJ, ',
// Td/TD positioning, T* line moves) into plain text.
func textFromStream(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteByte('\n')
				sb.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return collapseSpace(sb.String())
}

// decodePDFString handles PDF escape sequences including octal escapes.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for j := 0; j < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; j++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

// collapseSpace normalises whitespace runs and drops non-printables.
func collapseSpace(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else if unicode.IsPrint(r) {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}

// headingOf returns the first line of page text, truncated, as a section
// title hint for downstream classification.
func headingOf(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)
	if len(text) > 120 {
		text = text[:120]
	}
	return text
}
