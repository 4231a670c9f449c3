package parse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/akolanti/DocRagAPI/internal/config"
	"github.com/akolanti/DocRagAPI/internal/domain/ragModel"
	"github.com/akolanti/DocRagAPI/internal/metrics"
	"github.com/akolanti/DocRagAPI/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/gen2brain/go-fitz"
)

const replacementChar = "�"

// OCREngine turns a rendered page image (PNG bytes) into text.
type OCREngine interface {
	ImageText(ctx context.Context, image []byte) (string, error)
}

// Parser extracts per-page text from a PDF, falling back to OCR when the
// extracted text looks corrupted or the page is image-only.
type Parser struct {
	ocr    OCREngine
	dpi    float64
	logger *logger_i.Logger
}

func NewParser(ocr OCREngine) *Parser {
	return &Parser{
		ocr:    ocr,
		dpi:    float64(config.OCRRenderDPI),
		logger: logger_i.NewLogger("Parser"),
	}
}

// Parse returns the ordered page texts plus the document title from PDF
// metadata (best effort, may be empty). Fails only when the bytes cannot be
// opened as a PDF; per-page extraction and OCR problems degrade to empty
// page text instead.
func (p *Parser) Parse(ctx context.Context, data []byte) ([]ragModel.Page, string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer doc.Close()

	title := strings.TrimSpace(doc.Metadata()["title"])

	//text extraction reader; rendering above is a separate handle
	var reader *pdf.Reader
	if r, rErr := pdf.NewReader(bytes.NewReader(data), int64(len(data))); rErr == nil {
		reader = r
	} else {
		p.logger.Warn("text extraction reader failed to open, OCR only", "error", rErr)
	}

	total := doc.NumPage()
	pages := make([]ragModel.Page, 0, total)
	for i := 0; i < total; i++ {
		text := p.extractPageText(reader, i+1)

		if needsOCR(text) {
			ocrText := p.ocrPage(ctx, doc, i)
			metrics.IncrementOCRPages()
			if shouldReplaceWithOCR(text, ocrText) {
				p.logger.Debug("Applied OCR fallback", "page", i+1)
				text = ocrText
			}
		}

		pages = append(pages, ragModel.Page{Number: i + 1, Text: text})
	}
	return pages, title, nil
}

func (p *Parser) extractPageText(reader *pdf.Reader, pageNum int) string {
	if reader == nil || pageNum > reader.NumPage() {
		return ""
	}
	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}
	content, err := protectExtract(page)
	if err != nil {
		p.logger.Error("Error parsing page content", "page", pageNum, "error", err)
		return ""
	}
	return content
}

func (p *Parser) ocrPage(ctx context.Context, doc *fitz.Document, pageIndex int) string {
	if p.ocr == nil {
		return ""
	}
	img, err := doc.ImageDPI(pageIndex, p.dpi)
	if err != nil {
		p.logger.Error("could not render page for OCR", "page", pageIndex+1, "error", err)
		return ""
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		p.logger.Error("could not encode page image", "page", pageIndex+1, "error", err)
		return ""
	}
	text, err := p.ocr.ImageText(ctx, buf.Bytes())
	if err != nil {
		//OCR failures are never fatal to the parse
		p.logger.Error("OCR failed", "page", pageIndex+1, "error", err)
		return ""
	}
	return text
}

// needsOCR flags a page as untrustworthy when it has no visible text at all
// or carries enough replacement characters to suggest broken encoding.
func needsOCR(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	return strings.Count(text, replacementChar) >= config.OCRMinReplacements
}

// shouldReplaceWithOCR accepts the OCR output only when it is non-empty and
// either the original was visibly corrupted or materially shorter than what
// OCR found. Guards against OCR hallucinating content on short pages.
func shouldReplaceWithOCR(original string, ocrText string) bool {
	if strings.TrimSpace(ocrText) == "" {
		return false
	}
	if strings.Contains(original, replacementChar) {
		return true
	}
	return len(strings.TrimSpace(original)) < len(strings.TrimSpace(ocrText))/2
}

func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(config.PageExtractTimeout):
		return "", errors.New("timeout")
	}
}
