// Package docproc implements the Document Processor: turning a tribunal PDF
// into a cleaned, PII-redacted CaseDocument with structural metadata.
package docproc

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/tenancydeposit/tribunalrag/internal/domain"
	"github.com/tenancydeposit/tribunalrag/internal/logging"
)

// MinExtractableChars is the floor below which a PDF is treated as scan-only
// (no usable text layer) and skipped rather than rejected outright.
const MinExtractableChars = 500

// ErrScanOnly signals that a PDF had too little extractable text, a
// non-fatal skip condition rather than an IngestionError.
var ErrScanOnly = fmt.Errorf("docproc: document has fewer than %d extractable characters (scan-only)", MinExtractableChars)

// Processor turns PDFs into CaseDocuments.
type Processor struct {
	log logging.Logger
}

func NewProcessor(log logging.Logger) *Processor {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Processor{log: log}
}

// Extract reads the PDF at pdfPath page by page, concatenating text while
// preserving paragraph breaks, then cleans and PII-redacts it and resolves
// its metadata (sidecar JSON first, BAILII filename convention otherwise).
// Returns ErrScanOnly for documents with too little extractable text; the
// caller should treat that as a skip, not a failure.
func (p *Processor) Extract(pdfPath string, sidecarPath string) (domain.CaseDocument, error) {
	text, err := extractPDFText(pdfPath)
	if err != nil {
		return domain.CaseDocument{}, domain.NewError(domain.KindIngestion, "docproc.Extract", err)
	}

	if len(strings.TrimSpace(text)) < MinExtractableChars {
		p.log.Warn("scan_only_pdf_skipped", logging.String("path", pdfPath))
		return domain.CaseDocument{}, ErrScanOnly
	}

	cleaned := Clean(text)

	meta, err := ExtractMetadata(pdfPath, sidecarPath)
	if err != nil {
		return domain.CaseDocument{}, domain.NewError(domain.KindIngestion, "docproc.Extract", err)
	}

	doc := domain.CaseDocument{
		CaseReference: meta.CaseReference,
		Year:          meta.Year,
		Region:        meta.Region,
		CaseType:      meta.CaseType,
		FullText:      cleaned,
		Category:      categoryFromPath(pdfPath),
	}
	return doc, nil
}

// extractPDFText reads every page of the PDF at path and joins their text
// content with blank lines between pages, approximating paragraph breaks.
func extractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf %q: %w", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	totalPages := r.NumPage()
	for i := 1; i <= totalPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

// categoryFromPath infers the optional supplemental Category field from the
// source PDF's directory name.
func categoryFromPath(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.Contains(lower, "deposit"):
		return "deposit"
	case strings.Contains(lower, "adjacent"):
		return "adjacent"
	default:
		return "other"
	}
}
