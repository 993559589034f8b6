// Package pdfdoc extracts structured analysis records from PDF documents:
// sub-type detection by keyword vocabulary, field extraction via ordered
// regex fallback chains, and a templated summary.
package pdfdoc

import (
	"bytes"
	"context"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/vporoshin/docflow/internal/core/domain"
)

// Unknown is the sentinel for fields no pattern could extract.
const Unknown = "Unknown"

// Document sub-types.
const (
	TypeInvoice = "Invoice"
	TypePolicy  = "Policy Document"
	TypeReport  = "Report"
	TypeResume  = "Resume"
	TypeGeneral = "General Document"
)

type Extractor struct{}

func New() *Extractor { return &Extractor{} }

// Extract parses the PDF, detects the document sub-type, and extracts the
// sub-type's structured fields. A malformed PDF is fatal for the document:
// the error propagates and no partial analysis is produced.
func (e *Extractor) Extract(_ context.Context, _ domain.Metadata, raw []byte) (domain.Analysis, *domain.Classification, error) {
	pages, err := pageTexts(raw)
	if err != nil {
		return nil, nil, domain.WrapError(domain.ErrParseFailure, "parse pdf", err)
	}

	var sb strings.Builder
	for _, page := range pages {
		if page == "" {
			continue
		}
		sb.WriteString(page)
		sb.WriteString("\n\n")
	}
	text := sb.String()

	docType := detectDocumentType(text)
	analysis := domain.PDFAnalysis{
		DocumentType: docType,
		PageCount:    len(pages),
	}

	switch docType {
	case TypeInvoice:
		data := extractInvoiceData(text)
		analysis.InvoiceData = &data
		analysis.Summary = invoiceSummary(text, data)
	case TypePolicy:
		data := extractPolicyData(text)
		analysis.PolicyData = &data
		analysis.Summary = policySummary(text, data)
	case TypeResume:
		data := extractResumeData(text)
		analysis.ResumeData = &data
		analysis.Summary = resumeSummary(text, data)
	default:
		analysis.Summary = genericSummary(text, docType)
	}

	return analysis, nil, nil
}

// FirstPagesText returns the concatenated text of up to maxPages leading
// pages, for intent classification over the document head.
func FirstPagesText(raw []byte, maxPages int) (string, error) {
	pages, err := pageTexts(raw)
	if err != nil {
		return "", domain.WrapError(domain.ErrParseFailure, "parse pdf", err)
	}
	if len(pages) > maxPages {
		pages = pages[:maxPages]
	}
	return strings.Join(pages, "\n"), nil
}

func pageTexts(raw []byte) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, err
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, err
		}
		pages = append(pages, text)
	}
	return pages, nil
}

var (
	invoiceTerms = []string{"invoice", "bill", "payment", "amount due", "total due", "subtotal"}
	policyTerms  = []string{"policy", "regulation", "compliance", "guidelines", "terms and conditions", "gdpr", "hipaa", "ccpa", "pci", "sox"}
	reportTerms  = []string{"report", "analysis", "study", "findings", "results", "quarterly", "annual", "executive summary"}
	resumeTerms  = []string{"resume", "cv", "experience", "education", "skills", "employment", "work history", "qualifications", "profile", "references", "certifications"}

	resumePatterns = []string{"work experience", "professional experience", "education", "skills"}
	reportPatterns = []string{"executive summary", "key findings", "market analysis"}
)

// minTypeCount is the minimum vocabulary hit count for a specific sub-type;
// below it the document stays general.
const minTypeCount = 2

// detectDocumentType counts vocabulary hits per sub-type. Ties at the max
// resolve in the fixed order Invoice > Policy > Report > Resume.
func detectDocumentType(text string) string {
	lower := strings.ToLower(text)

	invoiceCount := countTerms(lower, invoiceTerms)
	policyCount := countTerms(lower, policyTerms)
	reportCount := countTerms(lower, reportTerms)
	resumeCount := countTerms(lower, resumeTerms)

	if containsAny(lower, resumePatterns) {
		resumeCount += 3
	}
	if containsAny(lower, reportPatterns) {
		reportCount += 3
	}

	maxCount := max(invoiceCount, max(policyCount, max(reportCount, resumeCount)))
	if maxCount < minTypeCount {
		return TypeGeneral
	}

	switch maxCount {
	case invoiceCount:
		return TypeInvoice
	case policyCount:
		return TypePolicy
	case reportCount:
		return TypeReport
	default:
		return TypeResume
	}
}

func countTerms(lower string, terms []string) int {
	total := 0
	for _, term := range terms {
		total += strings.Count(lower, term)
	}
	return total
}

func containsAny(lower string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
