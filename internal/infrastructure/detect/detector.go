package detect

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/vporoshin/docflow/internal/core/domain"
)

// SampleSize is how many leading bytes the content sniffer inspects.
const SampleSize = 1024

var pdfMagic = []byte("%PDF-")

var emailHeaders = []string{"From:", "To:", "Subject:", "Date:"}

// Detector resolves a document's container format from its filename
// extension, declared content type, and a leading byte sample.
type Detector struct{}

func New() *Detector { return &Detector{} }

// Detect applies the static extension/content-type table first and falls back
// to content sniffing. It never fails; absent or unreadable content yields
// format "unknown" at confidence 0.1.
func (d *Detector) Detect(filename, contentType string, sample []byte) domain.Classification {
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case ext == ".pdf" || contentType == "application/pdf":
		return classification(domain.FormatPDF, 1.0)
	case ext == ".eml" || contentType == "message/rfc822":
		return classification(domain.FormatEmail, 1.0)
	case ext == ".json" || contentType == "application/json":
		return classification(domain.FormatJSON, 1.0)
	}

	return d.sniff(sample)
}

func (d *Detector) sniff(sample []byte) domain.Classification {
	if sample == nil {
		return classification(domain.FormatUnknown, 0.1)
	}
	if len(sample) > SampleSize {
		sample = sample[:SampleSize]
	}

	// Invalid UTF-8 sequences are dropped rather than failing the decode.
	text := strings.ToValidUTF8(string(sample), "")

	if strings.HasPrefix(strings.TrimSpace(text), "{") && strings.Contains(text, "}") {
		return classification(domain.FormatJSON, 0.9)
	}

	for _, header := range emailHeaders {
		if strings.Contains(text, header) {
			return classification(domain.FormatEmail, 0.8)
		}
	}

	if bytes.HasPrefix(sample, pdfMagic) {
		return classification(domain.FormatPDF, 1.0)
	}

	return classification(domain.FormatBinary, 0.5)
}

func classification(format domain.Format, confidence float64) domain.Classification {
	return domain.Classification{
		Format:     format,
		Intent:     domain.IntentUnknown,
		Confidence: confidence,
	}
}
