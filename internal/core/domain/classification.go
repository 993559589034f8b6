package domain

// Format is the detected container type of a document.
type Format string

const (
	FormatPDF     Format = "pdf"
	FormatEmail   Format = "email"
	FormatJSON    Format = "json"
	FormatBinary  Format = "binary"
	FormatUnknown Format = "unknown"
)

// IntentUnknown is the fallback when no taxonomy intent scores above zero.
const IntentUnknown = "Unknown"

// Classification is the format + business-intent verdict for a document.
// The JSON extractor may later revise Intent and Confidence (never Format).
type Classification struct {
	Format     Format  `json:"format"`
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

func (Classification) Kind() RecordKind { return RecordClassification }

// IntentResult is a scored intent decision from the keyword classifier.
type IntentResult struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}
