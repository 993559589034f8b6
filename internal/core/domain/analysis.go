package domain

// Analysis is the tagged union of format-specific extraction results. Exactly
// one concrete analysis type exists per supported format.
type Analysis interface {
	Record
	AnalysisFormat() Format
}

// InvoiceData holds fields extracted from invoice PDFs. Unextractable string
// fields carry the "Unknown" sentinel; Total stays 0 when no pattern parsed.
type InvoiceData struct {
	InvoiceNumber string   `json:"invoice_number"`
	InvoiceDate   string   `json:"invoice_date"`
	Total         float64  `json:"total"`
	Currency      string   `json:"currency"`
	LineItems     []string `json:"line_items"`
}

// PolicyData holds fields extracted from policy/compliance PDFs.
type PolicyData struct {
	PolicyNumber          string   `json:"policy_number"`
	EffectiveDate         string   `json:"effective_date"`
	Regulations           []string `json:"regulations"`
	HasRegulatoryMentions bool     `json:"has_regulatory_mentions"`
	Scope                 string   `json:"scope"`
}

// ResumeData holds contact details and skills extracted from resume PDFs.
type ResumeData struct {
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Phone  string   `json:"phone"`
	Skills []string `json:"skills"`
}

type PDFAnalysis struct {
	DocumentType string       `json:"document_type"`
	PageCount    int          `json:"page_count"`
	InvoiceData  *InvoiceData `json:"invoice_data,omitempty"`
	PolicyData   *PolicyData  `json:"policy_data,omitempty"`
	ResumeData   *ResumeData  `json:"resume_data,omitempty"`
	Summary      string       `json:"summary"`
}

func (PDFAnalysis) Kind() RecordKind       { return RecordPDFAnalysis }
func (PDFAnalysis) AnalysisFormat() Format { return FormatPDF }

type EmailAnalysis struct {
	EmailType         string `json:"email_type"`
	Sender            string `json:"sender"`
	Recipient         string `json:"recipient"`
	Subject           string `json:"subject"`
	Date              string `json:"date"`
	Tone              string `json:"tone"`
	Urgency           string `json:"urgency"`
	Summary           string `json:"summary"`
	RecommendedAction string `json:"recommended_action"`
}

func (EmailAnalysis) Kind() RecordKind       { return RecordEmailAnalysis }
func (EmailAnalysis) AnalysisFormat() Format { return FormatEmail }

// Validity reports whether the JSON parsed and any syntax errors found.
type Validity struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// Structure summarizes the shape of a parsed JSON value.
type Structure struct {
	Complexity  string `json:"complexity"`
	FieldsCount int    `json:"fields_count"`
}

// Anomaly flags a structural or value defect at a dotted/bracketed path.
type Anomaly struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

type JSONAnalysis struct {
	JSONType  string    `json:"json_type"`
	Validity  Validity  `json:"validity"`
	Structure Structure `json:"structure"`
	Anomalies []Anomaly `json:"anomalies"`
	Summary   string    `json:"summary"`
}

func (JSONAnalysis) Kind() RecordKind       { return RecordJSONAnalysis }
func (JSONAnalysis) AnalysisFormat() Format { return FormatJSON }

// Enrichment is the optional NLP add-on record; it never affects routing.
type Enrichment struct {
	Entities  map[string][]string `json:"entities"`
	Sentiment Sentiment           `json:"sentiment"`
	Topics    []string            `json:"topics"`
}

func (Enrichment) Kind() RecordKind { return RecordEnrichment }

type Sentiment struct {
	Score      float64 `json:"score"`
	Magnitude  float64 `json:"magnitude"`
	Assessment string  `json:"assessment"`
}
