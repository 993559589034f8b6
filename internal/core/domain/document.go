package domain

import "time"

type DocumentStatus string

const (
	StatusReceived        DocumentStatus = "received"
	StatusProcessing      DocumentStatus = "processing"
	StatusAnalyzed        DocumentStatus = "analyzed"
	StatusError           DocumentStatus = "error"
	StatusActionTriggered DocumentStatus = "action_triggered"
)

// Metadata captures the immutable facts about an uploaded document.
// UserIntent is the uploader's declared intent; when set it overrides the
// keyword classifier with full confidence.
type Metadata struct {
	DocumentID  string    `json:"document_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"storage_path"`
	UserIntent  string    `json:"user_intent,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

func (Metadata) Kind() RecordKind { return RecordMetadata }

// RecordKind discriminates the record types stored per document.
type RecordKind string

const (
	RecordMetadata       RecordKind = "metadata"
	RecordClassification RecordKind = "classification"
	RecordPDFAnalysis    RecordKind = "pdf_analysis"
	RecordEmailAnalysis  RecordKind = "email_analysis"
	RecordJSONAnalysis   RecordKind = "json_analysis"
	RecordEnrichment     RecordKind = "enrichment"
	RecordAction         RecordKind = "action"
)

// Record is any per-document artifact the pipeline persists. Records of the
// same kind replace each other; the store keeps only the latest.
type Record interface {
	Kind() RecordKind
}

// DocumentState is the full stored view of one document: its status plus the
// latest record of each kind. Absent records are nil.
type DocumentState struct {
	DocumentID     string          `json:"document_id"`
	Status         DocumentStatus  `json:"status"`
	Metadata       *Metadata       `json:"metadata,omitempty"`
	Classification *Classification `json:"classification,omitempty"`
	PDFAnalysis    *PDFAnalysis    `json:"pdf_analysis,omitempty"`
	EmailAnalysis  *EmailAnalysis  `json:"email_analysis,omitempty"`
	JSONAnalysis   *JSONAnalysis   `json:"json_analysis,omitempty"`
	Enrichment     *Enrichment     `json:"enrichment,omitempty"`
	Action         *ActionRecord   `json:"action,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ListFilter narrows DocumentState listings.
type ListFilter struct {
	Format Format
	Status DocumentStatus
	Limit  int
	Offset int
}
