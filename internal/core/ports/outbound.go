package ports

import (
	"context"
	"io"

	"github.com/vporoshin/docflow/internal/core/domain"
)

// RecordStore persists per-document records and status, keyed by document ID.
// Writes of the same record kind replace each other (last write wins); a Get
// never observes a partially written record.
type RecordStore interface {
	Store(ctx context.Context, documentID string, record domain.Record) error
	Get(ctx context.Context, documentID string) (*domain.DocumentState, error)
	UpdateStatus(ctx context.Context, documentID string, status domain.DocumentStatus) error
	ListAll(ctx context.Context, filter domain.ListFilter) ([]domain.DocumentState, error)
}

// ObjectStorage stores raw document bytes.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes document-received events.
type MessageQueue interface {
	PublishDocumentReceived(ctx context.Context, documentID string) error
	SubscribeDocumentReceived(ctx context.Context, handler func(context.Context, string) error) error
}

// FormatDetector decides the container format from filename, declared
// content type, and a byte sample.
type FormatDetector interface {
	Detect(filename, contentType string, sample []byte) domain.Classification
}

// IntentClassifier scores text against the business-intent taxonomy.
type IntentClassifier interface {
	ClassifyText(text string) domain.IntentResult
}

// DocumentClassifier produces the full format + intent verdict for a stored
// document. It never fails: undetectable input degrades to format "unknown"
// at low confidence.
type DocumentClassifier interface {
	Classify(ctx context.Context, meta domain.Metadata, raw []byte) domain.Classification
}

// Extractor turns raw document bytes into a format-specific analysis. The
// returned classification is non-nil only when the extractor derived a more
// specific intent than the format-level pass (the JSON extractor does this).
type Extractor interface {
	Extract(ctx context.Context, meta domain.Metadata, raw []byte) (domain.Analysis, *domain.Classification, error)
}

// ActionDispatcher submits an action to the downstream system for a document
// and returns its acknowledgement.
type ActionDispatcher interface {
	Dispatch(ctx context.Context, action domain.Action, documentID string, reason string) (domain.DispatchAck, error)
}

// TextEnricher is the optional NLP enrichment hook; implementations must be
// safe to skip entirely.
type TextEnricher interface {
	Enrich(ctx context.Context, text string) (domain.Enrichment, error)
}
