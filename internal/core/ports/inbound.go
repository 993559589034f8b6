package ports

import (
	"context"
	"io"

	"github.com/vporoshin/docflow/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, contentType, userIntent string, body io.Reader) (*domain.Metadata, error)
}

// DocumentProcessor runs the synchronous classification + extraction pipeline
// for one stored document.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// ActionRouter selects and executes exactly one follow-up action per call.
// An empty explicitAction means "derive from the stored analysis".
type ActionRouter interface {
	RouteAction(ctx context.Context, documentID string, explicitAction string) (domain.ActionRecord, error)
}

// DocumentReader is the inbound read model for stored document state.
type DocumentReader interface {
	Get(ctx context.Context, documentID string) (*domain.DocumentState, error)
	ListAll(ctx context.Context, filter domain.ListFilter) ([]domain.DocumentState, error)
}
