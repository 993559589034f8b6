package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vporoshin/docflow/internal/core/domain"
	"github.com/vporoshin/docflow/internal/core/ports"
)

type ProcessDocumentUseCase struct {
	store      ports.RecordStore
	storage    ports.ObjectStorage
	classifier ports.DocumentClassifier
	extractors map[domain.Format]ports.Extractor
	enricher   ports.TextEnricher
	log        *slog.Logger
}

func NewProcessDocumentUseCase(
	store ports.RecordStore,
	storage ports.ObjectStorage,
	classifier ports.DocumentClassifier,
	extractors map[domain.Format]ports.Extractor,
	enricher ports.TextEnricher,
	log *slog.Logger,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		store:      store,
		storage:    storage,
		classifier: classifier,
		extractors: extractors,
		enricher:   enricher,
		log:        log,
	}
}

// ProcessByID runs classification and extraction for one stored document.
// On success the document ends in status analyzed; any pipeline failure
// lands it in status error with whatever records were stored before the
// failure still in place.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.store.UpdateStatus(ctx, documentID, domain.StatusProcessing); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	if err := uc.pipeline(ctx, documentID); err != nil {
		if failErr := uc.store.UpdateStatus(ctx, documentID, domain.StatusError); failErr != nil {
			return fmt.Errorf("%w; mark error status: %v", err, failErr)
		}
		return err
	}

	if err := uc.store.UpdateStatus(ctx, documentID, domain.StatusAnalyzed); err != nil {
		return fmt.Errorf("set status=analyzed: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) pipeline(ctx context.Context, documentID string) error {
	meta, err := uc.loadMetadata(ctx, documentID)
	if err != nil {
		return err
	}

	raw := uc.readContent(ctx, meta)

	classification := uc.classifier.Classify(ctx, *meta, raw)
	if err := uc.store.Store(ctx, documentID, classification); err != nil {
		return fmt.Errorf("store classification: %w", err)
	}
	if raw == nil {
		return domain.WrapError(domain.ErrInvalidInput, "read content",
			fmt.Errorf("document %s has no readable content", documentID))
	}

	analysis, revised, err := uc.extract(ctx, classification.Format, *meta, raw)
	if err != nil {
		return err
	}
	if err := uc.store.Store(ctx, documentID, analysis); err != nil {
		return fmt.Errorf("store analysis: %w", err)
	}
	// A declared uploader intent beats any extractor revision.
	if revised != nil && meta.UserIntent == "" {
		if err := uc.store.Store(ctx, documentID, *revised); err != nil {
			return fmt.Errorf("store revised classification: %w", err)
		}
	}

	uc.enrich(ctx, documentID, analysis)
	return nil
}

func (uc *ProcessDocumentUseCase) loadMetadata(ctx context.Context, documentID string) (*domain.Metadata, error) {
	state, err := uc.store.Get(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	if state.Metadata == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "load metadata",
			fmt.Errorf("document %s has no metadata record", documentID))
	}
	return state.Metadata, nil
}

// readContent returns nil when the stored object cannot be read; the
// classifier degrades gracefully on nil and the pipeline fails afterwards
// with the classification already recorded.
func (uc *ProcessDocumentUseCase) readContent(ctx context.Context, meta *domain.Metadata) []byte {
	rc, err := uc.storage.Open(ctx, meta.StoragePath)
	if err != nil {
		uc.log.WarnContext(ctx, "content_unreadable", "document_id", meta.DocumentID, "error", err)
		return nil
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		uc.log.WarnContext(ctx, "content_unreadable", "document_id", meta.DocumentID, "error", err)
		return nil
	}
	return raw
}

func (uc *ProcessDocumentUseCase) extract(
	ctx context.Context,
	format domain.Format,
	meta domain.Metadata,
	raw []byte,
) (domain.Analysis, *domain.Classification, error) {
	extractor, ok := uc.extractors[format]
	if !ok {
		return nil, nil, domain.WrapError(domain.ErrUnsupportedFormat, "extract",
			fmt.Errorf("no extractor for format %s", format))
	}
	analysis, revised, err := extractor.Extract(ctx, meta, raw)
	if err != nil {
		return nil, nil, fmt.Errorf("extract %s analysis: %w", format, err)
	}
	return analysis, revised, nil
}

// enrich is best-effort: a failed or disabled enricher never fails the
// document.
func (uc *ProcessDocumentUseCase) enrich(ctx context.Context, documentID string, analysis domain.Analysis) {
	if uc.enricher == nil {
		return
	}
	text := enrichableText(analysis)
	if text == "" {
		return
	}
	enrichment, err := uc.enricher.Enrich(ctx, text)
	if err != nil {
		uc.log.WarnContext(ctx, "enrichment_failed", "document_id", documentID, "error", err)
		return
	}
	if err := uc.store.Store(ctx, documentID, enrichment); err != nil {
		uc.log.WarnContext(ctx, "enrichment_store_failed", "document_id", documentID, "error", err)
	}
}

func enrichableText(analysis domain.Analysis) string {
	switch a := analysis.(type) {
	case domain.PDFAnalysis:
		return a.Summary
	case domain.EmailAnalysis:
		return a.Subject + " " + a.Summary
	case domain.JSONAnalysis:
		return a.Summary
	default:
		return ""
	}
}
