package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vporoshin/docflow/internal/core/domain"
	"github.com/vporoshin/docflow/internal/core/ports"
)

type IngestDocumentUseCase struct {
	store   ports.RecordStore
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestDocumentUseCase(
	store ports.RecordStore,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		store:   store,
		storage: storage,
		queue:   queue,
	}
}

// Upload stores the raw bytes, records the document metadata in status
// received, and hands the document ID to the processing queue.
func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	filename, contentType, userIntent string,
	body io.Reader,
) (*domain.Metadata, error) {
	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))

	counted := &countingReader{r: body}
	if err := uc.storage.Save(ctx, storageKey, counted); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	meta := domain.Metadata{
		DocumentID:  id,
		Filename:    filename,
		ContentType: contentType,
		Size:        counted.n,
		StoragePath: storageKey,
		UserIntent:  userIntent,
		UploadedAt:  time.Now().UTC(),
	}

	if err := uc.store.Store(ctx, id, meta); err != nil {
		return nil, fmt.Errorf("store document metadata: %w", err)
	}

	if err := uc.queue.PublishDocumentReceived(ctx, id); err != nil {
		return nil, fmt.Errorf("publish received event: %w", err)
	}

	return &meta, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
