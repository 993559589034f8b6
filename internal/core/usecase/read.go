package usecase

import (
	"context"
	"fmt"

	"github.com/vporoshin/docflow/internal/core/domain"
	"github.com/vporoshin/docflow/internal/core/ports"
)

// ReadDocumentUseCase is the query side: fetch one document's full state or
// list documents by filter.
type ReadDocumentUseCase struct {
	store ports.RecordStore
}

func NewReadDocumentUseCase(store ports.RecordStore) *ReadDocumentUseCase {
	return &ReadDocumentUseCase{store: store}
}

func (uc *ReadDocumentUseCase) Get(ctx context.Context, documentID string) (*domain.DocumentState, error) {
	state, err := uc.store.Get(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return state, nil
}

func (uc *ReadDocumentUseCase) ListAll(ctx context.Context, filter domain.ListFilter) ([]domain.DocumentState, error) {
	states, err := uc.store.ListAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return states, nil
}
