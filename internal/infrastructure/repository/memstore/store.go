// Package memstore is the in-memory RecordStore used for single-process
// deployments and tests. Records are deep-copied through JSON on both write
// and read, so callers can never mutate stored state through a shared
// pointer.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vporoshin/docflow/internal/core/domain"
)

type Store struct {
	mu   sync.RWMutex
	docs map[string]*domain.DocumentState
	now  func() time.Time
}

func New() *Store {
	return &Store{
		docs: make(map[string]*domain.DocumentState),
		now:  time.Now,
	}
}

// Store upserts one record for the document. The first record creates the
// document in status received; later records of the same kind replace the
// earlier one.
func (s *Store) Store(_ context.Context, documentID string, record domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.docs[documentID]
	if !ok {
		now := s.now().UTC()
		state = &domain.DocumentState{
			DocumentID: documentID,
			Status:     domain.StatusReceived,
			CreatedAt:  now,
		}
		s.docs[documentID] = state
	}

	if err := setRecord(state, record); err != nil {
		return err
	}
	state.UpdatedAt = s.now().UTC()
	return nil
}

func (s *Store) Get(_ context.Context, documentID string) (*domain.DocumentState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.docs[documentID]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "memstore get",
			fmt.Errorf("document %s", documentID))
	}
	return deepCopy(state)
}

// UpdateStatus is idempotent: setting the current status again is a no-op
// that still bumps UpdatedAt.
func (s *Store) UpdateStatus(_ context.Context, documentID string, status domain.DocumentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.docs[documentID]
	if !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "memstore update status",
			fmt.Errorf("document %s", documentID))
	}
	state.Status = status
	state.UpdatedAt = s.now().UTC()
	return nil
}

// ListAll returns documents newest-first by UpdatedAt, narrowed by the
// filter. Offset and Limit paginate after filtering.
func (s *Store) ListAll(_ context.Context, filter domain.ListFilter) ([]domain.DocumentState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*domain.DocumentState, 0, len(s.docs))
	for _, state := range s.docs {
		if !matches(state, filter) {
			continue
		}
		matched = append(matched, state)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].DocumentID < matched[j].DocumentID
		}
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	out := make([]domain.DocumentState, 0, len(matched))
	for _, state := range matched {
		copied, err := deepCopy(state)
		if err != nil {
			return nil, err
		}
		out = append(out, *copied)
	}
	return out, nil
}

func matches(state *domain.DocumentState, filter domain.ListFilter) bool {
	if filter.Status != "" && state.Status != filter.Status {
		return false
	}
	if filter.Format != "" {
		if state.Classification == nil || state.Classification.Format != filter.Format {
			return false
		}
	}
	return true
}

func setRecord(state *domain.DocumentState, record domain.Record) error {
	switch r := record.(type) {
	case domain.Metadata:
		return assign(&state.Metadata, r)
	case domain.Classification:
		return assign(&state.Classification, r)
	case domain.PDFAnalysis:
		return assign(&state.PDFAnalysis, r)
	case domain.EmailAnalysis:
		return assign(&state.EmailAnalysis, r)
	case domain.JSONAnalysis:
		return assign(&state.JSONAnalysis, r)
	case domain.Enrichment:
		return assign(&state.Enrichment, r)
	case domain.ActionRecord:
		return assign(&state.Action, r)
	default:
		return domain.WrapError(domain.ErrInvalidInput, "memstore store",
			fmt.Errorf("unsupported record type %T", record))
	}
}

func assign[T any](dst **T, src T) error {
	data, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("memstore marshal record: %w", err)
	}
	fresh := new(T)
	if err := json.Unmarshal(data, fresh); err != nil {
		return fmt.Errorf("memstore unmarshal record: %w", err)
	}
	*dst = fresh
	return nil
}

func deepCopy(state *domain.DocumentState) (*domain.DocumentState, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("memstore marshal state: %w", err)
	}
	out := &domain.DocumentState{}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("memstore unmarshal state: %w", err)
	}
	return out, nil
}
