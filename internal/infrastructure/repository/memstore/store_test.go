package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/vporoshin/docflow/internal/core/domain"
)

func TestStoreCreatesDocumentOnFirstRecord(t *testing.T) {
	s := New()
	ctx := context.Background()

	meta := domain.Metadata{DocumentID: "doc-1", Filename: "a.pdf"}
	if err := s.Store(ctx, "doc-1", meta); err != nil {
		t.Fatalf("Store: %v", err)
	}

	state, err := s.Get(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state.Status != domain.StatusReceived {
		t.Errorf("Status = %q, want received", state.Status)
	}
	if state.Metadata == nil || state.Metadata.Filename != "a.pdf" {
		t.Errorf("Metadata = %+v", state.Metadata)
	}
	if state.CreatedAt.IsZero() || state.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestStoreLastWriteWins(t *testing.T) {
	s := New()
	ctx := context.Background()

	first := domain.Classification{Format: domain.FormatJSON, Intent: "Unknown", Confidence: 0.2}
	second := domain.Classification{Format: domain.FormatJSON, Intent: "Order Processing", Confidence: 0.8}
	if err := s.Store(ctx, "doc-1", first); err != nil {
		t.Fatal(err)
	}
	if err := s.Store(ctx, "doc-1", second); err != nil {
		t.Fatal(err)
	}

	state, err := s.Get(ctx, "doc-1")
	if err != nil {
		t.Fatal(err)
	}
	if state.Classification.Intent != "Order Processing" {
		t.Errorf("Intent = %q, want replacement to win", state.Classification.Intent)
	}
}

func TestGetReturnsDeepCopy(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Store(ctx, "doc-1", domain.Metadata{DocumentID: "doc-1", Filename: "orig.pdf"}); err != nil {
		t.Fatal(err)
	}

	state, err := s.Get(ctx, "doc-1")
	if err != nil {
		t.Fatal(err)
	}
	state.Metadata.Filename = "mutated.pdf"

	again, err := s.Get(ctx, "doc-1")
	if err != nil {
		t.Fatal(err)
	}
	if again.Metadata.Filename != "orig.pdf" {
		t.Errorf("stored state mutated through returned pointer: %q", again.Metadata.Filename)
	}
}

func TestGetUnknownDocument(t *testing.T) {
	s := New()
	_, err := s.Get(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("err = %v, want document not found", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Store(ctx, "doc-1", domain.Metadata{DocumentID: "doc-1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateStatus(ctx, "doc-1", domain.StatusAnalyzed); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	// Repeating the same transition is a no-op, not an error.
	if err := s.UpdateStatus(ctx, "doc-1", domain.StatusAnalyzed); err != nil {
		t.Fatalf("idempotent UpdateStatus: %v", err)
	}

	state, _ := s.Get(ctx, "doc-1")
	if state.Status != domain.StatusAnalyzed {
		t.Errorf("Status = %q", state.Status)
	}

	if err := s.UpdateStatus(ctx, "missing", domain.StatusAnalyzed); !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Errorf("err = %v, want document not found", err)
	}
}

func TestListAllFiltersAndPaginates(t *testing.T) {
	s := New()
	ctx := context.Background()

	base := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	seed := []struct {
		id     string
		format domain.Format
		status domain.DocumentStatus
	}{
		{"doc-1", domain.FormatPDF, domain.StatusAnalyzed},
		{"doc-2", domain.FormatJSON, domain.StatusAnalyzed},
		{"doc-3", domain.FormatPDF, domain.StatusError},
	}
	for _, d := range seed {
		if err := s.Store(ctx, d.id, domain.Classification{Format: d.format}); err != nil {
			t.Fatal(err)
		}
		if err := s.UpdateStatus(ctx, d.id, d.status); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListAll(ctx, domain.ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].DocumentID != "doc-3" {
		t.Errorf("expected newest first, got %q", all[0].DocumentID)
	}

	pdfs, err := s.ListAll(ctx, domain.ListFilter{Format: domain.FormatPDF})
	if err != nil {
		t.Fatal(err)
	}
	if len(pdfs) != 2 {
		t.Fatalf("pdf filter len = %d, want 2", len(pdfs))
	}

	analyzed, err := s.ListAll(ctx, domain.ListFilter{Status: domain.StatusAnalyzed})
	if err != nil {
		t.Fatal(err)
	}
	if len(analyzed) != 2 {
		t.Fatalf("status filter len = %d, want 2", len(analyzed))
	}

	page, err := s.ListAll(ctx, domain.ListFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 1 || page[0].DocumentID != "doc-2" {
		t.Fatalf("page = %+v, want doc-2 only", page)
	}

	empty, err := s.ListAll(ctx, domain.ListFilter{Offset: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Fatalf("len = %d, want 0", len(empty))
	}
}
