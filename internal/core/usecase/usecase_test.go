package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/vporoshin/docflow/internal/core/domain"
	"github.com/vporoshin/docflow/internal/core/ports"
)

type fakeStore struct {
	states      map[string]*domain.DocumentState
	records     []domain.Record
	statuses    []domain.DocumentStatus
	storeErr    error
	getErr      error
	updateErr   error
	listResults []domain.DocumentState
}

func newFakeStore() *fakeStore {
	return &fakeStore{states: map[string]*domain.DocumentState{}}
}

func (f *fakeStore) Store(_ context.Context, documentID string, record domain.Record) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	f.records = append(f.records, record)
	state, ok := f.states[documentID]
	if !ok {
		state = &domain.DocumentState{DocumentID: documentID, Status: domain.StatusReceived}
		f.states[documentID] = state
	}
	switch r := record.(type) {
	case domain.Metadata:
		state.Metadata = &r
	case domain.Classification:
		state.Classification = &r
	case domain.PDFAnalysis:
		state.PDFAnalysis = &r
	case domain.EmailAnalysis:
		state.EmailAnalysis = &r
	case domain.JSONAnalysis:
		state.JSONAnalysis = &r
	case domain.Enrichment:
		state.Enrichment = &r
	case domain.ActionRecord:
		state.Action = &r
	}
	return nil
}

func (f *fakeStore) Get(_ context.Context, documentID string) (*domain.DocumentState, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	state, ok := f.states[documentID]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return state, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, documentID string, status domain.DocumentStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.statuses = append(f.statuses, status)
	if state, ok := f.states[documentID]; ok {
		state.Status = status
	}
	return nil
}

func (f *fakeStore) ListAll(_ context.Context, _ domain.ListFilter) ([]domain.DocumentState, error) {
	return f.listResults, nil
}

type fakeStorage struct {
	objects map[string][]byte
	saveErr error
	openErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.objects[key] = raw
	return nil
}

func (f *fakeStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	raw, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

type fakeQueue struct {
	published  []string
	publishErr error
}

func (f *fakeQueue) PublishDocumentReceived(_ context.Context, documentID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *fakeQueue) SubscribeDocumentReceived(context.Context, func(context.Context, string) error) error {
	return nil
}

type fakeClassifier struct {
	result domain.Classification
}

func (f *fakeClassifier) Classify(context.Context, domain.Metadata, []byte) domain.Classification {
	return f.result
}

type fakeExtractor struct {
	analysis domain.Analysis
	revised  *domain.Classification
	err      error
}

func (f *fakeExtractor) Extract(context.Context, domain.Metadata, []byte) (domain.Analysis, *domain.Classification, error) {
	return f.analysis, f.revised, f.err
}

type fakeDispatcher struct {
	calls []domain.Action
	ack   domain.DispatchAck
	err   error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, action domain.Action, _, _ string) (domain.DispatchAck, error) {
	f.calls = append(f.calls, action)
	if f.err != nil {
		return domain.DispatchAck{}, f.err
	}
	return f.ack, nil
}

type fakeEnricher struct {
	enrichment domain.Enrichment
	err        error
}

func (f *fakeEnricher) Enrich(context.Context, string) (domain.Enrichment, error) {
	return f.enrichment, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUploadStoresAndPublishes(t *testing.T) {
	store := newFakeStore()
	storage := newFakeStorage()
	queue := &fakeQueue{}
	uc := NewIngestDocumentUseCase(store, storage, queue)

	meta, err := uc.Upload(context.Background(), "my invoice.pdf", "application/pdf", "", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if meta.Size != int64(len("pdf bytes")) {
		t.Errorf("Size = %d", meta.Size)
	}
	if !strings.HasSuffix(meta.StoragePath, "_my_invoice.pdf") {
		t.Errorf("StoragePath = %q", meta.StoragePath)
	}
	if _, ok := storage.objects[meta.StoragePath]; !ok {
		t.Error("raw bytes not saved")
	}
	if len(queue.published) != 1 || queue.published[0] != meta.DocumentID {
		t.Errorf("published = %v", queue.published)
	}
	state := store.states[meta.DocumentID]
	if state == nil || state.Metadata == nil {
		t.Fatal("metadata record not stored")
	}
}

func TestUploadPublishFailure(t *testing.T) {
	uc := NewIngestDocumentUseCase(newFakeStore(), newFakeStorage(), &fakeQueue{publishErr: errors.New("nats down")})

	_, err := uc.Upload(context.Background(), "a.pdf", "application/pdf", "", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error")
	}
}

func seedDocument(t *testing.T, store *fakeStore, storage *fakeStorage, id string, content []byte) domain.Metadata {
	t.Helper()
	meta := domain.Metadata{
		DocumentID:  id,
		Filename:    "doc.json",
		ContentType: "application/json",
		StoragePath: id + "_doc.json",
	}
	if err := store.Store(context.Background(), id, meta); err != nil {
		t.Fatal(err)
	}
	storage.objects[meta.StoragePath] = content
	return meta
}

func TestProcessByIDSuccessWithRevision(t *testing.T) {
	store := newFakeStore()
	storage := newFakeStorage()
	seedDocument(t, store, storage, "doc-1", []byte(`{"order_id":"A1"}`))

	classifier := &fakeClassifier{result: domain.Classification{
		Format: domain.FormatJSON, Intent: domain.IntentUnknown, Confidence: 1.0,
	}}
	revised := &domain.Classification{Format: domain.FormatJSON, Intent: "Order Processing", Confidence: 0.8}
	extractors := map[domain.Format]ports.Extractor{
		domain.FormatJSON: &fakeExtractor{
			analysis: domain.JSONAnalysis{
				JSONType: "Order",
				Validity: domain.Validity{IsValid: true},
				Summary:  "This is a Order with 2 total fields.",
			},
			revised: revised,
		},
	}

	uc := NewProcessDocumentUseCase(store, storage, classifier, extractors, &fakeEnricher{}, testLogger())
	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID: %v", err)
	}

	state := store.states["doc-1"]
	if state.Status != domain.StatusAnalyzed {
		t.Errorf("Status = %q, want analyzed", state.Status)
	}
	if state.Classification == nil || state.Classification.Intent != "Order Processing" {
		t.Errorf("Classification = %+v, want extractor revision to win", state.Classification)
	}
	if state.JSONAnalysis == nil || state.JSONAnalysis.JSONType != "Order" {
		t.Errorf("JSONAnalysis = %+v", state.JSONAnalysis)
	}
	if state.Enrichment == nil {
		t.Error("enrichment record missing")
	}

	wantStatuses := []domain.DocumentStatus{domain.StatusProcessing, domain.StatusAnalyzed}
	if len(store.statuses) != len(wantStatuses) {
		t.Fatalf("statuses = %v", store.statuses)
	}
	for i := range wantStatuses {
		if store.statuses[i] != wantStatuses[i] {
			t.Errorf("statuses[%d] = %q, want %q", i, store.statuses[i], wantStatuses[i])
		}
	}
}

func TestProcessByIDUserIntentBeatsRevision(t *testing.T) {
	store := newFakeStore()
	storage := newFakeStorage()
	meta := domain.Metadata{
		DocumentID:  "doc-1",
		Filename:    "doc.json",
		ContentType: "application/json",
		StoragePath: "doc-1_doc.json",
		UserIntent:  "Invoice",
	}
	if err := store.Store(context.Background(), "doc-1", meta); err != nil {
		t.Fatal(err)
	}
	storage.objects[meta.StoragePath] = []byte(`{"order_id":"A1"}`)

	classifier := &fakeClassifier{result: domain.Classification{
		Format: domain.FormatJSON, Intent: "Invoice", Confidence: 1.0,
	}}
	extractors := map[domain.Format]ports.Extractor{
		domain.FormatJSON: &fakeExtractor{
			analysis: domain.JSONAnalysis{JSONType: "Order", Validity: domain.Validity{IsValid: true}},
			revised:  &domain.Classification{Format: domain.FormatJSON, Intent: "Order Processing", Confidence: 0.8},
		},
	}

	uc := NewProcessDocumentUseCase(store, storage, classifier, extractors, nil, testLogger())
	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID: %v", err)
	}

	got := store.states["doc-1"].Classification
	if got == nil || got.Intent != "Invoice" || got.Confidence != 1.0 {
		t.Errorf("Classification = %+v, declared intent must survive", got)
	}
}

func TestProcessByIDExtractionFailure(t *testing.T) {
	store := newFakeStore()
	storage := newFakeStorage()
	seedDocument(t, store, storage, "doc-1", []byte("not a pdf"))

	classifier := &fakeClassifier{result: domain.Classification{Format: domain.FormatPDF, Intent: domain.IntentUnknown, Confidence: 1.0}}
	extractors := map[domain.Format]ports.Extractor{
		domain.FormatPDF: &fakeExtractor{err: domain.WrapError(domain.ErrParseFailure, "parse pdf", errors.New("bad xref"))},
	}

	uc := NewProcessDocumentUseCase(store, storage, classifier, extractors, nil, testLogger())
	err := uc.ProcessByID(context.Background(), "doc-1")
	if err == nil {
		t.Fatal("expected error")
	}

	state := store.states["doc-1"]
	if state.Status != domain.StatusError {
		t.Errorf("Status = %q, want error", state.Status)
	}
	// Classification survives even when extraction fails.
	if state.Classification == nil || state.Classification.Format != domain.FormatPDF {
		t.Errorf("Classification = %+v", state.Classification)
	}
}

func TestProcessByIDUnsupportedFormat(t *testing.T) {
	store := newFakeStore()
	storage := newFakeStorage()
	seedDocument(t, store, storage, "doc-1", []byte{0x00, 0x01})

	classifier := &fakeClassifier{result: domain.Classification{Format: domain.FormatBinary, Intent: domain.IntentUnknown, Confidence: 0.5}}

	uc := NewProcessDocumentUseCase(store, storage, classifier, map[domain.Format]ports.Extractor{}, nil, testLogger())
	err := uc.ProcessByID(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want unsupported format", err)
	}
	if store.states["doc-1"].Status != domain.StatusError {
		t.Errorf("Status = %q, want error", store.states["doc-1"].Status)
	}
}

func TestProcessByIDUnreadableContent(t *testing.T) {
	store := newFakeStore()
	storage := newFakeStorage()
	meta := seedDocument(t, store, storage, "doc-1", nil)
	delete(storage.objects, meta.StoragePath)

	classifier := &fakeClassifier{result: domain.Classification{Format: domain.FormatUnknown, Intent: domain.IntentUnknown, Confidence: 0.1}}

	uc := NewProcessDocumentUseCase(store, storage, classifier, map[domain.Format]ports.Extractor{}, nil, testLogger())
	err := uc.ProcessByID(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want invalid input", err)
	}

	state := store.states["doc-1"]
	if state.Status != domain.StatusError {
		t.Errorf("Status = %q", state.Status)
	}
	if state.Classification == nil {
		t.Error("classification should be stored before the failure")
	}
}

func routeFixture(t *testing.T, state *domain.DocumentState) (*RouteActionUseCase, *fakeStore, *fakeDispatcher) {
	t.Helper()
	store := newFakeStore()
	store.states[state.DocumentID] = state
	dispatcher := &fakeDispatcher{ack: domain.DispatchAck{Status: "success", RequestID: "req_x"}}
	return NewRouteActionUseCase(store, dispatcher), store, dispatcher
}

func TestRouteActionRules(t *testing.T) {
	tests := []struct {
		name  string
		state *domain.DocumentState
		want  domain.Action
	}{
		{
			name: "angry email escalates",
			state: &domain.DocumentState{
				DocumentID:     "d",
				Classification: &domain.Classification{Format: domain.FormatEmail},
				EmailAnalysis:  &domain.EmailAnalysis{Tone: "Angry", Urgency: "Low"},
			},
			want: domain.ActionEscalate,
		},
		{
			name: "inquiry email responds",
			state: &domain.DocumentState{
				DocumentID:     "d",
				Classification: &domain.Classification{Format: domain.FormatEmail},
				EmailAnalysis:  &domain.EmailAnalysis{Tone: "Neutral", Urgency: "Low", RecommendedAction: "Respond within 24 hours"},
			},
			want: domain.ActionRespond,
		},
		{
			name: "routine email logs",
			state: &domain.DocumentState{
				DocumentID:     "d",
				Classification: &domain.Classification{Format: domain.FormatEmail},
				EmailAnalysis:  &domain.EmailAnalysis{Tone: "Neutral", Urgency: "Low", RecommendedAction: "Log and review"},
			},
			want: domain.ActionLog,
		},
		{
			name: "high-value invoice reviewed",
			state: &domain.DocumentState{
				DocumentID:     "d",
				Classification: &domain.Classification{Format: domain.FormatPDF},
				PDFAnalysis:    &domain.PDFAnalysis{InvoiceData: &domain.InvoiceData{Total: 10000.01}},
			},
			want: domain.ActionReviewInvoice,
		},
		{
			name: "threshold invoice archives",
			state: &domain.DocumentState{
				DocumentID:     "d",
				Classification: &domain.Classification{Format: domain.FormatPDF},
				PDFAnalysis:    &domain.PDFAnalysis{InvoiceData: &domain.InvoiceData{Total: 10000}},
			},
			want: domain.ActionArchive,
		},
		{
			name: "regulatory policy to compliance",
			state: &domain.DocumentState{
				DocumentID:     "d",
				Classification: &domain.Classification{Format: domain.FormatPDF},
				PDFAnalysis:    &domain.PDFAnalysis{PolicyData: &domain.PolicyData{Regulations: []string{"GDPR (General Data Protection Regulation)"}}},
			},
			want: domain.ActionComplianceReview,
		},
		{
			name: "json with anomalies to technical review",
			state: &domain.DocumentState{
				DocumentID:     "d",
				Classification: &domain.Classification{Format: domain.FormatJSON},
				JSONAnalysis: &domain.JSONAnalysis{
					Validity:  domain.Validity{IsValid: true},
					Anomalies: []domain.Anomaly{{Type: "Data Issue", Path: "price"}},
				},
			},
			want: domain.ActionTechnicalReview,
		},
		{
			name: "clean json processes",
			state: &domain.DocumentState{
				DocumentID:     "d",
				Classification: &domain.Classification{Format: domain.FormatJSON},
				JSONAnalysis:   &domain.JSONAnalysis{Validity: domain.Validity{IsValid: true}},
			},
			want: domain.ActionProcess,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, store, dispatcher := routeFixture(t, tt.state)

			record, err := uc.RouteAction(context.Background(), "d", "")
			if err != nil {
				t.Fatalf("RouteAction: %v", err)
			}
			if record.Action != tt.want {
				t.Fatalf("Action = %q, want %q", record.Action, tt.want)
			}
			if len(dispatcher.calls) != 1 || dispatcher.calls[0] != tt.want {
				t.Errorf("dispatched = %v", dispatcher.calls)
			}
			if store.states["d"].Status != domain.StatusActionTriggered {
				t.Errorf("Status = %q, want action_triggered", store.states["d"].Status)
			}
			if store.states["d"].Action == nil {
				t.Error("action record not stored")
			}
		})
	}
}

func TestRouteActionExplicitOverridesRules(t *testing.T) {
	state := &domain.DocumentState{
		DocumentID:     "d",
		Classification: &domain.Classification{Format: domain.FormatEmail},
		EmailAnalysis:  &domain.EmailAnalysis{Tone: "Angry"},
	}
	uc, _, dispatcher := routeFixture(t, state)

	record, err := uc.RouteAction(context.Background(), "d", "archive")
	if err != nil {
		t.Fatalf("RouteAction: %v", err)
	}
	if record.Action != domain.ActionArchive {
		t.Errorf("Action = %q, want archive", record.Action)
	}
	if dispatcher.calls[0] != domain.ActionArchive {
		t.Errorf("dispatched = %v", dispatcher.calls)
	}
}

func TestRouteActionUnknownExplicit(t *testing.T) {
	state := &domain.DocumentState{
		DocumentID:     "d",
		Classification: &domain.Classification{Format: domain.FormatJSON},
		JSONAnalysis:   &domain.JSONAnalysis{Validity: domain.Validity{IsValid: true}},
	}
	uc, store, dispatcher := routeFixture(t, state)

	_, err := uc.RouteAction(context.Background(), "d", "frobnicate")
	if !domain.IsKind(err, domain.ErrUnknownAction) {
		t.Fatalf("err = %v, want unknown action", err)
	}
	if len(dispatcher.calls) != 0 {
		t.Errorf("nothing should be dispatched, got %v", dispatcher.calls)
	}
	if store.states["d"].Action != nil {
		t.Error("failed routing must not store an action record")
	}
	if store.states["d"].Status == domain.StatusActionTriggered {
		t.Error("failed routing must not move the status")
	}
}

func TestRouteActionDispatchFailure(t *testing.T) {
	state := &domain.DocumentState{
		DocumentID:     "d",
		Classification: &domain.Classification{Format: domain.FormatJSON},
		JSONAnalysis:   &domain.JSONAnalysis{Validity: domain.Validity{IsValid: true}},
	}
	uc, store, dispatcher := routeFixture(t, state)
	dispatcher.err = errors.New("downstream unavailable")

	record, err := uc.RouteAction(context.Background(), "d", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if record.Action != domain.ActionProcess {
		t.Errorf("record.Action = %q, want attempted action %q", record.Action, domain.ActionProcess)
	}
	if store.states["d"].Action != nil {
		t.Error("failed dispatch must not store an action record")
	}
}

func TestRouteActionUnsupportedFormat(t *testing.T) {
	state := &domain.DocumentState{
		DocumentID:     "d",
		Classification: &domain.Classification{Format: domain.FormatBinary},
	}
	uc, _, _ := routeFixture(t, state)

	_, err := uc.RouteAction(context.Background(), "d", "")
	if !domain.IsKind(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want unsupported format", err)
	}
}
