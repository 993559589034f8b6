package classify

import (
	"context"
	"testing"

	"github.com/vporoshin/docflow/internal/core/domain"
	"github.com/vporoshin/docflow/internal/infrastructure/detect"
	"github.com/vporoshin/docflow/internal/infrastructure/intent"
)

func newService() *Service {
	return NewService(detect.New(), intent.New())
}

func TestClassifyEmailIntentFromContent(t *testing.T) {
	raw := []byte("From: a@example.com\r\n" +
		"To: b@example.com\r\n" +
		"Subject: invoice payment overdue\r\n" +
		"\r\n" +
		"The invoice amount due must be paid this week.\r\n")

	got := newService().Classify(context.Background(), domain.Metadata{Filename: "msg.eml"}, raw)

	if got.Format != domain.FormatEmail {
		t.Errorf("Format = %q, want email", got.Format)
	}
	if got.Intent != "Invoice" {
		t.Errorf("Intent = %q, want Invoice", got.Intent)
	}
	if got.Confidence < 0.5 {
		t.Errorf("Confidence = %v, want keyword-backed score", got.Confidence)
	}
}

func TestClassifyUserIntentOverride(t *testing.T) {
	raw := []byte("From: a@example.com\r\nSubject: invoice payment\r\n\r\ninvoice amount due\r\n")
	meta := domain.Metadata{Filename: "msg.eml", UserIntent: "Complaint"}

	got := newService().Classify(context.Background(), meta, raw)

	if got.Intent != "Complaint" {
		t.Errorf("Intent = %q, want declared override", got.Intent)
	}
	if got.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", got.Confidence)
	}
}

func TestClassifyUnreadablePDFKeepsDetection(t *testing.T) {
	// Extension decides the format; intent stays Unknown when no text can
	// be extracted.
	got := newService().Classify(context.Background(), domain.Metadata{Filename: "doc.pdf"}, []byte("garbage"))

	if got.Format != domain.FormatPDF {
		t.Errorf("Format = %q, want pdf", got.Format)
	}
	if got.Intent != domain.IntentUnknown {
		t.Errorf("Intent = %q, want Unknown", got.Intent)
	}
}

func TestClassifyJSONMarkerKey(t *testing.T) {
	raw := []byte(`{"order": {"id": "A1"}, "customer": "acme"}`)

	got := newService().Classify(context.Background(), domain.Metadata{Filename: "order.json"}, raw)

	if got.Format != domain.FormatJSON {
		t.Errorf("Format = %q, want json", got.Format)
	}
	if got.Intent != "RFQ" {
		t.Errorf("Intent = %q, want RFQ", got.Intent)
	}
	if got.Confidence != 0.7 {
		t.Errorf("Confidence = %v, want 0.7", got.Confidence)
	}
}

func TestClassifyJSONStringifyFallback(t *testing.T) {
	raw := []byte(`{"note": "please send a quote and pricing"}`)

	got := newService().Classify(context.Background(), domain.Metadata{Filename: "note.json"}, raw)

	if got.Intent != "RFQ" {
		t.Errorf("Intent = %q, want RFQ from stringified content", got.Intent)
	}
	if got.Confidence < 0.5 {
		t.Errorf("Confidence = %v, want keyword-backed score", got.Confidence)
	}
}

func TestClassifyInvalidJSONIntentUnknown(t *testing.T) {
	got := newService().Classify(context.Background(), domain.Metadata{Filename: "data.json"}, []byte("{broken"))

	if got.Format != domain.FormatJSON {
		t.Errorf("Format = %q, want json", got.Format)
	}
	if got.Intent != domain.IntentUnknown {
		t.Errorf("Intent = %q, want Unknown", got.Intent)
	}
	if got.Confidence != 0.1 {
		t.Errorf("Confidence = %v, want 0.1", got.Confidence)
	}
}

func TestClassifyNilContent(t *testing.T) {
	got := newService().Classify(context.Background(), domain.Metadata{Filename: "blob"}, nil)

	if got.Format != domain.FormatUnknown {
		t.Errorf("Format = %q, want unknown", got.Format)
	}
	if got.Confidence != 0.1 {
		t.Errorf("Confidence = %v, want 0.1", got.Confidence)
	}
}
