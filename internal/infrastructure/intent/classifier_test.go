package intent

import (
	"math"
	"strings"
	"testing"

	"github.com/vporoshin/docflow/internal/core/domain"
)

func TestClassifyText(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		wantIntent     string
		wantConfidence float64
	}{
		{
			name:           "empty text is unknown",
			text:           "",
			wantIntent:     domain.IntentUnknown,
			wantConfidence: 0.2,
		},
		{
			name:           "invoice vocabulary",
			text:           "Invoice attached. Please remit payment of the total due.",
			wantIntent:     "Invoice",
			wantConfidence: 0.9,
		},
		{
			name:           "tie scales confidence and first declaration wins",
			text:           "quote problem",
			wantIntent:     "RFQ",
			wantConfidence: 0.56,
		},
		{
			name:           "keyword outside header lines counts once",
			text:           strings.Repeat("lorem\n", 11) + "fraud",
			wantIntent:     "Fraud Risk",
			wantConfidence: 0.6,
		},
		{
			name:           "keyword in header line counts double",
			text:           "fraud",
			wantIntent:     "Fraud Risk",
			wantConfidence: 0.7,
		},
		{
			name:           "resume phrase boost",
			text:           strings.Repeat("background ", 10) + "work experience with distributed systems",
			wantIntent:     "Resume",
			wantConfidence: 0.9,
		},
	}

	classifier := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.ClassifyText(tt.text)
			if got.Intent != tt.wantIntent {
				t.Errorf("Intent = %q, want %q", got.Intent, tt.wantIntent)
			}
			if math.Abs(got.Confidence-tt.wantConfidence) > 1e-9 {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestClassifyTextConfidenceCap(t *testing.T) {
	classifier := New()
	got := classifier.ClassifyText(strings.Repeat("invoice ", 20))
	if got.Intent != "Invoice" {
		t.Fatalf("Intent = %q", got.Intent)
	}
	if got.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want cap 0.9", got.Confidence)
	}
}
