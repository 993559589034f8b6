// Package classify composes format detection and intent classification into
// the single verdict the pipeline stores per document.
package classify

import (
	"context"
	"encoding/json"

	"github.com/vporoshin/docflow/internal/core/domain"
	"github.com/vporoshin/docflow/internal/core/ports"
	"github.com/vporoshin/docflow/internal/infrastructure/detect"
	"github.com/vporoshin/docflow/internal/infrastructure/extractor/emaildoc"
	"github.com/vporoshin/docflow/internal/infrastructure/extractor/pdfdoc"
)

// intentPages is how many leading PDF pages feed the intent classifier;
// the document head carries the signal, full text just adds noise.
const intentPages = 3

type Service struct {
	detector ports.FormatDetector
	intents  ports.IntentClassifier
}

func NewService(detector ports.FormatDetector, intents ports.IntentClassifier) *Service {
	return &Service{detector: detector, intents: intents}
}

// Classify detects the format, scores intent over format-appropriate text,
// and applies the uploader's intent override last. The JSON extractor may
// still revise the intent later from the parsed structure.
func (s *Service) Classify(_ context.Context, meta domain.Metadata, raw []byte) domain.Classification {
	var sample []byte
	if raw != nil {
		sample = raw
		if len(sample) > detect.SampleSize {
			sample = sample[:detect.SampleSize]
		}
	}

	classification := s.detector.Detect(meta.Filename, meta.ContentType, sample)

	if classification.Format == domain.FormatJSON && raw != nil {
		result := s.jsonIntent(raw)
		classification.Intent = result.Intent
		classification.Confidence = result.Confidence
	} else if text, ok := intentText(classification.Format, raw); ok {
		result := s.intents.ClassifyText(text)
		classification.Intent = result.Intent
		classification.Confidence = result.Confidence
	}

	if meta.UserIntent != "" {
		classification.Intent = meta.UserIntent
		classification.Confidence = 1.0
	}

	return classification
}

// jsonIntentMarkers are top-level keys that decide the intent outright.
// Checked in declaration order, first hit wins.
var jsonIntentMarkers = []struct {
	intent string
	keys   []string
}{
	{"RFQ", []string{"order", "purchase"}},
	{"Complaint", []string{"complaint", "issue"}},
	{"Invoice", []string{"invoice", "payment"}},
	{"Regulation", []string{"regulation", "compliance"}},
	{"Fraud Risk", []string{"alert", "fraud"}},
}

func (s *Service) jsonIntent(raw []byte) domain.IntentResult {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return domain.IntentResult{Intent: domain.IntentUnknown, Confidence: 0.1}
	}

	if obj, ok := value.(map[string]any); ok {
		for _, marker := range jsonIntentMarkers {
			for _, key := range marker.keys {
				if _, present := obj[key]; present {
					return domain.IntentResult{Intent: marker.intent, Confidence: 0.7}
				}
			}
		}
	}

	text, err := json.Marshal(value)
	if err != nil {
		return domain.IntentResult{Intent: domain.IntentUnknown, Confidence: 0.1}
	}
	return s.intents.ClassifyText(string(text))
}

func intentText(format domain.Format, raw []byte) (string, bool) {
	switch format {
	case domain.FormatPDF:
		text, err := pdfdoc.FirstPagesText(raw, intentPages)
		if err != nil {
			return "", false
		}
		return text, true
	case domain.FormatEmail:
		text, err := emaildoc.SubjectBody(raw)
		if err != nil {
			return "", false
		}
		return text, true
	default:
		return "", false
	}
}
