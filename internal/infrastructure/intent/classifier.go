package intent

import (
	"strings"

	"github.com/vporoshin/docflow/internal/core/domain"
)

// taxonomyEntry binds one business intent to its keyword vocabulary.
// Declaration order is the tie-break contract: when several intents share the
// max score, the first-declared one wins.
type taxonomyEntry struct {
	Intent   string
	Keywords []string
}

var taxonomy = []taxonomyEntry{
	{"RFQ", []string{"quote", "rfq", "price", "pricing", "cost", "request for quote", "quotation", "estimate", "proposal"}},
	{"Complaint", []string{"complaint", "issue", "problem", "dissatisfied", "unhappy", "disappointed", "refund", "unacceptable"}},
	{"Invoice", []string{"invoice", "bill", "payment", "amount due", "total due", "purchase order", "remit", "paid"}},
	{"Regulation", []string{"compliance", "regulation", "policy", "requirement", "gdpr", "hipaa", "fda", "legal", "guideline"}},
	{"Fraud Risk", []string{"fraud", "suspicious", "unauthorized", "alert", "warning", "security", "breach", "risk"}},
	{"Order", []string{"order status", "shipping", "tracking", "delivery", "shipped", "order number", "expedited", "order confirmation"}},
	{"Report", []string{"report", "analysis", "quarterly", "annual", "summary", "findings", "results", "statistics", "metrics", "forecast", "trends"}},
	{"Resume", []string{"resume", "cv", "curriculum vitae", "experience", "education", "skills", "employment", "qualifications", "profile"}},
}

var resumeBoostPhrases = []string{"work experience", "education", "skills", "professional experience"}

var reportBoostPhrases = []string{"executive summary", "key findings", "market analysis"}

const (
	// headerLines is how many leading lines are treated as potential
	// headers/titles; a keyword hit there counts double.
	headerLines = 10
	// headerMaxLen excludes long lines from header treatment.
	headerMaxLen = 100

	patternBoost = 3
)

// Classifier scores text against the fixed business-intent taxonomy using
// deterministic keyword counting. No learning, no tokenization: plain
// substring counts over the lower-cased text.
type Classifier struct{}

func New() *Classifier { return &Classifier{} }

// ClassifyText returns the winning intent and a confidence in [0, 1].
// Zero total score yields Unknown at 0.2; otherwise confidence is
// min(0.5 + 0.1*score, 0.9), scaled by 0.8 when intents tie.
func (c *Classifier) ClassifyText(text string) domain.IntentResult {
	lower := strings.ToLower(text)
	headers := headerCandidates(lower)

	scores := make([]int, len(taxonomy))
	for i, entry := range taxonomy {
		for _, keyword := range entry.Keywords {
			count := strings.Count(lower, keyword)
			for _, line := range headers {
				if strings.Contains(line, keyword) {
					count++
				}
			}
			scores[i] += count
		}
	}

	applyBoost(scores, lower, "Resume", resumeBoostPhrases)
	applyBoost(scores, lower, "Report", reportBoostPhrases)

	maxScore := 0
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	if maxScore == 0 {
		return domain.IntentResult{Intent: domain.IntentUnknown, Confidence: 0.2}
	}

	winner := ""
	ties := 0
	for i, s := range scores {
		if s == maxScore {
			ties++
			if winner == "" {
				winner = taxonomy[i].Intent
			}
		}
	}

	confidence := 0.5 + float64(maxScore)*0.1
	if confidence > 0.9 {
		confidence = 0.9
	}
	if ties > 1 {
		confidence *= 0.8
	}

	return domain.IntentResult{Intent: winner, Confidence: confidence}
}

func headerCandidates(lower string) []string {
	lines := strings.Split(lower, "\n")
	if len(lines) > headerLines {
		lines = lines[:headerLines]
	}
	var headers []string
	for _, line := range lines {
		if len(line) < headerMaxLen {
			headers = append(headers, line)
		}
	}
	return headers
}

func applyBoost(scores []int, lower, intentName string, phrases []string) {
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			for i, entry := range taxonomy {
				if entry.Intent == intentName {
					scores[i] += patternBoost
					break
				}
			}
			return
		}
	}
}
